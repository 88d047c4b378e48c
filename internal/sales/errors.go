package sales

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrStorage is matched by every StorageError.
var ErrStorage = errors.New("storage failure")

// NotFoundError reports a receipt lookup that matched no sale.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Receipt %s could not be found.", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(id int64) error {
	return &NotFoundError{Key: strconv.FormatInt(id, 10)}
}

// StorageError wraps a failure of the underlying storage medium.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// ParseSaleID normalizes a receipt key into a sale id.
// Anything that is not a positive base-10 integer is reported as not found.
func ParseSaleID(key string) (int64, error) {
	trimmed := strings.TrimSpace(key)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, &NotFoundError{Key: trimmed}
	}
	return id, nil
}
