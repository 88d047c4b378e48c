package sales

import (
	"context"
	"errors"
	"sync"
)

// ErrZeroID is returned when trying to store a sale without an assigned ID.
var ErrZeroID = errors.New("sale has no id")

// ErrSaleExists is returned when a sale id is saved a second time.
var ErrSaleExists = errors.New("sale already exists")

// Storage is the main interface for our sales storage layer.
// Sales are written once and never updated or deleted.
type Storage interface {
	// NextSaleID issues a fresh sale id, strictly greater than every id issued before.
	NextSaleID(ctx context.Context) (int64, error)
	// NextItemID issues a fresh line item id from a store-wide counter.
	NextItemID(ctx context.Context) (int64, error)
	// SaveSale persists the sale and all of its items atomically.
	// Saving an id that is already stored fails with ErrSaleExists.
	SaveSale(ctx context.Context, sale *Sale) error
	// GetSale returns the sale with its items in insertion order.
	GetSale(ctx context.Context, id int64) (*Sale, error)
	// ListSales returns all sales in creation order.
	ListSales(ctx context.Context) ([]*Sale, error)
	// SetupTables prepares empty storage. Safe to call more than once.
	SetupTables(ctx context.Context) error
	// DropTables removes all stored sales and resets the counters.
	DropTables(ctx context.Context) error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu       sync.RWMutex
	m        map[int64]*Sale
	order    []int64
	lastSale int64
	lastItem int64
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[int64]*Sale{},
	}
}

func (l *LocalStorage) NextSaleID(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSale++
	return l.lastSale, nil
}

func (l *LocalStorage) NextItemID(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastItem++
	return l.lastItem, nil
}

// SaveSale stores a copy of sale so later changes by the caller are not visible.
// Returns ErrZeroID if the sale has no ID and ErrSaleExists if it was saved before.
func (l *LocalStorage) SaveSale(_ context.Context, sale *Sale) error {
	if sale.ID == 0 {
		return ErrZeroID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[sale.ID]; ok {
		return ErrSaleExists
	}
	l.order = append(l.order, sale.ID)
	l.m[sale.ID] = cloneSale(sale)
	return nil
}

// GetSale retrieves a sale from the local storage by ID.
// Returns a *NotFoundError if the sale is not found.
func (l *LocalStorage) GetSale(_ context.Context, id int64) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.m[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneSale(s), nil
}

func (l *LocalStorage) ListSales(_ context.Context) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sales := make([]*Sale, 0, len(l.order))
	for _, id := range l.order {
		sales = append(sales, cloneSale(l.m[id]))
	}
	return sales, nil
}

func (l *LocalStorage) SetupTables(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = map[int64]*Sale{}
	}
	return nil
}

func (l *LocalStorage) DropTables(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m = map[int64]*Sale{}
	l.order = nil
	l.lastSale, l.lastItem = 0, 0
	return nil
}

func cloneSale(s *Sale) *Sale {
	c := *s
	c.Items = append([]LineItem{}, s.Items...)
	return &c
}
