package sales

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

var (
	salesBucket     = []byte("sales")
	saleItemsBucket = []byte("sale_items")
)

// saleRecord is the stored form of a row in the sales bucket.
type saleRecord struct {
	ID             int64   `json:"id"`
	TotalPurchased float64 `json:"total_purchased"`
	TaxDue         float64 `json:"tax_due"`
	TotalDue       float64 `json:"total_due"`
}

// itemRecord is the stored form of a row in the sale_items bucket.
// Keys are sale id followed by item id, both big-endian, so a cursor
// walks the items of one sale in ascending item id.
type itemRecord struct {
	ID     int64   `json:"id"`
	SaleID int64   `json:"sale_id"`
	Name   string  `json:"name"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
}

// BoltStorage keeps sales in a single BoltDB file. Bolt allows one writer
// at a time, which serializes id assignment, and readers see a consistent
// snapshot, so a sale is never observed with only part of its items.
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (or creates) a BoltDB database at path and ensures
// the sales buckets exist.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, storageErr("open", err)
	}
	s := &BoltStorage{db: db}
	if err := s.SetupTables(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database file lock.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) SetupTables(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{salesBucket, saleItemsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("setup", err)
}

// DropTables deletes both buckets and recreates them empty, which also
// resets their sequences.
func (s *BoltStorage) DropTables(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{salesBucket, saleItemsBucket} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	return storageErr("drop", err)
}

func (s *BoltStorage) NextSaleID(_ context.Context) (int64, error) {
	return s.nextSequence(salesBucket)
}

func (s *BoltStorage) NextItemID(_ context.Context) (int64, error) {
	return s.nextSequence(saleItemsBucket)
}

// nextSequence bumps the persisted bucket sequence, so counters survive restarts.
func (s *BoltStorage) nextSequence(bucket []byte) (int64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		id, err = tx.Bucket(bucket).NextSequence()
		return err
	})
	if err != nil {
		return 0, storageErr("next id", err)
	}
	return int64(id), nil
}

// SaveSale writes the sale row and all its item rows in one transaction.
// Any failure rolls the whole transaction back.
func (s *BoltStorage) SaveSale(_ context.Context, sale *Sale) error {
	if sale.ID == 0 {
		return ErrZeroID
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(salesBucket).Get(itob(sale.ID)) != nil {
			return ErrSaleExists
		}
		data, err := json.Marshal(saleRecord{
			ID:             sale.ID,
			TotalPurchased: sale.TotalPurchased,
			TaxDue:         sale.TaxDue,
			TotalDue:       sale.TotalDue,
		})
		if err != nil {
			return err
		}
		if err := tx.Bucket(salesBucket).Put(itob(sale.ID), data); err != nil {
			return err
		}

		items := tx.Bucket(saleItemsBucket)
		for _, it := range sale.Items {
			data, err := json.Marshal(itemRecord{
				ID:     it.ID,
				SaleID: sale.ID,
				Name:   it.Name,
				Qty:    it.Qty,
				Price:  it.Price,
			})
			if err != nil {
				return err
			}
			if err := items.Put(itemKey(sale.ID, it.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrSaleExists) {
		return err
	}
	return storageErr("save sale", err)
}

// GetSale retrieves a sale by ID.
// Returns a *NotFoundError if the key does not exist.
func (s *BoltStorage) GetSale(_ context.Context, id int64) (*Sale, error) {
	var sale *Sale
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(salesBucket).Get(itob(id))
		if v == nil {
			return notFound(id)
		}
		var err error
		sale, err = readSale(tx, v)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, storageErr("get sale", err)
	}
	return sale, nil
}

// ListSales walks the sales bucket in key order, which is creation order.
func (s *BoltStorage) ListSales(_ context.Context) ([]*Sale, error) {
	sales := []*Sale{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(salesBucket).ForEach(func(_, v []byte) error {
			sale, err := readSale(tx, v)
			if err != nil {
				return err
			}
			sales = append(sales, sale)
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("list sales", err)
	}
	return sales, nil
}

func readSale(tx *bolt.Tx, raw []byte) (*Sale, error) {
	var rec saleRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	sale := &Sale{
		ID:             rec.ID,
		Items:          []LineItem{},
		TotalPurchased: rec.TotalPurchased,
		TaxDue:         rec.TaxDue,
		TotalDue:       rec.TotalDue,
	}

	prefix := itob(rec.ID)
	c := tx.Bucket(saleItemsBucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var it itemRecord
		if err := json.Unmarshal(v, &it); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, LineItem{ID: it.ID, Name: it.Name, Qty: it.Qty, Price: it.Price})
	}
	return sale, nil
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func itemKey(saleID, itemID int64) []byte {
	return append(itob(saleID), itob(itemID)...)
}
