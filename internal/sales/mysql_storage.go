package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
)

// mysqlErrDupEntry is the server error number for a duplicate key.
const mysqlErrDupEntry = 1062

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT NOT NULL PRIMARY KEY,
		total_purchased DOUBLE NOT NULL,
		tax_due DOUBLE NOT NULL,
		total_due DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGINT NOT NULL PRIMARY KEY,
		sale_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		qty DOUBLE NOT NULL,
		price DOUBLE NOT NULL,
		INDEX idx_sale_items_sale_id (sale_id),
		FOREIGN KEY (sale_id) REFERENCES sales(id)
	)`,
}

// MySQLStorage persists sales in the sales and sale_items tables.
// Id counters live in the process and are recovered from MAX(id) the
// first time they are needed.
type MySQLStorage struct {
	db *sql.DB

	mu       sync.Mutex
	loaded   bool
	lastSale int64
	lastItem int64
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (m *MySQLStorage) SetupTables(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return storageErr("setup", err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recoverCounters(ctx)
}

func (m *MySQLStorage) DropTables(ctx context.Context) error {
	for _, table := range []string{"sale_items", "sales"} {
		if _, err := m.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return storageErr("drop", err)
		}
	}
	m.mu.Lock()
	m.loaded = false
	m.lastSale, m.lastItem = 0, 0
	m.mu.Unlock()
	return nil
}

// recoverCounters must be called with m.mu held.
func (m *MySQLStorage) recoverCounters(ctx context.Context) error {
	err := m.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM sales`).Scan(&m.lastSale)
	if err != nil {
		return storageErr("recover sale id", err)
	}
	err = m.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM sale_items`).Scan(&m.lastItem)
	if err != nil {
		return storageErr("recover item id", err)
	}
	m.loaded = true
	return nil
}

func (m *MySQLStorage) NextSaleID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		if err := m.recoverCounters(ctx); err != nil {
			return 0, err
		}
	}
	m.lastSale++
	return m.lastSale, nil
}

func (m *MySQLStorage) NextItemID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		if err := m.recoverCounters(ctx); err != nil {
			return 0, err
		}
	}
	m.lastItem++
	return m.lastItem, nil
}

func (m *MySQLStorage) SaveSale(ctx context.Context, sale *Sale) error {
	if sale.ID == 0 {
		return ErrZeroID
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, total_purchased, tax_due, total_due)
		VALUES (?, ?, ?, ?)`,
		sale.ID, sale.TotalPurchased, sale.TaxDue, sale.TotalDue,
	)
	if isDuplicateKey(err) {
		return ErrSaleExists
	}
	if err != nil {
		return storageErr("insert sale", err)
	}

	for _, it := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, name, qty, price)
			VALUES (?, ?, ?, ?, ?)`,
			it.ID, sale.ID, it.Name, it.Qty, it.Price,
		)
		if err != nil {
			return storageErr("insert sale item", fmt.Errorf("item %d: %w", it.ID, err))
		}
	}

	return storageErr("commit", tx.Commit())
}

func (m *MySQLStorage) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale := &Sale{Items: []LineItem{}}
	err := m.db.QueryRowContext(ctx, `
		SELECT id, total_purchased, tax_due, total_due
		FROM sales WHERE id = ?`, id,
	).Scan(&sale.ID, &sale.TotalPurchased, &sale.TaxDue, &sale.TotalDue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr("query sale", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, qty, price
		FROM sale_items WHERE sale_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, storageErr("query sale items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Qty, &it.Price); err != nil {
			return nil, storageErr("scan sale item", err)
		}
		sale.Items = append(sale.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query sale items", err)
	}
	return sale, nil
}

// ListSales reads both tables inside one read-only transaction.
func (m *MySQLStorage) ListSales(ctx context.Context) ([]*Sale, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, storageErr("begin tx", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, total_purchased, tax_due, total_due
		FROM sales ORDER BY id`)
	if err != nil {
		return nil, storageErr("query sales", err)
	}
	sales := []*Sale{}
	byID := map[int64]*Sale{}
	for rows.Next() {
		s := &Sale{Items: []LineItem{}}
		if err := rows.Scan(&s.ID, &s.TotalPurchased, &s.TaxDue, &s.TotalDue); err != nil {
			rows.Close()
			return nil, storageErr("scan sale", err)
		}
		sales = append(sales, s)
		byID[s.ID] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr("query sales", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT id, sale_id, name, qty, price
		FROM sale_items ORDER BY sale_id, id`)
	if err != nil {
		return nil, storageErr("query sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		var saleID int64
		if err := rows.Scan(&it.ID, &saleID, &it.Name, &it.Qty, &it.Price); err != nil {
			return nil, storageErr("scan sale item", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query sale items", err)
	}
	return sales, nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}
