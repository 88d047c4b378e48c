package sales

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/fashion_store_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func newTestMySQLStorage(t *testing.T) *MySQLStorage {
	t.Helper()
	db := getMySQLDB(t)
	ctx := context.Background()

	s := NewMySQLStorage(db)
	require.NoError(t, s.DropTables(ctx))
	require.NoError(t, s.SetupTables(ctx))
	t.Cleanup(func() {
		s.DropTables(ctx)
		db.Close()
	})
	return s
}

func TestMySQLStorage(t *testing.T) {
	runStorageContract(t, func(t *testing.T) Storage { return newTestMySQLStorage(t) })
}

func TestMySQLStorage_RecoversCounters(t *testing.T) {
	ctx := context.Background()
	s := newTestMySQLStorage(t)

	require.NoError(t, s.SaveSale(ctx, &Sale{ID: 7, Items: []LineItem{
		{ID: 40, Name: "t-shirt", Qty: 15, Price: 9.99},
		{ID: 41, Name: "jeans", Qty: 10, Price: 12.5},
	}}))

	// a fresh handle on the same tables simulates a restart
	restarted := NewMySQLStorage(s.db)
	saleID, err := restarted.NextSaleID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), saleID)
	itemID, err := restarted.NextItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), itemID)
}

func TestMySQLStorage_SaveIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestMySQLStorage(t)

	require.NoError(t, s.SaveSale(ctx, &Sale{ID: 1, Items: []LineItem{{ID: 1, Name: "a", Qty: 1, Price: 1}}}))

	// item id 1 collides, so the whole second sale must be rolled back
	err := s.SaveSale(ctx, &Sale{ID: 2, Items: []LineItem{
		{ID: 2, Name: "b", Qty: 1, Price: 1},
		{ID: 1, Name: "dup", Qty: 1, Price: 1},
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	_, err = s.GetSale(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sale_items WHERE id = 2`).Scan(&count))
	assert.Equal(t, 0, count)
}
