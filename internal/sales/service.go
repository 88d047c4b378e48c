package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fashion_sales/internal/metrics"
)

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	cache   ReceiptCache
	metrics *metrics.Metrics

	// writeMu makes id assignment and the write of a sale one step, so
	// sales land in storage in id order.
	writeMu sync.Mutex
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithReceiptCache serves rendered receipts from c when possible.
func WithReceiptCache(c ReceiptCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records pipeline counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	s := &Service{
		storage: storage,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// RecordSale prices the purchase, assigns ids and persists it as a new sale.
func (s *Service) RecordSale(ctx context.Context, purchase []LineItem, taxes TaxConfig) (*Sale, error) {
	total := CalculateTotalPurchase(purchase)
	tax := CalculateTax(total, taxes)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	saleID, err := s.storage.NextSaleID(ctx)
	if err != nil {
		return nil, s.storageFailure("next sale id", err)
	}

	sale := &Sale{
		ID:             saleID,
		Items:          make([]LineItem, 0, len(purchase)),
		TotalPurchased: total,
		TaxDue:         tax,
		TotalDue:       total + tax,
	}
	for _, it := range purchase {
		itemID, err := s.storage.NextItemID(ctx)
		if err != nil {
			return nil, s.storageFailure("next item id", err)
		}
		it.ID = itemID
		sale.Items = append(sale.Items, it)
	}

	if err := s.storage.SaveSale(ctx, sale); err != nil {
		return nil, s.storageFailure("save sale", fmt.Errorf("sale %d: %w", sale.ID, err))
	}

	s.metrics.SalesCompleted.Inc()
	s.metrics.ItemsRecorded.Add(float64(len(sale.Items)))
	s.metrics.RevenueDue.Add(sale.TotalDue)
	s.metrics.TaxDue.Add(sale.TaxDue)

	s.logger.Info("sale completed",
		zap.Int64("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.Float64("total_due", sale.TotalDue),
	)
	return sale, nil
}

// CompleteSale records the purchase and reports how many line items were
// recorded. Callers that need the sale id use RecordSale.
func (s *Service) CompleteSale(ctx context.Context, purchase []LineItem, taxes TaxConfig) (int, error) {
	sale, err := s.RecordSale(ctx, purchase, taxes)
	if err != nil {
		return 0, err
	}
	return len(sale.Items), nil
}

// GetReceipt returns the sale identified by key, a decimal sale id.
func (s *Service) GetReceipt(ctx context.Context, key string) (*Sale, error) {
	id, err := ParseSaleID(key)
	if err != nil {
		s.missing(key, err)
		return nil, err
	}
	return s.getSale(ctx, id)
}

func (s *Service) getSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.storage.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.missing(fmt.Sprint(id), err)
			return nil, err
		}
		return nil, s.storageFailure("get sale", err)
	}
	return sale, nil
}

// PrintReceipt renders the receipt of the sale identified by key.
func (s *Service) PrintReceipt(ctx context.Context, key string) (string, error) {
	id, err := ParseSaleID(key)
	if err != nil {
		s.missing(key, err)
		return "", err
	}

	if s.cache != nil {
		receipt, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("receipt cache read failed", zap.Int64("sale_id", id), zap.Error(err))
		} else if ok {
			s.metrics.ReceiptsRendered.WithLabelValues("hit").Inc()
			return receipt, nil
		}
	}

	sale, err := s.getSale(ctx, id)
	if err != nil {
		return "", err
	}
	receipt := RenderReceipt(sale.Items, sale.TotalPurchased, sale.TaxDue, sale.TotalDue)

	outcome := "disabled"
	if s.cache != nil {
		outcome = "miss"
		if err := s.cache.Set(ctx, id, receipt); err != nil {
			s.logger.Warn("receipt cache write failed", zap.Int64("sale_id", id), zap.Error(err))
		}
	}
	s.metrics.ReceiptsRendered.WithLabelValues(outcome).Inc()
	return receipt, nil
}

// ListSales returns every persisted sale in creation order.
func (s *Service) ListSales(ctx context.Context) ([]*Sale, error) {
	all, err := s.storage.ListSales(ctx)
	if err != nil {
		return nil, s.storageFailure("list sales", err)
	}
	return all, nil
}

func (s *Service) missing(key string, err error) {
	s.metrics.ReceiptsMissing.Inc()
	s.logger.Warn("receipt not found", zap.String("receipt_id", key), zap.Error(err))
}

// storageFailure logs err and makes sure it is reported as a StorageError.
func (s *Service) storageFailure(op string, err error) error {
	s.metrics.StorageFailures.WithLabelValues(op).Inc()
	s.logger.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
