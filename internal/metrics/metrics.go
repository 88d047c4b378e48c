// Package metrics exposes Prometheus collectors for the sale pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fashion_store"

// Metrics groups the counters updated by the sale service.
type Metrics struct {
	SalesCompleted   prometheus.Counter
	ItemsRecorded    prometheus.Counter
	RevenueDue       prometheus.Counter
	TaxDue           prometheus.Counter
	ReceiptsRendered *prometheus.CounterVec
	ReceiptsMissing  prometheus.Counter
	StorageFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SalesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_completed_total",
			Help:      "Number of sales persisted.",
		}),
		ItemsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_items_recorded_total",
			Help:      "Number of line items persisted across all sales.",
		}),
		RevenueDue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total_due_dollars_total",
			Help:      "Sum of total_due over persisted sales.",
		}),
		TaxDue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_tax_due_dollars_total",
			Help:      "Sum of tax_due over persisted sales.",
		}),
		ReceiptsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_rendered_total",
			Help:      "Receipts served, by cache outcome.",
		}, []string{"cache"}),
		ReceiptsMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_not_found_total",
			Help:      "Receipt lookups that matched no sale.",
		}),
		StorageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Failed storage operations, by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SalesCompleted,
			m.ItemsRecorded,
			m.RevenueDue,
			m.TaxDue,
			m.ReceiptsRendered,
			m.ReceiptsMissing,
			m.StorageFailures,
		)
	}
	return m
}
