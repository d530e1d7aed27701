package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics records counters for the invoice pipeline.
type BillingMetrics struct {
	invoicesSaved    *prometheus.CounterVec
	saveDuration     *prometheus.HistogramVec
	approvalRequests *prometheus.CounterVec
	stockReconciles  prometheus.Counter
	stockTrims       prometheus.Counter
}

// NewBillingMetrics registers the billing metrics on the provided registerer.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	invoicesSaved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_saved_total",
		Help: "Invoices persisted, labeled by payment method.",
	}, []string{"payment_method"})
	saveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoice_save_duration_seconds",
		Help:    "Duration of invoice save transactions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	approvalRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_approval_requests_total",
		Help: "Discount approval requests, labeled by resolution.",
	}, []string{"status"})
	stockReconciles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_reconcile_runs_total",
		Help: "Stock reconciliation passes triggered by stream events.",
	})
	stockTrims := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_reconcile_trims_total",
		Help: "Cart lines capped or dropped by stock reconciliation.",
	})
	reg.MustRegister(invoicesSaved, saveDuration, approvalRequests, stockReconciles, stockTrims)
	return &BillingMetrics{
		invoicesSaved:    invoicesSaved,
		saveDuration:     saveDuration,
		approvalRequests: approvalRequests,
		stockReconciles:  stockReconciles,
		stockTrims:       stockTrims,
	}
}

// IncInvoiceSaved increments the saved-invoice counter.
func (b *BillingMetrics) IncInvoiceSaved(paymentMethod string) {
	if b == nil || b.invoicesSaved == nil {
		return
	}
	b.invoicesSaved.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// ObserveSaveDuration records the elapsed time of one save attempt.
func (b *BillingMetrics) ObserveSaveDuration(outcome string, duration time.Duration) {
	if b == nil || b.saveDuration == nil {
		return
	}
	b.saveDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncApprovalRequest counts an approval request sighting in the given status.
func (b *BillingMetrics) IncApprovalRequest(status string) {
	if b == nil || b.approvalRequests == nil {
		return
	}
	b.approvalRequests.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncReconcileRun counts one reconciliation pass.
func (b *BillingMetrics) IncReconcileRun() {
	if b == nil || b.stockReconciles == nil {
		return
	}
	b.stockReconciles.Inc()
}

// AddReconcileTrims counts lines capped or dropped during a pass.
func (b *BillingMetrics) AddReconcileTrims(n int) {
	if b == nil || b.stockTrims == nil || n <= 0 {
		return
	}
	b.stockTrims.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
