package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bursar/pkg/token"
)

// Metrics provides observability for the institution module.
type Metrics struct {
	InstitutionsCreated prometheus.Counter
	MembersAdded        prometheus.Counter
	MembersRemoved      prometheus.Counter
	LedgerMovements     *prometheus.CounterVec
	LedgerVolume        *prometheus.CounterVec
	FeePayments         *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
}

// New registers the institution metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InstitutionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bursar_institutions_created_total",
			Help: "Total number of institutions created",
		}),
		MembersAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "bursar_members_added_total",
			Help: "Total number of members added",
		}),
		MembersRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "bursar_members_removed_total",
			Help: "Total number of members removed",
		}),
		LedgerMovements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bursar_ledger_movements_total",
			Help: "Committed balance movements by operation",
		}, []string{"operation"}),
		LedgerVolume: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bursar_ledger_volume_total",
			Help: "Token amount moved by operation",
		}, []string{"operation"}),
		FeePayments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bursar_fee_payments_total",
			Help: "Fee payment attempts by outcome",
		}, []string{"outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bursar_operation_duration_seconds",
			Help:    "Duration of registry and ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// ObserveMovement records a committed balance movement.
func (m *Metrics) ObserveMovement(operation string, amount token.Amount) {
	m.LedgerMovements.WithLabelValues(operation).Inc()
	m.LedgerVolume.WithLabelValues(operation).Add(float64(amount))
}

// ObserveFeePayment records a fee payment outcome ("paid" or an error code).
func (m *Metrics) ObserveFeePayment(outcome string) {
	m.FeePayments.WithLabelValues(outcome).Inc()
}

// ObserveDuration records how long an operation took.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDuration(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
