package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reference registry.
type Metrics struct {
	RegistrationsCreated  prometheus.Counter
	RegistrationsRejected prometheus.Counter
	DuplicatesDetected    *prometheus.CounterVec
	UniquenessChecks      *prometheus.CounterVec
}

// New creates registry metrics registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vehiclereg_registry_registrations_created_total",
			Help: "Registrations accepted into the registry",
		}),
		RegistrationsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "vehiclereg_registry_registrations_rejected_total",
			Help: "Registrations rejected by server-side validation",
		}),
		DuplicatesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_registry_duplicates_total",
			Help: "Duplicate contact identifiers detected, by field and path",
		}, []string{"field", "path"}),
		UniquenessChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vehiclereg_registry_uniqueness_checks_total",
			Help: "Uniqueness checks served, by result",
		}, []string{"result"}),
	}
}

// Counter reports how many registrations are stored.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// RegisterStored exposes the stored registration count as a gauge read on
// each scrape. A failed count reports -1.
func RegisterStored(reg prometheus.Registerer, store Counter, timeout time.Duration) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "vehiclereg_registry_registrations_stored",
		Help: "Registrations currently stored in the registry",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := store.Count(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	})
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.RegistrationsCreated.Inc()
}

func (m *Metrics) IncrementRejected() {
	if m == nil {
		return
	}
	m.RegistrationsRejected.Inc()
}

// IncrementDuplicate records a duplicate found by path ("check" or "submit").
func (m *Metrics) IncrementDuplicate(field, path string) {
	if m == nil {
		return
	}
	m.DuplicatesDetected.WithLabelValues(field, path).Inc()
}

func (m *Metrics) IncrementUniquenessCheck(unique bool) {
	if m == nil {
		return
	}
	result := "duplicate"
	if unique {
		result = "unique"
	}
	m.UniquenessChecks.WithLabelValues(result).Inc()
}
