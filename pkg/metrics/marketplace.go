package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	BargainKindRegular  = "regular"
	BargainKindBestDeal = "best_deal"
)

// MarketplaceMetrics counts negotiation and delivery events.
type MarketplaceMetrics struct {
	bargainsSubmitted *prometheus.CounterVec
	bargainsAccepted  prometheus.Counter
	ordersCreated     *prometheus.CounterVec
	driversAssigned   prometheus.Counter
}

// NewMarketplaceMetrics registers the counters. A nil registerer yields a no-op recorder.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	m := &MarketplaceMetrics{
		bargainsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bargains_submitted_total",
			Help:      "Bargain requests submitted, by kind.",
		}, []string{"kind"}),
		bargainsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bargains_accepted_total",
			Help:      "Bargain requests that transitioned to accepted.",
		}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_orders_created_total",
			Help:      "Delivery orders created, by option.",
		}, []string{"option"}),
		driversAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_drivers_assigned_total",
			Help:      "Delivery orders claimed by a partner.",
		}),
	}
	reg.MustRegister(m.bargainsSubmitted, m.bargainsAccepted, m.ordersCreated, m.driversAssigned)
	return m
}

// BargainSubmitted counts a submission; a zero desired price is the best-deal sentinel.
func (m *MarketplaceMetrics) BargainSubmitted(desiredPrice int64) {
	if m == nil || m.bargainsSubmitted == nil {
		return
	}
	kind := BargainKindRegular
	if desiredPrice == 0 {
		kind = BargainKindBestDeal
	}
	m.bargainsSubmitted.WithLabelValues(kind).Inc()
}

func (m *MarketplaceMetrics) BargainAccepted() {
	if m == nil || m.bargainsAccepted == nil {
		return
	}
	m.bargainsAccepted.Inc()
}

func (m *MarketplaceMetrics) DeliveryOrderCreated(option string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(jobLabel(option)).Inc()
}

func (m *MarketplaceMetrics) DriverAssigned() {
	if m == nil || m.driversAssigned == nil {
		return
	}
	m.driversAssigned.Inc()
}
