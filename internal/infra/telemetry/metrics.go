package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsOptions configures collector registration.
type MetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// Metrics exposes Prometheus collectors for the session and notification
// sync core.
type Metrics struct {
	sessionChecks    *prometheus.CounterVec
	checksSuppressed prometheus.Counter
	polls            *prometheus.CounterVec
	pollsSuppressed  prometheus.Counter
	alerts           *prometheus.CounterVec
	unread           prometheus.Gauge

	registry prometheus.Registerer
}

// NewMetrics constructs and registers the core's collectors with the
// provided registerer.
func NewMetrics(opts MetricsOptions) (*Metrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "riskdash"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	sessionChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of completed session checks partitioned by outcome.",
	}, []string{"result"})

	checksSuppressed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_suppressed_total",
		Help:      "Session check calls skipped because a check was already in flight.",
	})

	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_polls_total",
		Help:      "Total number of completed notification polls partitioned by outcome.",
	}, []string{"result"})

	pollsSuppressed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_polls_suppressed_total",
		Help:      "Notification poll calls skipped because a poll was already in flight.",
	})

	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_alerts_total",
		Help:      "Transient alerts raised for newly observed notifications partitioned by priority.",
	}, []string{"priority"})

	unread := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_unread",
		Help:      "Current number of unread notifications.",
	})

	m := &Metrics{registry: reg}

	var err error
	if m.sessionChecks, err = registerCounterVec(reg, sessionChecks); err != nil {
		return nil, err
	}
	if m.checksSuppressed, err = registerCounter(reg, checksSuppressed); err != nil {
		return nil, err
	}
	if m.polls, err = registerCounterVec(reg, polls); err != nil {
		return nil, err
	}
	if m.pollsSuppressed, err = registerCounter(reg, pollsSuppressed); err != nil {
		return nil, err
	}
	if m.alerts, err = registerCounterVec(reg, alerts); err != nil {
		return nil, err
	}
	if err := reg.Register(unread); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Gauge); ok {
				unread = existing
			} else {
				return nil, fmt.Errorf("existing unread collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register unread collector: %w", err)
		}
	}
	m.unread = unread

	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// ObserveSessionCheck records a completed session check outcome
// ("authenticated" or "anonymous").
func (m *Metrics) ObserveSessionCheck(result string) {
	if m == nil {
		return
	}
	m.sessionChecks.WithLabelValues(result).Inc()
}

// ObserveSessionCheckSuppressed records a check skipped by the in-flight latch.
func (m *Metrics) ObserveSessionCheckSuppressed() {
	if m == nil {
		return
	}
	m.checksSuppressed.Inc()
}

// ObservePoll records a completed poll outcome ("success" or "failure").
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}

// ObservePollSuppressed records a poll skipped by the in-flight latch.
func (m *Metrics) ObservePollSuppressed() {
	if m == nil {
		return
	}
	m.pollsSuppressed.Inc()
}

// ObserveAlert records a raised alert by priority.
func (m *Metrics) ObserveAlert(priority string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(priority).Inc()
}

// SetUnread updates the unread-notifications gauge.
func (m *Metrics) SetUnread(count int) {
	if m == nil {
		return
	}
	m.unread.Set(float64(count))
}

// Handler exposes the default Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
