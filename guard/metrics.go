package guard

import "github.com/prometheus/client_golang/prometheus"

// metrics are per-guard, labeled with the protected route via const labels.
// Each guard defaults to its own registry; pass WithRegisterer to expose
// them on a shared one.
type metrics struct {
	signinAttempts *prometheus.CounterVec
	sessionChecks  *prometheus.CounterVec
	sessionsIssued prometheus.Counter
	sessionsActive prometheus.GaugeFunc
}

const (
	outcomeSuccess     = "success"
	outcomeMalformed   = "malformed"
	outcomeInvalid     = "invalid_credentials"
	outcomeExpired     = "expired"
	outcomeLockedOut   = "locked_out"
	outcomeNoSession   = "no_session"
	outcomeServerError = "server_error"
)

func newMetrics(reg prometheus.Registerer, route string, activeFn func() float64) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	constLabels := prometheus.Labels{"route": route}

	m := &metrics{
		signinAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "authgate",
			Name:        "signin_attempts_total",
			Help:        "Sign-in attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		sessionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "authgate",
			Name:        "session_checks_total",
			Help:        "Session cookie validations on the protected route by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "authgate",
			Name:        "sessions_issued_total",
			Help:        "Sessions issued after successful verification.",
			ConstLabels: constLabels,
		}),
		sessionsActive: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "authgate",
			Name:        "sessions_active",
			Help:        "Sessions currently valid for this route.",
			ConstLabels: constLabels,
		}, activeFn),
	}

	reg.MustRegister(m.signinAttempts, m.sessionChecks, m.sessionsIssued, m.sessionsActive)
	return m
}
