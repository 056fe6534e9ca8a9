package session

import "github.com/prometheus/client_golang/prometheus"

// 校验结果标签
const (
	resultOK            = "ok"
	resultInvalidToken  = "invalid_token"
	resultExpiredToken  = "expired_token"
	resultNoSession     = "no_active_session"
	resultNotFound      = "session_not_found"
	resultStale         = "stale_session"
	resultStoreError    = "store_error"
	resultBadCredential = "invalid_credentials"
	resultError         = "error"
)

// Metrics 会话指标，nil 时所有方法为空操作
type Metrics struct {
	issued    *prometheus.CounterVec
	validated *prometheus.CounterVec
	revoked   prometheus.Counter
}

// NewMetrics 创建并注册会话指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authsvc",
			Subsystem: "session",
			Name:      "issue_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		validated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authsvc",
			Subsystem: "session",
			Name:      "validate_total",
			Help:      "Request validations by result.",
		}, []string{"result"}),
		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authsvc",
			Subsystem: "session",
			Name:      "revoke_total",
			Help:      "Sessions revoked by logout.",
		}),
	}
	reg.MustRegister(m.issued, m.validated, m.revoked)
	return m
}

func (m *Metrics) observeIssue(result string) {
	if m != nil {
		m.issued.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) observeValidate(result string) {
	if m != nil {
		m.validated.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) observeRevoke() {
	if m != nil {
		m.revoked.Inc()
	}
}
