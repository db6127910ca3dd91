// Package metrics defines the custom Prometheus metrics for TasteTrail. It is
// the single source of truth for metric names, labels and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

const namespace = "tastetrail"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and signup attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success", "rejected" (bad input or credentials) or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and signup attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// TokenRejectionsTotal counts requests refused by the auth middleware.
// Label:
//   - reason: "missing", "expired" or "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"reason"},
)

// TokensRevokedTotal counts tokens revoked through logout.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of tokens revoked on logout.",
	},
)

// RoleDenialsTotal counts authenticated requests refused for lack of role.
// Label:
//   - role: the role the caller held
var RoleDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_denials_total",
		Help:      "Total number of requests denied by role checks.",
	},
	[]string{"role"},
)

// ── Navigation metrics ────────────────────────────────────────────────────────

// NavigationDecisionsTotal counts guard decisions taken by the navigator.
// Labels:
//   - decision: "allow", "redirect_login", "redirect_forbidden" or "pending"
//   - view: the view shown as a result
var NavigationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "navigation_decisions_total",
		Help:      "Total number of navigation guard decisions, by outcome and view.",
	},
	[]string{"decision", "view"},
)

// DecisionRecorder feeds navigator decisions into NavigationDecisionsTotal.
type DecisionRecorder struct{}

func (DecisionRecorder) ObserveDecision(d domain.Decision, view domain.View) {
	NavigationDecisionsTotal.WithLabelValues(d.Kind.String(), string(view)).Inc()
}
