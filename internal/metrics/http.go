package metrics

import (
	"net/http"
	"strings"
	"time"
)

// Request outcomes for the board API, following how handlers map errors to status codes
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeUpstream = "upstream_error"
	OutcomeFailed   = "failed"
)

// unmatchedRoute labels requests that hit no board route
const unmatchedRoute = "unmatched"

// RecordBoardRequest records one served board API call under its route pattern
func (m *Metrics) RecordBoardRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.safeExecute("RecordBoardRequest", func() {
		m.BoardRequestsTotal.WithLabelValues(method, route, requestOutcome(statusCode)).Inc()
		m.BoardRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	})
}

// requestOutcome folds a response status into what it means for a board user.
// CRM failures surface as 502 and are kept apart from local errors.
func requestOutcome(code int) string {
	switch {
	case code >= 200 && code < 400:
		return OutcomeOK
	case code == http.StatusConflict:
		return OutcomeConflict
	case code >= 400 && code < 500:
		return OutcomeRejected
	case code == http.StatusBadGateway || code == http.StatusGatewayTimeout:
		return OutcomeUpstream
	default:
		return OutcomeFailed
	}
}

// RouteLabel strips the API base path from a gin route pattern so the same
// board route carries one label whatever prefix it is mounted under.
func RouteLabel(basePath, pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	base := strings.TrimSuffix(basePath, "/")
	if base != "" && strings.HasPrefix(pattern, base) {
		if rest := pattern[len(base):]; rest == "" || rest[0] == '/' {
			pattern = rest
		}
	}
	if pattern == "" {
		return "/"
	}
	return pattern
}

// IsOperationalRoute reports routes that scrape or probe the service
// rather than drive the board
func IsOperationalRoute(route string) bool {
	return route == "/metrics" || route == "/health"
}
