package flows

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/MrEthical07/goUmroh/api"
)

// QuerySessionID is the deep-link parameter carrying the one-time login id.
const QuerySessionID = "session_id"

// ExchangeErrors carries host-level sentinel errors used by the exchange flow.
type ExchangeErrors struct {
	MalformedDeepLink error
	MissingSessionID  error
	NotReady          error
}

// ExchangeMetrics carries metric IDs used by the exchange flow.
type ExchangeMetrics struct {
	Success int
	Failure int
}

// ExchangeEvents carries audit event names used by the exchange flow.
type ExchangeEvents struct {
	Success string
	Failure string
}

// ExchangeDeps captures session-exchange flow dependencies.
type ExchangeDeps struct {
	Exchange  func(ctx context.Context, sessionID string) (*api.SessionExchange, error)
	SaveToken func(ctx context.Context, token string) error
	MetricInc func(int)
	EmitAudit AuditFunc
	Metrics   ExchangeMetrics
	Events    ExchangeEvents
	Errors    ExchangeErrors
}

// ExchangeFailureKind classifies exchange failures.
type ExchangeFailureKind int

const (
	ExchangeFailureNone ExchangeFailureKind = iota
	ExchangeFailureRemote
	ExchangeFailurePersist
)

// ExchangeResult is the outcome of trading a session id for a token.
type ExchangeResult struct {
	Failure ExchangeFailureKind
	Err     error
	Token   string
	User    *api.User
}

// ParseDeepLink extracts the session id from an inbound link. The id is read
// from the query string, or from the fragment when the provider placed it
// there.
func ParseDeepLink(raw string, errs ExchangeErrors) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.MalformedDeepLink
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Join(errs.MalformedDeepLink, err)
	}

	if id := strings.TrimSpace(u.Query().Get(QuerySessionID)); id != "" {
		return id, nil
	}
	if u.Fragment != "" {
		frag, err := url.ParseQuery(u.Fragment)
		if err == nil {
			if id := strings.TrimSpace(frag.Get(QuerySessionID)); id != "" {
				return id, nil
			}
		}
	}
	return "", errs.MissingSessionID
}

// RunExchange calls the backend exchange endpoint and persists the returned
// token. The token is persisted before the result is reported, so a
// successful result always has durable backing.
func RunExchange(ctx context.Context, sessionID string, deps ExchangeDeps) ExchangeResult {
	if deps.Exchange == nil || deps.SaveToken == nil {
		return ExchangeResult{Failure: ExchangeFailureRemote, Err: deps.Errors.NotReady}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}

	out, err := deps.Exchange(ctx, sessionID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", err, func() map[string]string {
			return map[string]string{"stage": "exchange", "status": statusLabel(err)}
		})
		return ExchangeResult{Failure: ExchangeFailureRemote, Err: err}
	}

	if err := deps.SaveToken(ctx, out.SessionToken); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, out.User.ID, err, func() map[string]string {
			return map[string]string{"stage": "persist"}
		})
		return ExchangeResult{Failure: ExchangeFailurePersist, Err: err}
	}

	user := out.User
	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, user.ID, nil, nil)
	return ExchangeResult{Token: out.SessionToken, User: &user}
}
