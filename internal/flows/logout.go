package flows

import (
	"context"
)

// LogoutMetrics carries metric IDs used by the logout flow.
type LogoutMetrics struct {
	Logout        int
	RemoteFailure int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout string
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	RemoteLogout func(ctx context.Context, token string) error
	ClearToken   func(ctx context.Context) error
	MetricInc    func(int)
	EmitAudit    AuditFunc
	Metrics      LogoutMetrics
	Events       LogoutEvents
	NotReady     error
}

// LogoutResult reports both halves of a logout. RemoteErr is informational;
// ClearErr means the credential may still be on disk.
type LogoutResult struct {
	RemoteCalled bool
	RemoteErr    error
	ClearErr     error
}

// RunLogout notifies the backend when a token is held, then clears the
// persisted credential regardless of the remote outcome.
func RunLogout(ctx context.Context, token, userID string, deps LogoutDeps) LogoutResult {
	if deps.ClearToken == nil {
		return LogoutResult{ClearErr: deps.NotReady}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}

	var res LogoutResult
	if token != "" && deps.RemoteLogout != nil {
		res.RemoteCalled = true
		res.RemoteErr = deps.RemoteLogout(ctx, token)
		if res.RemoteErr != nil {
			deps.MetricInc(deps.Metrics.RemoteFailure)
		}
	}

	res.ClearErr = deps.ClearToken(ctx)
	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, res.ClearErr == nil, userID, res.ClearErr, func() map[string]string {
		if res.RemoteErr != nil {
			return map[string]string{"remote": "failed"}
		}
		if !res.RemoteCalled {
			return map[string]string{"remote": "skipped"}
		}
		return map[string]string{"remote": "ok"}
	})
	return res
}
