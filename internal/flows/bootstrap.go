package flows

import (
	"context"
	"errors"
	"strconv"

	"github.com/MrEthical07/goUmroh/api"
)

// BootstrapFailureKind classifies bootstrap outcomes that did not restore a
// session.
type BootstrapFailureKind int

const (
	BootstrapFailureNone BootstrapFailureKind = iota
	BootstrapFailureNoCredential
	BootstrapFailureLoad
	BootstrapFailureCorrupt
	BootstrapFailureVerify
)

// BootstrapMetrics carries metric IDs used by the bootstrap flow.
type BootstrapMetrics struct {
	Restored int
	Rejected int
}

// BootstrapEvents carries audit event names used by the bootstrap flow.
type BootstrapEvents struct {
	Restored string
	Rejected string
}

// BootstrapDeps captures bootstrap flow dependencies.
type BootstrapDeps struct {
	LoadToken  func(context.Context) (string, error)
	ClearToken func(context.Context) error
	FetchUser  FetchUserFunc
	MetricInc  func(int)
	EmitAudit  AuditFunc
	Metrics    BootstrapMetrics
	Events     BootstrapEvents
	NotReady   error
	// Corrupt marks a load error for a record that exists but cannot be
	// decoded. Such a record is cleared; other load errors leave it alone.
	Corrupt    error
}

// BootstrapResult is the outcome of a startup verification.
type BootstrapResult struct {
	Failure BootstrapFailureKind
	Token   string
	User    *api.User
	// Err is the load or verification error, if any.
	Err error
	// ClearErr is set when a rejected credential could not be removed.
	ClearErr error
}

// RunBootstrap loads the persisted credential and verifies it against the
// backend. A credential that fails verification for any reason is cleared, as
// is one that cannot be decoded.
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	if deps.LoadToken == nil || deps.ClearToken == nil || deps.FetchUser == nil {
		return BootstrapResult{Failure: BootstrapFailureLoad, Err: deps.NotReady}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}

	token, err := deps.LoadToken(ctx)
	if err != nil {
		if deps.Corrupt != nil && errors.Is(err, deps.Corrupt) {
			deps.MetricInc(deps.Metrics.Rejected)
			clearErr := deps.ClearToken(ctx)
			return BootstrapResult{Failure: BootstrapFailureCorrupt, Err: err, ClearErr: clearErr}
		}
		return BootstrapResult{Failure: BootstrapFailureLoad, Err: err}
	}
	if token == "" {
		return BootstrapResult{Failure: BootstrapFailureNoCredential}
	}

	user, err := deps.FetchUser(ctx, token)
	if err == nil && user == nil {
		err = errors.New("empty identity")
	}
	if err != nil {
		deps.MetricInc(deps.Metrics.Rejected)
		clearErr := deps.ClearToken(ctx)
		deps.EmitAudit(ctx, deps.Events.Rejected, false, "", err, func() map[string]string {
			return map[string]string{"status": statusLabel(err)}
		})
		return BootstrapResult{Failure: BootstrapFailureVerify, Err: err, ClearErr: clearErr}
	}

	deps.MetricInc(deps.Metrics.Restored)
	deps.EmitAudit(ctx, deps.Events.Restored, true, user.ID, nil, nil)
	return BootstrapResult{Token: token, User: user}
}

func statusLabel(err error) string {
	switch code := api.StatusCode(err); {
	case code > 0:
		return strconv.Itoa(code)
	case errors.Is(err, api.ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
