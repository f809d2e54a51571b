package flows

import (
	"context"

	"github.com/MrEthical07/goUmroh/api"
)

// Deps groups flow dependency sets. The root client builds this once and
// delegates each session operation to the matching flow.
type Deps struct {
	Bootstrap BootstrapDeps
	Login     LoginIntentDeps
	Exchange  ExchangeDeps
	Logout    LogoutDeps
}

// AuditFunc emits one audit event. metadata may be nil.
type AuditFunc func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

// FetchUserFunc resolves the identity behind a token.
type FetchUserFunc func(ctx context.Context, token string) (*api.User, error)

func noopMetric(int) {}

func noopAudit(context.Context, string, bool, string, error, func() map[string]string) {}
