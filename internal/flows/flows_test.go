package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errMalformed = errors.New("malformed")
	errMissing   = errors.New("missing")
	errNotReady  = errors.New("not ready")
)

var testErrs = ExchangeErrors{MalformedDeepLink: errMalformed, MissingSessionID: errMissing, NotReady: errNotReady}

type counter map[int]int

func (c counter) inc(id int) { c[id]++ }

func TestParseDeepLink(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		err  error
	}{
		{name: "custom scheme", raw: "umroh://auth?session_id=abc", want: "abc"},
		{name: "https callback", raw: "http://127.0.0.1:8765/callback?install_id=x&session_id=s-1", want: "s-1"},
		{name: "fragment", raw: "umroh://auth#session_id=frag", want: "frag"},
		{name: "empty value", raw: "umroh://auth?session_id=", err: errMissing},
		{name: "no param", raw: "umroh://auth?foo=bar", err: errMissing},
		{name: "blank", raw: "   ", err: errMalformed},
		{name: "unparsable", raw: "http://[::1", err: errMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDeepLink(tc.raw, testErrs)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRunLoginIntent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	res, err := RunLoginIntent(LoginIntentDeps{
		AuthURL:     "https://auth.example.com/",
		CallbackURL: "umroh://auth",
		InstallID:   "1111",
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	assert.Equal(t, "umroh://auth?install_id=1111", res.CallbackURL)
	assert.Equal(t, "https://auth.example.com/?redirect=umroh%3A%2F%2Fauth%3Finstall_id%3D1111", res.AuthorizationURL)
	assert.Equal(t, now, res.StartedAt)
}

func TestRunLoginIntentRejectsBadInput(t *testing.T) {
	_, err := RunLoginIntent(LoginIntentDeps{AuthURL: "https://auth.example.com"})
	require.Error(t, err)

	_, err = RunLoginIntent(LoginIntentDeps{CallbackURL: "umroh://auth"})
	require.Error(t, err)

	_, err = RunLoginIntent(LoginIntentDeps{AuthURL: "https://auth.example.com", CallbackURL: "no-scheme"})
	require.Error(t, err)
}

func TestRunBootstrapNoCredentialSkipsBackend(t *testing.T) {
	called := false
	res := RunBootstrap(context.Background(), BootstrapDeps{
		LoadToken:  func(context.Context) (string, error) { return "", nil },
		ClearToken: func(context.Context) error { return nil },
		FetchUser: func(context.Context, string) (*api.User, error) {
			called = true
			return nil, nil
		},
	})
	assert.Equal(t, BootstrapFailureNoCredential, res.Failure)
	assert.False(t, called)
}

func TestRunBootstrapClearsRejectedCredential(t *testing.T) {
	metrics := counter{}
	cleared := false
	res := RunBootstrap(context.Background(), BootstrapDeps{
		LoadToken:  func(context.Context) (string, error) { return "stale", nil },
		ClearToken: func(context.Context) error { cleared = true; return nil },
		FetchUser: func(context.Context, string) (*api.User, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized}
		},
		MetricInc: metrics.inc,
		Metrics:   BootstrapMetrics{Restored: 1, Rejected: 2},
	})
	assert.Equal(t, BootstrapFailureVerify, res.Failure)
	assert.True(t, cleared)
	assert.True(t, api.IsUnauthorized(res.Err))
	assert.Equal(t, 1, metrics[2])
	assert.Zero(t, metrics[1])
}

func TestRunBootstrapRestores(t *testing.T) {
	var audited []string
	res := RunBootstrap(context.Background(), BootstrapDeps{
		LoadToken:  func(context.Context) (string, error) { return "good", nil },
		ClearToken: func(context.Context) error { t.Fatal("unexpected clear"); return nil },
		FetchUser: func(_ context.Context, token string) (*api.User, error) {
			assert.Equal(t, "good", token)
			return &api.User{ID: "u1"}, nil
		},
		EmitAudit: func(_ context.Context, event string, success bool, userID string, _ error, _ func() map[string]string) {
			audited = append(audited, event)
			assert.True(t, success)
			assert.Equal(t, "u1", userID)
		},
		Events: BootstrapEvents{Restored: "restored"},
	})
	assert.Equal(t, BootstrapFailureNone, res.Failure)
	assert.Equal(t, "good", res.Token)
	assert.Equal(t, []string{"restored"}, audited)
}

func TestRunBootstrapLoadErrorLeavesCredential(t *testing.T) {
	boom := errors.New("redis down")
	res := RunBootstrap(context.Background(), BootstrapDeps{
		LoadToken:  func(context.Context) (string, error) { return "", boom },
		ClearToken: func(context.Context) error { t.Fatal("unexpected clear"); return nil },
		FetchUser:  func(context.Context, string) (*api.User, error) { t.Fatal("unexpected fetch"); return nil, nil },
	})
	assert.Equal(t, BootstrapFailureLoad, res.Failure)
	assert.ErrorIs(t, res.Err, boom)
}

func TestRunBootstrapClearsCorruptCredential(t *testing.T) {
	errCorrupt := errors.New("corrupt")
	metrics := counter{}
	cleared := false
	res := RunBootstrap(context.Background(), BootstrapDeps{
		LoadToken: func(context.Context) (string, error) {
			return "", fmt.Errorf("%w: bad version", errCorrupt)
		},
		ClearToken: func(context.Context) error { cleared = true; return nil },
		FetchUser:  func(context.Context, string) (*api.User, error) { t.Fatal("unexpected fetch"); return nil, nil },
		MetricInc:  metrics.inc,
		Metrics:    BootstrapMetrics{Restored: 1, Rejected: 2},
		Corrupt:    errCorrupt,
	})
	assert.Equal(t, BootstrapFailureCorrupt, res.Failure)
	assert.True(t, cleared)
	assert.ErrorIs(t, res.Err, errCorrupt)
	assert.Equal(t, 1, metrics[2])
}

func TestRunBootstrapNotReady(t *testing.T) {
	res := RunBootstrap(context.Background(), BootstrapDeps{NotReady: errNotReady})
	assert.ErrorIs(t, res.Err, errNotReady)
}

func TestRunExchangePersistsBeforeSuccess(t *testing.T) {
	var saved string
	res := RunExchange(context.Background(), "sid", ExchangeDeps{
		Exchange: func(_ context.Context, id string) (*api.SessionExchange, error) {
			assert.Equal(t, "sid", id)
			return &api.SessionExchange{User: api.User{ID: "u1"}, SessionToken: "tok"}, nil
		},
		SaveToken: func(_ context.Context, token string) error { saved = token; return nil },
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "tok", saved)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func TestRunExchangeRemoteFailureDoesNotPersist(t *testing.T) {
	metrics := counter{}
	res := RunExchange(context.Background(), "sid", ExchangeDeps{
		Exchange: func(context.Context, string) (*api.SessionExchange, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized}
		},
		SaveToken: func(context.Context, string) error { t.Fatal("unexpected save"); return nil },
		MetricInc: metrics.inc,
		Metrics:   ExchangeMetrics{Success: 1, Failure: 2},
	})
	assert.Equal(t, ExchangeFailureRemote, res.Failure)
	assert.Nil(t, res.User)
	assert.Equal(t, 1, metrics[2])
}

func TestRunExchangePersistFailure(t *testing.T) {
	boom := errors.New("disk full")
	res := RunExchange(context.Background(), "sid", ExchangeDeps{
		Exchange: func(context.Context, string) (*api.SessionExchange, error) {
			return &api.SessionExchange{User: api.User{ID: "u1"}, SessionToken: "tok"}, nil
		},
		SaveToken: func(context.Context, string) error { return boom },
	})
	assert.Equal(t, ExchangeFailurePersist, res.Failure)
	assert.ErrorIs(t, res.Err, boom)
	assert.Empty(t, res.Token)
}

func TestRunLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	metrics := counter{}
	cleared := false
	res := RunLogout(context.Background(), "tok", "u1", LogoutDeps{
		RemoteLogout: func(context.Context, string) error { return api.ErrTransport },
		ClearToken:   func(context.Context) error { cleared = true; return nil },
		MetricInc:    metrics.inc,
		Metrics:      LogoutMetrics{Logout: 1, RemoteFailure: 2},
	})
	assert.True(t, cleared)
	assert.True(t, res.RemoteCalled)
	assert.ErrorIs(t, res.RemoteErr, api.ErrTransport)
	assert.NoError(t, res.ClearErr)
	assert.Equal(t, 1, metrics[1])
	assert.Equal(t, 1, metrics[2])
}

func TestRunLogoutWithoutTokenSkipsRemote(t *testing.T) {
	res := RunLogout(context.Background(), "", "", LogoutDeps{
		RemoteLogout: func(context.Context, string) error { t.Fatal("unexpected remote call"); return nil },
		ClearToken:   func(context.Context) error { return nil },
	})
	assert.False(t, res.RemoteCalled)
}
