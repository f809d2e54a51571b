package goUmroh

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/MrEthical07/goUmroh/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeBackend is an httptest server speaking the /api auth contract.
type fakeBackend struct {
	srv *httptest.Server

	mu         sync.Mutex
	tokens     map[string]api.User // accepted bearer tokens
	sessions   map[string]api.SessionExchange
	failLogout bool

	exchangeCalls atomic.Int32
	logoutCalls   atomic.Int32
	lastAuth      atomic.Value // string
	exchangeGate  chan struct{}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		tokens:   map[string]api.User{},
		sessions: map[string]api.SessionExchange{},
	}
	fb.lastAuth.Store("")
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) accept(token string, u api.User) {
	fb.mu.Lock()
	fb.tokens[token] = u
	fb.mu.Unlock()
}

func (fb *fakeBackend) offer(sessionID string, ex api.SessionExchange) {
	fb.mu.Lock()
	fb.sessions[sessionID] = ex
	fb.mu.Unlock()
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.lastAuth.Store(r.Header.Get("Authorization"))
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/session":
		fb.exchangeCalls.Add(1)
		if fb.exchangeGate != nil {
			<-fb.exchangeGate
		}
		fb.mu.Lock()
		ex, ok := fb.sessions[r.Header.Get(api.HeaderSessionID)]
		if ok {
			fb.tokens[ex.SessionToken] = ex.User
		}
		fb.mu.Unlock()
		if !ok {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid session ID"})
			return
		}
		writeTestJSON(w, http.StatusOK, ex)
	case "GET /api/auth/me":
		fb.mu.Lock()
		u, ok := fb.tokens[token]
		fb.mu.Unlock()
		if !ok {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		writeTestJSON(w, http.StatusOK, u)
	case "POST /api/auth/logout":
		fb.logoutCalls.Add(1)
		if fb.failLogout {
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					_ = conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fb.mu.Lock()
		delete(fb.tokens, token)
		fb.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	case "GET /api/packages":
		writeTestJSON(w, http.StatusOK, []api.Package{{ID: "p1", Name: "Umroh Reguler", Price: 27500000, PackageType: api.PackageUmrah}})
	default:
		writeTestJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testClientOpts struct {
	store   session.Store
	opener  URLOpener
	logger  *zap.Logger
	sink    AuditSink
	audit   bool
	backend AuthBackend
}

func newTestClient(t *testing.T, backendURL string, opts testClientOpts) *Client {
	t.Helper()
	if opts.store == nil {
		opts.store = session.NewMemoryStore()
	}
	cfg := DefaultConfig()
	cfg.API.BackendURL = backendURL
	cfg.API.Timeout = 2 * time.Second
	cfg.Auth.AuthURL = "https://auth.example.com"
	cfg.Auth.CallbackURL = "app://callback"
	cfg.Auth.InstallID = "install-1"
	cfg.Audit.Enabled = opts.audit
	cfg.Audit.DropIfFull = false

	b := New().
		WithConfig(cfg).
		WithTokenStore(opts.store).
		WithURLOpener(opts.opener).
		WithLogger(opts.logger).
		WithAuditSink(opts.sink)
	if opts.backend != nil {
		b = b.WithAuthBackend(opts.backend)
	}
	c, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func persistedToken(t *testing.T, store session.Store) string {
	t.Helper()
	token, err := session.LoadToken(context.Background(), store)
	require.NoError(t, err)
	return token
}

func seedToken(t *testing.T, store session.Store, token string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), &session.Credential{Token: token}))
}

func TestBootstrapAcceptedTokenAuthenticates(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("abc123", api.User{ID: "u1", Email: "a@b.com", Name: "A"})

	store := session.NewMemoryStore()
	seedToken(t, store, "abc123")
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})

	assert.Equal(t, StateBootstrapping, c.State())
	require.NoError(t, c.Bootstrap(context.Background()))

	assert.Equal(t, StateAuthenticated, c.State())
	u, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, api.User{ID: "u1", Email: "a@b.com", Name: "A"}, u)
	assert.Equal(t, "Bearer abc123", fb.lastAuth.Load())
	assert.Equal(t, "abc123", persistedToken(t, store))
	assert.Equal(t, uint64(1), c.MetricsSnapshot().Counters[MetricSessionRestored])
}

func TestBootstrapRejectedTokenIsCleared(t *testing.T) {
	fb := newFakeBackend(t)
	store := session.NewMemoryStore()
	seedToken(t, store, "expired")

	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store, logger: zap.New(core)})

	require.NoError(t, c.Bootstrap(context.Background()))

	assert.Equal(t, StateUnauthenticated, c.State())
	_, ok := c.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, persistedToken(t, store))

	warned := logs.FilterMessage("persisted session rejected").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Equal(t, "bootstrap", warned[0].ContextMap()["operation"])
	assert.Equal(t, "session", warned[0].ContextMap()["component"])
}

func TestBootstrapTransportFailureClearsCredential(t *testing.T) {
	fb := newFakeBackend(t)
	backendURL := fb.srv.URL
	fb.srv.Close()

	store := session.NewMemoryStore()
	seedToken(t, store, "abc123")
	c := newTestClient(t, backendURL, testClientOpts{store: store})

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, persistedToken(t, store))
}

func TestBootstrapClearsUnreadableCredential(t *testing.T) {
	fb := newFakeBackend(t)
	store := session.NewFileStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o600))

	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store, logger: zap.New(core)})
	require.NoError(t, c.Bootstrap(context.Background()))

	assert.Equal(t, StateUnauthenticated, c.State())
	_, err := os.Stat(store.Path())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "unreadable record should be removed, got %v", err)
	assert.Equal(t, 1, logs.FilterMessage("persisted credential unreadable").Len())
	assert.Equal(t, uint64(1), c.MetricsSnapshot().Counters[MetricSessionRejected])
}

func TestBootstrapWithoutCredentialSkipsBackend(t *testing.T) {
	fb := newFakeBackend(t)
	c := newTestClient(t, fb.srv.URL, testClientOpts{})

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Equal(t, "", fb.lastAuth.Load())
}

func TestBootstrapNilClient(t *testing.T) {
	var c *Client
	assert.ErrorIs(t, c.Bootstrap(context.Background()), ErrClientNotReady)
}

func TestDeepLinkExchangeAuthenticates(t *testing.T) {
	fb := newFakeBackend(t)
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2", Email: "b@c.com", Name: "B"}, SessionToken: "tok2"})

	store := session.NewMemoryStore()
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))

	c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok2", persistedToken(t, store))
	u, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, "", fb.lastAuth.Load(), "exchange must not carry a bearer token")
}

func TestDeepLinkWithoutSessionIDLeavesStateUnchanged(t *testing.T) {
	fb := newFakeBackend(t)
	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, fb.srv.URL, testClientOpts{logger: zap.New(core)})
	require.NoError(t, c.Bootstrap(context.Background()))

	c.HandleDeepLink(context.Background(), "app://callback?foo=bar")
	c.HandleDeepLink(context.Background(), "")

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Zero(t, fb.exchangeCalls.Load())
	assert.Equal(t, 2, logs.FilterMessage("deep link ignored").Len())
	assert.Equal(t, uint64(2), c.MetricsSnapshot().Counters[MetricDeepLinkMalformed])
}

func TestRejectedDeepLinkKeepsPriorSession(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("abc123", api.User{ID: "u1"})

	store := session.NewMemoryStore()
	seedToken(t, store, "abc123")
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))
	require.Equal(t, StateAuthenticated, c.State())

	c.HandleDeepLink(context.Background(), "app://callback?session_id=bogus")

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "abc123", persistedToken(t, store))
	u, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, uint64(1), c.MetricsSnapshot().Counters[MetricExchangeFailure])
}

func TestRejectedDeepLinkFromUnauthenticated(t *testing.T) {
	fb := newFakeBackend(t)
	store := session.NewMemoryStore()
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))

	changes, cancel := c.Subscribe(8)
	defer cancel()

	c.HandleDeepLink(context.Background(), "app://callback?session_id=bogus")

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, persistedToken(t, store))

	first := <-changes
	assert.Equal(t, StateChange{From: StateUnauthenticated, To: StateAwaitingExchange}, first)
	second := <-changes
	assert.Equal(t, StateChange{From: StateAwaitingExchange, To: StateUnauthenticated}, second)
}

func TestDeepLinkWhileAuthenticatedOverwritesCredential(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("old", api.User{ID: "u1"})
	fb.offer("S2", api.SessionExchange{User: api.User{ID: "u9"}, SessionToken: "new"})

	store := session.NewMemoryStore()
	seedToken(t, store, "old")
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))

	c.HandleDeepLink(context.Background(), "app://callback?session_id=S2")

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "new", persistedToken(t, store))
	u, _ := c.CurrentUser()
	assert.Equal(t, "u9", u.ID)
}

func TestConcurrentIdenticalDeepLinksShareOneExchange(t *testing.T) {
	fb := newFakeBackend(t)
	fb.exchangeGate = make(chan struct{})
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "tok2"})

	c := newTestClient(t, fb.srv.URL, testClientOpts{})
	require.NoError(t, c.Bootstrap(context.Background()))

	const deliveries = 8
	var wg sync.WaitGroup
	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			defer wg.Done()
			c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")
		}()
	}

	require.Eventually(t, func() bool { return fb.exchangeCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateAwaitingExchange, c.State())
	// Let the followers join the in-flight call before it completes.
	time.Sleep(50 * time.Millisecond)
	close(fb.exchangeGate)
	wg.Wait()

	assert.Equal(t, int32(1), fb.exchangeCalls.Load())
	assert.Equal(t, StateAuthenticated, c.State())
	snap := c.MetricsSnapshot()
	assert.Equal(t, uint64(1), snap.Counters[MetricExchangeSuccess])
	assert.Equal(t, uint64(deliveries), snap.Counters[MetricDeepLinkReceived])
}

func TestSequentialIdenticalDeepLinksEachExchange(t *testing.T) {
	fb := newFakeBackend(t)
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "tok2"})
	c := newTestClient(t, fb.srv.URL, testClientOpts{})

	c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")
	c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")

	assert.Equal(t, int32(2), fb.exchangeCalls.Load())
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("abc123", api.User{ID: "u1"})
	fb.failLogout = true

	store := session.NewMemoryStore()
	seedToken(t, store, "abc123")
	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store, logger: zap.New(core)})
	require.NoError(t, c.Bootstrap(context.Background()))

	require.NoError(t, c.Logout(context.Background()))

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, persistedToken(t, store))
	_, ok := c.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, int32(1), fb.logoutCalls.Load())
	assert.Equal(t, 1, logs.FilterMessage("remote logout failed").Len())
	assert.Equal(t, uint64(1), c.MetricsSnapshot().Counters[MetricLogoutRemoteFailure])
}

func TestLogoutWithoutSessionSkipsRemote(t *testing.T) {
	fb := newFakeBackend(t)
	store := session.NewMemoryStore()
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))

	require.NoError(t, c.Logout(context.Background()))
	assert.Zero(t, fb.logoutCalls.Load())
	assert.Equal(t, StateUnauthenticated, c.State())
}

type failingClearStore struct {
	*session.MemoryStore
}

func (failingClearStore) Clear(context.Context) error {
	return session.ErrStoreUnavailable
}

func TestLogoutReturnsLocalStorageFailure(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("abc123", api.User{ID: "u1"})
	store := failingClearStore{MemoryStore: session.NewMemoryStore()}
	seedToken(t, store, "abc123")

	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})
	require.NoError(t, c.Bootstrap(context.Background()))

	err := c.Logout(context.Background())
	require.ErrorIs(t, err, ErrCredentialStore)
	assert.Equal(t, StateUnauthenticated, c.State())
	_, ok := c.CurrentUser()
	assert.False(t, ok)
}

func TestPipelineReadsTokenFreshFromStore(t *testing.T) {
	fb := newFakeBackend(t)
	store := session.NewMemoryStore()
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})

	pkgs, err := c.API().Packages.List(context.Background(), api.PackageFilter{})
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "", fb.lastAuth.Load())

	seedToken(t, store, "t1")
	_, err = c.API().Packages.List(context.Background(), api.PackageFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", fb.lastAuth.Load())

	seedToken(t, store, "t2")
	_, err = c.API().Packages.List(context.Background(), api.PackageFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer t2", fb.lastAuth.Load())

	snap := c.MetricsSnapshot()
	assert.Equal(t, uint64(3), snap.Counters[MetricAPIRequest])
	assert.Len(t, snap.Histograms[MetricAPILatency], histBucketCount)
	assert.Equal(t, RouteCounts{Requests: 3}, snap.Routes[RouteKey{Method: http.MethodGet, Route: "/packages"}])
	assert.Equal(t, StateBootstrapping, snap.State)
}

func TestLoginHandsURLToOpenerWithoutWaiting(t *testing.T) {
	fb := newFakeBackend(t)
	opened := make(chan string, 1)
	release := make(chan struct{})
	opener := URLOpenerFunc(func(_ context.Context, url string) error {
		opened <- url
		<-release
		return nil
	})
	defer close(release)

	c := newTestClient(t, fb.srv.URL, testClientOpts{opener: opener})

	intent, err := c.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app://callback?install_id=install-1", intent.CallbackURL)
	assert.Equal(t, "https://auth.example.com/?redirect=app%3A%2F%2Fcallback%3Finstall_id%3Dinstall-1", intent.AuthorizationURL)

	select {
	case got := <-opened:
		assert.Equal(t, intent.AuthorizationURL, got)
	case <-time.After(2 * time.Second):
		t.Fatal("opener was not invoked")
	}
}

func TestLoginOpenerFailureIsLogged(t *testing.T) {
	fb := newFakeBackend(t)
	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, fb.srv.URL, testClientOpts{
		logger: zap.New(core),
		opener: URLOpenerFunc(func(context.Context, string) error { return errors.New("no browser") }),
	})

	_, err := c.Login(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return logs.FilterMessage("opening authorization url failed").Len() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoginWithoutOpener(t *testing.T) {
	fb := newFakeBackend(t)
	c := newTestClient(t, fb.srv.URL, testClientOpts{})
	_, err := c.Login(context.Background())
	require.ErrorIs(t, err, ErrNoURLOpener)
}

func TestListenProcessesLinksUntilClosed(t *testing.T) {
	fb := newFakeBackend(t)
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "tok2"})
	store := session.NewMemoryStore()
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store})

	links := make(chan string, 2)
	links <- "app://callback?nothing=here"
	links <- "app://callback?session_id=S1"
	close(links)

	require.NoError(t, c.Listen(context.Background(), links))
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "tok2", persistedToken(t, store))
}

func TestListenStopsOnContextCancel(t *testing.T) {
	fb := newFakeBackend(t)
	c := newTestClient(t, fb.srv.URL, testClientOpts{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Listen(ctx, make(chan string)) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not return")
	}
}

// slowMeBackend holds Me until released so that a deep link can land while
// Bootstrap is still verifying.
type slowMeBackend struct {
	inner   AuthBackend
	entered chan struct{}
	release chan struct{}
}

func (b *slowMeBackend) ExchangeSession(ctx context.Context, id string) (*api.SessionExchange, error) {
	return b.inner.ExchangeSession(ctx, id)
}

func (b *slowMeBackend) Me(ctx context.Context, token string) (*User, error) {
	close(b.entered)
	<-b.release
	return b.inner.Me(ctx, token)
}

func (b *slowMeBackend) Logout(ctx context.Context, token string) error {
	return b.inner.Logout(ctx, token)
}

func TestBootstrapDoesNotClobberNewerExchange(t *testing.T) {
	fb := newFakeBackend(t)
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "fresh"})

	inner, err := api.New(api.Config{BackendURL: fb.srv.URL}, nil)
	require.NoError(t, err)
	slow := &slowMeBackend{inner: inner.Auth, entered: make(chan struct{}), release: make(chan struct{})}

	store := session.NewMemoryStore()
	seedToken(t, store, "stale")
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store, backend: slow})

	done := make(chan struct{})
	go func() {
		_ = c.Bootstrap(context.Background())
		close(done)
	}()
	<-slow.entered

	c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")
	require.Equal(t, StateAuthenticated, c.State())

	close(slow.release)
	<-done

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "fresh", persistedToken(t, store))
	u, _ := c.CurrentUser()
	assert.Equal(t, "u2", u.ID)
}

func TestLogoutDuringBootstrapWins(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("tok1", api.User{ID: "u1"})
	fb.failLogout = true

	inner, err := api.New(api.Config{BackendURL: fb.srv.URL}, nil)
	require.NoError(t, err)
	slow := &slowMeBackend{inner: inner.Auth, entered: make(chan struct{}), release: make(chan struct{})}

	store := session.NewMemoryStore()
	seedToken(t, store, "tok1")
	c := newTestClient(t, fb.srv.URL, testClientOpts{store: store, backend: slow})

	done := make(chan struct{})
	go func() {
		_ = c.Bootstrap(context.Background())
		close(done)
	}()
	<-slow.entered

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, StateUnauthenticated, c.State())

	// Me now succeeds for tok1, but the logout happened after Bootstrap read it.
	close(slow.release)
	<-done

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Empty(t, persistedToken(t, store))
	_, ok := c.CurrentUser()
	assert.False(t, ok)
}

func TestExchangeCompletingDuringLogoutKeepsNewerSession(t *testing.T) {
	fb := newFakeBackend(t)
	fb.accept("tok1", api.User{ID: "u1"})
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "tok2"})
	fb.failLogout = true

	store := session.NewMemoryStore()
	seedToken(t, store, "tok1")

	// "remote logout failed" is written after Logout cleared the store and
	// before it commits Unauthenticated. A new login lands right there.
	var c *Client
	var once sync.Once
	hook := zap.Hooks(func(e zapcore.Entry) error {
		if e.Message == "remote logout failed" {
			once.Do(func() {
				c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")
			})
		}
		return nil
	})
	core, _ := observer.New(zapcore.DebugLevel)
	c = newTestClient(t, fb.srv.URL, testClientOpts{store: store, logger: zap.New(core, hook)})
	require.NoError(t, c.Bootstrap(context.Background()))

	require.NoError(t, c.Logout(context.Background()))

	assert.Equal(t, "tok2", persistedToken(t, store))
	assert.Equal(t, StateAuthenticated, c.State())
	u, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u2", u.ID)
}

func TestAuditEventsForSessionLifecycle(t *testing.T) {
	fb := newFakeBackend(t)
	fb.offer("S1", api.SessionExchange{User: api.User{ID: "u2"}, SessionToken: "tok2"})
	sink := NewChannelSink(16)
	c := newTestClient(t, fb.srv.URL, testClientOpts{sink: sink, audit: true})

	c.HandleDeepLink(context.Background(), "app://callback?session_id=S1")
	require.NoError(t, c.Logout(context.Background()))

	var got []AuditEvent
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev := <-sink.Events():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("expected 2 audit events, got %d", len(got))
		}
	}

	assert.Equal(t, auditEventExchangeSuccess, got[0].EventType)
	assert.Equal(t, "u2", got[0].UserID)
	assert.Equal(t, auditEventLogout, got[1].EventType)
	assert.Equal(t, "ok", got[1].Metadata["remote"])
	for _, ev := range got {
		assert.NotContains(t, ev.Error, "tok2")
		for _, v := range ev.Metadata {
			assert.NotContains(t, v, "tok2")
		}
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	fb := newFakeBackend(t)
	c := newTestClient(t, fb.srv.URL, testClientOpts{})

	ch, cancel := c.Subscribe(1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_exchange", StateAwaitingExchange.String())
	assert.Equal(t, "unknown", AuthState(42).String())
}
