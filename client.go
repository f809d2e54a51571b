package goUmroh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/MrEthical07/goUmroh/internal/flows"
	"github.com/MrEthical07/goUmroh/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client is the storefront client: a session manager plus the API pipeline.
//
// Session transitions are serialized by mu; backend calls and credential I/O
// happen outside it. Credential writes are serialized by credMu, and credGen
// counts them so that a slow Bootstrap never clobbers a credential written by
// a later exchange or logout.
type Client struct {
	config    Config
	store     session.Store
	api       *api.Client
	backend   AuthBackend
	opener    URLOpener
	logger    *zap.Logger
	audit     *auditDispatcher
	metrics   *Metrics
	flows     flows.Deps
	installID string
	closeFns  []func() error

	mu sync.RWMutex
	// stable is the committed session, ignoring in-flight exchanges.
	stable   authSnapshot
	inflight int
	visible  AuthState

	credMu  sync.Mutex
	credGen uint64

	exchanges singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]chan StateChange
	nextSub int

	closed atomic.Bool
}

type authSnapshot struct {
	state AuthState
	user  *User
	token string
}

// API returns the request pipeline. Resource calls carry the persisted
// credential when one exists.
func (c *Client) API() *api.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// InstallID returns the identifier embedded in this install's callback URL.
func (c *Client) InstallID() string {
	if c == nil {
		return ""
	}
	return c.installID
}

// State returns the current session state.
func (c *Client) State() AuthState {
	if c == nil {
		return StateUnauthenticated
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible
}

// CurrentUser returns the authenticated user. ok is false when no verified
// session is held.
func (c *Client) CurrentUser() (User, bool) {
	if c == nil {
		return User{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stable.user == nil {
		return User{}, false
	}
	return *c.stable.user, true
}

// Bootstrap verifies the persisted credential, if any, against the backend.
// A credential the backend rejects, or that cannot be verified, is cleared.
// Verification failures are logged, never returned.
func (c *Client) Bootstrap(ctx context.Context) error {
	if c == nil || c.closed.Load() {
		return ErrClientNotReady
	}
	c.metricInc(MetricBootstrap)

	c.credMu.Lock()
	gen := c.credGen
	c.credMu.Unlock()

	deps := c.flows.Bootstrap
	deps.ClearToken = func(ctx context.Context) error {
		return c.clearCredentialIf(ctx, gen)
	}
	res := flows.RunBootstrap(ctx, deps)

	log := c.logger.With(zap.String("operation", "bootstrap"))
	switch res.Failure {
	case flows.BootstrapFailureLoad:
		log.Error("credential load failed", zap.Error(res.Err))
	case flows.BootstrapFailureCorrupt:
		log.Warn("persisted credential unreadable", zap.Error(res.Err))
		if res.ClearErr != nil {
			log.Error("clearing unreadable credential failed", zap.Error(res.ClearErr))
		}
	case flows.BootstrapFailureVerify:
		log.Warn("persisted session rejected", zap.Error(res.Err))
		if res.ClearErr != nil {
			log.Error("clearing rejected credential failed", zap.Error(res.ClearErr))
		}
	case flows.BootstrapFailureNoCredential:
		log.Debug("no persisted session")
	default:
		log.Info("session restored", zap.String("user_id", res.User.ID))
	}

	c.credMu.Lock()
	stale := c.credGen != gen
	c.credMu.Unlock()
	if stale {
		log.Debug("credential changed during bootstrap; result discarded")
		return nil
	}

	if res.Failure == flows.BootstrapFailureNone {
		c.commit(authSnapshot{state: StateAuthenticated, user: res.User, token: res.Token})
	} else {
		c.commit(authSnapshot{state: StateUnauthenticated})
	}
	return nil
}

// Login starts a redirect login. The authorization URL is handed to the
// configured URLOpener on its own goroutine and is not awaited; completion
// arrives later as a deep link.
func (c *Client) Login(ctx context.Context) (*LoginIntent, error) {
	if c == nil || c.closed.Load() {
		return nil, ErrClientNotReady
	}
	if c.opener == nil {
		return nil, ErrNoURLOpener
	}

	res, err := flows.RunLoginIntent(c.flows.Login)
	if err != nil {
		return nil, err
	}
	intent := &LoginIntent{
		CallbackURL:      res.CallbackURL,
		AuthorizationURL: res.AuthorizationURL,
		StartedAt:        res.StartedAt,
	}

	c.metricInc(MetricLoginStarted)
	c.emitAudit(ctx, auditEventLoginStarted, true, "", nil, nil)
	c.logger.Info("login started",
		zap.String("operation", "login"),
		zap.String("callback_url", intent.CallbackURL),
	)

	openCtx := context.WithoutCancel(ctx)
	go func(url string) {
		if err := c.opener.Open(openCtx, url); err != nil {
			c.metricInc(MetricURLOpenFailure)
			c.logger.Warn("opening authorization url failed",
				zap.String("operation", "login"),
				zap.Error(err),
			)
		}
	}(intent.AuthorizationURL)

	return intent, nil
}

// HandleDeepLink delivers one inbound link. A link without a session_id is
// logged and dropped. Otherwise the id is exchanged for a durable token;
// concurrent deliveries of the same id share a single exchange. On failure
// the state the client had before the link arrived is kept.
func (c *Client) HandleDeepLink(ctx context.Context, rawURL string) {
	if c == nil || c.closed.Load() {
		return
	}

	sessionID, err := flows.ParseDeepLink(rawURL, c.flows.Exchange.Errors)
	if err != nil {
		c.metricInc(MetricDeepLinkMalformed)
		c.logger.Warn("deep link ignored",
			zap.String("operation", "deep_link"),
			zap.Error(err),
		)
		return
	}
	c.metricInc(MetricDeepLinkReceived)

	leader := false
	_, _, shared := c.exchanges.Do(sessionID, func() (any, error) {
		leader = true
		c.exchange(ctx, sessionID)
		return nil, nil
	})
	if shared && !leader {
		c.metricInc(MetricExchangeDeduplicated)
	}
}

// Listen processes deep links from links, one at a time, until ctx is done or
// links is closed. A link present at cold start is simply the first message.
func (c *Client) Listen(ctx context.Context, links <-chan string) error {
	if c == nil || c.closed.Load() {
		return ErrClientNotReady
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case link, ok := <-links:
			if !ok {
				return nil
			}
			c.HandleDeepLink(ctx, link)
		}
	}
}

func (c *Client) exchange(ctx context.Context, sessionID string) {
	c.mu.Lock()
	c.inflight++
	c.publishLocked()
	c.mu.Unlock()

	deps := c.flows.Exchange
	var gen uint64
	deps.SaveToken = func(ctx context.Context, token string) error {
		var err error
		gen, err = c.saveCredential(ctx, token)
		return err
	}
	res := flows.RunExchange(ctx, sessionID, deps)

	log := c.logger.With(zap.String("operation", "exchange"))
	if res.Err != nil {
		log.Warn("session exchange failed", zap.Error(res.Err))
	} else {
		log.Info("session established", zap.String("user_id", res.User.ID))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if res.Err == nil && c.currentGen() == gen {
		c.stable = authSnapshot{state: StateAuthenticated, user: res.User, token: res.Token}
	}
	c.publishLocked()
}

// Logout notifies the backend on a best-effort basis, then clears the
// persisted credential and the in-memory session. A login that completes
// after the clear wins: its token stays persisted and the client stays
// authenticated. Only a local storage failure is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil || c.closed.Load() {
		return ErrClientNotReady
	}

	c.mu.RLock()
	token := c.stable.token
	userID := ""
	if c.stable.user != nil {
		userID = c.stable.user.ID
	}
	c.mu.RUnlock()

	if token == "" {
		if persisted, err := session.LoadToken(ctx, c.store); err == nil {
			token = persisted
		}
	}

	deps := c.flows.Logout
	var gen uint64
	deps.ClearToken = func(ctx context.Context) error {
		var err error
		gen, err = c.clearCredential(ctx)
		return err
	}
	res := flows.RunLogout(ctx, token, userID, deps)

	log := c.logger.With(zap.String("operation", "logout"))
	if res.RemoteErr != nil {
		log.Warn("remote logout failed", zap.Error(res.RemoteErr))
	}
	if res.ClearErr != nil {
		log.Error("clearing credential failed", zap.Error(res.ClearErr))
	}

	// A session persisted after the clear is newer than this logout.
	c.mu.Lock()
	if c.currentGen() == gen {
		c.stable = authSnapshot{state: StateUnauthenticated}
	} else {
		log.Info("newer session persisted during logout; kept")
	}
	c.publishLocked()
	c.mu.Unlock()

	return res.ClearErr
}

// Subscribe registers for state changes. Delivery is non-blocking: a
// subscriber that falls more than buffer events behind misses events. The
// returned cancel function unregisters and closes the channel.
func (c *Client) Subscribe(buffer int) (<-chan StateChange, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan StateChange, buffer)
	if c == nil {
		close(ch)
		return ch, func() {}
	}

	c.subsMu.Lock()
	if c.subs == nil {
		c.subs = make(map[int]chan StateChange)
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			if existing, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(existing)
			}
			c.subsMu.Unlock()
		})
	}
}

// Close stops background dispatch and releases resources owned by the
// client. It does not touch the persisted credential.
func (c *Client) Close() error {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.audit != nil {
		c.audit.Close()
	}

	c.subsMu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.subsMu.Unlock()

	var errs []error
	for _, fn := range c.closeFns {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = c.logger.Sync()
	return errors.Join(errs...)
}

// AuditDropped reports audit events that never reached the sink queue.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot copies the client's counters and records the current
// session state.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
			Routes:     map[RouteKey]RouteCounts{},
		}
	}
	s := c.metrics.Snapshot()
	s.State = c.State()
	return s
}

// ObserveRequest implements api.Observer.
func (c *Client) ObserveRequest(method, route string, status int, elapsed time.Duration, err error) {
	c.metricInc(MetricAPIRequest)
	c.metricObserve(MetricAPILatency, elapsed)
	if err != nil {
		c.metricInc(MetricAPIFailure)
	}
	if c.metrics != nil {
		c.metrics.ObserveRoute(method, route, err != nil)
	}
	if ce := c.logger.Check(zap.DebugLevel, "api request"); ce != nil {
		ce.Write(
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

func (c *Client) commit(next authSnapshot) {
	c.mu.Lock()
	c.stable = next
	c.publishLocked()
	c.mu.Unlock()
}

// publishLocked recomputes the visible state and notifies subscribers when
// it changed. Callers hold mu.
func (c *Client) publishLocked() {
	next := c.stable.state
	if c.inflight > 0 {
		next = StateAwaitingExchange
	}
	prev := c.visible
	if next == prev && next != StateAuthenticated {
		return
	}
	c.visible = next

	change := StateChange{From: prev, To: next}
	if next == StateAuthenticated && c.stable.user != nil {
		u := *c.stable.user
		change.User = &u
	}

	c.subsMu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default:
		}
	}
	c.subsMu.Unlock()
}

func (c *Client) currentGen() uint64 {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	return c.credGen
}

func (c *Client) saveCredential(ctx context.Context, token string) (uint64, error) {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	if err := c.store.Save(ctx, &session.Credential{Token: token}); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCredentialStore, err)
	}
	c.credGen++
	return c.credGen, nil
}

func (c *Client) clearCredential(ctx context.Context) (uint64, error) {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	c.credGen++
	if err := c.store.Clear(ctx); err != nil {
		return c.credGen, fmt.Errorf("%w: %v", ErrCredentialStore, err)
	}
	return c.credGen, nil
}

// clearCredentialIf clears only when no credential write happened since gen.
func (c *Client) clearCredentialIf(ctx context.Context, gen uint64) error {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	if c.credGen != gen {
		return nil
	}
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialStore, err)
	}
	return nil
}

func (c *Client) tokenSource() api.TokenSource {
	return api.TokenSourceFunc(func(ctx context.Context) (string, error) {
		return session.LoadToken(ctx, c.store)
	})
}
