package goUmroh

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/MrEthical07/goUmroh/internal/flows"
	ilog "github.com/MrEthical07/goUmroh/internal/logger"
	"github.com/MrEthical07/goUmroh/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a Client. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     session.Store
	opener    URLOpener
	logger    *zap.Logger
	auditSink AuditSink
	transport http.RoundTripper
	backend   AuthBackend

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackendURL sets Config.API.BackendURL.
func (b *Builder) WithBackendURL(backendURL string) *Builder {
	b.config.API.BackendURL = backendURL
	return b
}

// WithTokenStore supplies the credential store, overriding Config.Storage.
func (b *Builder) WithTokenStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis supplies the client used when Config.Storage.Kind is redis. The
// caller keeps ownership of it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithURLOpener sets how Login hands off the authorization URL.
func (b *Builder) WithURLOpener(opener URLOpener) *Builder {
	b.opener = opener
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink. Audit must also be enabled in Config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithHTTPTransport sets the round tripper under the pipeline.
func (b *Builder) WithHTTPTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithAuthBackend replaces the session endpoints used by the session manager.
// Resource calls still go to Config.API.BackendURL.
func (b *Builder) WithAuthBackend(backend AuthBackend) *Builder {
	b.backend = backend
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the API latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Client. No network I/O is
// performed; call Client.Bootstrap afterwards.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if b.store != nil && cfg.Storage.Kind == "" {
		cfg.Storage.Kind = StorageMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := b.logger
	if base == nil {
		base = zap.NewNop()
	}
	logger := ilog.WithComponent(base, "session")

	c := &Client{
		config:  cfg,
		opener:  b.opener,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
	}

	// -------- CREDENTIAL STORE --------
	store, closeFn, err := b.buildStore(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	if closeFn != nil {
		c.closeFns = append(c.closeFns, closeFn)
	}

	// -------- INSTALL ID --------
	installID, err := resolveInstallID(cfg)
	if err != nil {
		c.runCloseFns()
		return nil, err
	}
	c.installID = installID

	// -------- PIPELINE --------
	apiClient, err := api.New(api.Config{
		BackendURL: cfg.API.BackendURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
	}, c.tokenSource(), api.WithObserver(c), api.WithTransport(b.transport))
	if err != nil {
		c.runCloseFns()
		return nil, err
	}
	c.api = apiClient
	c.backend = b.backend
	if c.backend == nil {
		c.backend = apiClient.Auth
	}

	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink, c.installID, base)
	c.flows = c.buildFlowDeps()

	b.built = true
	return c, nil
}

func (b *Builder) buildStore(cfg Config) (session.Store, func() error, error) {
	if b.store != nil {
		return b.store, nil, nil
	}
	switch cfg.Storage.Kind {
	case StorageFile:
		return session.NewFileStore(cfg.Storage.Path), nil, nil
	case StorageRedis:
		if b.redis != nil {
			return session.NewRedisStore(b.redis, cfg.Storage.RedisPrefix), nil, nil
		}
		if cfg.Storage.RedisAddr == "" {
			return nil, nil, fmt.Errorf("%w: redis storage needs WithRedis or Storage.RedisAddr", ErrInvalidConfig)
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		return session.NewRedisStore(rdb, cfg.Storage.RedisPrefix), rdb.Close, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}

func resolveInstallID(cfg Config) (string, error) {
	if cfg.Auth.InstallID != "" {
		return cfg.Auth.InstallID, nil
	}
	if cfg.Storage.Kind == StorageFile {
		id, err := session.LoadOrCreateInstallID(cfg.Storage.Path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCredentialStore, err)
		}
		return id.String(), nil
	}
	return uuid.NewString(), nil
}

func (c *Client) runCloseFns() {
	for _, fn := range c.closeFns {
		_ = fn()
	}
	c.closeFns = nil
}

func (c *Client) buildFlowDeps() flows.Deps {
	metricInc := func(id int) { c.metricInc(MetricID(id)) }
	emitAudit := func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string) {
		c.emitAudit(ctx, event, success, userID, err, metadata)
	}

	return flows.Deps{
		Bootstrap: flows.BootstrapDeps{
			LoadToken: func(ctx context.Context) (string, error) {
				cred, err := c.store.Load(ctx)
				if errors.Is(err, session.ErrNotFound) {
					return "", nil
				}
				if err != nil {
					return "", err
				}
				return cred.Token, nil
			},
			FetchUser: c.backend.Me,
			MetricInc: metricInc,
			EmitAudit: emitAudit,
			Metrics: flows.BootstrapMetrics{
				Restored: int(MetricSessionRestored),
				Rejected: int(MetricSessionRejected),
			},
			Events: flows.BootstrapEvents{
				Restored: auditEventSessionRestored,
				Rejected: auditEventSessionRejected,
			},
			NotReady: ErrClientNotReady,
			Corrupt:  session.ErrCorrupt,
		},
		Login: flows.LoginIntentDeps{
			AuthURL:     c.config.Auth.AuthURL,
			CallbackURL: c.config.Auth.CallbackURL,
			InstallID:   c.installID,
		},
		Exchange: flows.ExchangeDeps{
			Exchange:  c.backend.ExchangeSession,
			MetricInc: metricInc,
			EmitAudit: emitAudit,
			Metrics: flows.ExchangeMetrics{
				Success: int(MetricExchangeSuccess),
				Failure: int(MetricExchangeFailure),
			},
			Events: flows.ExchangeEvents{
				Success: auditEventExchangeSuccess,
				Failure: auditEventExchangeFailure,
			},
			Errors: flows.ExchangeErrors{
				MalformedDeepLink: ErrMalformedDeepLink,
				MissingSessionID:  ErrMissingSessionID,
				NotReady:          ErrClientNotReady,
			},
		},
		Logout: flows.LogoutDeps{
			RemoteLogout: c.backend.Logout,
			MetricInc:    metricInc,
			EmitAudit:    emitAudit,
			Metrics: flows.LogoutMetrics{
				Logout:        int(MetricLogout),
				RemoteFailure: int(MetricLogoutRemoteFailure),
			},
			Events: flows.LogoutEvents{
				Logout: auditEventLogout,
			},
			NotReady: ErrClientNotReady,
		},
	}
}
