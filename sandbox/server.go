package sandbox

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	ilog "github.com/MrEthical07/goUmroh/internal/logger"
	"github.com/MrEthical07/goUmroh/internal/rate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config configures a sandbox Server.
type Config struct {
	// Redis holds login ids and sessions. Required.
	Redis       redis.UniversalClient
	RedisPrefix string

	// SigningKey is the HS256 key for session tokens, at least 32 bytes.
	SigningKey []byte
	SessionTTL time.Duration

	// Identity is the user /authorize signs in when the request names none.
	Identity api.User

	// SeedOnStart loads the default catalog in New.
	SeedOnStart bool

	// ExchangeAttempts caps failed session exchanges per client address
	// within ExchangeWindow. Zero uses DefaultExchangeAttempts.
	ExchangeAttempts int
	ExchangeWindow   time.Duration
}

// Exchange throttle defaults.
const (
	DefaultExchangeAttempts = 10
	DefaultExchangeWindow   = time.Minute
)

// DefaultIdentity is used when Config.Identity has no email.
var DefaultIdentity = api.User{
	ID:    "jamaah@example.com",
	Email: "jamaah@example.com",
	Name:  "Jamaah Sandbox",
}

// DefaultIdentityWith returns an identity for email, named name. Empty email
// yields DefaultIdentity.
func DefaultIdentityWith(email, name string) api.User {
	if email == "" {
		return DefaultIdentity
	}
	if name == "" {
		name = email
	}
	return api.User{ID: email, Email: email, Name: name}
}

// Server serves the sandbox backend.
type Server struct {
	tokens   *TokenManager
	sessions *sessionRegistry
	catalog  *catalog
	limiter  *rate.Limiter
	identity api.User
	logger   *zap.Logger
	router   chi.Router
}

// New wires a Server. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if cfg.Redis == nil {
		return nil, errors.New("sandbox: redis client is required")
	}
	tokens, err := NewTokenManager(cfg.SigningKey, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	identity := cfg.Identity
	if identity.Email == "" {
		identity = DefaultIdentity
	}
	if identity.ID == "" {
		identity.ID = identity.Email
	}

	if cfg.ExchangeAttempts <= 0 {
		cfg.ExchangeAttempts = DefaultExchangeAttempts
	}
	if cfg.ExchangeWindow <= 0 {
		cfg.ExchangeWindow = DefaultExchangeWindow
	}

	sessions := newSessionRegistry(cfg.Redis, cfg.RedisPrefix)
	limiter := rate.New(cfg.Redis, rate.Config{
		Prefix:      sessions.prefix + ":exchange",
		MaxAttempts: cfg.ExchangeAttempts,
		Window:      cfg.ExchangeWindow,
	})
	s := &Server{
		tokens:   tokens,
		sessions: sessions,
		catalog:  newCatalog(time.Now),
		limiter:  limiter,
		identity: identity,
		logger:   ilog.WithComponent(logger, "sandbox"),
	}
	if cfg.SeedOnStart {
		s.catalog.seed()
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		MaxAge:         60 * 15,
	}))

	// Identity provider stand-in. The client builds "<auth>/?redirect=".
	r.Get("/", s.authorize)
	r.Get("/authorize", s.authorize)
	r.Get("/healthz", s.healthz)

	r.Route("/api", func(rr chi.Router) {
		rr.Post("/auth/session", s.exchangeSession)
		rr.With(s.guard).Get("/auth/me", s.me)
		rr.Post("/auth/logout", s.logout)

		rr.Get("/packages", s.listPackages)
		rr.Post("/packages", s.createPackage)
		rr.Get("/packages/{packageID}", s.getPackage)
		rr.Post("/seed", s.seed)

		rr.Group(func(pr chi.Router) {
			pr.Use(s.guard)

			pr.Post("/bookings", s.createBooking)
			pr.Get("/bookings", s.listBookings)
			pr.Get("/bookings/{bookingID}", s.getBooking)

			pr.Post("/payments", s.createPayment)
			pr.Post("/payments/{paymentID}/complete", s.completePayment)
			pr.Get("/payments/{paymentID}", s.getPayment)

			pr.Post("/wishlist", s.addWishlist)
			pr.Delete("/wishlist/{packageID}", s.removeWishlist)
			pr.Get("/wishlist", s.listWishlist)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
