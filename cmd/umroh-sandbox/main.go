// Command umroh-sandbox runs the sandbox storefront backend.
//
// With no -redis-addr (or REDIS_ADDR) an in-process miniredis is started, so
// nothing external is required:
//
//	go run ./cmd/umroh-sandbox -addr :8080 -seed
//
// Point the CLI at it with UMROH_API_BACKEND_URL=http://localhost:8080 and
// UMROH_AUTH_AUTH_URL=http://localhost:8080.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/goUmroh/internal/logger"
	"github.com/MrEthical07/goUmroh/sandbox"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "sandbox", "redis key prefix")
		key       = flag.String("signing-key", "", "HS256 key (>= 32 bytes); random when empty")
		seed      = flag.Bool("seed", false, "load the default catalog at startup")
		email     = flag.String("email", sandbox.DefaultIdentity.Email, "identity signed in by /authorize")
		name      = flag.String("name", sandbox.DefaultIdentity.Name, "display name of that identity")
		attempts  = flag.Int("exchange-attempts", sandbox.DefaultExchangeAttempts, "failed session exchanges allowed per client per window")
		window    = flag.Duration("exchange-window", sandbox.DefaultExchangeWindow, "exchange throttle window")
		level     = flag.String("log-level", "info", "log level")
		format    = flag.String("log-format", logger.FormatConsole, "log format (console|json)")
	)
	flag.Parse()

	log, err := logger.New(*level, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	// ---------- infrastructure ----------
	if *redisAddr == "" {
		*redisAddr = os.Getenv("REDIS_ADDR")
	}
	var rdb redis.UniversalClient
	if *redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatal("start miniredis", zap.Error(err))
		}
		defer mr.Close()
		*redisAddr = mr.Addr()
		log.Info("using miniredis", zap.String("addr", *redisAddr))
	} else {
		log.Info("using redis", zap.String("addr", *redisAddr))
	}
	rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{*redisAddr}})
	defer func() { _ = rdb.Close() }()

	signingKey := []byte(*key)
	if len(signingKey) == 0 {
		signingKey = make([]byte, 32)
		if _, err := rand.Read(signingKey); err != nil {
			log.Fatal("generate signing key", zap.Error(err))
		}
	}

	// ---------- server ----------
	srv, err := sandbox.New(sandbox.Config{
		Redis:       rdb,
		RedisPrefix: *prefix,
		SigningKey:  signingKey,
		Identity:    sandbox.DefaultIdentityWith(*email, *name),
		SeedOnStart: *seed,

		ExchangeAttempts: *attempts,
		ExchangeWindow:   *window,
	}, log)
	if err != nil {
		log.Fatal("build sandbox", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", *addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
