// Command umroh is a terminal client for the Umroh storefront.
//
// Configuration comes from umroh.yaml (./ or the user config dir, or -config)
// and UMROH_* environment variables, e.g. UMROH_API_BACKEND_URL.
//
//	umroh login
//	umroh packages -type umrah -max-price 30000000
//	umroh book -package <id> -name "Siti" -email siti@example.com -phone 0812 -passengers 2
//	umroh pay -booking <id> -method bank_transfer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/MrEthical07/goUmroh/internal/logger"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// errUsage marks command-line mistakes; they exit 2 instead of 1.
var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":    {"login                       sign in through the browser", runLogin},
	"callback": {"callback <url>              deliver a redirect link by hand", runCallback},
	"whoami":   {"whoami                      show the signed-in user", runWhoami},
	"logout":   {"logout                      sign out and forget the session", runLogout},
	"packages": {"packages [-type -min-price -max-price -city]", runPackages},
	"package":  {"package <id>                show one package", runPackage},
	"book":     {"book -package -name -email -phone -passengers", runBook},
	"bookings": {"bookings                    list your bookings", runBookings},
	"booking":  {"booking <id>                show one booking", runBooking},
	"pay":      {"pay -booking <id> -method bank_transfer|credit_card|e_wallet", runPay},
	"complete": {"complete <payment-id>       simulate a successful payment", runComplete},
	"payment":  {"payment <id>                show one payment", runPayment},
	"wishlist": {"wishlist add|remove <package-id> | wishlist list", runWishlist},
	"seed":     {"seed                        load the demo catalog", runSeed},
	"metrics":  {"metrics [-format prometheus|otel]", runMetrics},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newOpener builds the URL opener for login.
var newOpener = func(out io.Writer) goUmroh.URLOpener { return browserOpener{out: out} }

// app carries what every command needs.
type app struct {
	cfg    cliConfig
	out    io.Writer
	errOut io.Writer
	log    *zap.Logger
	opener goUmroh.URLOpener
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("umroh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (yaml)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "umroh: unknown command %q\n", name)
		printUsage(stderr)
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "umroh: %v\n", err)
		return 1
	}
	level := cfg.Client.Logging.Level
	if *verbose {
		level = "debug"
	}
	log, err := logger.NewWithWriter(level, cfg.Client.Logging.Format, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "umroh: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	a := &app{
		cfg:    cfg,
		out:    stdout,
		errOut: stderr,
		log:    log,
		opener: newOpener(stdout),
	}
	return a.exec(ctx, name, cmd, fs.Args()[1:])
}

func (a *app) exec(ctx context.Context, name string, cmd command, args []string) int {
	err := cmd.run(ctx, a, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.errOut, "usage: umroh %s\n", cmd.usage)
		return 2
	default:
		a.log.Debug("command failed", zap.String("command", name), zap.Error(err))
		fmt.Fprintln(a.errOut, color.RedString("umroh: %s failed. Run with -v for details.", name))
		return 1
	}
}

// newClient builds a client from the loaded configuration.
func (a *app) newClient(mutate ...func(*goUmroh.Config)) (*goUmroh.Client, error) {
	cfg := a.cfg.Client
	for _, m := range mutate {
		m(&cfg)
	}
	return goUmroh.New().
		WithConfig(cfg).
		WithLogger(a.log).
		WithURLOpener(a.opener).
		Build()
}

// session builds a client and restores any persisted session.
func (a *app) session(ctx context.Context) (*goUmroh.Client, error) {
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	if err := c.Bootstrap(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: umroh [-config file] [-v] <command> [args]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", commands[n].usage)
	}
}
