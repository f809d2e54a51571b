package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

const (
	loginTimeout = 5 * time.Minute
	callbackPath = "/callback"
)

var errExchangeFailed = errors.New("session exchange failed")

// runLogin serves a loopback callback, opens the provider and waits for the
// redirect to be exchanged.
func runLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	ln, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen for callback: %w", err)
	}
	callbackURL := "http://" + ln.Addr().String() + callbackPath

	c, err := a.newClient(func(cfg *goUmroh.Config) { cfg.Auth.CallbackURL = callbackURL })
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer c.Close()

	if err := c.Bootstrap(ctx); err != nil {
		_ = ln.Close()
		return err
	}
	if u, ok := c.CurrentUser(); ok {
		_ = ln.Close()
		fmt.Fprintf(a.out, "Already signed in as %s <%s>.\n", u.Name, u.Email)
		return nil
	}

	links := make(chan string, 1)
	srv := &http.Server{
		Handler:           callbackHandler(callbackURL, links),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("callback listener stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	changes, unsubscribe := c.Subscribe(8)
	defer unsubscribe()

	go func() { _ = c.Listen(ctx, links) }()

	if _, err := c.Login(ctx); err != nil {
		return err
	}

	user, err := waitForSession(ctx, changes)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, color.GreenString("Signed in as %s <%s>.", user.Name, user.Email))
	return nil
}

// waitForSession returns once an exchange settles.
func waitForSession(ctx context.Context, changes <-chan goUmroh.StateChange) (goUmroh.User, error) {
	for {
		select {
		case <-ctx.Done():
			return goUmroh.User{}, ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return goUmroh.User{}, errExchangeFailed
			}
			if change.To == goUmroh.StateAuthenticated && change.User != nil {
				return *change.User, nil
			}
			if change.From == goUmroh.StateAwaitingExchange {
				return goUmroh.User{}, errExchangeFailed
			}
		}
	}
}

// fragmentRelay moves a session_id carried in the URL fragment into the query
// so the listener can see it.
const fragmentRelay = `<!doctype html><title>umroh</title><script>
if (location.hash.length > 1) { location.replace(location.pathname + "?" + location.hash.substring(1)); }
else { document.write("Sign-in link had no session id."); }
</script>`

func callbackHandler(callbackURL string, links chan<- string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("session_id") == "" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(fragmentRelay))
			return
		}

		link := callbackURL + "?" + r.URL.RawQuery
		select {
		case links <- link:
		default:
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><title>umroh</title><p>%s</p>", html.EscapeString("Sign-in received. You can close this window."))
	})
	return mux
}

// runCallback delivers a redirect link pasted by the user.
func runCallback(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	c.HandleDeepLink(ctx, args[0])
	u, ok := c.CurrentUser()
	if !ok {
		return errExchangeFailed
	}
	fmt.Fprintln(a.out, color.GreenString("Signed in as %s <%s>.", u.Name, u.Email))
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	c, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	u, ok := c.CurrentUser()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
