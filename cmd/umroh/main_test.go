package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/MrEthical07/goUmroh/sandbox"
)

// followOpener plays the browser: it follows the provider redirect back to
// the loopback listener.
func followOpener(io.Writer) goUmroh.URLOpener {
	return goUmroh.URLOpenerFunc(func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
}

func setupCLI(t *testing.T) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := sandbox.New(sandbox.Config{
		Redis:      rdb,
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
	}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	t.Setenv("UMROH_CONFIG", writeConfig(t, "logging:\n  level: error\n"))
	t.Setenv("UMROH_API_BACKEND_URL", ts.URL)
	t.Setenv("UMROH_AUTH_AUTH_URL", ts.URL)
	t.Setenv("UMROH_STORAGE_KIND", "file")
	t.Setenv("UMROH_STORAGE_PATH", t.TempDir())

	prev := newOpener
	newOpener = followOpener
	t.Cleanup(func() { newOpener = prev })
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLISessionLifecycle(t *testing.T) {
	setupCLI(t)

	code, out, _ := runCLI(t, "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in.")

	code, out, errOut := runCLI(t, "login")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Signed in as")
	assert.Contains(t, out, sandbox.DefaultIdentity.Email)

	code, out, _ = runCLI(t, "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, sandbox.DefaultIdentity.Email)

	code, out, _ = runCLI(t, "seed")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Seeded 6 packages")

	code, out, _ = runCLI(t, "packages", "-type", "tour")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Tour Dieng")
	assert.NotContains(t, out, "Umrah Awal Ramadhan")

	code, out, _ = runCLI(t, "bookings")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "PACKAGE")

	code, out, _ = runCLI(t, "metrics")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "umroh_session_restored_total 1")
	assert.Contains(t, out, `umroh_session_state{state="authenticated"} 1`)
	assert.Contains(t, out, `umroh_api_route_requests_total{method="GET",route="/bookings"} 1`)

	code, out, _ = runCLI(t, "metrics", "-format", "otel")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "umroh_session_state{state=authenticated} 1")

	code, out, _ = runCLI(t, "logout")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Signed out.")

	code, _, errOut = runCLI(t, "bookings")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bookings failed")
}

func TestCLICallbackRejectsBadLink(t *testing.T) {
	setupCLI(t)

	code, _, errOut := runCLI(t, "callback", "umroh://auth?session_id=never-minted")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "callback failed")
}

func TestCLIUsageErrors(t *testing.T) {
	setupCLI(t)

	code, _, errOut := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: umroh")

	code, _, errOut = runCLI(t, "nope")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command")

	code, _, errOut = runCLI(t, "pay", "-booking", "b1", "-method", "cash")
	assert.Equal(t, 2, code)
	assert.True(t, strings.HasPrefix(errOut, "usage: umroh pay"))
}
