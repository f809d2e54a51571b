package goUmroh

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// LintWarning is a valid but questionable configuration choice.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of Config.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that pass Validate but are likely mistakes. It does
// not validate; call Validate first.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if insecureRemote(c.API.BackendURL) {
		ws = append(ws, LintWarning{
			Code:    "backend_plain_http",
			Message: "bearer tokens are sent over plain http to a non-loopback backend",
		})
	}
	if insecureRemote(c.Auth.AuthURL) {
		ws = append(ws, LintWarning{
			Code:    "auth_plain_http",
			Message: "the identity provider is reached over plain http",
		})
	}
	if c.API.Timeout > time.Minute {
		ws = append(ws, LintWarning{
			Code:    "api_timeout_long",
			Message: "API timeout above one minute",
		})
	}
	if c.Storage.Kind == StorageMemory {
		ws = append(ws, LintWarning{
			Code:    "credential_not_persisted",
			Message: "memory storage loses the session on restart",
		})
	}
	if c.Auth.InstallID == "" && c.Storage.Kind != StorageFile {
		ws = append(ws, LintWarning{
			Code:    "install_id_ephemeral",
			Message: "install id is regenerated on every start",
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_may_block",
			Message: "a slow audit sink will block session operations",
		})
	}

	return ws
}

func insecureRemote(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, "http") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}
	return true
}
