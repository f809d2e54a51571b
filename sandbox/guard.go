package sandbox

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/goUmroh/api"
)

type principalContextKey struct{}

// principal is the authenticated caller attached to the request context.
type principal struct {
	User api.User
	SID  string
}

func principalFromContext(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(principal)
	return p, ok
}

// guard rejects requests without a live bearer session with 401.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(r *http.Request) (principal, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return principal{}, false
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return principal{}, false
	}
	user, err := s.sessions.lookupSession(r.Context(), claims.SID)
	if err != nil {
		return principal{}, false
	}
	return principal{User: user, SID: claims.SID}, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
