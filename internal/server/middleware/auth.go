package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/waajacu/minerals/pkg/constants"
)

// Authorizer validates admin session tokens.
type Authorizer interface {
	Authorized(token string) bool
}

// SessionToken returns the first live admin token among the session cookie
// and an "Authorization: Bearer" header, so a stale cookie does not shadow a
// valid header. When neither is live it returns the first token seen and false.
func SessionToken(r *http.Request, authz Authorizer) (token string, ok bool) {
	for _, t := range []string{cookieToken(r), bearerToken(r)} {
		if t == "" {
			continue
		}
		if authz.Authorized(t) {
			return t, true
		}
		if token == "" {
			token = t
		}
	}
	return token, false
}

func cookieToken(r *http.Request) string {
	if c, err := r.Cookie(constants.SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AdminAuth rejects requests without a live admin session.
func AdminAuth(authz Authorizer, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := SessionToken(r, authz)
			if !ok {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Admin authentication failed")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"data":null,"error":{"code":"UNAUTHORIZED","message":"Admin session required","details":"Log in at /api/admin/login"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
