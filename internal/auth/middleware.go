package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/response"
	"github.com/userbase/backend/internal/token"
)

type contextKey string

const userIDContextKey contextKey = "auth_user_id"

// UserIDFromContext returns the authenticated user id injected by the gate.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDContextKey).(int64)
	return id, ok
}

// Gate returns a middleware that classifies each request as public or
// protected by case-sensitive prefix match against publicPrefixes. Public
// requests pass through untouched. Protected requests must carry a valid
// bearer access token; on success the verified user id is injected into the
// request context, otherwise the chain stops with a failure envelope.
func Gate(codec *token.Codec, publicPrefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path, publicPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.WriteError(w, apperrors.Unauthenticated())
				return
			}

			claims, verr := codec.Verify(tok)
			if verr != nil {
				response.WriteError(w, verr)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if !strings.HasPrefix(header, scheme) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(scheme):])
	return tok, tok != ""
}
