package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/server/auth/token"
	"github.com/mpetrenko/hrauth/internal/server/models"
)

type ctxKey int

const claimsKey ctxKey = 0

// ClaimsFromContext returns the verified token claims the guard stored for
// the current request.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok
}

// logRequest tags every request with a short random id and emits a debug
// line. The id groups log entries belonging to one request; the guard and
// handlers do not repeat method or path.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := common.MakeRandHexString(8)
		if err != nil {
			id = "-"
		}
		l := s.logger.With("request_id", id)
		l.Debug(r.Context(), "request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Guard admits requests bearing a live access token. The request walks
// extract → verify → revocation check and any failure is terminal with 401;
// on success the claims are attached to the request context.
func (s *Server) Guard(next http.Handler) http.Handler {
	return s.GuardRole("", next)
}

// GuardRole is Guard plus a role requirement. A valid token with the wrong
// role is rejected with 403: the caller is authenticated, just not allowed.
func (s *Server) GuardRole(required models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := extractBearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.principals.VerifyToken(r.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired),
				errors.Is(err, common.ErrTokenSignatureInvalid),
				errors.Is(err, common.ErrTokenMalformed),
				errors.Is(err, common.ErrTokenRevoked):
				// One generic body for every authentication failure.
				writeError(w, http.StatusUnauthorized, "invalid token")
			default:
				s.logger.Error(r.Context(), "token verification failed", "error", err.Error())
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		if required != "" && claims.Role != required {
			writeError(w, http.StatusForbidden, common.ErrorInsufficientRole.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", false
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", false
	}
	return tokenString, true
}
