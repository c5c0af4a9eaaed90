package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// OwnerResolver resolves the owning user id of the resource a request
// targets. It re-fetches the resource independently of the handler.
type OwnerResolver func(r *http.Request) (int64, error)

// Middleware wires authentication and authorization checks for HTTP routes.
type Middleware struct {
	Tokens  *TokenIssuer
	Service *Service
	Logger  *slog.Logger
}

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer token, confirms the user still exists and
// attaches the principal to the request context. Any Authorization scheme
// other than Bearer counts as no token.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			httpx.RespondError(w, m.Logger, httpx.AuthenticationError("access token required"))
			return
		}
		raw := strings.TrimPrefix(header, bearerPrefix)

		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.RespondError(w, m.Logger, httpx.AuthenticationError("token expired"))
				return
			}
			httpx.RespondError(w, m.Logger, httpx.AuthenticationError("invalid token"))
			return
		}

		user, err := m.Service.Lookup(r.Context(), claims.UserID)
		if err != nil {
			if isNotFound(err) {
				// Valid signature but the account is gone.
				httpx.RespondError(w, m.Logger, httpx.AuthenticationError("user not found"))
				return
			}
			httpx.RespondError(w, m.Logger, err)
			return
		}

		principal := Principal{ID: user.ID, Email: user.Email, Role: user.Role.Name}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireRole passes requests whose principal holds the named role. Admin is
// a universal override.
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, httpx.AuthenticationError("authentication required"))
				return
			}
			if principal.Role != role && !principal.IsAdmin() {
				httpx.RespondError(w, m.Logger, httpx.AuthorizationError("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership passes admins and resource owners. An absent resource
// fails closed; a failing resolver is reported, never silently allowed or
// denied.
func (m Middleware) RequireOwnership(resolve OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, httpx.AuthenticationError("authentication required"))
				return
			}
			if principal.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}
			ownerID, err := resolve(r)
			if err != nil {
				var apiErr *httpx.Error
				switch {
				case isNotFound(err):
					// Absent resource is not "no owner restriction".
					httpx.RespondError(w, m.Logger, httpx.AuthorizationError("you can only modify your own content"))
				case errors.As(err, &apiErr) && apiErr.Kind == httpx.KindValidation:
					httpx.RespondError(w, m.Logger, err)
				default:
					httpx.RespondError(w, m.Logger, httpx.InternalError("error verifying permissions", err))
				}
				return
			}
			if principal.ID != ownerID {
				httpx.RespondError(w, m.Logger, httpx.AuthorizationError("you can only modify your own content"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
