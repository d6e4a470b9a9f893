package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const principalKey contextKey = "principal"

// jwtAuthMiddleware resolves the Bearer token into a principal and injects it
// into the request context.
func jwtAuthMiddleware(authSvc *service.AuthService, b *boundary) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				handleServiceError(w, r, &domain.ErrUnauthorized{
					Reason:  domain.ReasonMissingToken,
					Message: "Access token is required",
				}, b)
				return
			}

			principal, err := authSvc.Authenticate(r.Context(), token)
			if err != nil {
				handleServiceError(w, r, err, b)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAnyRole admits principals holding one of roles. It must run after
// jwtAuthMiddleware.
func requireAnyRole(b *boundary, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := service.Authorize(PrincipalFromContext(r.Context()), roles...); err != nil {
				handleServiceError(w, r, err, b)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireRole is requireAnyRole with a single role.
func requireRole(b *boundary, role string) func(http.Handler) http.Handler {
	return requireAnyRole(b, role)
}

// bulkheadMiddleware sheds requests once the in-flight cap is reached.
func bulkheadMiddleware(bh *resilience.Bulkhead, b *boundary) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := bh.TryAcquire(); err != nil {
				b.metrics.IncrInflightRejection()
				b.logger.Warn("request shed",
					zap.String("path", r.URL.Path),
					zap.Int("in_flight", bh.InFlight()),
				)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "server is busy, retry later", nil)
				return
			}
			defer bh.Release()
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext extracts the authenticated caller from context.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
