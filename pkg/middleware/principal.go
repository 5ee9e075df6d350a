package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "bedbook/pkg/errors"
	httputil "bedbook/pkg/http"
	"bedbook/pkg/logger"
	"bedbook/pkg/model"
)

const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
	ClientIDHeader = "X-Client-ID"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}

// Principal reads the caller identity injected by the gateway. Requests for
// which public returns true may be anonymous; every other request without
// a user id is refused with 401.
func Principal(public func(r *http.Request) bool, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := model.Principal{
				UserID:   strings.TrimSpace(r.Header.Get(UserIDHeader)),
				Role:     strings.ToLower(strings.TrimSpace(r.Header.Get(UserRoleHeader))),
				ClientID: strings.TrimSpace(r.Header.Get(ClientIDHeader)),
			}
			if p.Role == "" {
				p.Role = model.RoleUser
			}

			if p.UserID == "" {
				if public != nil && public(r) {
					next.ServeHTTP(w, r)
					return
				}
				log.Warn("Missing principal",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
