package auth

import (
	"context"
	"net/http"
	"strings"

	applog "fintastic/internal/log"
)

type ctxKey string

const ownerKey ctxKey = "owner_id"

// WithOwner returns a copy of ctx carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext returns the authenticated owner id, or "" outside an
// authenticated request.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// OwnerOf is OwnerFromContext for a request.
func OwnerOf(r *http.Request) string {
	return OwnerFromContext(r.Context())
}

// Middleware rejects requests without a valid bearer token. onFail writes the
// 401 response.
func (s *TokenService) Middleware(onFail func(w http.ResponseWriter, r *http.Request, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			scheme, tokenStr, ok := strings.Cut(h, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
				onFail(w, r, "Not authorized, no token")
				return
			}

			owner, err := s.ParseToken(strings.TrimSpace(tokenStr))
			if err != nil {
				applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected bearer token",
					applog.FieldErrorType, applog.ErrorTypeAuth,
					applog.FieldError, err)
				onFail(w, r, "Not authorized, token failed")
				return
			}

			ctx := WithOwner(r.Context(), owner)
			logger := applog.FromContext(ctx).With(applog.FieldOwnerID, owner)
			next.ServeHTTP(w, r.WithContext(applog.NewContext(ctx, logger)))
		})
	}
}
