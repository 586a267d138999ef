package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"costos/internal/domain/auth"
)

// CompanyResolver looks up the caller's current company. It is consulted on
// every request since creating or joining a company does not reissue tokens.
type CompanyResolver interface {
	CompanyIDForUser(ctx context.Context, userID string) (string, error)
}

func Auth(secret string, companies CompanyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user := auth.UserContext{
				UserID:    claims.UserID,
				RoleID:    claims.RoleID,
				RoleName:  claims.RoleName,
				SessionID: claims.SessionID,
			}
			if companies != nil {
				companyID, err := companies.CompanyIDForUser(r.Context(), claims.UserID)
				if err != nil {
					slog.Warn("company lookup failed", "userId", claims.UserID, "err", err)
				}
				user.CompanyID = companyID
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
