// Package middlewarectx содержит HTTP middleware: проверку JWT токена,
// проверку роли и ограничение частоты запросов.
//
// JWTMiddleware кладёт в контекст запроса models.Identity, которую
// обработчики получают через IdentityFromContext.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bloom-gym/internal/http/response"
	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey - ключ для models.Identity в контексте.
const IdentityKey Key = "identity"

// Authenticator проверяет токен и возвращает пользователя, от имени
// которого выполняется запрос.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// WithIdentity возвращает контекст с сохранённой Identity.
func WithIdentity(ctx context.Context, who models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, who)
}

// IdentityFromContext достаёт Identity, сохранённую JWTMiddleware.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	who, ok := ctx.Value(IdentityKey).(models.Identity)
	if !ok || who.UserID == "" {
		return models.Identity{}, false
	}
	return who, true
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден и пользователь существует, добавляет Identity в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authenticator Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized: token missing"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			who, err := authenticator.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized: invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
		})
	}
}

// RequireRole пропускает запрос, только если роль пользователя входит в roles.
// Должен стоять после JWTMiddleware.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, ok := IdentityFromContext(r.Context())
			if !ok {
				log.Warn("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !slices.Contains(roles, who.Role) {
				log.Warn("insufficient role",
					slog.String("user_id", who.UserID),
					slog.String("role", who.Role.String()),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden: insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
