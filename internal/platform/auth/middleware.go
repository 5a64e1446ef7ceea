package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UsernameKey    contextKey = "username"
	UserRolesKey   contextKey = "user_roles"
	BearerTokenKey contextKey = "bearer_token"
)

// Staff roles recognised by the booking service. "booking-admin" is treated
// as a wildcard by RequireRole.
const (
	RoleAdmin         = "booking-admin"
	RoleCourtUser     = "court-booking"
	RoleProbationUser = "probation-booking"
)

type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// JWTMiddleware validates the Bearer token on every request and stashes the
// authenticated username and roles into the request context. Tokens are
// HMAC-signed by the signing gateway that fronts all HMPPS staff services.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token carries no username")
			}

			ctx := WithUser(c.Request().Context(), claims.Username, claims.Roles)
			// The caller's own token is forwarded on upstream calls.
			ctx = context.WithValue(ctx, BearerTokenKey, raw)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevAuthMiddleware grants every request a fixed staff identity with all
// roles. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithUser(c.Request().Context(), "DEV_USER",
				[]string{RoleAdmin, RoleCourtUser, RoleProbationUser})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, username string, roles []string) context.Context {
	ctx = context.WithValue(ctx, UsernameKey, username)
	return context.WithValue(ctx, UserRolesKey, roles)
}

// UsernameFromContext returns the authenticated username, or "" when absent.
func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(UsernameKey).(string)
	return u
}

// RolesFromContext returns the authenticated user's roles.
func RolesFromContext(ctx context.Context) []string {
	r, _ := ctx.Value(UserRolesKey).([]string)
	return r
}

// BearerFromContext returns the caller's raw bearer token, or "" when absent.
func BearerFromContext(ctx context.Context) string {
	t, _ := ctx.Value(BearerTokenKey).(string)
	return t
}
