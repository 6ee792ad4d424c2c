package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const RoleAdmin = "admin"

// Refresher rotates a refresh token into a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Refresher: refresher,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie(tokens.AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return m.refresh(c, next, validator)
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			if validator != nil {
				if vErr := validator(claims); vErr != nil {
					return vErr
				}
			}
			setUserContext(c, claims)
			return next(c)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		return m.refresh(c, next, validator)
	}
}

func (m *AutoRefreshMiddleware) refresh(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc) error {
	refreshCookie, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || refreshCookie.Value == "" || m.Refresher == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	pair, err := m.Refresher.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
	}
	for _, ck := range pair.Cookies() {
		c.SetCookie(ck)
	}

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil {
		clearAuthCookies(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}

	if validator != nil {
		if vErr := validator(claims); vErr != nil {
			return vErr
		}
	}

	setUserContext(c, claims)
	return next(c)
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}
