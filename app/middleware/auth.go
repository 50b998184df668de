package middleware

import (
	"context"
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-blog/app/dto/http"
	"github.com/vibast-solutions/ms-go-blog/app/entity"
	"github.com/vibast-solutions/ms-go-blog/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

type tokenVerifier interface {
	VerifyAccess(tokenString string) (*service.Claims, error)
	VerifyRefresh(tokenString string) (*service.Claims, error)
}

type userResolver interface {
	GetByID(ctx context.Context, id uint64) (*entity.User, error)
	UserIfRefreshTokenMatches(ctx context.Context, userID uint64, refreshToken string) (*entity.User, error)
}

type AuthMiddleware struct {
	tokens tokenVerifier
	users  userResolver
}

func NewAuthMiddleware(tokens tokenVerifier, users userResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// ResolveUser populates the request identity when a valid access token is
// present. A missing token, a failed verification, or a failed lookup all let
// the request proceed as anonymous; rejection belongs to the guards.
func (m *AuthMiddleware) ResolveUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return next(c)
		}

		claims, err := m.tokens.VerifyAccess(tokenString)
		if err != nil {
			logrus.Debug("Access token did not verify, proceeding anonymous")
			return next(c)
		}

		user, err := m.users.GetByID(c.Request().Context(), claims.UserID)
		if err != nil || user == nil {
			logrus.WithField("user_id", claims.UserID).Debug("Token user not found, proceeding anonymous")
			return next(c)
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		return next(c)
	}
}

// RequireAuth rejects requests for which ResolveUser produced no identity.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(ContextUserKey).(*entity.User); !ok {
			logrus.Debug("Rejecting unauthenticated request")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}
		return next(c)
	}
}

// RequireRefresh authenticates via the Refresh cookie: the token must verify
// against the refresh secret and match the fingerprint stored on the user row.
func (m *AuthMiddleware) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(service.RefreshTokenCookieName)
		if err != nil || cookie.Value == "" {
			logrus.Debug("Missing refresh cookie")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}

		claims, err := m.tokens.VerifyRefresh(cookie.Value)
		if err != nil {
			logrus.Debug("Refresh token did not verify")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}

		user, err := m.users.UserIfRefreshTokenMatches(c.Request().Context(), claims.UserID, cookie.Value)
		if err != nil || user == nil {
			logrus.WithField("user_id", claims.UserID).Debug("Refresh token does not match stored hash")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		return next(c)
	}
}

// extractAccessToken prefers the Authorization header over the Authentication
// cookie so API clients and browsers both work.
func extractAccessToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(service.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CurrentUser returns the identity resolved for this request, if any.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(ContextUserKey).(*entity.User)
	return user, ok
}
