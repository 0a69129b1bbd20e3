package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/authgate/authgate/logger"
	"github.com/authgate/authgate/oauth2"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// SessionAuth requires a valid login-session token and stores the user id in
// the request context. It guards the authorize endpoint.
func (h *Handler) SessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return h.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
		}
		userID, err := h.sessions.Validate(token)
		if err != nil {
			return h.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
		}
		c.Set("user_id", userID)
		return next(c)
	}
}

// RequireScope resolves the bearer access token and requires the given scope
// on it. The resolved user (nil for client-credentials tokens) and scope set
// are stored in the request context.
func (h *Handler) RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return h.oauthError(c, http.StatusUnauthorized, "invalid_token")
			}
			user, scopes, err := h.engine.ResolveAccessToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, oauth2.ErrInvalidGrant) {
					return h.oauthError(c, http.StatusUnauthorized, "invalid_token")
				}
				if logger.Log != nil {
					logger.Log.Error("bearer resolution failed", zap.Error(err))
				}
				return h.oauthError(c, http.StatusInternalServerError, "server_error")
			}
			if scope != "" && !containsScope(scopes, scope) {
				return h.oauthError(c, http.StatusForbidden, "insufficient_scope")
			}
			c.Set("user", user)
			c.Set("scopes", scopes)
			return next(c)
		}
	}
}

func containsScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

