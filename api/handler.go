// Package api exposes the HTTP boundary of authgate over Echo: user
// registration and login, the authorize and token endpoints, and the
// bearer-protected profile route.
package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/authgate/authgate/flow"
	"github.com/authgate/authgate/identity"
	"github.com/authgate/authgate/logger"
	"github.com/authgate/authgate/oauth2"
	"github.com/authgate/authgate/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Handler struct {
	engine     *oauth2.Engine
	regManager *flow.RegistrationManager
	logManager *flow.LoginManager
	clients    *flow.ClientVerifier
	sessions   *session.Manager
}

func NewHandler(engine *oauth2.Engine, reg *flow.RegistrationManager, log *flow.LoginManager, clients *flow.ClientVerifier, sessions *session.Manager) *Handler {
	return &Handler{engine: engine, regManager: reg, logManager: log, clients: clients, sessions: sessions}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/users", h.HandleRegistration)
	g.POST("/login", h.HandleLogin)

	g.GET("/oauth/authorize", h.HandleAuthorize, h.SessionAuth)
	g.POST("/oauth/token", h.HandleToken)

	g.GET("/users/me", h.HandleMe, h.RequireScope("profile:read"))
}

func (h *Handler) HandleRegistration(c echo.Context) error {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	user, err := h.regManager.Submit(c.Request().Context(), flow.Registration{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	})
	if err != nil {
		if errors.Is(err, flow.ErrPasswordTooShort) || errors.Is(err, oauth2.ErrDuplicate) {
			return h.Error(c, http.StatusBadRequest, "Invalid registration", err)
		}
		return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, userView(user))
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var body struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	user, err := h.logManager.Authenticate(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, oauth2.ErrInvalidCredentials) {
			return h.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
		}
		return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}

	token, expiresAt, err := h.sessions.Issue(user.ID)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"user":       userView(user),
	})
}

// HandleAuthorize runs the authorization-code issuance step for a logged-in
// user and redirects back to the client with the code. Client identity and
// redirect URI are validated before anything is minted; validation failures
// are never redirected to the unverified URI.
func (h *Handler) HandleAuthorize(c echo.Context) error {
	userID := c.Get("user_id").(uuid.UUID)

	if rt := c.QueryParam("response_type"); rt != "code" {
		return h.oauthError(c, http.StatusBadRequest, "unsupported_response_type")
	}
	clientID, err := uuid.Parse(c.QueryParam("client_id"))
	if err != nil {
		return h.oauthError(c, http.StatusBadRequest, "invalid_request")
	}
	redirectURI := c.QueryParam("redirect_uri")

	client, err := h.engine.ValidateAuthorizationRequest(c.Request().Context(), clientID, redirectURI)
	if err != nil {
		return h.grantError(c, err)
	}

	code, err := h.engine.IssueAuthorizationCode(c.Request().Context(), client, userID, redirectURI, c.QueryParam("scope"))
	if err != nil {
		return h.grantError(c, err)
	}

	location, err := url.Parse(redirectURI)
	if err != nil {
		return h.oauthError(c, http.StatusBadRequest, "invalid_request")
	}
	q := location.Query()
	q.Set("code", code)
	if state := c.QueryParam("state"); state != "" {
		q.Set("state", state)
	}
	location.RawQuery = q.Encode()
	return c.Redirect(http.StatusFound, location.String())
}

type tokenRequest struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	Code         string `json:"code" form:"code"`
	RedirectURI  string `json:"redirect_uri" form:"redirect_uri"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	Scope        string `json:"scope" form:"scope"`
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// HandleToken is the token endpoint. The client authenticates with HTTP Basic
// or body credentials; the grant_type field selects the grant.
func (h *Handler) HandleToken(c echo.Context) error {
	var body tokenRequest
	if err := c.Bind(&body); err != nil {
		return h.oauthError(c, http.StatusBadRequest, "invalid_request")
	}

	clientID, secret := body.ClientID, body.ClientSecret
	if id, s, ok := c.Request().BasicAuth(); ok {
		clientID, secret = id, s
	}
	cid, err := uuid.Parse(clientID)
	if err != nil {
		return h.oauthError(c, http.StatusUnauthorized, "invalid_client")
	}
	client, err := h.clients.Verify(c.Request().Context(), cid, secret)
	if err != nil {
		return h.grantError(c, err)
	}

	var grant *oauth2.Grant
	switch body.GrantType {
	case "authorization_code":
		grant, err = h.engine.ExchangeAuthorizationCode(c.Request().Context(), client, body.Code, body.RedirectURI)
	case "client_credentials":
		grant, err = h.engine.ClientCredentials(c.Request().Context(), client, body.Scope)
	case "refresh_token":
		grant, err = h.engine.Refresh(c.Request().Context(), client, body.RefreshToken)
	default:
		return h.oauthError(c, http.StatusBadRequest, "unsupported_grant_type")
	}
	if err != nil {
		return h.grantError(c, err)
	}

	resp := map[string]interface{}{
		"access_token":  grant.AccessToken,
		"token_type":    "Bearer",
		"refresh_token": grant.RefreshToken,
		"expires_in":    int(time.Until(grant.ExpiresAt).Seconds()),
		"expires":       grant.ExpiresAt.Format(time.RFC3339),
		"scope":         oauth2.JoinScope(grant.Scopes),
	}
	if grant.UserID != nil {
		resp["user_id"] = grant.UserID.String()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) HandleMe(c echo.Context) error {
	user, _ := c.Get("user").(*identity.User)
	if user == nil {
		return h.oauthError(c, http.StatusUnauthorized, "invalid_token")
	}
	return c.JSON(http.StatusOK, userView(user))
}

func userView(u *identity.User) map[string]interface{} {
	view := map[string]interface{}{
		"id":               u.ID,
		"username":         u.Username,
		"email":            u.Email,
		"first_name":       u.FirstName,
		"last_name":        u.LastName,
		"full_name":        u.FullName(),
		"password_changed": u.PasswordChanged.Format(time.RFC3339),
	}
	if photo := u.Photo(); photo != "" {
		view["photo"] = photo
	}
	return view
}

// grantError maps taxonomy errors onto OAuth wire errors. The mapping is
// deliberately coarse: invalid_grant covers expired, consumed, and mismatched
// credentials alike so callers cannot probe which check failed.
func (h *Handler) grantError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, oauth2.ErrUnknownClient), errors.Is(err, oauth2.ErrInvalidCredentials):
		return h.oauthError(c, http.StatusUnauthorized, "invalid_client")
	case errors.Is(err, oauth2.ErrInvalidGrant):
		return h.oauthError(c, http.StatusBadRequest, "invalid_grant")
	case errors.Is(err, oauth2.ErrInvalidRedirectURI):
		return h.oauthError(c, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, oauth2.ErrScopeNotAllowed):
		return h.oauthError(c, http.StatusBadRequest, "invalid_scope")
	default:
		if logger.Log != nil {
			logger.Log.Error("grant failed", zap.Error(err))
		}
		return h.oauthError(c, http.StatusInternalServerError, "server_error")
	}
}

func (h *Handler) oauthError(c echo.Context, status int, code string) error {
	return c.JSON(status, map[string]string{"error": code})
}

// Error is the response helper for the non-OAuth routes.
func (h *Handler) Error(c echo.Context, code int, message string, err error) error {
	resp := map[string]interface{}{
		"status": message,
		"code":   code,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	if code >= http.StatusInternalServerError && logger.Log != nil {
		logger.Log.Error(message, zap.Error(err))
	}
	return c.JSON(code, resp)
}
