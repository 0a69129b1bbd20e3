package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/domain"
	"github.com/authgate/authgate/flow"
	"github.com/authgate/authgate/oauth2"
	"github.com/authgate/authgate/persistence"
	"github.com/authgate/authgate/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func testServer(t *testing.T) (*echo.Echo, domain.Storage) {
	t.Helper()

	storage, err := persistence.NewStorage("sqlite", filepath.Join(t.TempDir(), "authgate_test.db"), true)
	if err != nil {
		t.Fatalf("failed to setup storage: %v", err)
	}

	cfg := &config.Config{
		SessionSecret:      "test-secret",
		SessionTTL:         time.Hour,
		PasswordSaltBytes:  16,
		PasswordIterations: 1000,
		PasswordKeyLength:  32,
		PasswordDigest:     "sha256",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		AuthCodeTTL:        time.Minute,
		TokenLength:        64,
	}

	hasher := flow.NewPBKDF2Hasher(cfg.PasswordSaltBytes, cfg.PasswordIterations, cfg.PasswordKeyLength, cfg.PasswordDigest)
	engine := oauth2.NewEngine(storage, storage, storage, storage, oauth2.EngineOptions{
		TokenLength:     cfg.TokenLength,
		AuthCodeTTL:     cfg.AuthCodeTTL,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	h := NewHandler(
		engine,
		flow.NewRegistrationManager(storage, hasher),
		flow.NewLoginManager(storage, hasher),
		flow.NewClientVerifier(storage),
		session.NewManager(cfg.SessionSecret, cfg.SessionTTL),
	)

	e := echo.New()
	g := e.Group("")
	h.RegisterRoutes(g)
	return e, storage
}

func doJSON(e *echo.Echo, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doForm(e *echo.Echo, path string, form url.Values, clientID, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.SetBasicAuth(clientID, secret)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAuthorizationCodeFlow(t *testing.T) {
	e, storage := testServer(t)

	// Register and log in.
	rec := doJSON(e, http.MethodPost, "/users", map[string]string{
		"username":   "tester",
		"email":      "tester@example.com",
		"first_name": "John",
		"last_name":  "Doe",
		"password":   "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("registration failed with code %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/login", map[string]string{
		"username": "tester",
		"password": "password123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with code %d: %s", rec.Code, rec.Body.String())
	}
	sessionToken, _ := decode(t, rec)["token"].(string)
	if sessionToken == "" {
		t.Fatal("login response missing session token")
	}

	client := &oauth2.Client{
		ID:           uuid.New(),
		Secret:       "t0p$3cret",
		Name:         "Sample Client Application",
		RedirectURIs: []string{"https://app/cb"},
		Scopes:       []string{"profile:read", "profile:update"},
	}
	if err := storage.CreateClient(context.Background(), client); err != nil {
		t.Fatal(err)
	}

	// Authorize.
	authHeader := http.Header{echo.HeaderAuthorization: []string{"Bearer " + sessionToken}}
	authorizeURL := "/oauth/authorize?response_type=code&client_id=" + client.ID.String() +
		"&redirect_uri=" + url.QueryEscape("https://app/cb") + "&state=xyz"
	rec = doJSON(e, http.MethodGet, authorizeURL, nil, authHeader)
	if rec.Code != http.StatusFound {
		t.Fatalf("authorize returned %d: %s", rec.Code, rec.Body.String())
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	code := location.Query().Get("code")
	if code == "" {
		t.Fatalf("redirect %q carries no code", location)
	}
	if location.Query().Get("state") != "xyz" {
		t.Errorf("state not echoed back: %q", location)
	}

	// Exchange.
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {"https://app/cb"},
	}
	rec = doForm(e, "/oauth/token", form, client.ID.String(), client.Secret)
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange returned %d: %s", rec.Code, rec.Body.String())
	}
	tokenResp := decode(t, rec)
	accessToken, _ := tokenResp["access_token"].(string)
	refreshToken, _ := tokenResp["refresh_token"].(string)
	if accessToken == "" || refreshToken == "" {
		t.Fatalf("token response incomplete: %v", tokenResp)
	}
	if tokenResp["user_id"] == nil {
		t.Error("code exchange should carry the approving user")
	}
	if tokenResp["token_type"] != "Bearer" {
		t.Errorf("token_type = %v", tokenResp["token_type"])
	}

	// The protected profile route accepts the bearer token.
	rec = doJSON(e, http.MethodGet, "/users/me", nil, http.Header{echo.HeaderAuthorization: []string{"Bearer " + accessToken}})
	if rec.Code != http.StatusOK {
		t.Fatalf("/users/me returned %d: %s", rec.Code, rec.Body.String())
	}
	if me := decode(t, rec); me["username"] != "tester" || me["full_name"] != "John Doe" {
		t.Errorf("unexpected profile: %v", me)
	}

	// The code was single use.
	rec = doForm(e, "/oauth/token", form, client.ID.String(), client.Secret)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second exchange returned %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] != "invalid_grant" {
		t.Errorf("second exchange error = %v", body["error"])
	}

	// Refresh rotates the pair; the stale refresh token dies.
	refreshForm := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	rec = doForm(e, "/oauth/token", refreshForm, client.ID.String(), client.Secret)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", rec.Code, rec.Body.String())
	}
	rotated := decode(t, rec)
	if rotated["access_token"] == accessToken || rotated["refresh_token"] == refreshToken {
		t.Error("refresh did not rotate the pair")
	}

	rec = doForm(e, "/oauth/token", refreshForm, client.ID.String(), client.Secret)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("stale refresh returned %d", rec.Code)
	}

	// The rotated old access token is gone too.
	rec = doJSON(e, http.MethodGet, "/users/me", nil, http.Header{echo.HeaderAuthorization: []string{"Bearer " + accessToken}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("rotated access token still accepted: %d", rec.Code)
	}
}

func TestClientCredentialsFlow(t *testing.T) {
	e, storage := testServer(t)

	client := &oauth2.Client{
		ID:           uuid.New(),
		Secret:       "t0p$3cret",
		Name:         "Worker Service",
		RedirectURIs: []string{"https://app/cb"},
		Scopes:       []string{"users:read"},
	}
	if err := storage.CreateClient(context.Background(), client); err != nil {
		t.Fatal(err)
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	rec := doForm(e, "/oauth/token", form, client.ID.String(), client.Secret)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant returned %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["user_id"] != nil {
		t.Error("client-credentials grant must not carry a user")
	}
	if resp["scope"] != "users:read" {
		t.Errorf("scope = %v", resp["scope"])
	}

	// No user behind the token, so the profile route refuses it.
	accessToken, _ := resp["access_token"].(string)
	rec = doJSON(e, http.MethodGet, "/users/me", nil, http.Header{echo.HeaderAuthorization: []string{"Bearer " + accessToken}})
	if rec.Code != http.StatusForbidden && rec.Code != http.StatusUnauthorized {
		t.Errorf("/users/me with client token returned %d", rec.Code)
	}
}

func TestTokenEndpointRejectsBadClient(t *testing.T) {
	e, storage := testServer(t)

	client := &oauth2.Client{
		ID:           uuid.New(),
		Secret:       "t0p$3cret",
		Name:         "Sample Client Application",
		RedirectURIs: []string{"https://app/cb"},
		Scopes:       []string{"profile:read"},
	}
	if err := storage.CreateClient(context.Background(), client); err != nil {
		t.Fatal(err)
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	rec := doForm(e, "/oauth/token", form, client.ID.String(), "wrong-secret")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret returned %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] != "invalid_client" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAuthorizeRequiresSession(t *testing.T) {
	e, _ := testServer(t)

	rec := doJSON(e, http.MethodGet, "/oauth/authorize?response_type=code", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated authorize returned %d", rec.Code)
	}
}

func TestUnsupportedGrantType(t *testing.T) {
	e, storage := testServer(t)

	client := &oauth2.Client{
		ID:           uuid.New(),
		Secret:       "t0p$3cret",
		Name:         "Sample Client Application",
		RedirectURIs: []string{"https://app/cb"},
		Scopes:       []string{"profile:read"},
	}
	if err := storage.CreateClient(context.Background(), client); err != nil {
		t.Fatal(err)
	}

	form := url.Values{"grant_type": {"password"}}
	rec := doForm(e, "/oauth/token", form, client.ID.String(), client.Secret)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported grant returned %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] != "unsupported_grant_type" {
		t.Errorf("error = %v", body["error"])
	}
}
