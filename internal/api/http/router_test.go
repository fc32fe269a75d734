package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bearer-auth/internal/api/http/handlers"
	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/events"
	"github.com/spec-kit/bearer-auth/internal/observability"
	"github.com/spec-kit/bearer-auth/internal/repository"
	"github.com/spec-kit/bearer-auth/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	tokens, err := auth.NewTokenService(
		base64.StdEncoding.EncodeToString([]byte("router-test-key-0123456789abcdef!")),
		repository.NewMemoryRevocationRepository(time.Minute),
		logger,
	)
	require.NoError(t, err)
	tokens.SetRecorder(metrics)

	dispatcher := events.NewInMemoryDispatcher()
	users := repository.NewMemoryUserRepository()
	details := service.NewUserDetailsService(users)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		BcryptCost: 4,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("bearer-auth", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService, details),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewAuthenticator(tokens, details, dispatcher, logger)),
		Metrics:        metrics,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (*nethttp.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, _ := call(t, app, nethttp.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	token := resp.Header.Get(fiber.HeaderAuthorization)
	require.True(t, strings.HasPrefix(token, auth.BearerPrefix))
	return token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, body := call(t, app, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = call(t, app, nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestSignupLoginMeLogoutFlow(t *testing.T) {
	app := newTestApp(t)

	resp, _ := call(t, app, nethttp.MethodPost, "/auth/signup", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, nethttp.MethodPost, "/auth/signup", "", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.EqualValues(t, nethttp.StatusConflict, body["status"])

	token := login(t, app, "alice", "pw")

	resp, body = call(t, app, nethttp.MethodGet, "/auth/me", token, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "USER", data["role"])

	resp, _ = call(t, app, nethttp.MethodPost, "/auth/logout", token, "")
	require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderSetCookie), "Authorization=;")

	resp, body = call(t, app, nethttp.MethodGet, "/auth/me", token, "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "token is not valid", body["message"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app := newTestApp(t)
	resp, _ := call(t, app, nethttp.MethodPost, "/auth/signup", "", `{"username":"bob","password":"pw"}`)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, nethttp.MethodPost, "/auth/login", "", `{"username":"bob","password":"nope"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestProtectedRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, _ := call(t, app, nethttp.MethodGet, "/auth/me", "", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, body := call(t, app, nethttp.MethodGet, "/auth/me", auth.BearerPrefix+"garbage", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "token is not valid", body["message"])

	for _, payload := range []string{
		`{"username":"root","password":"pw","role":"ADMIN"}`,
		`{"username":"carol","password":"pw"}`,
	} {
		resp, _ = call(t, app, nethttp.MethodPost, "/auth/signup", "", payload)
		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	}

	userToken := login(t, app, "carol", "pw")
	resp, _ = call(t, app, nethttp.MethodGet, "/admin/users/root", userToken, "")
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	adminToken := login(t, app, "root", "pw")
	resp, body = call(t, app, nethttp.MethodGet, "/admin/users/carol", adminToken, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "carol", body["data"].(map[string]interface{})["username"])

	resp, _ = call(t, app, nethttp.MethodGet, "/admin/users/nobody", adminToken, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	call(t, app, nethttp.MethodGet, "/auth/me", auth.BearerPrefix+"garbage", "")

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `token_verifications_total{result="malformed"} 1`)
	assert.Contains(t, string(raw), `authentications_total{outcome="rejected"} 1`)
}

func TestMetricsLabelsSurviveLaterRequests(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		call(t, app, nethttp.MethodGet, "/auth/me", "", "")
	}
	call(t, app, nethttp.MethodGet, "/admin/users/zzzzzzzzzzzz", "", "")
	call(t, app, nethttp.MethodPost, "/auth/signup", "", `{"username":"","password":"pw"}`)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	scrape := string(raw)

	assert.Contains(t, scrape, `http_errors_total{code="HTTP_ERROR",method="GET",path="/auth/me"} 3`)
	assert.Contains(t, scrape, `http_errors_total{code="VALIDATION_FAILED",method="POST",path="/auth/signup"} 1`)
	assert.NotContains(t, scrape, "zzzzzzzzzzzz")

	labels := regexp.MustCompile(`http_(?:errors|requests)_total\{[^}]*method="([^"]*)",path="([^"]*)"`)
	matches := labels.FindAllStringSubmatch(scrape, -1)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Contains(t, []string{nethttp.MethodGet, nethttp.MethodPost}, m[1], m[0])
		assert.True(t, strings.HasPrefix(m[2], "/"), m[0])
		assert.NotContains(t, m[2], "metrics", m[0])
	}
}
