package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mindforge/mindmap-api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	rec := env.do(jsonRequest(http.MethodPost, "/api/register", `{"email":"","password":"secret1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/register", `{"email":"a@b.com","password":"short"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	rec := env.do(jsonRequest(http.MethodPost, "/api/register", `{"fullName":"Ada","email":"a@b.com","password":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/register", `{"fullName":"Ada","email":"A@B.com","password":"secret1"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginSessionLogoutFlow(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	rec := env.do(jsonRequest(http.MethodPost, "/api/register", `{"fullName":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password is rejected.
	rec = env.do(jsonRequest(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"wrong-pass"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown account is indistinguishable from a wrong password.
	rec = env.do(jsonRequest(http.MethodPost, "/api/login", `{"email":"nobody@example.com","password":"secret1"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)

	// Introspection with the cookie reports the authenticated user.
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(sessionCookie)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "Ada Lovelace", body["fullName"])

	// Without it, the session is anonymous.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])

	// Logout expires the cookie.
	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			cleared = cookie
		}
	}
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestSessionWithBearerToken(t *testing.T) {
	env := newTestEnv(t, "http://unused.invalid")

	rec := env.do(jsonRequest(http.MethodPost, "/api/register", `{"fullName":"Ada","email":"ada@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/login", `{"email":"ada@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["authenticated"])
}
