package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/auth/signup", s.Signup)

	valid := `{"username":"alice","email":"Alice@Example.com","password":"Str0ngPassword!","first_name":"Alice","last_name":"Smith"}`

	t.Run("Created", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/signup", valid)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "alice", body.User.Username)
	})

	t.Run("Duplicate email is case-insensitive", func(t *testing.T) {
		dup := `{"username":"alice2","email":"ALICE@example.com","password":"Str0ngPassword!"}`
		resp := postJSON(t, app, "/auth/signup", dup)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		dup := `{"username":"alice","email":"other@example.com","password":"Str0ngPassword!"}`
		resp := postJSON(t, app, "/auth/signup", dup)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Weak password", func(t *testing.T) {
		weak := `{"username":"bob","email":"bob@example.com","password":"short"}`
		resp := postJSON(t, app, "/auth/signup", weak)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Invalid email", func(t *testing.T) {
		bad := `{"username":"bob","email":"not-an-email","password":"Str0ngPassword!"}`
		resp := postJSON(t, app, "/auth/signup", bad)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Missing fields", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/signup", `{"username":"bob"}`)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)

	signup := `{"username":"alice","email":"alice@example.com","password":"Str0ngPassword!"}`
	resp := postJSON(t, app, "/auth/signup", signup)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	t.Run("Success", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", `{"email":"alice@example.com","password":"Str0ngPassword!"}`)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", `{"email":"alice@example.com","password":"WrongPassword1!"}`)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Unknown email", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", `{"email":"nobody@example.com","password":"Str0ngPassword!"}`)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
