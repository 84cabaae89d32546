package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userHttp "github.com/nekogravitycat/resource-share-backend/internal/user/http"
)

func TestAuthFlow(t *testing.T) {
	setupApp(t)

	// Variable shared between sub-tests
	var accessToken string

	t.Run("Register User", func(t *testing.T) {
		payload := userHttp.RegisterRequest{
			Email:       "test@example.com",
			Password:    "password123",
			DisplayName: "Tester",
		}
		w := executeRequest("POST", "/v1/auth/register", payload, "")
		require.Equal(t, http.StatusCreated, w.Code, "Register should succeed")

		resp := decode[userHttp.MeResponse](t, w)
		assert.Equal(t, "test@example.com", resp.User.Email)
	})

	t.Run("Duplicate Register", func(t *testing.T) {
		payload := userHttp.RegisterRequest{
			Email:    "test@example.com",
			Password: "password123",
		}
		w := executeRequest("POST", "/v1/auth/register", payload, "")
		assert.Equal(t, http.StatusConflict, w.Code, "Duplicate email should return 409")
	})

	t.Run("Register With Short Password", func(t *testing.T) {
		payload := userHttp.RegisterRequest{Email: "short@example.com", Password: "123"}
		w := executeRequest("POST", "/v1/auth/register", payload, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Login", func(t *testing.T) {
		payload := userHttp.LoginRequest{Email: "test@example.com", Password: "password123"}
		w := executeRequest("POST", "/v1/auth/login", payload, "")
		require.Equal(t, http.StatusOK, w.Code, "Login should succeed")

		resp := decode[userHttp.LoginResponse](t, w)
		assert.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
		accessToken = resp.AccessToken
	})

	t.Run("Get Current User", func(t *testing.T) {
		w := executeRequest("GET", "/v1/me", nil, accessToken)
		require.Equal(t, http.StatusOK, w.Code, "Get Me should succeed")

		resp := decode[userHttp.MeResponse](t, w)
		assert.Equal(t, "test@example.com", resp.User.Email)
	})

	t.Run("Login with Wrong Password", func(t *testing.T) {
		payload := userHttp.LoginRequest{Email: "test@example.com", Password: "wrongpassword"}
		w := executeRequest("POST", "/v1/auth/login", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "Should return 401 for wrong password")
	})

	t.Run("Login with Non-existent Email", func(t *testing.T) {
		payload := userHttp.LoginRequest{Email: "ghost@example.com", Password: "password123"}
		w := executeRequest("POST", "/v1/auth/login", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "Should return 401 for non-existent user")
	})

	t.Run("Me without Token", func(t *testing.T) {
		w := executeRequest("GET", "/v1/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me with Garbage Token", func(t *testing.T) {
		w := executeRequest("GET", "/v1/me", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	setupApp(t)

	w := executeRequest("GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
