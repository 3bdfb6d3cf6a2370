package api

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signupAndToken creates an account through the API and returns its token.
func signupAndToken(t *testing.T, api humatest.TestAPI) string {
	t.Helper()

	resp := api.Post("/api/v1/auth/signup", map[string]any{
		"email":       "merchant@example.com",
		"password":    "correct horse battery",
		"shop_domain": "demo.myshopify.com",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupAndCurrentUser(t *testing.T) {
	_, api := setupTestServer(t)

	token := signupAndToken(t, api)

	resp := api.Get("/api/v1/users/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	user := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "merchant@example.com", user["email"])
	assert.Equal(t, "demo.myshopify.com", user["shop_domain"])
	assert.NotContains(t, user, "password_hash")
}

func TestCurrentUser_RequiresToken(t *testing.T) {
	_, api := setupTestServer(t)

	resp := api.Get("/api/v1/users/me")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	envelope := decodeEnvelope(t, resp.Body.Bytes())
	assert.Equal(t, false, envelope["success"])
}

func TestLogin(t *testing.T) {
	_, api := setupTestServer(t)
	signupAndToken(t, api)

	resp := api.Post("/api/v1/auth/login", map[string]any{
		"email":    "merchant@example.com",
		"password": "correct horse battery",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp.Body.Bytes())["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
}

func TestLogin_BadPassword(t *testing.T) {
	_, api := setupTestServer(t)
	signupAndToken(t, api)

	resp := api.Post("/api/v1/auth/login", map[string]any{
		"email":    "merchant@example.com",
		"password": "wrong password!",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSignup_DuplicateEmailConflict(t *testing.T) {
	_, api := setupTestServer(t)
	signupAndToken(t, api)

	resp := api.Post("/api/v1/auth/signup", map[string]any{
		"email":       "merchant@example.com",
		"password":    "correct horse battery",
		"shop_domain": "demo.myshopify.com",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}
