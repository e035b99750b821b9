package userapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapi "github.com/goliatone/go-user-api"
)

func newTestApp(t *testing.T) (*fiber.App, userapi.TokenService, *memoryUsers) {
	t.Helper()

	cfg := testConfig()
	store := newMemoryUsers()
	service := userapi.NewUserService(store)
	provider := userapi.NewUserProvider(store)
	tokens := userapi.NewTokenService(cfg, nil)

	controller := userapi.NewUserController(service, provider, tokens)
	guard := userapi.NewGuard(cfg, tokens)

	app := fiber.New()
	userapi.RegisterUserRoutes(app, controller, guard)

	return app, tokens, store
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTestUser(t *testing.T, app *fiber.App, name, email, password string) map[string]any {
	t.Helper()

	resp, err := app.Test(jsonRequest("POST", "/users", map[string]string{
		"name": name, "email": email, "password": password,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	return decodeBody(t, resp)
}

func bearerToken(t *testing.T, tokens userapi.TokenService, id, email string) string {
	t.Helper()

	token, err := tokens.Generate(staticIdentity{id: id, email: email})
	require.NoError(t, err)
	return token
}

func TestCreateUserEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)

	t.Run("creates a user and never echoes the password", func(t *testing.T) {
		body := createTestUser(t, app, "Test User", "test@test.com", "password")

		assert.NotEmpty(t, body["id"])
		assert.Equal(t, "Test User", body["name"])
		assert.Equal(t, "test@test.com", body["email"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "password_hash")
	})

	t.Run("duplicate email responds 409", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/users", map[string]string{
			"name": "Someone Else", "email": "test@test.com", "password": "password",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid payload responds 400", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/users", map[string]string{
			"name": "No Email", "password": "password",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGuardedRoutesRejectWithoutToken(t *testing.T) {
	app, _, store := newTestApp(t)
	created := createTestUser(t, app, "Test User", "test@test.com", "password")
	id := created["id"].(string)

	requests := []struct {
		name string
		req  *http.Request
	}{
		{"find by email", jsonRequest("GET", "/users/test@test.com", nil)},
		{"update", jsonRequest("PATCH", "/users/"+id, map[string]string{"name": "Updated"})},
		{"delete", jsonRequest("DELETE", "/users/"+id, nil)},
	}

	for _, tt := range requests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(tt.req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}

	// the guard short-circuited before the service: nothing changed
	user, err := store.GetByEmail(context.Background(), "test@test.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Test User", user.Name)
}

func TestGuardedRoutesRejectBadTokens(t *testing.T) {
	app, _, _ := newTestApp(t)
	createTestUser(t, app, "Test User", "test@test.com", "password")

	t.Run("garbage token", func(t *testing.T) {
		req := jsonRequest("GET", "/users/test@test.com", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := jsonRequest("GET", "/users/test@test.com", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestFindByEmailEndpoint(t *testing.T) {
	app, tokens, _ := newTestApp(t)
	created := createTestUser(t, app, "Test User", "test@test.com", "password")
	token := bearerToken(t, tokens, created["id"].(string), "test@test.com")

	t.Run("returns the user", func(t *testing.T) {
		req := jsonRequest("GET", "/users/test@test.com", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, created["id"], body["id"])
		assert.Equal(t, "test@test.com", body["email"])
	})

	t.Run("unknown email responds 404 with the email in the message", func(t *testing.T) {
		req := jsonRequest("GET", "/users/nonexistent@test.com", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		body := decodeBody(t, resp)
		errBody := body["error"].(map[string]any)
		assert.Contains(t, errBody["message"], "User with email nonexistent@test.com not found")
	})
}

func TestUpdateUserEndpoint(t *testing.T) {
	app, tokens, store := newTestApp(t)
	created := createTestUser(t, app, "Test User", "test@test.com", "password")
	id := created["id"].(string)
	token := bearerToken(t, tokens, id, "test@test.com")

	t.Run("merges the patch", func(t *testing.T) {
		req := jsonRequest("PATCH", "/users/"+id, map[string]string{"name": "Updated"})
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Updated", body["name"])
		assert.Equal(t, "test@test.com", body["email"])

		stored, err := store.GetByEmail(context.Background(), "test@test.com")
		require.NoError(t, err)
		assert.NoError(t, userapi.ComparePasswordAndHash("password", stored.PasswordHash))
	})

	t.Run("unknown id responds 404", func(t *testing.T) {
		req := jsonRequest("PATCH", "/users/0b0f7a66-1111-4222-8333-444455556666", map[string]string{"name": "X"})
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestRemoveUserEndpoint(t *testing.T) {
	app, tokens, _ := newTestApp(t)
	created := createTestUser(t, app, "Test User", "test@test.com", "password")
	id := created["id"].(string)
	token := bearerToken(t, tokens, id, "test@test.com")

	t.Run("removes and acknowledges", func(t *testing.T) {
		req := jsonRequest("DELETE", "/users/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, fmt.Sprintf("User with id %s removed successfully.", id), body["message"])
	})

	t.Run("second delete responds 404", func(t *testing.T) {
		req := jsonRequest("DELETE", "/users/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestPrincipalFromContext(t *testing.T) {
	cfg := testConfig()
	tokens := userapi.NewTokenService(cfg, nil)
	guard := userapi.NewGuard(cfg, tokens)

	app := fiber.New()
	app.Get("/whoami", guard, func(c *fiber.Ctx) error {
		principal, ok := userapi.PrincipalFromContext(c, cfg)
		require.True(t, ok)
		return c.JSON(fiber.Map{
			"subject": principal.Subject(),
			"email":   principal.Email(),
		})
	})

	t.Run("returns the claims the guard attached", func(t *testing.T) {
		token := bearerToken(t, tokens, "user-123", "test@test.com")

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "user-123", body["subject"])
		assert.Equal(t, "test@test.com", body["email"])
	})

	t.Run("reports absence on an unguarded request", func(t *testing.T) {
		open := fiber.New()
		open.Get("/open", func(c *fiber.Ctx) error {
			_, ok := userapi.PrincipalFromContext(c, cfg)
			assert.False(t, ok)
			return c.SendString("ok")
		})

		resp, err := open.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLoginEndpoint(t *testing.T) {
	app, _, _ := newTestApp(t)
	createTestUser(t, app, "Test User", "test@test.com", "password")

	t.Run("issues a token usable on guarded routes", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/auth/login", map[string]string{
			"email": "test@test.com", "password": "password",
		}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		token, _ := body["token"].(string)
		require.NotEmpty(t, token)

		req := jsonRequest("GET", "/users/test@test.com", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password responds 401", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/auth/login", map[string]string{
			"email": "test@test.com", "password": "wrong",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email responds 401, not 404", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/auth/login", map[string]string{
			"email": "nonexistent@test.com", "password": "password",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
