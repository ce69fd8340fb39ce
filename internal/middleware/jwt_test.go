package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdine/qrdine-server/internal/utils"
)

const testSecret = "unit-test-secret"

func runWith(t *testing.T, mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "chef", "111", "chef@example.com", 5)
	require.NoError(t, err)

	rec, c := runWith(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get("user_id"))
	assert.Equal(t, "chef", c.Get("role"))
	assert.Equal(t, "111", c.Get("phone"))
	assert.Equal(t, true, c.Get("authenticated"))
}

func TestJWTAuthRejects(t *testing.T) {
	rec, _ := runWith(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runWith(t, JWTAuth(testSecret), "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with another secret.
	at, err := utils.NewAccessToken("other-secret", 1, "admin", "", "", 5)
	require.NoError(t, err)
	rec, _ = runWith(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	// No token: anonymous passthrough, handler still runs.
	rec, c := runWith(t, OptionalJWTAuth(testSecret), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get("authenticated"))

	// With a token the full validation applies.
	at, err := utils.NewAccessToken(testSecret, 9, "customer", "222", "", 5)
	require.NoError(t, err)
	rec, c = runWith(t, OptionalJWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer", c.Get("role"))

	// A present-but-bad token is still rejected, not downgraded.
	rec, _ = runWith(t, OptionalJWTAuth(testSecret), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, allowed ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		h := RequireRole(allowed...)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("admin", "admin"))
	assert.Equal(t, http.StatusOK, run("chef", "chef", "admin"))
	assert.Equal(t, http.StatusForbidden, run("customer", "chef", "admin"))
	assert.Equal(t, http.StatusForbidden, run("", "admin"))
}
