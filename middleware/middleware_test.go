package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := models.JwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func newProtectedApp() (*fiber.App, *string) {
	app := fiber.New()
	var seenUserID string
	app.Get("/secure", Protect(testSecret), func(c *fiber.Ctx) error {
		seenUserID = UserID(c)
		return c.SendString("ok")
	})
	return app, &seenUserID
}

func request(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestProtectAcceptsValidToken(t *testing.T) {
	app, seenUserID := newProtectedApp()

	token := signToken(t, testSecret, "user-42", time.Now().Add(time.Hour))
	resp := request(t, app, "Bearer "+token)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-42", *seenUserID)
}

func TestProtectRejectsBadRequests(t *testing.T) {
	app, _ := newProtectedApp()

	expired := signToken(t, testSecret, "user-42", time.Now().Add(-time.Minute))
	wrongKey := signToken(t, []byte("other-secret"), "user-42", time.Now().Add(time.Hour))

	cases := map[string]string{
		"no header":       "",
		"not bearer":      "Token abc",
		"garbage token":   "Bearer not-a-jwt",
		"expired token":   "Bearer " + expired,
		"wrong signature": "Bearer " + wrongKey,
	}
	for name, header := range cases {
		resp := request(t, app, header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
	}
}
