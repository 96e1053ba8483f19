package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guesthouse-backend/models"
	"guesthouse-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(tokens *services.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(), Auth(tokens))
	r.GET("/whoami", func(c *gin.Context) {
		actor := Actor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestExtractToken(t *testing.T) {
	assert.Equal(t, "abc", extractToken("Bearer abc"))
	assert.Equal(t, "abc", extractToken("bearer  abc "))
	assert.Equal(t, "abc", extractToken("abc"))
}

func TestAuth(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	r := newAuthRouter(tokens)

	manager, err := tokens.Generate(models.User{ID: 4, Role: models.RoleManager})
	require.NoError(t, err)
	admin, err := tokens.Generate(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"no header", "/whoami", "", http.StatusUnauthorized, `"MISSING_TOKEN"`},
		{"bad token", "/whoami", "Bearer nope", http.StatusUnauthorized, `"INVALID_TOKEN"`},
		{"manager", "/whoami", "Bearer " + manager, http.StatusOK, `"user_id":4`},
		{"manager on admin route", "/admin", "Bearer " + manager, http.StatusForbidden, `"UNAUTHORIZED"`},
		{"admin on admin route", "/admin", "Bearer " + admin, http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Contains(t, w.Body.String(), tc.body)
			}
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}
