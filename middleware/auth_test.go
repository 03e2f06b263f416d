package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/feedbackhub/feedbackhub/models"
	"github.com/feedbackhub/feedbackhub/policy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// identity simulates a passed AuthRequired stage for the given user.
func identity(id uint, role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(ContextUserIDKey, id)
		ctx.Set(ContextRoleKey, role)
		ctx.Next()
	}
}

func TestAdminRequired(t *testing.T) {
	testCases := []struct {
		name        string
		chain       []gin.HandlerFunc
		wantCode    int
		wantHandler bool
	}{
		{
			name:        "regular user is rejected before the handler runs",
			chain:       []gin.HandlerFunc{identity(7, models.RoleUser)},
			wantCode:    http.StatusForbidden,
			wantHandler: false,
		},
		{
			name:        "admin passes through",
			chain:       []gin.HandlerFunc{identity(3, models.RoleAdmin)},
			wantCode:    http.StatusOK,
			wantHandler: true,
		},
		{
			name:        "missing identity is unauthorized",
			chain:       nil,
			wantCode:    http.StatusUnauthorized,
			wantHandler: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handlerCalled := false
			router := gin.New()
			handlers := append(tc.chain, AdminRequired(), func(ctx *gin.Context) {
				handlerCalled = true
				ctx.Status(http.StatusOK)
			})
			router.GET("/stats/general", handlers...)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/stats/general", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantHandler, handlerCalled)
		})
	}
}

func TestActor(t *testing.T) {
	router := gin.New()
	var got policy.Actor
	var ok bool
	router.GET("/me", identity(42, models.RoleAdmin), func(ctx *gin.Context) {
		got, ok = Actor(ctx)
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.True(t, ok)
	assert.Equal(t, policy.Actor{ID: 42, Role: models.RoleAdmin}, got)
}

func TestActorDefaultsRoleToUser(t *testing.T) {
	router := gin.New()
	var got policy.Actor
	router.GET("/me", func(ctx *gin.Context) {
		ctx.Set(ContextUserIDKey, uint(9))
		got, _ = Actor(ctx)
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, models.RoleUser, got.Role)
}
