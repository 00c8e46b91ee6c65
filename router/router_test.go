package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/router"
)

// The per-IP limiter must sit in front of every registered route, not
// just the login group.
func TestGlobalRateLimiterCoversRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	r := router.SetupRouter(db)

	var limited bool
	for i := 0; i < 55; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "192.0.2.7:4000"
		r.ServeHTTP(w, req)

		if i < 50 {
			assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		} else if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst over the window should be rejected")
}
