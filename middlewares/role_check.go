package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuetracker/billiard-app/utils"
)

// RequireAdmin gates admin-only routes. Staff roles are just 'admin'
// and 'staff'; admin implies everything staff can do.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if userRole != "admin" {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff allows staff and admin.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if userRole != "staff" && userRole != "admin" {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("staff access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
