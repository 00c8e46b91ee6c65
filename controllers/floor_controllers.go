package controllers

import (
	"net/http"

	"github.com/cuetracker/billiard-app/floor"
	"github.com/cuetracker/billiard-app/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FloorHandler -> websocket endpoint for the live floor view. Clients
// only listen; every mutation still goes through the HTTP API.
func FloorHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != models.RoleStaff && role != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	floor.RegisterClient(ws, role)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	floor.UnregisterClient(ws)
}
