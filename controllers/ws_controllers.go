package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StaffStreamHandler -> websocket stream for a staff role. The display
// still polls the REST snapshots on its interval; this push is only a
// latency optimization.
func StaffStreamHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)
	if role != models.RoleAdmin && role != models.RoleWaiter && role != models.RoleKitchen {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := &realtime.ConnSubscriber{Conn: ws}
	realtime.Subscribe(sub, realtime.Scope{Role: role})
	defer sub.Close()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// OrderTrackerHandler -> websocket stream scoped to one order, used by
// the customer-facing tracker. No auth: the public id is an unguessable
// uuid.
func OrderTrackerHandler(c *gin.Context) {
	publicID := c.Param("public_id")
	if publicID == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := &realtime.ConnSubscriber{Conn: ws}
	realtime.Subscribe(sub, realtime.Scope{OrderID: publicID})
	defer sub.Close()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
