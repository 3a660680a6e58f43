package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/utils"
)

// EventsController upgrades authenticated connections and parks them in
// the hub until the peer goes away.
type EventsController struct {
	Hub      *events.Hub
	upgrader websocket.Upgrader
}

func NewEventsController(hub *events.Hub, allowedOrigins []string) *EventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventsController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || allowed[origin]
			},
		},
	}
}

func (ec *EventsController) Subscribe(c *gin.Context) {
	tid := c.GetString("tenant_id")
	role := c.GetString("role")

	conn, err := ec.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("events: upgrade failed: %v", err)
		return
	}

	ec.Hub.Register(conn, tid, role)
	utils.InfoLogger.Printf("events: %s client connected for tenant %s", role, tid)

	// The read loop exists to detect the close; inbound frames are
	// not part of the protocol and are discarded.
	go func() {
		defer func() {
			ec.Hub.Unregister(conn)
			utils.InfoLogger.Printf("events: client disconnected from tenant %s", tid)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
