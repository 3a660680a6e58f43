// Package events fans order, table and payment state changes out to
// connected websocket clients. Delivery is best effort and strictly
// tenant-scoped: a client only ever receives events for the tenant of
// its verified claim.
package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/comandapos/comanda-app/utils"
)

const (
	EventOrderUpdate    = "order_update"
	EventOrderClosed    = "order_closed"
	EventOrderCancelled = "order_cancelled"
	EventTableUpdate    = "table_update"
	EventPaymentUpdate  = "payment_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher is what the services depend on; the Hub is the production
// implementation.
type Publisher interface {
	Publish(tenantID, event string, payload interface{})
}

type client struct {
	tenantID string
	role     string
}

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client)}
}

// Register subscribes conn to its tenant's broadcast group. The tenant
// id must come from the verified token claim, never from client input.
func (h *Hub) Register(conn *websocket.Conn, tenantID, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = client{tenantID: tenantID, role: role}
}

// Unregister drops the subscription and closes the connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount reports the number of live subscribers for a tenant.
func (h *Hub) ClientCount(tenantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, cl := range h.clients {
		if cl.tenantID == tenantID {
			n++
		}
	}
	return n
}

// Publish sends the event to every client of the given tenant and
// nobody else. Write errors are logged and the client is skipped; a
// dead connection is cleaned up by its read loop.
func (h *Hub) Publish(tenantID, event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		utils.ErrorLogger.Printf("events: marshal %s failed: %v", event, err)
		return
	}

	for conn, cl := range h.clients {
		if cl.tenantID != tenantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("events: send %s to %s client failed: %v", event, cl.role, err)
		}
	}
}
