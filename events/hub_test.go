package events_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/utils"
)

// hubServer upgrades incoming connections and registers them on the hub
// under the tenant named in the query string, the same way the events
// controller does after verifying the claim.
func hubServer(t *testing.T, hub *events.Hub) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 4)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(conn, r.URL.Query().Get("tenant"), "waiter")
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)
	return srv, serverConns
}

func dial(t *testing.T, srv *httptest.Server, tenantID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?tenant=" + tenantID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, hub *events.Hub, tenantID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(tenantID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("tenant %s never reached %d clients, have %d", tenantID, want, hub.ClientCount(tenantID))
}

func TestHubPublishIsTenantScoped(t *testing.T) {
	utils.InitLogger()
	hub := events.NewHub()
	srv, _ := hubServer(t, hub)

	clientA := dial(t, srv, "tenant-a")
	clientB := dial(t, srv, "tenant-b")
	waitForCount(t, hub, "tenant-a", 1)
	waitForCount(t, hub, "tenant-b", 1)

	hub.Publish("tenant-a", events.EventOrderUpdate, map[string]uint{"order_id": 7})

	require.NoError(t, clientA.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := clientA.ReadMessage()
	require.NoError(t, err)

	var msg events.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, events.EventOrderUpdate, msg.Event)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), data["order_id"])

	// The other tenant's client must see nothing.
	require.NoError(t, clientB.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err = clientB.ReadMessage()
	assert.Error(t, err)
}

func TestHubClientCountTracksSubscriptions(t *testing.T) {
	utils.InitLogger()
	hub := events.NewHub()
	srv, serverConns := hubServer(t, hub)

	assert.Equal(t, 0, hub.ClientCount("tenant-a"))

	dial(t, srv, "tenant-a")
	dial(t, srv, "tenant-a")
	dial(t, srv, "tenant-b")
	waitForCount(t, hub, "tenant-a", 2)
	waitForCount(t, hub, "tenant-b", 1)
	assert.Equal(t, 0, hub.ClientCount("tenant-c"))

	for i := 0; i < 3; i++ {
		hub.Unregister(<-serverConns)
	}
	assert.Equal(t, 0, hub.ClientCount("tenant-a"))
	assert.Equal(t, 0, hub.ClientCount("tenant-b"))
}
