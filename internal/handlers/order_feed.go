package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront/internal/models"
)

// OrderFeed pushes newly created orders to connected websocket clients so a
// back-office screen can follow sales live.
type OrderFeed struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewOrderFeed() *OrderFeed {
	return &OrderFeed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (f *OrderFeed) Handle(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("[FEED] [ERROR] websocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.mu.Lock()
			delete(f.clients, conn)
			f.mu.Unlock()
			return
		}
	}
}

// Broadcast sends the order to every connected client. Write failures drop
// the client; they never fail the order creation that triggered them.
func (f *OrderFeed) Broadcast(order models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		log.Println("[FEED] [ERROR] order encode failed:", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(f.clients, conn)
		}
	}
}
