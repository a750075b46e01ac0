package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
)

// Event types
const (
	EventSessionStarted  = "session_started"
	EventSessionClosed   = "session_closed"
	EventOrderCreated    = "order_created"
	EventOrderUpdate     = "order_update"
	EventTableCreate     = "table_create"
	EventTableUpdate     = "table_update"
	EventDashboardUpdate = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client adalah satu koneksi staff/admin. Hub hanya butuh WriteMessage dan Close.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub menampung semua client KDS (staff, admin) untuk broadcast
type Hub struct {
	clients map[Client]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Client]string)}
}

// RegisterClient -> menambahkan connection ke set dengan role
func (h *Hub) RegisterClient(conn Client, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastSessionStarted(session models.TableSession) {
	h.Broadcast(Message{Event: EventSessionStarted, Data: session})
}

// BroadcastSessionClosed -> sesi completed atau cancelled
func (h *Hub) BroadcastSessionClosed(session models.TableSession) {
	h.Broadcast(Message{Event: EventSessionClosed, Data: session})
}

func (h *Hub) BroadcastOrderCreated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

// BroadcastOrderUpdate -> perubahan status order
func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdate, Data: order})
}

func (h *Hub) BroadcastTableCreate(table models.Table) {
	h.Broadcast(Message{Event: EventTableCreate, Data: table})
}

func (h *Hub) BroadcastTableUpdate(table models.Table) {
	h.Broadcast(Message{Event: EventTableUpdate, Data: table})
}

func (h *Hub) BroadcastDashboardUpdate(data interface{}) {
	h.Broadcast(Message{Event: EventDashboardUpdate, Data: data})
}

// Broadcast mengirim pesan ke semua client. Client yang gagal ditulis dilepas.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
