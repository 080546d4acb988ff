package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans status messages out to websocket clients, keyed per resource
// plus a global pool for the resource-list page.
type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client
	GlobalClients map[*websocket.Conn]*Client
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// ResourceStatusUpdate is the processing-progress payload for one
// uploaded resource.
type ResourceStatusUpdate struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Register hands the connection over to the hub. The read and write
// pumps own the connection from here on; callers must not read or
// write it directly, only enqueue through the returned client.
func (h *Hub) Register(resourceID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[resourceID]; !ok {
		h.Clients[resourceID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[resourceID][conn] = client

	go h.readPump(resourceID, conn)
	go h.writePump(resourceID, conn)

	return client
}

func (h *Hub) RegisterGlobal(conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client

	go h.readGlobalPump(conn)
	go h.writeGlobalPump(conn)

	return client
}

func (h *Hub) Broadcast(resourceID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[resourceID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// SendResourceStatus pushes a processing-status update to the clients
// watching one resource.
func SendResourceStatus(resourceID, status, errorMsg string) {
	update := ResourceStatusUpdate{
		ResourceID: resourceID,
		Status:     status,
		Error:      errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(resourceID, data)
}

// BroadcastResourceListChanged signals list pages to refetch.
func BroadcastResourceListChanged() {
	data := []byte(`{"type": "resource_list_changed"}`)
	H.BroadcastGlobal(data)
}

func (h *Hub) Unregister(resourceID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[resourceID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, resourceID)
		}
	}
}

func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

func (h *Hub) readPump(resourceID string, conn *websocket.Conn) {
	defer h.Unregister(resourceID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(resourceID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[resourceID][conn]
	h.Mutex.RUnlock()
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writeGlobalPump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.GlobalClients[conn]
	h.Mutex.RUnlock()
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
