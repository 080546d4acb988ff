package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/quizmeai/quizme-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the frontend domain is fixed
	},
}

// enqueue serializes data onto the client's send channel; the write
// pump is the only goroutine that touches the connection.
func enqueue(client *Client, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// wsUserID resolves the connecting user from an optional token query
// parameter. Anonymous connections are allowed.
func wsUserID(c *gin.Context) string {
	token := c.Query("token")
	if token == "" {
		return "anonymous"
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		return "anonymous"
	}
	return claims.UserID
}

// HandleResourceWebSocket streams processing-status updates for one
// resource. The hub's pumps own the connection once registered.
func HandleResourceWebSocket(c *gin.Context) {
	resourceID := c.Param("id")
	userID := wsUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}
	log.Printf("Resource WS connected: resourceID=%s, userID=%s\n", resourceID, userID)

	client := H.Register(resourceID, conn)
	enqueue(client, gin.H{"type": "connected", "message": "Connected to resource " + resourceID})
}

// HandleGlobalWebSocket streams list-changed signals.
func HandleGlobalWebSocket(c *gin.Context) {
	userID := wsUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}
	log.Printf("Global WS connected: userID=%s\n", userID)

	client := H.RegisterGlobal(conn)
	enqueue(client, gin.H{"type": "connected", "message": "Connected to global WebSocket"})
}
