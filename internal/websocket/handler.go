package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches conn to an app session. hello, when non-nil, builds the
// first frame the socket receives; it is called once the socket is attached.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, hello func() []byte) {
	client := NewClient(hub, c, sessionID)
	if !hub.Register(client, hello) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
