package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a new progress watcher for jobID to the hub.
func ServeWs(hub *Hub, c *websocket.Conn, jobID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, JobID: jobID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // blocks until the peer disconnects
}
