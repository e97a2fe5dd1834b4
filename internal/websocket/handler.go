package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches an upgraded connection to the hub and blocks until the
// peer goes away.
func ServeWs(hub *Hub, conn *websocket.Conn, subject string) {
	client := &Client{Hub: hub, Conn: conn, Subject: subject, Send: make(chan []byte, sendBuffer), logger: hub.logger}
	hub.register <- client

	go client.writePump()
	client.readPump()
}
