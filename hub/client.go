// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client is one websocket subscriber. The hub never depends on gorilla directly.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// websocketClient serializes writes: the hub and the handler both write to the same connection.
type websocketClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebsocketClient wraps conn as a Client
func NewWebsocketClient(conn *websocket.Conn) Client {
	return &websocketClient{conn: conn}
}

func (c *websocketClient) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (c *websocketClient) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *websocketClient) Close() error {
	return c.conn.Close()
}
