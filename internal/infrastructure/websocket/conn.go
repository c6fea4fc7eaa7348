package websocket

import (
	"sync"

	"auction-engine/pkg/logger"

	"github.com/gorilla/websocket"
)

// WebSocketConnection wraps one gorilla connection for a watcher of one
// auction. Writes are serialized; gorilla allows one concurrent writer.
type WebSocketConnection struct {
	conn      *websocket.Conn
	userID    string
	auctionID string
	writeMu   sync.Mutex
	log       logger.Logger
}

func NewWebSocketConnection(conn *websocket.Conn, userID, auctionID string, log logger.Logger) *WebSocketConnection {
	return &WebSocketConnection{
		conn:      conn,
		userID:    userID,
		auctionID: auctionID,
		log:       log,
	}
}

func (c *WebSocketConnection) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *WebSocketConnection) Close() error {
	return c.conn.Close()
}

func (c *WebSocketConnection) UserID() string {
	return c.userID
}

func (c *WebSocketConnection) AuctionID() string {
	return c.auctionID
}
