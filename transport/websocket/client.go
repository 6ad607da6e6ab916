package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// client - one live connection. The player identity is scoped to the
// connection and dies with it.
type client struct {
	playerID   string
	playerName string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newClient(playerID, playerName string, conn *websocket.Conn) *client {
	return &client{
		playerID:   playerID,
		playerName: playerName,
		conn:       conn,
	}
}

// send - marshals and writes one message. Writes are serialized per
// connection, gorilla connections do not allow concurrent writers.
func (that *client) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := Message{
		Action:  action,
		Payload: payloadJSON,
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) close() error {
	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
