package websocket

import "sync"

// connectionSet - live connections by player id, shared between the
// per-connection read loops.
type connectionSet struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newConnectionSet() *connectionSet {
	return &connectionSet{
		clients: make(map[string]*client),
	}
}

func (that *connectionSet) add(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.playerID] = c
}

func (that *connectionSet) get(playerID string) (*client, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	c, ok := that.clients[playerID]

	return c, ok
}

func (that *connectionSet) remove(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients, playerID)
}
