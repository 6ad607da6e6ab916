package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/seabattle-backend/internal/apperror"
	"github.com/rocketscienceinc/seabattle-backend/internal/battleship"
	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
	"github.com/rocketscienceinc/seabattle-backend/internal/pkg"
)

// maxCodeAttempts - bound on room code regeneration; the code space is
// 36^6 so hitting this means something is very wrong.
const maxCodeAttempts = 10

// Registry - the only structure shared across sessions. Creation,
// deletion and lookup are serialized behind one RWMutex; everything
// inside a room is guarded by the session's own lock.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*battleship.Session
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("component", "registry"),
		rooms:  make(map[string]*battleship.Session),
	}
}

// CreateRoom - allocates a room with a fresh code and seats the
// creator. Codes are regenerated on collision.
func (that *Registry) CreateRoom(creator *entity.Player) (*battleship.Session, error) {
	log := that.logger.With("method", "CreateRoom")

	that.mu.Lock()
	defer that.mu.Unlock()

	var roomID string
	for attempt := 0; ; attempt++ {
		if attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("failed to allocate a unique room code after %d attempts", maxCodeAttempts)
		}

		roomID = pkg.GenerateRoomCode()
		if _, taken := that.rooms[roomID]; !taken {
			break
		}

		log.Warn("room code collision, regenerating", "roomID", roomID)
	}

	session := battleship.NewSession(roomID)
	if err := session.Join(creator); err != nil {
		return nil, fmt.Errorf("failed to seat creator: %w", err)
	}

	that.rooms[roomID] = session

	log.Info("room created", "roomID", roomID, "playerID", creator.ID)

	return session, nil
}

// JoinRoom - seats a player in an existing room.
func (that *Registry) JoinRoom(roomID string, player *entity.Player) (*battleship.Session, error) {
	that.mu.RLock()
	session, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if err := session.Join(player); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	return session, nil
}

// GetByID - looks up a room by its code.
func (that *Registry) GetByID(roomID string) (*battleship.Session, error) {
	that.mu.RLock()
	session, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return session, nil
}

// Teardown - a room destroyed by a disconnect, together with the
// players left seated in it to notify.
type Teardown struct {
	Session   *battleship.Session
	Survivors []*entity.Player
}

// RemovePlayer - tears down every room seating this connection. One
// connection can hold seats in several rooms, so all of them go. There
// is no reconnection window: a disconnect during any phase ends the
// match for both players. Returns nil when the connection was in no
// room.
func (that *Registry) RemovePlayer(playerID string) []Teardown {
	log := that.logger.With("method", "RemovePlayer")

	that.mu.Lock()
	defer that.mu.Unlock()

	var teardowns []Teardown
	for roomID, session := range that.rooms {
		if !session.HasPlayer(playerID) {
			continue
		}

		delete(that.rooms, roomID)

		var survivors []*entity.Player
		for _, player := range session.Players() {
			if player.ID != playerID {
				survivors = append(survivors, player)
			}
		}

		teardowns = append(teardowns, Teardown{Session: session, Survivors: survivors})

		log.Info("room destroyed after disconnect", "roomID", roomID, "playerID", playerID)
	}

	return teardowns
}

// Len - number of live rooms.
func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
