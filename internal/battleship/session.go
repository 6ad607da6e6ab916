package battleship

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/seabattle-backend/internal/apperror"
	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
)

// Session - the authoritative controller for one room. Every inbound
// event touching the room goes through the session mutex, so a move,
// a join and a teardown can never interleave at the sub-operation
// level.
type Session struct {
	mu   sync.Mutex
	room *entity.Room
}

// MoveResult - outcome of an accepted move, broadcast to both players.
type MoveResult struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Hit      bool   `json:"isHit"`
	PlayerID string `json:"player"`
	GameOver bool   `json:"-"`
	Winner   string `json:"-"`
}

func NewSession(roomID string) *Session {
	return &Session{
		room: entity.NewRoom(roomID),
	}
}

func (that *Session) RoomID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.ID
}

func (that *Session) Phase() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.Phase
}

func (that *Session) CurrentTurn() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.CurrentTurn
}

func (that *Session) Winner() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.Winner
}

// HasPlayer - reports whether the connection is seated in this room.
func (that *Session) HasPlayer(playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.PlayerByID(playerID) != nil
}

// Players - deep copies of the seated players in join order.
func (that *Session) Players() []*entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.PlayersSnapshot()
}

// Join - seats a player. Seating the second player advances the room
// to ship placement.
func (that *Session) Join(player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.room.IsFull() {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.room.ID)
	}

	if that.room.Phase != entity.PhaseWaitingForPlayers {
		return fmt.Errorf("%w: room %s is in phase %s", apperror.ErrInvalidPhase, that.room.ID, that.room.Phase)
	}

	that.room.Players = append(that.room.Players, player)

	if that.room.IsFull() {
		that.room.Phase = entity.PhaseShipPlacement
	}

	return nil
}

// Start - force-advances a full waiting room to ship placement.
// Idempotent while placement is still open, so a client racing the
// automatic advance on the second join does not get an error.
func (that *Session) Start() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.room.IsFull() {
		return fmt.Errorf("%w: room %s has %d players", apperror.ErrInvalidPhase, that.room.ID, len(that.room.Players))
	}

	switch that.room.Phase {
	case entity.PhaseWaitingForPlayers:
		that.room.Phase = entity.PhaseShipPlacement
		return nil
	case entity.PhaseShipPlacement:
		return nil
	default:
		return fmt.Errorf("%w: room %s is in phase %s", apperror.ErrInvalidPhase, that.room.ID, that.room.Phase)
	}
}

// SubmitFleet - accepts a player's placed board and marks them ready.
// Returns true when this submission started the battle, in which case
// the opening turn belongs to the first-joined player. Deterministic
// on purpose: a coin flip would make replays diverge between runs.
func (that *Session) SubmitFleet(playerID string, board entity.Board) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.room.Phase != entity.PhaseShipPlacement {
		return false, fmt.Errorf("%w: room %s is in phase %s", apperror.ErrInvalidPhase, that.room.ID, that.room.Phase)
	}

	player := that.room.PlayerByID(playerID)
	if player == nil {
		return false, fmt.Errorf("%w: player %s in room %s", apperror.ErrPlayerNotInRoom, playerID, that.room.ID)
	}

	if err := board.ValidateFleet(); err != nil {
		return false, fmt.Errorf("fleet rejected for player %s: %w", playerID, err)
	}

	player.Board = board
	player.Ready = true

	if !that.room.AllReady() {
		return false, nil
	}

	that.room.Phase = entity.PhaseBattle
	that.room.CurrentTurn = that.room.Players[0].ID

	return true, nil
}

// MakeMove - resolves one attack. A hit keeps the turn with the
// attacker, a miss hands it to the opponent. Rejections leave the room
// untouched.
func (that *Session) MakeMove(playerID string, x, y int) (*MoveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.room.Phase != entity.PhaseBattle {
		return nil, fmt.Errorf("%w: room %s is in phase %s", apperror.ErrInvalidPhase, that.room.ID, that.room.Phase)
	}

	if that.room.CurrentTurn != playerID {
		return nil, fmt.Errorf("%w: player %s in room %s", apperror.ErrNotYourTurn, playerID, that.room.ID)
	}

	attacker := that.room.PlayerByID(playerID)
	opponent := that.room.OpponentOf(playerID)
	if attacker == nil || opponent == nil {
		return nil, fmt.Errorf("%w: player %s in room %s", apperror.ErrPlayerNotInRoom, playerID, that.room.ID)
	}

	hit, err := opponent.Board.ResolveAttack(x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attack: %w", err)
	}

	result := &MoveResult{
		X:        x,
		Y:        y,
		Hit:      hit,
		PlayerID: playerID,
	}

	if hit {
		attacker.Score++
	} else {
		that.room.CurrentTurn = opponent.ID
	}

	if attacker.Score >= entity.TotalShipCells {
		that.room.Phase = entity.PhaseGameOver
		that.room.Winner = attacker.ID
		that.room.CurrentTurn = ""
		result.GameOver = true
		result.Winner = attacker.ID
	}

	return result, nil
}

// SelectCountry - attaches decorative country metadata to a seated
// player. Allowed in any phase and has no gameplay effect.
func (that *Session) SelectCountry(playerID string, country *entity.Country) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.room.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("%w: player %s in room %s", apperror.ErrPlayerNotInRoom, playerID, that.room.ID)
	}

	player.Country = country

	return nil
}

// AppendMessage - stamps and appends a chat message to the bounded
// room log, returning the stored message for broadcast.
func (that *Session) AppendMessage(playerID, messageID, text string, timestamp int64) (*entity.Message, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s in room %s", apperror.ErrPlayerNotInRoom, playerID, that.room.ID)
	}

	message := &entity.Message{
		ID:         messageID,
		PlayerID:   player.ID,
		PlayerName: player.DisplayName(),
		Text:       text,
		Timestamp:  timestamp,
	}

	that.room.AppendMessage(message)

	return message, nil
}

// Messages - the chat log in order, oldest first.
func (that *Session) Messages() []*entity.Message {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.room.MessagesSnapshot()
}
