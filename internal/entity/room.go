package entity

const (
	PhaseWaitingForPlayers = "WAITING_FOR_PLAYERS"
	PhaseShipPlacement     = "SHIP_PLACEMENT"
	PhaseBattle            = "BATTLE"
	PhaseGameOver          = "GAME_OVER"
)

// MaxMessages - chat log capacity; the oldest message is evicted first.
const MaxMessages = 100

// MaxPlayers - a room seats exactly two players for a match.
const MaxPlayers = 2

type Message struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// Room - one match's authoritative state. The phase only advances
// forward through the fixed sequence; CurrentTurn is meaningful only
// during battle; Winner is set once and terminal.
type Room struct {
	ID          string     `json:"id"`
	Phase       string     `json:"phase"`
	Players     []*Player  `json:"players"`
	CurrentTurn string     `json:"currentTurn,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	Messages    []*Message `json:"-"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:    id,
		Phase: PhaseWaitingForPlayers,
	}
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Room) OpponentOf(id string) *Player {
	for _, player := range that.Players {
		if player.ID != id {
			return player
		}
	}

	return nil
}

func (that *Room) AllReady() bool {
	if !that.IsFull() {
		return false
	}

	for _, player := range that.Players {
		if !player.Ready {
			return false
		}
	}

	return true
}

// AppendMessage - appends to the bounded chat log, evicting the oldest
// entry once the capacity is reached.
func (that *Room) AppendMessage(message *Message) {
	that.Messages = append(that.Messages, message)
	if len(that.Messages) > MaxMessages {
		that.Messages = that.Messages[len(that.Messages)-MaxMessages:]
	}
}

// PlayersSnapshot - deep copies of the seated players, safe to hand to
// the transport layer while the room keeps mutating.
func (that *Room) PlayersSnapshot() []*Player {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player.Clone())
	}

	return players
}

// MessagesSnapshot - a copy of the chat log in order, oldest first.
func (that *Room) MessagesSnapshot() []*Message {
	messages := make([]*Message, len(that.Messages))
	copy(messages, that.Messages)

	return messages
}
