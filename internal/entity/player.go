package entity

// Country - decorative display metadata picked by a player. It never
// influences scoring, turn order or board state.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Player - a seated connection. ID is the connection identifier and
// doubles as player identity for the room's lifetime; there is no
// reconnection or identity recovery.
type Player struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Ready   bool     `json:"ready"`
	Board   Board    `json:"board"`
	Score   int      `json:"score"`
	Country *Country `json:"country,omitempty"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Board: NewEmptyBoard(),
	}
}

// DisplayName - chat sender name: the country fleet name once a
// country is picked, otherwise the plain player name.
func (that *Player) DisplayName() string {
	if that.Country != nil {
		return that.Country.Name + " Fleet"
	}

	return that.Name
}

// Clone - deep copy for broadcast payloads.
func (that *Player) Clone() *Player {
	clone := *that
	clone.Board = that.Board.Clone()

	if that.Country != nil {
		country := *that.Country
		clone.Country = &country
	}

	return &clone
}
