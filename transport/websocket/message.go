package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
)

// Message - the wire envelope: a named action plus a raw payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// client → server
	ActionCreateGame    = "createGame"
	ActionJoinGame      = "joinGame"
	ActionStartGame     = "startGame"
	ActionPlaceShips    = "placeShips"
	ActionMakeMove      = "makeMove"
	ActionSelectCountry = "selectCountry"
	ActionSendMessage   = "sendMessage"
	ActionGetMessages   = "getMessages"

	// server → client
	ActionConnected          = "connected"
	ActionGameCreated        = "gameCreated"
	ActionPlayerJoined       = "playerJoined"
	ActionGameStarted        = "gameStarted"
	ActionPlayerReady        = "playerReady"
	ActionBattleStarted      = "battleStarted"
	ActionMoveResult         = "moveResult"
	ActionGameOver           = "gameOver"
	ActionCountrySelected    = "countrySelected"
	ActionNewMessage         = "newMessage"
	ActionMessageHistory     = "messageHistory"
	ActionPlayerDisconnected = "playerDisconnected"
	ActionError              = "error"
)

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type GameCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type JoinGamePayload struct {
	RoomID string `json:"roomId"`
}

type PlayerJoinedPayload struct {
	Players []*entity.Player `json:"players"`
	Phase   string           `json:"phase"`
	RoomID  string           `json:"roomId"`
}

type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

type GameStartedPayload struct {
	Players []*entity.Player `json:"players"`
	Phase   string           `json:"phase"`
}

type PlaceShipsPayload struct {
	RoomID string       `json:"roomId"`
	Board  entity.Board `json:"board"`
}

type PlayerReadyPayload struct {
	PlayerID string `json:"playerId"`
}

type BattleStartedPayload struct {
	CurrentTurn string           `json:"currentTurn"`
	Players     []*entity.Player `json:"players"`
}

type MakeMovePayload struct {
	RoomID string `json:"roomId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
}

type SelectCountryPayload struct {
	RoomID  string         `json:"roomId"`
	Country entity.Country `json:"country"`
}

type CountrySelectedPayload struct {
	PlayerID string         `json:"playerId"`
	Country  entity.Country `json:"country"`
}

type SendMessagePayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type GetMessagesPayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
