package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
	"github.com/rocketscienceinc/seabattle-backend/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readTimeout = 2 * time.Second

type testClient struct {
	t        *testing.T
	conn     *websocket.Conn
	playerID string
}

func newGatewayTest(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	server := New(logger, registry.New(logger), nil)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.serveConnection(context.Background(), w, r)
	}))
	t.Cleanup(ts.Close)

	return ts
}

// dial - connects and consumes the connect ack carrying the player id.
func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	c := &testClient{t: t, conn: conn}

	var connected ConnectedPayload
	c.expect(ActionConnected, &connected)
	require.NotEmpty(t, connected.PlayerID)
	c.playerID = connected.PlayerID

	return c
}

func (that *testClient) sendAction(action string, payload any) {
	that.t.Helper()

	payloadJSON, err := json.Marshal(payload)
	require.NoError(that.t, err)

	err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON})
	require.NoError(that.t, err)
}

// expect - reads the next message and requires the given action,
// decoding its payload into target when target is non-nil.
func (that *testClient) expect(action string, target any) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var message Message
	require.NoError(that.t, that.conn.ReadJSON(&message))
	require.Equal(that.t, action, message.Action)

	if target != nil {
		require.NoError(that.t, json.Unmarshal(message.Payload, target))
	}
}

// standardBoard - the standard fleet on rows 0, 2, 4, 6 and 8; the
// length-4 ship sits on row 4.
func standardBoard(t *testing.T) entity.Board {
	t.Helper()

	board := entity.NewEmptyBoard()
	for i, length := range []int{5, 3, 4, 3, 2} {
		require.NoError(t, board.PlaceShip(0, i*2, length, false))
	}

	return board
}

// startBattle - drives two clients through create, join and placement
// until the battle begins. The creator holds the opening turn.
func startBattle(t *testing.T, creator, joiner *testClient) string {
	t.Helper()

	creator.sendAction(ActionCreateGame, struct{}{})

	var created GameCreatedPayload
	creator.expect(ActionGameCreated, &created)
	require.Len(t, created.RoomID, 6)

	joiner.sendAction(ActionJoinGame, JoinGamePayload{RoomID: created.RoomID})

	var joined PlayerJoinedPayload
	creator.expect(ActionPlayerJoined, &joined)
	joiner.expect(ActionPlayerJoined, nil)
	require.Equal(t, entity.PhaseShipPlacement, joined.Phase)
	require.Len(t, joined.Players, 2)

	creator.sendAction(ActionPlaceShips, PlaceShipsPayload{RoomID: created.RoomID, Board: standardBoard(t)})

	var ready PlayerReadyPayload
	creator.expect(ActionPlayerReady, &ready)
	joiner.expect(ActionPlayerReady, nil)
	require.Equal(t, creator.playerID, ready.PlayerID)

	joiner.sendAction(ActionPlaceShips, PlaceShipsPayload{RoomID: created.RoomID, Board: standardBoard(t)})
	creator.expect(ActionPlayerReady, nil)
	joiner.expect(ActionPlayerReady, nil)

	var battle BattleStartedPayload
	creator.expect(ActionBattleStarted, &battle)
	joiner.expect(ActionBattleStarted, nil)
	require.Equal(t, creator.playerID, battle.CurrentTurn)

	return created.RoomID
}

func TestServer_CreateAndJoinFlow(t *testing.T) {
	// Given: a gateway and two connected clients
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)

	// When: the full lobby and placement flow runs
	roomID := startBattle(t, creator, joiner)

	// Then: both sides reached battle with the creator to move
	assert.NotEmpty(t, roomID)
}

func TestServer_MoveFlow(t *testing.T) {
	// Given: a battle with the creator holding the opening turn
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)
	roomID := startBattle(t, creator, joiner)

	// When: the creator hits a ship cell at (3,4)
	creator.sendAction(ActionMakeMove, MakeMovePayload{RoomID: roomID, X: 3, Y: 4})

	var result struct {
		X        int    `json:"x"`
		Y        int    `json:"y"`
		IsHit    bool   `json:"isHit"`
		PlayerID string `json:"player"`
	}
	creator.expect(ActionMoveResult, &result)
	joiner.expect(ActionMoveResult, nil)

	// Then: the result is a hit credited to the creator
	assert.True(t, result.IsHit)
	assert.Equal(t, 3, result.X)
	assert.Equal(t, 4, result.Y)
	assert.Equal(t, creator.playerID, result.PlayerID)

	// And: a hit keeps the turn, so the creator may move again
	creator.sendAction(ActionMakeMove, MakeMovePayload{RoomID: roomID, X: 9, Y: 9})
	creator.expect(ActionMoveResult, &result)
	joiner.expect(ActionMoveResult, nil)
	assert.False(t, result.IsHit)

	// And: after the miss it is the joiner's turn; the creator is refused
	creator.sendAction(ActionMakeMove, MakeMovePayload{RoomID: roomID, X: 8, Y: 8})

	var wireErr ErrorPayload
	creator.expect(ActionError, &wireErr)
	assert.Equal(t, "NOT_YOUR_TURN", wireErr.Code)
}

func TestServer_ChatFlow(t *testing.T) {
	// Given: a room with two seated players
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)
	roomID := startBattle(t, creator, joiner)

	// When: the creator sends "gg"
	creator.sendAction(ActionSendMessage, SendMessagePayload{RoomID: roomID, Text: "gg"})

	var message entity.Message
	creator.expect(ActionNewMessage, &message)
	joiner.expect(ActionNewMessage, nil)

	// Then: the broadcast message carries the sender identity
	assert.Equal(t, creator.playerID, message.PlayerID)
	assert.Equal(t, "gg", message.Text)
	assert.NotEmpty(t, message.ID)
	assert.NotZero(t, message.Timestamp)

	// And: the history is served to the requester only
	joiner.sendAction(ActionGetMessages, GetMessagesPayload{RoomID: roomID})

	var history []*entity.Message
	joiner.expect(ActionMessageHistory, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "gg", history[0].Text)
}

func TestServer_CountrySelection(t *testing.T) {
	// Given: a room with two seated players
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)
	roomID := startBattle(t, creator, joiner)

	// When: the joiner picks a country
	joiner.sendAction(ActionSelectCountry, SelectCountryPayload{
		RoomID:  roomID,
		Country: entity.Country{Code: "JP", Name: "Japan", Flag: "🇯🇵"},
	})

	var selected CountrySelectedPayload
	creator.expect(ActionCountrySelected, &selected)
	joiner.expect(ActionCountrySelected, nil)

	// Then: the selection is broadcast with the picker's id
	assert.Equal(t, joiner.playerID, selected.PlayerID)
	assert.Equal(t, "JP", selected.Country.Code)
}

func TestServer_DisconnectTeardown(t *testing.T) {
	// Given: a battle in progress
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)
	roomID := startBattle(t, creator, joiner)

	// When: the creator drops the connection mid-battle
	require.NoError(t, creator.conn.Close())

	// Then: the survivor is notified and the room is gone
	joiner.expect(ActionPlayerDisconnected, nil)

	joiner.sendAction(ActionMakeMove, MakeMovePayload{RoomID: roomID, X: 0, Y: 0})

	var wireErr ErrorPayload
	joiner.expect(ActionError, &wireErr)
	assert.Equal(t, "ROOM_NOT_FOUND", wireErr.Code)
}

func TestServer_JoinUnknownRoom(t *testing.T) {
	// Given: a connected client and no rooms
	ts := newGatewayTest(t)
	c := dial(t, ts)

	// When: joining a room that does not exist
	c.sendAction(ActionJoinGame, JoinGamePayload{RoomID: "nosuch"})

	// Then: the error goes back to the requester only
	var wireErr ErrorPayload
	c.expect(ActionError, &wireErr)
	assert.Equal(t, "ROOM_NOT_FOUND", wireErr.Code)
}

func TestServer_IncompleteFleetRejected(t *testing.T) {
	// Given: a room in ship placement
	ts := newGatewayTest(t)
	creator := dial(t, ts)
	joiner := dial(t, ts)

	creator.sendAction(ActionCreateGame, struct{}{})
	var created GameCreatedPayload
	creator.expect(ActionGameCreated, &created)

	joiner.sendAction(ActionJoinGame, JoinGamePayload{RoomID: created.RoomID})
	creator.expect(ActionPlayerJoined, nil)
	joiner.expect(ActionPlayerJoined, nil)

	// When: the creator submits a board with a single ship
	board := entity.NewEmptyBoard()
	require.NoError(t, board.PlaceShip(0, 0, 5, false))
	creator.sendAction(ActionPlaceShips, PlaceShipsPayload{RoomID: created.RoomID, Board: board})

	// Then: the submission is refused with the fleet error code
	var wireErr ErrorPayload
	creator.expect(ActionError, &wireErr)
	assert.Equal(t, "INCOMPLETE_FLEET", wireErr.Code)
}
