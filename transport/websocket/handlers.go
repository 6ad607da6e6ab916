package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/seabattle-backend/internal/battleship"
	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
	"github.com/rocketscienceinc/seabattle-backend/internal/metrics"
	"github.com/rocketscienceinc/seabattle-backend/internal/pkg"
	"github.com/rocketscienceinc/seabattle-backend/internal/repository"
)

func (that *Server) handleCreateGame(_ context.Context, c *client, _ json.RawMessage) error {
	log := that.logger.With("method", "handleCreateGame", "playerID", c.playerID)

	session, err := that.registry.CreateRoom(entity.NewPlayer(c.playerID, c.playerName))
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	metrics.RoomsCreated.Inc()
	metrics.ActiveRooms.Set(float64(that.registry.Len()))

	if err = c.send(ActionGameCreated, GameCreatedPayload{RoomID: session.RoomID()}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("room created", "roomID", session.RoomID())

	return nil
}

func (that *Server) handleJoinGame(_ context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinGame", "playerID", c.playerID)

	var req JoinGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.JoinRoom(req.RoomID, entity.NewPlayer(c.playerID, c.playerName))
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	players := session.Players()
	that.broadcast(players, ActionPlayerJoined, PlayerJoinedPayload{
		Players: players,
		Phase:   session.Phase(),
		RoomID:  session.RoomID(),
	})

	log.Info("player joined room", "roomID", session.RoomID())

	return nil
}

func (that *Server) handleStartGame(_ context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleStartGame", "playerID", c.playerID)

	var req StartGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if err = session.Start(); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	players := session.Players()
	that.broadcast(players, ActionGameStarted, GameStartedPayload{
		Players: players,
		Phase:   session.Phase(),
	})

	log.Info("game force-started", "roomID", session.RoomID())

	return nil
}

func (that *Server) handlePlaceShips(_ context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handlePlaceShips", "playerID", c.playerID)

	var req PlaceShipsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	battleBegan, err := session.SubmitFleet(c.playerID, req.Board)
	if err != nil {
		return fmt.Errorf("failed to submit fleet: %w", err)
	}

	players := session.Players()
	that.broadcast(players, ActionPlayerReady, PlayerReadyPayload{PlayerID: c.playerID})

	if battleBegan {
		that.broadcast(players, ActionBattleStarted, BattleStartedPayload{
			CurrentTurn: session.CurrentTurn(),
			Players:     players,
		})

		log.Info("battle started", "roomID", session.RoomID(), "currentTurn", session.CurrentTurn())
	}

	log.Info("fleet placed", "roomID", session.RoomID())

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleMakeMove", "playerID", c.playerID)

	var req MakeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	result, err := session.MakeMove(c.playerID, req.X, req.Y)
	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	outcome := metrics.OutcomeMiss
	if result.Hit {
		outcome = metrics.OutcomeHit
	}
	metrics.Moves.WithLabelValues(outcome).Inc()

	players := session.Players()
	that.broadcast(players, ActionMoveResult, result)

	log.Info("move resolved", "roomID", session.RoomID(), "x", req.X, "y", req.Y, "hit", result.Hit)

	if result.GameOver {
		that.broadcast(players, ActionGameOver, GameOverPayload{Winner: result.Winner})
		metrics.MatchesFinished.Inc()

		that.archiveIfFinished(ctx, session)

		log.Info("game over", "roomID", session.RoomID(), "winner", result.Winner)
	}

	return nil
}

func (that *Server) handleSelectCountry(_ context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleSelectCountry", "playerID", c.playerID)

	var req SelectCountryPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	country := req.Country
	if err = session.SelectCountry(c.playerID, &country); err != nil {
		return fmt.Errorf("failed to select country: %w", err)
	}

	that.broadcast(session.Players(), ActionCountrySelected, CountrySelectedPayload{
		PlayerID: c.playerID,
		Country:  country,
	})

	log.Info("country selected", "roomID", session.RoomID(), "country", country.Code)

	return nil
}

func (that *Server) handleSendMessage(_ context.Context, c *client, payload json.RawMessage) error {
	var req SendMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	message, err := session.AppendMessage(c.playerID, pkg.GenerateMessageID(), req.Text, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	metrics.ChatMessages.Inc()

	that.broadcast(session.Players(), ActionNewMessage, message)

	return nil
}

func (that *Server) handleGetMessages(_ context.Context, c *client, payload json.RawMessage) error {
	var req GetMessagesPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.GetByID(req.RoomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	// history goes to the requester only, not the whole room
	if err = c.send(ActionMessageHistory, session.Messages()); err != nil {
		return fmt.Errorf("failed to send message history: %w", err)
	}

	return nil
}

// archiveIfFinished - persists the match record once the room reached
// game over. Archive failures are logged, never surfaced to players:
// the match itself completed fine.
func (that *Server) archiveIfFinished(ctx context.Context, session *battleship.Session) {
	if that.matchRepo == nil || session.Phase() != entity.PhaseGameOver {
		return
	}

	log := that.logger.With("method", "archiveIfFinished", "roomID", session.RoomID())

	scores := make(map[string]int)
	for _, player := range session.Players() {
		scores[player.ID] = player.Score
	}

	record := &repository.MatchRecord{
		RoomID:     session.RoomID(),
		WinnerID:   session.Winner(),
		Scores:     scores,
		FinishedAt: time.Now().UTC(),
	}

	if err := that.matchRepo.Save(ctx, record); err != nil {
		log.Error("failed to archive match", "error", err)
		return
	}

	log.Info("match archived", "winner", record.WinnerID)
}
