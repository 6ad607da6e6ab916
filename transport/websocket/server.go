package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/seabattle-backend/internal/apperror"
	"github.com/rocketscienceinc/seabattle-backend/internal/entity"
	"github.com/rocketscienceinc/seabattle-backend/internal/metrics"
	"github.com/rocketscienceinc/seabattle-backend/internal/pkg"
	"github.com/rocketscienceinc/seabattle-backend/internal/registry"
	"github.com/rocketscienceinc/seabattle-backend/internal/repository"
)

type handlerFunc func(ctx context.Context, c *client, payload json.RawMessage) error

// Server - the realtime gateway. It translates named client events
// into registry/session operations and fans results out to room
// members; it makes no game decisions of its own.
type Server struct {
	logger    *slog.Logger
	registry  *registry.Registry
	matchRepo repository.MatchRepository

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	connections *connectionSet
}

func New(logger *slog.Logger, reg *registry.Registry, matchRepo repository.MatchRepository) *Server {
	server := &Server{
		logger:    logger.With("component", "ws"),
		registry:  reg,
		matchRepo: matchRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		handlers:    make(map[string]handlerFunc),
		connections: newConnectionSet(),
	}

	server.handlers[ActionCreateGame] = server.handleCreateGame
	server.handlers[ActionJoinGame] = server.handleJoinGame
	server.handlers[ActionStartGame] = server.handleStartGame
	server.handlers[ActionPlaceShips] = server.handlePlaceShips
	server.handlers[ActionMakeMove] = server.handleMakeMove
	server.handlers[ActionSelectCountry] = server.handleSelectCountry
	server.handlers[ActionSendMessage] = server.handleSendMessage
	server.handlers[ActionGetMessages] = server.handleGetMessages

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 0,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the request and runs the read loop until
// the connection dies.
func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := pkg.GenerateSessionID()
	c := newClient(playerID, "Player "+playerID[:8], conn)
	defer func() {
		if closeErr := c.close(); closeErr != nil {
			log.Debug("failed to close connection", "error", closeErr)
		}
	}()

	that.connections.add(c)

	log = log.With("playerID", playerID)
	log.Info("connection established")

	if err = c.send(ActionConnected, ConnectedPayload{PlayerID: playerID}); err != nil {
		log.Error("failed to send connect ack", "error", err)
	}

	that.readLoop(ctx, c)

	that.handleDisconnect(ctx, c)
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "playerID", c.playerID)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection closed unexpectedly", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(c, fmt.Errorf("malformed message"))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			that.sendError(c, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, c, message.Payload); err != nil {
			log.Error("failed to process action", "action", message.Action, "error", err)
			that.sendError(c, err)
		}
	}
}

// handleDisconnect - tears down every room that seated this connection.
// Disconnection is not an error: it is a terminal room lifecycle event
// broadcast to the survivors before their rooms disappear.
func (that *Server) handleDisconnect(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleDisconnect", "playerID", c.playerID)

	that.connections.remove(c.playerID)

	teardowns := that.registry.RemovePlayer(c.playerID)
	if len(teardowns) == 0 {
		log.Info("player disconnected outside any room")
		return
	}

	metrics.ActiveRooms.Set(float64(that.registry.Len()))

	for _, teardown := range teardowns {
		that.archiveIfFinished(ctx, teardown.Session)

		for _, survivor := range teardown.Survivors {
			that.sendTo(survivor.ID, ActionPlayerDisconnected, struct{}{})
		}

		log.Info("player disconnected, room destroyed", "roomID", teardown.Session.RoomID())
	}
}

// sendError - reports a failure to the originating connection only.
// Errors are never broadcast and never silently dropped: a silent drop
// is indistinguishable from network loss to the client.
func (that *Server) sendError(c *client, err error) {
	payload := ErrorPayload{
		Code:    apperror.Code(err),
		Message: err.Error(),
	}

	if sendErr := c.send(ActionError, payload); sendErr != nil {
		that.logger.Error("failed to send error response", "playerID", c.playerID, "error", sendErr)
	}
}

// sendTo - sends to a player when their connection is still known.
func (that *Server) sendTo(playerID, action string, payload any) {
	c, ok := that.connections.get(playerID)
	if !ok {
		that.logger.Warn("connection not found for player", "playerID", playerID)
		return
	}

	if err := c.send(action, payload); err != nil {
		that.logger.Error("failed to send message", "playerID", playerID, "action", action, "error", err)
	}
}

// broadcast - sends one message to every seated player of the room.
func (that *Server) broadcast(players []*entity.Player, action string, payload any) {
	for _, player := range players {
		that.sendTo(player.ID, action, payload)
	}
}
