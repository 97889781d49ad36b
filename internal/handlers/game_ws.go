// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/game"
	"github.com/jason-s-yu/mansion/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameMessage represents the structure for incoming WebSocket messages.
type GameMessage struct {
	Type string `json:"type"`

	// Action and Targets are used by declare_action.
	Action  game.ActionKind    `json:"action,omitempty"`
	Targets game.ActionTargets `json:"targets"`

	// Ability and Args are used by run_ability.
	Ability game.AbilityID   `json:"ability,omitempty"`
	Args    game.AbilityArgs `json:"args"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific game instance.
// It authenticates the player, verifies they have a character in the game, registers
// the connection, and then starts the read loop to handle incoming game messages.
func (gs *GameServer) GameWSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.PathValue("id")
		g, _, ok := gs.lookupGame(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}

		playerID, err := playerFromRequest(r)
		if err != nil {
			gs.Logger.Warnf("Player authentication failed for game %s: %v", gameID, err)
			c.Close(InvalidAuthTokenError, "Authentication failed.")
			return
		}
		character := g.CharacterByPlayer(playerID)
		if character == nil {
			c.Close(NotInGameError, "You are not a player in this game.")
			return
		}

		logger := gs.Logger.WithFields(logrus.Fields{
			"game":      g.ID,
			"player":    playerID,
			"character": character.ID,
		})
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, g.ID.String(), playerID.String())

		cl := newClient(playerID, c)
		if prev := gs.conns.add(g.ID, cl); prev != nil {
			prev.stop()
			prev.conn.Close(ReplacedError, "Replaced by a newer connection.")
		}
		go cl.writeLoop(logger)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		gs.sendPrivateState(g, cl, character)
		readErr := gs.readGameMessages(ctx, c, g, cl, character, logger)

		gs.conns.remove(g.ID, cl)
		cl.stop()
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, g.ID.String(), playerID.String(), readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readGameMessages continuously reads messages from a player's connection and
// routes them to the game. It returns the read error that ended the loop, nil
// on a normal closure.
func (gs *GameServer) readGameMessages(ctx context.Context, c *websocket.Conn, g *game.Game, cl *client, character *game.Character, logger logrus.FieldLogger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			gs.sendError(cl, fmt.Errorf("invalid JSON: %w", err))
			continue
		}
		logger.Debugf("Received '%s'", msg.Type)

		switch msg.Type {
		case "declare_action":
			if _, err := character.DeclareAction(msg.Action, msg.Targets); err != nil {
				gs.sendError(cl, err)
				continue
			}
			gs.sendPrivateState(g, cl, character)
			gs.broadcastState(g)

		case "confirm_action":
			if err := character.ConfirmAction(); err != nil {
				gs.sendError(cl, err)
				continue
			}
			gs.sendPrivateState(g, cl, character)
			gs.broadcastState(g)

		case "run_ability":
			if err := g.RunAbility(character.ID, msg.Ability, msg.Args); err != nil {
				gs.sendError(cl, err)
				continue
			}
			gs.sendPrivateState(g, cl, character)

		case "list_actions":
			gs.conns.enqueueEvent(cl, GameEvent{Type: "available_actions", Available: character.AvailableActions()})

		case "sync":
			gs.sendPrivateState(g, cl, character)

		case "ping":
			gs.conns.enqueueEvent(cl, GameEvent{Type: "pong"})

		default:
			gs.sendError(cl, fmt.Errorf("unknown message type: %s", msg.Type))
		}
	}
}

func (gs *GameServer) sendPrivateState(g *game.Game, cl *client, character *game.Character) {
	ps, err := g.PrivateStateFor(character.ID)
	if err != nil {
		gs.sendError(cl, err)
		return
	}
	gs.conns.enqueueEvent(cl, GameEvent{Type: "sync", Private: &ps})
}

// sendError sends a structured error message to the client.
func (gs *GameServer) sendError(cl *client, err error) {
	gs.conns.enqueueEvent(cl, GameEvent{Type: "error", Code: errorCode(err), Message: err.Error()})
}

// ConnectedPlayers returns the number of players connected to a game.
func (gs *GameServer) ConnectedPlayers(gameID uuid.UUID) int {
	return gs.conns.connected(gameID)
}
