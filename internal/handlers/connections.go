// internal/handlers/connections.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout  = 3 * time.Second
	sendQueueSize = 64
)

// GameEvent is every message the server pushes to a player.
type GameEvent struct {
	Type      string                           `json:"type"`
	Character *uuid.UUID                       `json:"character,omitempty"`
	Text      string                           `json:"text,omitempty"`
	State     *game.GameState                  `json:"state,omitempty"`
	Private   *game.PrivateState               `json:"private,omitempty"`
	Available map[game.ActionKind]game.Options `json:"available,omitempty"`
	Code      string                           `json:"code,omitempty"`
	Message   string                           `json:"message,omitempty"`
}

// client is one player's websocket. Writes go through send, in order.
type client struct {
	playerID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
}

func newClient(playerID uuid.UUID, conn *websocket.Conn) *client {
	return &client{
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
}

func (cl *client) stop() {
	cl.once.Do(func() { close(cl.done) })
}

// writeLoop drains the send queue until the client is stopped.
func (cl *client) writeLoop(logger logrus.FieldLogger) {
	for {
		select {
		case <-cl.done:
			return
		case data := <-cl.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := cl.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("player", cl.playerID).Warn("Failed to write to websocket")
				return
			}
		}
	}
}

// connRegistry maps games to the connected client of each of their players.
type connRegistry struct {
	mu     sync.Mutex
	games  map[uuid.UUID]map[uuid.UUID]*client
	logger logrus.FieldLogger
}

func newConnRegistry(logger logrus.FieldLogger) *connRegistry {
	return &connRegistry{
		games:  make(map[uuid.UUID]map[uuid.UUID]*client),
		logger: logger,
	}
}

// add registers cl for the game and returns the client it replaced, if any.
func (r *connRegistry) add(gameID uuid.UUID, cl *client) *client {
	r.mu.Lock()
	defer r.mu.Unlock()
	players, ok := r.games[gameID]
	if !ok {
		players = make(map[uuid.UUID]*client)
		r.games[gameID] = players
	}
	prev := players[cl.playerID]
	players[cl.playerID] = cl
	return prev
}

// remove unregisters cl unless it has already been replaced.
func (r *connRegistry) remove(gameID uuid.UUID, cl *client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := r.games[gameID]
	if players[cl.playerID] != cl {
		return
	}
	delete(players, cl.playerID)
	if len(players) == 0 {
		delete(r.games, gameID)
	}
}

func (r *connRegistry) connected(gameID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games[gameID])
}

func (r *connRegistry) enqueue(cl *client, data []byte) {
	select {
	case cl.send <- data:
	default:
		r.logger.WithField("player", cl.playerID).Warn("Send queue full, dropping event")
	}
}

// enqueueEvent marshals ev and queues it for cl.
func (r *connRegistry) enqueueEvent(cl *client, ev GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to marshal %s event", ev.Type)
		return
	}
	r.enqueue(cl, data)
}

// sendTo queues ev for one player. It never blocks.
func (r *connRegistry) sendTo(gameID, playerID uuid.UUID, ev GameEvent) {
	r.mu.Lock()
	cl := r.games[gameID][playerID]
	r.mu.Unlock()
	if cl == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to marshal %s event", ev.Type)
		return
	}
	r.enqueue(cl, data)
}

// broadcast queues ev for every connected player of the game. It never blocks.
func (r *connRegistry) broadcast(gameID uuid.UUID, ev GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to marshal %s event", ev.Type)
		return
	}
	r.mu.Lock()
	targets := make([]*client, 0, len(r.games[gameID]))
	for _, cl := range r.games[gameID] {
		targets = append(targets, cl)
	}
	r.mu.Unlock()
	for _, cl := range targets {
		r.enqueue(cl, data)
	}
}

// messenger returns the game.Messenger delivering private messages of a game.
func (r *connRegistry) messenger(gameID uuid.UUID) game.Messenger {
	return gameMessenger{reg: r, gameID: gameID}
}

type gameMessenger struct {
	reg    *connRegistry
	gameID uuid.UUID
}

// PostMessage is called with the game lock held; it only reads immutable
// character fields and queues the event.
func (m gameMessenger) PostMessage(c *game.Character, text string) {
	id := c.ID
	m.reg.sendTo(m.gameID, c.PlayerID, GameEvent{Type: "message", Character: &id, Text: text})
}
