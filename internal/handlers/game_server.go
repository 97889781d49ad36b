// internal/handlers/game_server.go
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/jason-s-yu/mansion/internal/database"
	"github.com/jason-s-yu/mansion/internal/game"
	"github.com/jason-s-yu/mansion/internal/world"
	"github.com/sirupsen/logrus"
)

// persistTimeout bounds every snapshot write triggered by a phase change.
const persistTimeout = 5 * time.Second

// GameServer is a high-level struct that holds the running games, the mansion
// they are played on and the websocket connections of their players.
type GameServer struct {
	GameStore *game.GameStore
	Config    *world.Config
	Rules     game.Rules
	Logger    *logrus.Logger

	// SnapshotLoader reads the cached public snapshot of a game this instance
	// does not hold. Nil disables the fallback.
	SnapshotLoader func(ctx context.Context, gameID uuid.UUID, out interface{}) (bool, error)

	conns *connRegistry
}

// NewGameServer builds a server creating games on cfg with the given default rules.
func NewGameServer(cfg *world.Config, rules game.Rules, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	gs := &GameServer{
		GameStore: game.NewGameStore(),
		Config:    cfg,
		Rules:     rules,
		Logger:    logger,
		conns:     newConnRegistry(logger),
	}
	if cache.Rdb != nil {
		gs.SnapshotLoader = cache.LoadGameState
	}
	return gs
}

// CreateGame seats the participants in a new game, wires its hooks and stores it.
// overrides are applied on top of the server's default rules.
func (gs *GameServer) CreateGame(participants []game.Participant, overrides map[string]interface{}) (*game.Game, error) {
	rules, err := game.ParseRules(overrides, gs.Rules)
	if err != nil {
		return nil, err
	}
	g, err := game.NewGame(gs.Config, rules, participants)
	if err != nil {
		return nil, err
	}
	g.Logger = gs.Logger.WithField("game", g.ID)
	g.Messenger = gs.conns.messenger(g.ID)
	g.OnPhaseChange = func(state game.GameState) {
		gs.phaseChanged(state)
	}
	gs.GameStore.AddGame(g)
	gs.Logger.WithFields(logrus.Fields{
		"game":    g.ID,
		"players": len(participants),
	}).Info("Game created")
	return g, nil
}

// phaseChanged broadcasts the snapshot and persists it. It runs with the game
// lock held, so every slow part is asynchronous.
func (gs *GameServer) phaseChanged(state game.GameState) {
	gs.conns.broadcast(state.GameID, GameEvent{Type: "phase_change", State: &state})

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := database.UpsertGameSnapshot(ctx, state); err != nil {
				gs.Logger.WithError(err).WithField("game", state.GameID).Error("Failed to persist game snapshot")
			}
		}()
	}
	if cache.Rdb != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := cache.StoreGameState(ctx, state.GameID, state); err != nil {
				gs.Logger.WithError(err).WithField("game", state.GameID).Warn("Failed to cache game snapshot")
			}
		}()
	}

	if state.Phase == game.PhaseComplete {
		gs.Logger.WithField("game", state.GameID).Info("Game complete")
	}
}

// broadcastState pushes the public snapshot of g to every connected player.
// Must be called without the game lock.
func (gs *GameServer) broadcastState(g *game.Game) {
	state := g.State()
	gs.conns.broadcast(g.ID, GameEvent{Type: "state", State: &state})
}

// cachedState loads the last snapshot published for a game that is not running here.
func (gs *GameServer) cachedState(ctx context.Context, id uuid.UUID) (game.GameState, bool) {
	var state game.GameState
	if gs.SnapshotLoader == nil || id == uuid.Nil {
		return state, false
	}
	found, err := gs.SnapshotLoader(ctx, id, &state)
	if err != nil {
		gs.Logger.WithError(err).WithField("game", id).Warn("Failed to load cached game snapshot")
		return state, false
	}
	return state, found
}

// lookupGame parses a game id and finds the game.
func (gs *GameServer) lookupGame(idStr string) (*game.Game, uuid.UUID, bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, uuid.Nil, false
	}
	g, ok := gs.GameStore.GetGame(id)
	return g, id, ok
}
