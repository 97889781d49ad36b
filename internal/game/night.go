// internal/game/night.go
package game

import (
	"errors"

	"github.com/google/uuid"
)

// Night is a phase of secret turns. Turns never exceed Rules.NightTurns and a
// turn is only created once the previous one is resolved.
type Night struct {
	ID     uuid.UUID
	Number int
	Turns  []*Turn

	current  *Turn
	resolved int
	game     *Game
}

// Day is the discussion phase between two nights. Voting happens outside the engine.
type Day struct {
	ID     uuid.UUID
	Number int
}

func newNight(g *Game, number int) *Night {
	n := &Night{ID: uuid.New(), Number: number, game: g}
	n.openTurn()
	return n
}

// IsNew reports whether no turn of the night has been resolved yet.
func (n *Night) IsNew() bool {
	n.game.mu.Lock()
	defer n.game.mu.Unlock()
	return n.resolved == 0
}

// TurnCount returns the number of turns opened so far. Assumes lock is held.
func (n *Night) TurnCount() int {
	return len(n.Turns)
}

// CurrentTurn returns the turn accepting declarations, or nil once the night is over.
func (n *Night) CurrentTurn() *Turn {
	n.game.mu.Lock()
	defer n.game.mu.Unlock()
	return n.current
}

func (n *Night) openTurn() {
	t := newTurn(n, len(n.Turns)+1)
	n.Turns = append(n.Turns, t)
	n.current = t
}

// nextTurn opens the following turn, or hands over to the day once the night
// has played all its turns. Assumes lock is held.
func (n *Night) nextTurn() {
	if len(n.Turns) < n.game.Rules.NightTurns {
		n.openTurn()
		return
	}
	n.end()
}

// end closes the night and advances the game.
func (n *Night) end() {
	g := n.game
	if err := g.advance(); err != nil {
		if errors.Is(err, ErrGameComplete) {
			g.Logger.WithField("game", g.ID).Info("Last night is over, game complete")
			return
		}
		g.Logger.WithError(err).Error("Failed to advance after night")
	}
}
