// internal/game/turn.go
package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Action is a character's declared intent for a turn.
type Action struct {
	ID    uuid.UUID
	Kind  ActionKind
	Actor *Character

	TargetCharacter *Character
	TargetRoom      *GameRoom
	TargetWeapon    *WeaponItem
	RoomAction      *RoomAction

	// Active is false once the action is superseded or consumed.
	Active bool
	// Confirmed is revocable until the turn resolves.
	Confirmed bool

	DeclaredAt time.Time

	seq  int
	spec *actionSpec
}

// ActionDescription is the public view of an action, as seen by the
// occupants of the actor's room.
type ActionDescription struct {
	Player    uuid.UUID  `json:"player"`
	Persona   string     `json:"persona"`
	Action    ActionKind `json:"action"`
	Confirmed bool       `json:"confirmed"`
	Target    string     `json:"target,omitempty"`
	Tool      string     `json:"tool,omitempty"`
}

// Description summarizes the action. Assumes lock is held.
func (a *Action) Description() ActionDescription {
	d := ActionDescription{
		Player:    a.Actor.ID,
		Persona:   a.Actor.Persona.Name,
		Action:    a.Kind,
		Confirmed: a.Confirmed,
	}
	switch {
	case a.TargetCharacter != nil:
		d.Target = a.TargetCharacter.Persona.Name
	case a.TargetRoom != nil:
		d.Target = a.TargetRoom.Name()
	case a.RoomAction != nil:
		d.Target = a.RoomAction.Name
	}
	if a.TargetWeapon != nil {
		d.Tool = a.TargetWeapon.Name()
	}
	return d
}

func (a *Action) priority() int {
	return a.spec.priority(a)
}

// Turn is one round of simultaneous secret actions within a night.
type Turn struct {
	ID     uuid.UUID
	Number int

	night    *Night
	history  []*Action
	active   map[uuid.UUID]*Action
	executed []*Action
	resolved bool
	seq      int
}

func newTurn(n *Night, number int) *Turn {
	return &Turn{
		ID:     uuid.New(),
		Number: number,
		night:  n,
		active: make(map[uuid.UUID]*Action),
	}
}

// IsResolved reports whether the turn has been resolved.
func (t *Turn) IsResolved() bool {
	t.night.game.mu.Lock()
	defer t.night.game.mu.Unlock()
	return t.resolved
}

// History returns every action declared in the turn, superseded ones included,
// in declaration order.
func (t *Turn) History() []*Action {
	t.night.game.mu.Lock()
	defer t.night.game.mu.Unlock()
	out := make([]*Action, len(t.history))
	copy(out, t.history)
	return out
}

// ExecutionOrder returns the actions in the order they were executed at
// resolution. It is empty until the turn resolves.
func (t *Turn) ExecutionOrder() []*Action {
	t.night.game.mu.Lock()
	defer t.night.game.mu.Unlock()
	out := make([]*Action, len(t.executed))
	copy(out, t.executed)
	return out
}

// declare records a new confirmed action for c, superseding any previous one,
// then resolves the turn if every eligible character is confirmed.
// Assumes lock is held.
func (t *Turn) declare(c *Character, kind ActionKind, targets ActionTargets) (*Action, error) {
	g := t.night.game
	if t.resolved {
		return nil, ErrActionInWrongStage
	}
	if !c.Alive {
		return nil, ErrCharacterDead
	}
	if c.Room == nil {
		return nil, fmt.Errorf("%w: character is not in any room", ErrActionUnavailable)
	}
	spec, ok := g.actions.lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrActionUnavailable, kind)
	}
	if _, ok := g.actions.permitted(c, spec); !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionUnavailable, kind)
	}

	a := &Action{
		ID:         uuid.New(),
		Kind:       kind,
		Actor:      c,
		DeclaredAt: time.Now(),
		spec:       spec,
	}
	if spec.bind != nil {
		if err := spec.bind(a, targets); err != nil {
			return nil, err
		}
	}

	if prev := t.active[c.ID]; prev != nil {
		prev.Active = false
		prev.Confirmed = false
	}
	t.seq++
	a.seq = t.seq
	a.Active = true
	a.Confirmed = true
	t.active[c.ID] = a
	t.history = append(t.history, a)

	// Everyone sharing the room gets a chance to react.
	for _, other := range t.active {
		if other != a && other.Active && other.Confirmed && other.Actor.Room == c.Room {
			other.Confirmed = false
		}
	}

	if a.TargetWeapon != nil && a.TargetWeapon.Weapon.Intention && (kind == ActionAttackKill || kind == ActionAttackBlank) {
		for _, witness := range c.Room.visiblePresence() {
			if witness != c {
				g.postMessage(witness, fmt.Sprintf("%s draws a %s.", c.Persona.Name, a.TargetWeapon.Name()))
			}
		}
	}

	g.logAction(c.ID, "action_declare", map[string]interface{}{
		"night":   t.night.Number,
		"turn":    t.Number,
		"action":  string(kind),
		"targets": targets,
	})
	g.Logger.WithFields(log.Fields{
		"night":  t.night.Number,
		"turn":   t.Number,
		"actor":  c.ID,
		"action": kind,
	}).Debug("Action declared")

	t.checkComplete()
	return a, nil
}

// confirm re-confirms the active action of c. Assumes lock is held.
func (t *Turn) confirm(c *Character) error {
	if t.resolved {
		return ErrActionInWrongStage
	}
	a := t.active[c.ID]
	if a == nil {
		return ErrNoAction
	}
	a.Confirmed = true
	t.checkComplete()
	return nil
}

// checkComplete resolves the turn once every eligible character has a
// confirmed active action. Safe to call again after resolution.
// Assumes lock is held.
func (t *Turn) checkComplete() {
	if t.resolved {
		return
	}
	eligible := t.night.game.eligibleCharacters()
	if len(eligible) == 0 {
		return
	}
	for _, c := range eligible {
		a := t.active[c.ID]
		if a == nil || !a.Active || !a.Confirmed {
			return
		}
	}
	t.resolve()
}

// resolve executes the active actions by priority, ties kept in declaration
// order. Assumes lock is held.
func (t *Turn) resolve() {
	if t.resolved {
		panic(fmt.Sprintf("turn %d of night %d resolved twice", t.Number, t.night.Number))
	}
	t.resolved = true
	g := t.night.game

	order := make([]*Action, 0, len(t.active))
	for _, a := range t.active {
		if a.Active {
			order = append(order, a)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].seq < order[j].seq })
	sort.SliceStable(order, func(i, j int) bool { return order[i].priority() < order[j].priority() })
	t.executed = order

	r := &resolution{game: g, turn: t}
	for _, a := range order {
		if !a.Actor.Alive {
			continue
		}
		a.spec.execute(r, a)
	}
	for _, a := range t.history {
		a.Active = false
	}
	t.tickPoison(r)
	for _, c := range g.Characters {
		c.defending = nil
	}

	executed := make([]string, 0, len(order))
	for _, a := range order {
		executed = append(executed, string(a.Kind))
	}
	g.logAction(uuid.Nil, "turn_resolved", map[string]interface{}{
		"night":   t.night.Number,
		"turn":    t.Number,
		"actions": executed,
	})
	g.Logger.WithFields(log.Fields{
		"night": t.night.Number,
		"turn":  t.Number,
	}).Infof("Turn resolved with %d actions", len(order))

	t.night.resolved++
	t.night.nextTurn()
}

// tickPoison counts down poisoned characters; the poisoner is credited with the kill.
func (t *Turn) tickPoison(r *resolution) {
	for _, c := range r.game.Characters {
		if !c.Alive || c.TurnsToDie == 0 {
			continue
		}
		c.TurnsToDie--
		if c.TurnsToDie > 0 {
			continue
		}
		p := c.poisonedBy
		c.poisonedBy = nil
		if p == nil {
			r.game.kill(nil, c, nil, c.Room)
			continue
		}
		r.game.kill(p.by, c, p.weapon, p.room)
	}
}

// resolution is what action effects see while a turn resolves.
type resolution struct {
	game *Game
	turn *Turn
}

func (r *resolution) tell(c *Character, text string) {
	r.game.postMessage(c, text)
}
