// internal/game/ability.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// AbilityID identifies an ability implementation in the registry.
type AbilityID string

// Capability tells how an ability is consumed.
type Capability int

const (
	// SingleUse abilities become unavailable after their first successful run.
	SingleUse Capability = iota
	// Reusable abilities may run any number of times.
	Reusable
	// Passive abilities are never run directly; the engine consults them.
	Passive
)

// AbilityEffect is the behavior behind an ability identifier.
type AbilityEffect interface {
	Phase() AbilityPhase
	Capability() Capability
	Run(ctx *AbilityContext) error
}

// actionEnabler is implemented by abilities that make an action kind available
// to their owner beyond the base rules.
type actionEnabler interface {
	enables(c *Character, kind ActionKind) bool
}

// defensiveAbility is implemented by passive abilities that defend their owner
// without a declared AttackDefend.
type defensiveAbility interface {
	defenseWeapon(c *Character) *WeaponItem
}

// AbilityArgs are the optional targets of an ability run, as sent by a caller.
type AbilityArgs struct {
	Room      string    `json:"room,omitempty"`
	Character uuid.UUID `json:"character,omitempty"`
}

// AbilityContext is what an effect sees while running. Room and Target are the
// resolved AbilityArgs, nil when not provided.
type AbilityContext struct {
	Game      *Game
	Character *Character
	Room      *GameRoom
	Target    *Character
}

// tell sends a private message to the ability owner.
func (ctx *AbilityContext) tell(text string) {
	ctx.Game.postMessage(ctx.Character, text)
}

// AbilityRegistry maps ability identifiers to their effect. The mapping is
// explicit and built once; an identifier resolves to exactly one effect.
type AbilityRegistry struct {
	effects map[AbilityID]AbilityEffect
}

// NewAbilityRegistry returns an empty registry.
func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{effects: make(map[AbilityID]AbilityEffect)}
}

// Register binds an effect to an identifier. Registering the same identifier twice panics.
func (r *AbilityRegistry) Register(id AbilityID, effect AbilityEffect) {
	if _, dup := r.effects[id]; dup {
		panic(fmt.Sprintf("ability %q registered twice", id))
	}
	r.effects[id] = effect
}

// Lookup returns the effect bound to id.
func (r *AbilityRegistry) Lookup(id AbilityID) (AbilityEffect, bool) {
	e, ok := r.effects[id]
	return e, ok
}

// CharacterAbility is an ability bound to one character of a game.
type CharacterAbility struct {
	ID        AbilityID
	Available bool

	effect    AbilityEffect
	character *Character
}

// Phase returns the phase the ability is usable in.
func (a *CharacterAbility) Phase() AbilityPhase {
	return a.effect.Phase()
}

// Capability returns how the ability is consumed.
func (a *CharacterAbility) Capability() Capability {
	return a.effect.Capability()
}

func (a *CharacterAbility) usable() bool {
	return a.Available || a.effect.Capability() != SingleUse
}

// Run executes the ability for its owner.
func (a *CharacterAbility) Run(args AbilityArgs) error {
	g := a.character.game
	g.mu.Lock()
	defer g.mu.Unlock()
	return a.run(args)
}

// run assumes lock is held. Availability of single-use abilities is only
// consumed when the effect succeeds.
func (a *CharacterAbility) run(args AbilityArgs) error {
	g := a.character.game
	switch {
	case a.effect.Capability() == Passive:
		return abilityErr(a.ID, "Passive abilities can not be triggered")
	case !a.usable():
		return abilityErr(a.ID, "Ability has already been used")
	case !a.character.Alive:
		return abilityErr(a.ID, "Dead characters can not use abilities")
	case !g.phaseAllows(a.effect.Phase()):
		return abilityErr(a.ID, fmt.Sprintf("Ability can only be used during the %s phase", a.effect.Phase()))
	}

	ctx := &AbilityContext{Game: g, Character: a.character}
	if args.Room != "" {
		ctx.Room = g.rooms[args.Room]
		if ctx.Room == nil {
			return abilityErr(a.ID, fmt.Sprintf("Unknown room %q", args.Room))
		}
	}
	if args.Character != uuid.Nil {
		ctx.Target = g.character(args.Character)
		if ctx.Target == nil {
			return abilityErr(a.ID, "Unknown target character")
		}
	}

	if err := a.effect.Run(ctx); err != nil {
		return err
	}
	if a.effect.Capability() == SingleUse {
		a.Available = false
	}
	g.logAction(a.character.ID, "ability_run", map[string]interface{}{
		"ability": string(a.ID),
		"room":    args.Room,
		"target":  args.Character.String(),
	})
	return nil
}
