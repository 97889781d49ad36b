// internal/game/character.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/world"
)

// Character is a player's participation in a game through a persona.
type Character struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Persona  world.Persona

	Alive  bool
	Hidden bool
	Room   *GameRoom // nil only before the first night

	// TurnsToDie counts down the turns left for a poisoned character. Zero means not poisoned.
	TurnsToDie int

	Weapons   []*WeaponItem
	Abilities []*CharacterAbility

	messages      []Message
	defending     *WeaponItem
	poisonedBy    *poisoning
	lastNightRoom *GameRoom

	game *Game
}

// Message is a private note delivered to a character by the game.
type Message struct {
	Text       string    `json:"text"`
	Night      int       `json:"night,omitempty"`
	Day        int       `json:"day,omitempty"`
	Room       string    `json:"room,omitempty"`
	ReceivedOn time.Time `json:"receivedOn"`
}

type poisoning struct {
	by     *Character
	weapon *WeaponItem
	room   *GameRoom
}

// DeclareAction declares the character's intent for the current night turn,
// superseding any previous declaration in that turn.
func (c *Character) DeclareAction(kind ActionKind, targets ActionTargets) (*Action, error) {
	c.game.mu.Lock()
	defer c.game.mu.Unlock()
	return c.game.declare(c, kind, targets)
}

// ConfirmAction re-confirms the character's active action in the current turn,
// typically after it was unconfirmed by someone else's declaration.
func (c *Character) ConfirmAction() error {
	c.game.mu.Lock()
	defer c.game.mu.Unlock()
	return c.game.confirm(c)
}

// CurrentAction returns the active action of the character in the current turn, or nil.
func (c *Character) CurrentAction() *Action {
	c.game.mu.Lock()
	defer c.game.mu.Unlock()
	return c.currentAction()
}

func (c *Character) currentAction() *Action {
	n := c.game.currentNight
	if n == nil || n.current == nil {
		return nil
	}
	return n.current.active[c.ID]
}

// AvailableActions lists what the character may declare in the current turn.
func (c *Character) AvailableActions() map[ActionKind]Options {
	c.game.mu.Lock()
	defer c.game.mu.Unlock()
	return c.game.actions.available(c)
}

// Messages returns a copy of every message delivered to the character.
func (c *Character) Messages() []Message {
	c.game.mu.Lock()
	defer c.game.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Ability returns the bound ability with the given id, or nil.
func (c *Character) Ability(id AbilityID) *CharacterAbility {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Weapon returns the first carried weapon with the given name, or nil.
func (c *Character) Weapon(name string) *WeaponItem {
	for _, w := range c.Weapons {
		if w.Name() == name {
			return w
		}
	}
	return nil
}

// usableWeapon returns the first carried weapon with the given name that still
// has ammunition, so a spent copy never shadows a loaded one.
func (c *Character) usableWeapon(name string) *WeaponItem {
	for _, w := range c.Weapons {
		if w.Name() == name && w.Usable() {
			return w
		}
	}
	return nil
}

func (c *Character) weaponOfType(t world.WeaponType) *WeaponItem {
	for _, w := range c.Weapons {
		if w.Weapon.Type == t && w.Weapon.Reloads == "" {
			return w
		}
	}
	return nil
}

func (c *Character) usableWeapons() []*WeaponItem {
	var out []*WeaponItem
	for _, w := range c.Weapons {
		if w.Usable() {
			out = append(out, w)
		}
	}
	return out
}

// moveTo relocates the character. Moving reveals a hidden character.
func (c *Character) moveTo(r *GameRoom) {
	c.Room = r
	c.Hidden = false
}

// defenseAgainst returns the weapon the character counters an attack with, if any.
// A defense only works with a weapon resolved no later than the attacking one.
func (c *Character) defenseAgainst(attack *WeaponItem) *WeaponItem {
	candidates := []*WeaponItem{c.defending}
	for _, a := range c.Abilities {
		if d, ok := a.effect.(defensiveAbility); ok {
			candidates = append(candidates, d.defenseWeapon(c))
		}
	}
	for _, w := range candidates {
		if w == nil || !w.Usable() {
			continue
		}
		if weaponPriority(w.Weapon) <= weaponPriority(attack.Weapon) {
			return w
		}
	}
	return nil
}

// enabledByAbility asks every nightly ability of the character whether it
// grants the given action kind.
func (c *Character) enabledByAbility(kind ActionKind) bool {
	for _, a := range c.Abilities {
		if !a.effect.Phase().nightly() || !a.usable() {
			continue
		}
		if e, ok := a.effect.(actionEnabler); ok && e.enables(c, kind) {
			return true
		}
	}
	return false
}
