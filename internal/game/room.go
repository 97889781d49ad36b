// internal/game/room.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/world"
)

// WeaponItem is a concrete weapon in a game, lying in a room or carried by a character.
type WeaponItem struct {
	ID     uuid.UUID
	Weapon *world.Weapon
	Ammo   int
}

func newWeaponItem(w *world.Weapon) *WeaponItem {
	return &WeaponItem{ID: uuid.New(), Weapon: w, Ammo: w.StartingAmmo}
}

// Name returns the weapon definition name.
func (w *WeaponItem) Name() string {
	return w.Weapon.Name
}

// Usable reports whether the weapon has ammunition left.
func (w *WeaponItem) Usable() bool {
	return w.Weapon.Unlimited() || w.Ammo > 0
}

// consume spends one round of ammunition. It returns false if the weapon was empty.
func (w *WeaponItem) consume() bool {
	if w.Weapon.Unlimited() {
		return true
	}
	if w.Ammo <= 0 {
		return false
	}
	w.Ammo--
	return true
}

// reload adds ammunition, capped at the weapon maximum.
func (w *WeaponItem) reload(n int) {
	if w.Weapon.Unlimited() {
		return
	}
	w.Ammo += n
	if w.Ammo > w.Weapon.MaxAmmo {
		w.Ammo = w.Weapon.MaxAmmo
	}
}

// GameRoom is the per-game mutable state of a static room. It is a plain value
// holder: it never refuses a mutation, legality lives in actions and abilities.
type GameRoom struct {
	Room    *world.Room
	IsOpen  bool
	IsDark  bool
	Weapons []*WeaponItem
	Actions []*RoomAction

	game *Game
}

// ID returns the static room identifier.
func (r *GameRoom) ID() string {
	return r.Room.ID
}

// Name returns the display name of the room.
func (r *GameRoom) Name() string {
	return r.Room.Name
}

// Open marks the room open.
func (r *GameRoom) Open() {
	r.game.mu.Lock()
	defer r.game.mu.Unlock()
	r.IsOpen = true
}

// Close marks the room closed.
func (r *GameRoom) Close() {
	r.game.mu.Lock()
	defer r.game.mu.Unlock()
	r.IsOpen = false
}

// ListVisiblePresence returns the living, non-hidden characters in the room.
func (r *GameRoom) ListVisiblePresence() []*Character {
	r.game.mu.Lock()
	defer r.game.mu.Unlock()
	return r.visiblePresence()
}

// visiblePresence assumes lock is held.
func (r *GameRoom) visiblePresence() []*Character {
	var out []*Character
	for _, c := range r.game.Characters {
		if c.Room == r && c.Alive && !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// reachableFrom reports whether other is this room or directly connected to it.
func (r *GameRoom) reachableFrom(other *GameRoom) bool {
	if other == nil {
		return false
	}
	return r == other || r.game.World.Connected(other.ID(), r.ID())
}

// weapon returns the first weapon lying here with the given name.
func (r *GameRoom) weapon(name string) *WeaponItem {
	for _, w := range r.Weapons {
		if w.Name() == name {
			return w
		}
	}
	return nil
}

func (r *GameRoom) removeWeapon(item *WeaponItem) bool {
	for i, w := range r.Weapons {
		if w == item {
			r.Weapons = append(r.Weapons[:i], r.Weapons[i+1:]...)
			return true
		}
	}
	return false
}

func (r *GameRoom) roomAction(id string) *RoomAction {
	for _, a := range r.Actions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// ListAvailableActions returns the actions the character may declare right now,
// keyed by kind, with the options for each.
func (r *GameRoom) ListAvailableActions(c *Character) map[ActionKind]Options {
	r.game.mu.Lock()
	defer r.game.mu.Unlock()
	if c.Room != r {
		return map[ActionKind]Options{}
	}
	return r.game.actions.available(c)
}

// RoomDescription is the static part of a room status.
type RoomDescription struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	IsOpen  bool     `json:"isOpen"`
	IsDark  bool     `json:"isDark"`
	Weapons []string `json:"weapons"`
}

// RoomActivity is what a visible character is seen doing.
type RoomActivity struct {
	Character uuid.UUID          `json:"character"`
	Persona   string             `json:"persona"`
	Event     *ActionDescription `json:"event,omitempty"`
}

// RoomStatus is the view a character has of the room they stand in.
type RoomStatus struct {
	Description RoomDescription `json:"description"`
	Activity    []RoomActivity  `json:"activity"`
	TurnCount   int             `json:"turnCount"`
}

// Status describes the room, its visible occupants and what they are doing.
func (r *GameRoom) Status() RoomStatus {
	r.game.mu.Lock()
	defer r.game.mu.Unlock()
	return r.status()
}

// status assumes lock is held.
func (r *GameRoom) status() RoomStatus {
	weapons := make([]string, 0, len(r.Weapons))
	for _, w := range r.Weapons {
		weapons = append(weapons, w.Name())
	}
	st := RoomStatus{
		Description: RoomDescription{
			ID:      r.ID(),
			Name:    r.Name(),
			IsOpen:  r.IsOpen,
			IsDark:  r.IsDark,
			Weapons: weapons,
		},
		Activity: []RoomActivity{},
	}
	if r.game.currentNight != nil {
		st.TurnCount = r.game.currentNight.TurnCount()
	}
	for _, c := range r.visiblePresence() {
		act := RoomActivity{Character: c.ID, Persona: c.Persona.Name}
		if a := c.currentAction(); a != nil {
			d := a.Description()
			act.Event = &d
		}
		st.Activity = append(st.Activity, act)
	}
	return st
}
