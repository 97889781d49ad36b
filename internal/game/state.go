// internal/game/state.go
package game

import (
	"github.com/google/uuid"
)

// CharacterState is the public state of one character.
type CharacterState struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  uuid.UUID `json:"playerId"`
	Persona   string    `json:"persona"`
	Alive     bool      `json:"alive"`
	Room      string    `json:"room,omitempty"`
	Confirmed bool      `json:"confirmed"` // has a confirmed action in the current turn
}

// KillState is the public record of a death.
type KillState struct {
	Victim uuid.UUID `json:"victim"`
	Room   string    `json:"room,omitempty"`
	Weapon string    `json:"weapon,omitempty"`
	Night  int       `json:"night"`
	Turn   int       `json:"turn"`
}

// GameState is a snapshot of the whole game, safe to keep after the lock is released.
type GameState struct {
	GameID     uuid.UUID         `json:"gameId"`
	Phase      Phase             `json:"phase"`
	Night      int               `json:"night"`
	Day        int               `json:"day"`
	Turn       int               `json:"turn"`
	Characters []CharacterState  `json:"characters"`
	Rooms      []RoomDescription `json:"rooms"`
	Kills      []KillState       `json:"kills"`
}

// PrivateState is what a single character may know about the game.
type PrivateState struct {
	GameState
	Self      CharacterState         `json:"self"`
	Weapons   []string               `json:"weapons"`
	Abilities []AbilityState         `json:"abilities"`
	Room      *RoomStatus            `json:"room,omitempty"`
	Action    *ActionDescription     `json:"action,omitempty"`
	Available map[ActionKind]Options `json:"available"`
	Messages  []Message              `json:"messages"`
}

// AbilityState describes a bound ability.
type AbilityState struct {
	ID        AbilityID    `json:"id"`
	Phase     AbilityPhase `json:"phase"`
	Available bool         `json:"available"`
}

// State returns a snapshot of the game.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

// state assumes lock is held.
func (g *Game) state() GameState {
	st := GameState{
		GameID:     g.ID,
		Phase:      g.phase,
		Night:      g.nightCount,
		Day:        g.dayCount,
		Characters: make([]CharacterState, 0, len(g.Characters)),
		Rooms:      make([]RoomDescription, 0, len(g.Rooms)),
		Kills:      make([]KillState, 0, len(g.Kills)),
	}
	if g.currentNight != nil && g.currentNight.current != nil {
		st.Turn = g.currentNight.current.Number
	}
	for _, c := range g.Characters {
		st.Characters = append(st.Characters, characterState(c))
	}
	for _, r := range g.Rooms {
		st.Rooms = append(st.Rooms, r.status().Description)
	}
	for _, k := range g.Kills {
		ks := KillState{Victim: k.Victim.ID, Weapon: k.Weapon, Night: k.Night, Turn: k.Turn}
		if k.Room != nil {
			ks.Room = k.Room.ID()
		}
		st.Kills = append(st.Kills, ks)
	}
	return st
}

func characterState(c *Character) CharacterState {
	cs := CharacterState{
		ID:       c.ID,
		PlayerID: c.PlayerID,
		Persona:  c.Persona.Name,
		Alive:    c.Alive,
	}
	if c.Room != nil {
		cs.Room = c.Room.ID()
	}
	if a := c.currentAction(); a != nil {
		cs.Confirmed = a.Confirmed
	}
	return cs
}

// PrivateStateFor returns the game as seen by the given character.
func (g *Game) PrivateStateFor(characterID uuid.UUID) (PrivateState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := g.character(characterID)
	if c == nil {
		return PrivateState{}, ErrUnknownCharacter
	}
	ps := PrivateState{
		GameState: g.state(),
		Self:      characterState(c),
		Weapons:   make([]string, 0, len(c.Weapons)),
		Abilities: make([]AbilityState, 0, len(c.Abilities)),
		Available: g.actions.available(c),
		Messages:  make([]Message, len(c.messages)),
	}
	copy(ps.Messages, c.messages)
	for _, w := range c.Weapons {
		ps.Weapons = append(ps.Weapons, w.Name())
	}
	for _, a := range c.Abilities {
		ps.Abilities = append(ps.Abilities, AbilityState{ID: a.ID, Phase: a.Phase(), Available: a.usable()})
	}
	if c.Room != nil {
		rs := c.Room.status()
		ps.Room = &rs
	}
	if a := c.currentAction(); a != nil {
		d := a.Description()
		ps.Action = &d
	}
	return ps, nil
}
