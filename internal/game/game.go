// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/jason-s-yu/mansion/internal/world"
	log "github.com/sirupsen/logrus"
)

// Messenger delivers private messages to characters. Delivery is fire-and-forget.
// It is called with the game lock held and must not call back into the game.
type Messenger interface {
	PostMessage(c *Character, text string)
}

// Participant seats a player in a game. An empty Persona takes the next persona
// of the configuration not already taken.
type Participant struct {
	PlayerID uuid.UUID `json:"playerId"`
	Persona  string    `json:"persona,omitempty"`
}

// Kill records a death.
type Kill struct {
	Killer *Character // nil when nobody is credited
	Victim *Character
	Room   *GameRoom
	Weapon string
	Night  int
	Turn   int
}

// Game is a single running mansion game. Every exported method takes the game
// lock; unexported helpers assume it is held.
type Game struct {
	ID    uuid.UUID
	Rules Rules
	World *world.Graph

	Characters []*Character
	Rooms      []*GameRoom
	Nights     []*Night
	Days       []*Day
	Kills      []Kill

	// Logger is scoped to the game. Defaults to the standard logrus logger.
	Logger log.FieldLogger
	// Messenger receives every private message. Optional.
	Messenger Messenger
	// StartingRoomFn picks the room a character wakes up in each night.
	// Defaults to Rules.StartingRoom.
	StartingRoomFn func(c *Character) string
	// OnPhaseChange is invoked with a snapshot every time the phase changes,
	// with the lock held.
	OnPhaseChange func(state GameState)

	config        *world.Config
	phase         Phase
	nightCount    int
	dayCount      int
	currentNight  *Night
	currentDay    *Day
	rooms         map[string]*GameRoom
	manipulations []Manipulation
	actions       *ActionCatalog
	actionIndex   int
	starting      bool

	mu sync.Mutex
}

// NewGame sets up a game for the given participants on the given mansion.
func NewGame(cfg *world.Config, rules Rules, participants []Participant) (*Game, error) {
	return NewGameWithRegistry(cfg, rules, participants, DefaultAbilityRegistry())
}

// NewGameWithRegistry is NewGame with a custom ability registry.
func NewGameWithRegistry(cfg *world.Config, rules Rules, participants []Participant, registry *AbilityRegistry) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if n := len(participants); n < rules.MinPlayers || n > rules.MaxPlayers || n > len(cfg.Personas) {
		return nil, fmt.Errorf("%w: %d players, expected %d to %d", ErrInvalidPlayerCount, n, rules.MinPlayers, rules.MaxPlayers)
	}
	graph, err := cfg.Graph()
	if err != nil {
		return nil, err
	}
	if graph.Room(rules.StartingRoom) == nil {
		return nil, fmt.Errorf("starting room %q is not part of the mansion", rules.StartingRoom)
	}

	id, _ := uuid.NewRandom()
	g := &Game{
		ID:      id,
		Rules:   rules,
		World:   graph,
		Logger:  log.StandardLogger().WithField("game", id),
		config:  cfg,
		phase:   PhaseUnstarted,
		rooms:   make(map[string]*GameRoom),
		actions: DefaultActionCatalog(),
	}

	for _, r := range graph.Rooms() {
		gr := &GameRoom{Room: r, IsOpen: true, IsDark: r.Dark, Actions: roomActionsFor(r.Type), game: g}
		for _, name := range r.Weapons {
			w := cfg.Weapon(name)
			if w == nil {
				return nil, fmt.Errorf("room %q holds unknown weapon %q", r.ID, name)
			}
			gr.Weapons = append(gr.Weapons, newWeaponItem(w))
		}
		g.Rooms = append(g.Rooms, gr)
		g.rooms[r.ID] = gr
	}

	personas, err := assignPersonas(cfg, participants)
	if err != nil {
		return nil, err
	}
	for i, p := range participants {
		c := &Character{
			ID:       uuid.New(),
			PlayerID: p.PlayerID,
			Persona:  personas[i],
			Alive:    true,
			game:     g,
		}
		for _, name := range cfg.StartingWeapons {
			w := cfg.Weapon(name)
			if w == nil {
				return nil, fmt.Errorf("unknown starting weapon %q", name)
			}
			c.Weapons = append(c.Weapons, newWeaponItem(w))
		}
		for _, aid := range c.Persona.Abilities {
			effect, ok := registry.Lookup(AbilityID(aid))
			if !ok {
				return nil, fmt.Errorf("persona %q has unknown ability %q", c.Persona.Name, aid)
			}
			c.Abilities = append(c.Abilities, &CharacterAbility{
				ID:        AbilityID(aid),
				Available: true,
				effect:    effect,
				character: c,
			})
		}
		g.Characters = append(g.Characters, c)
	}
	return g, nil
}

func assignPersonas(cfg *world.Config, participants []Participant) ([]world.Persona, error) {
	byName := make(map[string]int, len(cfg.Personas))
	for i, p := range cfg.Personas {
		byName[p.Name] = i
	}
	taken := make(map[int]bool)
	out := make([]world.Persona, len(participants))
	for i, p := range participants {
		if p.Persona == "" {
			continue
		}
		idx, ok := byName[p.Persona]
		if !ok {
			return nil, fmt.Errorf("unknown persona %q", p.Persona)
		}
		if taken[idx] {
			return nil, fmt.Errorf("persona %q assigned twice", p.Persona)
		}
		taken[idx] = true
		out[i] = cfg.Personas[idx]
	}
	next := 0
	for i, p := range participants {
		if p.Persona != "" {
			continue
		}
		for taken[next] {
			next++
		}
		taken[next] = true
		out[i] = cfg.Personas[next]
	}
	return out, nil
}

// Start opens the first night and runs every startgame ability in roster order.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseUnstarted {
		return ErrAlreadyStarted
	}
	g.openNight()

	g.starting = true
	for _, c := range g.Characters {
		for _, a := range c.Abilities {
			if a.Phase() != AbilityPhaseStartgame || a.Capability() == Passive || !a.usable() {
				continue
			}
			if err := a.run(AbilityArgs{}); err != nil {
				g.Logger.WithFields(log.Fields{
					"character": c.ID,
					"ability":   a.ID,
				}).WithError(err).Warn("Startgame ability failed")
			}
		}
	}
	g.starting = false

	g.logAction(uuid.Nil, "game_start", nil)
	g.Logger.Infof("Game started with %d characters", len(g.Characters))
	g.notifyPhaseChange()
	return nil
}

// Advance toggles between night and day. It fails with ErrGameUnstarted before
// Start, and with ErrGameComplete once the last night is over.
func (g *Game) Advance() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.advance()
}

// advance assumes lock is held.
func (g *Game) advance() error {
	switch g.phase {
	case PhaseUnstarted:
		return ErrGameUnstarted
	case PhaseComplete:
		return ErrGameComplete
	case PhaseNight:
		g.closeNight()
		if g.nightCount >= g.Rules.TotalNights {
			g.phase = PhaseComplete
			g.logAction(uuid.Nil, "game_complete", map[string]interface{}{"nights": g.nightCount})
			g.notifyPhaseChange()
			return ErrGameComplete
		}
		g.openDay()
	case PhaseDay:
		g.openNight()
	}
	g.logAction(uuid.Nil, "phase_change", map[string]interface{}{
		"phase": string(g.phase),
		"night": g.nightCount,
		"day":   g.dayCount,
	})
	g.notifyPhaseChange()
	return nil
}

// openNight moves every living character to their starting room and opens turn 1.
func (g *Game) openNight() {
	g.nightCount++
	g.phase = PhaseNight
	g.currentDay = nil
	for _, c := range g.Characters {
		c.defending = nil
		if !c.Alive {
			continue
		}
		room := g.rooms[g.startingRoom(c)]
		if room == nil {
			panic(fmt.Sprintf("starting room for %s does not exist", c.ID))
		}
		c.moveTo(room)
	}
	n := newNight(g, g.nightCount)
	g.Nights = append(g.Nights, n)
	g.currentNight = n
	g.Logger.WithField("night", n.Number).Info("Night falls")
}

// closeNight stops the running night and remembers where everyone ended it.
// The night stays reachable through Nights.
func (g *Game) closeNight() {
	g.currentNight.current = nil
	g.currentNight = nil
	for _, c := range g.Characters {
		if c.Alive {
			c.lastNightRoom = c.Room
		}
	}
}

func (g *Game) openDay() {
	g.dayCount++
	g.phase = PhaseDay
	d := &Day{ID: uuid.New(), Number: g.dayCount}
	g.Days = append(g.Days, d)
	g.currentDay = d
	g.Logger.WithField("day", d.Number).Info("Day breaks")
}

func (g *Game) startingRoom(c *Character) string {
	if g.StartingRoomFn != nil {
		if id := g.StartingRoomFn(c); id != "" {
			return id
		}
	}
	return g.Rules.StartingRoom
}

// declare assumes lock is held.
func (g *Game) declare(c *Character, kind ActionKind, targets ActionTargets) (*Action, error) {
	switch {
	case g.phase == PhaseUnstarted:
		return nil, ErrGameUnstarted
	case g.phase == PhaseComplete:
		return nil, ErrGameComplete
	case g.phase != PhaseNight || g.currentNight == nil || g.currentNight.current == nil:
		return nil, ErrActionInWrongStage
	case g.character(c.ID) != c:
		return nil, ErrUnknownCharacter
	}
	return g.currentNight.current.declare(c, kind, targets)
}

// confirm assumes lock is held.
func (g *Game) confirm(c *Character) error {
	if g.phase != PhaseNight || g.currentNight == nil || g.currentNight.current == nil {
		return ErrActionInWrongStage
	}
	if g.character(c.ID) != c {
		return ErrUnknownCharacter
	}
	return g.currentNight.current.confirm(c)
}

// RunAbility runs an ability of one of the game's characters.
func (g *Game) RunAbility(characterID uuid.UUID, id AbilityID, args AbilityArgs) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.character(characterID)
	if c == nil {
		return ErrUnknownCharacter
	}
	a := c.Ability(id)
	if a == nil {
		return abilityErr(id, "Character does not have this ability")
	}
	return a.run(args)
}

// kill marks victim dead and records it.
func (g *Game) kill(killer, victim *Character, weapon *WeaponItem, room *GameRoom) {
	if !victim.Alive {
		return
	}
	victim.Alive = false
	victim.Hidden = false
	victim.TurnsToDie = 0
	victim.poisonedBy = nil
	victim.defending = nil

	k := Kill{Killer: killer, Victim: victim, Room: room, Night: g.nightCount}
	if weapon != nil {
		k.Weapon = weapon.Name()
	}
	if g.currentNight != nil && g.currentNight.current != nil {
		k.Turn = g.currentNight.current.Number
	}
	g.Kills = append(g.Kills, k)
	g.postMessage(victim, "You have been killed.")

	payload := map[string]interface{}{"victim": victim.ID.String(), "weapon": k.Weapon}
	actor := uuid.Nil
	if killer != nil {
		actor = killer.ID
	}
	if room != nil {
		payload["room"] = room.ID()
	}
	g.logAction(actor, "kill", payload)
	g.Logger.WithFields(log.Fields{"victim": victim.ID, "weapon": k.Weapon}).Info("Character killed")
}

// postMessage stores the message on the character and forwards it to the Messenger.
func (g *Game) postMessage(c *Character, text string) {
	msg := Message{Text: text, ReceivedOn: time.Now()}
	switch g.phase {
	case PhaseNight:
		msg.Night = g.nightCount
	case PhaseDay:
		msg.Day = g.dayCount
	}
	if c.Room != nil {
		msg.Room = c.Room.ID()
	}
	c.messages = append(c.messages, msg)
	if g.Messenger != nil {
		g.Messenger.PostMessage(c, text)
	}
}

// eligibleCharacters are those a turn waits on: alive and standing in a room.
func (g *Game) eligibleCharacters() []*Character {
	var out []*Character
	for _, c := range g.Characters {
		if c.Alive && c.Room != nil {
			out = append(out, c)
		}
	}
	return out
}

func (g *Game) character(id uuid.UUID) *Character {
	for _, c := range g.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (g *Game) notifyPhaseChange() {
	if g.OnPhaseChange != nil {
		g.OnPhaseChange(g.state())
	}
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// NightCount returns the number of nights opened so far.
func (g *Game) NightCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nightCount
}

// CurrentNight returns the running night, or nil outside a night.
func (g *Game) CurrentNight() *Night {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentNight
}

// CurrentDay returns the running day, or nil.
func (g *Game) CurrentDay() *Day {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentDay
}

// Character returns the character with the given id, or nil.
func (g *Game) Character(id uuid.UUID) *Character {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.character(id)
}

// CharacterByPlayer returns the character played by the given player, or nil.
func (g *Game) CharacterByPlayer(playerID uuid.UUID) *Character {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.Characters {
		if c.PlayerID == playerID {
			return c
		}
	}
	return nil
}

// Room returns the room with the given id, or nil.
func (g *Game) Room(id string) *GameRoom {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[id]
}

// Manipulations returns the vote tamperings recorded so far.
func (g *Game) Manipulations() []Manipulation {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Manipulation, len(g.manipulations))
	copy(out, g.manipulations)
	return out
}

// logAction pushes an audit record to the historian queue. It never blocks the game.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	logger := g.Logger
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logger.WithError(err).Errorf("Error publishing game action %d", rec.ActionIndex)
		}
	}(record)
}
