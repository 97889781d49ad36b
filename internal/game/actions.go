// internal/game/actions.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/world"
)

// ActionKind enumerates everything a character may declare during a night turn.
type ActionKind string

const (
	ActionMove         ActionKind = "move"
	ActionWait         ActionKind = "wait"
	ActionHide         ActionKind = "hide"
	ActionAttackKill   ActionKind = "attack_kill"
	ActionAttackDefend ActionKind = "attack_defend"
	ActionAttackBlank  ActionKind = "attack_blank"
	ActionPickWeapon   ActionKind = "pick_weapon"
	ActionOpenDoor     ActionKind = "open_door"
	ActionCloseDoor    ActionKind = "close_door"
	ActionRoomAction   ActionKind = "room_action"
)

// Resolution tiers, ascending. Ties keep submission order.
const (
	priorityCovert    = 1
	priorityCloseDoor = 2
	priorityGun       = 3
	priorityKnife     = 4
	priorityStunt     = 5
	priorityMove      = 6
	priorityPoison    = 7
	priorityLast      = 8
)

func weaponPriority(w *world.Weapon) int {
	switch w.Type {
	case world.WeaponGun:
		return priorityGun
	case world.WeaponKnife:
		return priorityKnife
	case world.WeaponStunt:
		return priorityStunt
	case world.WeaponPoison:
		return priorityPoison
	default:
		return priorityLast
	}
}

// Option is a minimal descriptor of a possible target.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Options lists the possible targets of an action, per target slot.
type Options struct {
	Rooms       []Option `json:"rooms,omitempty"`
	Characters  []Option `json:"characters,omitempty"`
	Weapons     []Option `json:"weapons,omitempty"`
	RoomActions []Option `json:"roomActions,omitempty"`
}

func (o Options) empty() bool {
	return len(o.Rooms) == 0 && len(o.Characters) == 0 && len(o.Weapons) == 0 && len(o.RoomActions) == 0
}

// ActionTargets are the targets of a declaration, by identifier.
type ActionTargets struct {
	Character  uuid.UUID `json:"character,omitempty"`
	Room       string    `json:"room,omitempty"`
	Weapon     string    `json:"weapon,omitempty"`
	RoomAction string    `json:"roomAction,omitempty"`
}

// actionSpec describes one action kind: its base legality, the options it
// offers, how declared targets bind, its priority and its effect.
type actionSpec struct {
	kind ActionKind

	// requiresOption makes the action unavailable when it offers no option.
	requiresOption bool

	base     func(c *Character) bool
	options  func(c *Character) Options
	bind     func(a *Action, t ActionTargets) error
	priority func(a *Action) int
	execute  func(r *resolution, a *Action)
}

// ActionCatalog maps action kinds to their definitions.
type ActionCatalog struct {
	specs map[ActionKind]*actionSpec
	order []ActionKind
}

// DefaultActionCatalog returns the catalog of every night action.
func DefaultActionCatalog() *ActionCatalog {
	cat := &ActionCatalog{specs: make(map[ActionKind]*actionSpec)}
	cat.register(&actionSpec{
		kind: ActionMove, requiresOption: true,
		base:     always,
		options:  moveOptions,
		bind:     bindMove,
		priority: fixedPriority(priorityMove),
		execute:  executeMove,
	})
	cat.register(&actionSpec{
		kind:     ActionWait,
		base:     always,
		priority: fixedPriority(priorityLast),
		execute:  func(*resolution, *Action) {},
	})
	cat.register(&actionSpec{
		kind:     ActionHide,
		base:     canHideHere,
		priority: fixedPriority(priorityCovert),
		execute:  executeHide,
	})
	cat.register(&actionSpec{
		kind: ActionAttackKill, requiresOption: true,
		base:     canAttack,
		options:  attackOptions,
		bind:     bindAttack,
		priority: attackPriority,
		execute:  executeAttack,
	})
	cat.register(&actionSpec{
		kind: ActionAttackBlank, requiresOption: true,
		base:     canAttack,
		options:  attackOptions,
		bind:     bindAttack,
		priority: attackPriority,
		execute:  executeAttack,
	})
	cat.register(&actionSpec{
		kind: ActionAttackDefend, requiresOption: true,
		base:     func(c *Character) bool { return len(c.usableWeapons()) > 0 },
		options:  func(c *Character) Options { return Options{Weapons: weaponOptions(c.usableWeapons())} },
		bind:     bindDefend,
		priority: fixedPriority(priorityCovert),
		execute:  executeDefend,
	})
	cat.register(&actionSpec{
		kind: ActionPickWeapon, requiresOption: true,
		base:     func(c *Character) bool { return len(c.Room.Weapons) > 0 },
		options:  func(c *Character) Options { return Options{Weapons: weaponOptions(c.Room.Weapons)} },
		bind:     bindPickWeapon,
		priority: fixedPriority(priorityLast),
		execute:  executePickWeapon,
	})
	cat.register(&actionSpec{
		kind: ActionOpenDoor, requiresOption: true,
		base:     always,
		options:  func(c *Character) Options { return Options{Rooms: roomOptions(c, openable)} },
		bind:     bindRoomTarget(openable),
		priority: fixedPriority(priorityLast),
		execute:  executeOpenDoor,
	})
	cat.register(&actionSpec{
		kind: ActionCloseDoor, requiresOption: true,
		// closing is granted by abilities only
		base:     never,
		options:  func(c *Character) Options { return Options{Rooms: roomOptions(c, closeable)} },
		bind:     bindRoomTarget(closeable),
		priority: fixedPriority(priorityCloseDoor),
		execute:  executeCloseDoor,
	})
	cat.register(&actionSpec{
		kind: ActionRoomAction, requiresOption: true,
		base:     func(c *Character) bool { return len(c.Room.Actions) > 0 },
		options:  roomActionOptions,
		bind:     bindRoomAction,
		priority: fixedPriority(priorityCovert),
		execute:  executeRoomAction,
	})
	return cat
}

func (cat *ActionCatalog) register(s *actionSpec) {
	if _, dup := cat.specs[s.kind]; dup {
		panic(fmt.Sprintf("action %q registered twice", s.kind))
	}
	cat.specs[s.kind] = s
	cat.order = append(cat.order, s.kind)
}

func (cat *ActionCatalog) lookup(kind ActionKind) (*actionSpec, bool) {
	s, ok := cat.specs[kind]
	return s, ok
}

// permitted reports whether c may declare the action right now, either by the
// base rule or because one of c's abilities grants it.
func (cat *ActionCatalog) permitted(c *Character, s *actionSpec) (Options, bool) {
	if !s.base(c) && !c.enabledByAbility(s.kind) {
		return Options{}, false
	}
	var opts Options
	if s.options != nil {
		opts = s.options(c)
	}
	if s.requiresOption && opts.empty() {
		return Options{}, false
	}
	return opts, true
}

// available assumes lock is held.
func (cat *ActionCatalog) available(c *Character) map[ActionKind]Options {
	out := make(map[ActionKind]Options)
	g := c.game
	if g.phase != PhaseNight || g.currentNight == nil || g.currentNight.current == nil {
		return out
	}
	if !c.Alive || c.Room == nil {
		return out
	}
	for _, kind := range cat.order {
		if opts, ok := cat.permitted(c, cat.specs[kind]); ok {
			out[kind] = opts
		}
	}
	return out
}

func always(*Character) bool { return true }
func never(*Character) bool  { return false }

func fixedPriority(p int) func(*Action) int {
	return func(*Action) int { return p }
}

func attackPriority(a *Action) int {
	return weaponPriority(a.TargetWeapon.Weapon)
}

// canHideHere is the default Hide rule: the character is the only visible
// occupant of an observatory.
func canHideHere(c *Character) bool {
	if c.Room.Room.Type != world.RoomObservatory {
		return false
	}
	visible := c.Room.visiblePresence()
	return len(visible) == 1 && visible[0] == c
}

func canAttack(c *Character) bool {
	return len(c.usableWeapons()) > 0 && len(attackTargets(c)) > 0
}

func attackTargets(c *Character) []*Character {
	var out []*Character
	for _, other := range c.Room.visiblePresence() {
		if other != c {
			out = append(out, other)
		}
	}
	return out
}

func attackOptions(c *Character) Options {
	targets := attackTargets(c)
	opts := Options{Weapons: weaponOptions(c.usableWeapons())}
	for _, t := range targets {
		opts.Characters = append(opts.Characters, Option{ID: t.ID.String(), Name: t.Persona.Name})
	}
	if len(opts.Characters) == 0 || len(opts.Weapons) == 0 {
		return Options{}
	}
	return opts
}

// weaponOptions offers weapons by name; identical items are offered once.
func weaponOptions(items []*WeaponItem) []Option {
	var out []Option
	seen := make(map[string]bool)
	for _, w := range items {
		if seen[w.Name()] {
			continue
		}
		seen[w.Name()] = true
		out = append(out, Option{ID: w.Name(), Name: w.Name()})
	}
	return out
}

// moveOptions lists the open rooms connected to the character's room.
// No open destination means no Move.
func moveOptions(c *Character) Options {
	var opts Options
	for _, r := range c.game.World.Neighbors(c.Room.ID()) {
		gr := c.game.rooms[r.ID]
		if gr != nil && gr.IsOpen {
			opts.Rooms = append(opts.Rooms, Option{ID: gr.ID(), Name: gr.Name()})
		}
	}
	return opts
}

func openable(c *Character, r *GameRoom) bool {
	return !r.IsOpen && r.reachableFrom(c.Room)
}

func closeable(c *Character, r *GameRoom) bool {
	return r.IsOpen && r.Room.Closeable && r.reachableFrom(c.Room)
}

func roomOptions(c *Character, pred func(*Character, *GameRoom) bool) []Option {
	var out []Option
	for _, r := range c.game.Rooms {
		if pred(c, r) {
			out = append(out, Option{ID: r.ID(), Name: r.Name()})
		}
	}
	return out
}

func roomActionOptions(c *Character) Options {
	var opts Options
	for _, ra := range c.Room.Actions {
		opts.RoomActions = append(opts.RoomActions, Option{ID: ra.ID, Name: ra.Name})
	}
	return opts
}

func bindMove(a *Action, t ActionTargets) error {
	g := a.Actor.game
	room := g.rooms[t.Room]
	if room == nil || !room.IsOpen || !g.World.Connected(a.Actor.Room.ID(), room.ID()) {
		return fmt.Errorf("%w: can not move to %q", ErrInvalidTarget, t.Room)
	}
	a.TargetRoom = room
	return nil
}

func bindAttack(a *Action, t ActionTargets) error {
	target := a.Actor.game.character(t.Character)
	valid := false
	for _, c := range attackTargets(a.Actor) {
		if c == target {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: target is not within reach", ErrInvalidTarget)
	}
	w := a.Actor.usableWeapon(t.Weapon)
	if w == nil {
		return fmt.Errorf("%w: no usable weapon %q", ErrInvalidTarget, t.Weapon)
	}
	a.TargetCharacter = target
	a.TargetWeapon = w
	return nil
}

func bindDefend(a *Action, t ActionTargets) error {
	w := a.Actor.usableWeapon(t.Weapon)
	if w == nil {
		return fmt.Errorf("%w: no usable weapon %q", ErrInvalidTarget, t.Weapon)
	}
	a.TargetWeapon = w
	return nil
}

func bindPickWeapon(a *Action, t ActionTargets) error {
	w := a.Actor.Room.weapon(t.Weapon)
	if w == nil {
		return fmt.Errorf("%w: no %q in this room", ErrInvalidTarget, t.Weapon)
	}
	a.TargetWeapon = w
	return nil
}

func bindRoomTarget(pred func(*Character, *GameRoom) bool) func(a *Action, t ActionTargets) error {
	return func(a *Action, t ActionTargets) error {
		room := a.Actor.game.rooms[t.Room]
		if room == nil || !pred(a.Actor, room) {
			return fmt.Errorf("%w: room %q", ErrInvalidTarget, t.Room)
		}
		a.TargetRoom = room
		return nil
	}
}

func bindRoomAction(a *Action, t ActionTargets) error {
	ra := a.Actor.Room.roomAction(t.RoomAction)
	if ra == nil {
		return &RoomActionError{
			Room:   a.Actor.Room.ID(),
			Action: t.RoomAction,
			Reason: fmt.Sprintf("%q can not be done in the %s", t.RoomAction, a.Actor.Room.Name()),
		}
	}
	a.RoomAction = ra
	return nil
}

func executeMove(r *resolution, a *Action) {
	a.Actor.moveTo(a.TargetRoom)
	r.tell(a.Actor, fmt.Sprintf("You walk into the %s.", a.TargetRoom.Name()))
}

func executeHide(r *resolution, a *Action) {
	a.Actor.Hidden = true
	r.tell(a.Actor, "You are hidden.")
}

func executeDefend(_ *resolution, a *Action) {
	a.Actor.defending = a.TargetWeapon
}

// executeAttack resolves AttackKill and AttackBlank. Blank attacks spend
// ammunition and frighten the target without harming them.
func executeAttack(r *resolution, a *Action) {
	attacker, target, weapon := a.Actor, a.TargetCharacter, a.TargetWeapon
	if !target.Alive || target.Hidden || target.Room != attacker.Room {
		r.tell(attacker, "Your target was no longer within reach.")
		return
	}
	if !weapon.consume() {
		r.tell(attacker, fmt.Sprintf("Your %s is empty.", weapon.Name()))
		return
	}
	if a.Kind == ActionAttackBlank {
		r.tell(target, fmt.Sprintf("%s threatened you with a %s.", attacker.Persona.Name, weapon.Name()))
		return
	}
	if counter := target.defenseAgainst(weapon); counter != nil {
		counter.consume()
		r.tell(target, fmt.Sprintf("%s attacked you, you fought back with your %s.", attacker.Persona.Name, counter.Name()))
		r.game.kill(target, attacker, counter, attacker.Room)
		return
	}
	if turns := weapon.Weapon.EffectTurns; turns > 0 {
		if target.TurnsToDie == 0 || target.TurnsToDie > turns {
			target.TurnsToDie = turns
			target.poisonedBy = &poisoning{by: attacker, weapon: weapon, room: attacker.Room}
		}
		r.tell(target, "You feel unwell.")
		return
	}
	r.game.kill(attacker, target, weapon, attacker.Room)
}

func executePickWeapon(r *resolution, a *Action) {
	item, actor := a.TargetWeapon, a.Actor
	room := actor.Room
	if room.weapon(item.Name()) != item {
		r.tell(actor, fmt.Sprintf("The %s is gone.", item.Name()))
		return
	}
	switch {
	case item.Weapon.Reloads != "":
		target := actor.weaponOfType(item.Weapon.Reloads)
		if target == nil {
			r.tell(actor, fmt.Sprintf("You have nothing to use the %s with.", item.Name()))
			return
		}
		target.reload(item.Weapon.StartingAmmo)
	case item.Weapon.Resource:
		actor.Weapons = append(actor.Weapons, newWeaponItem(item.Weapon))
	default:
		room.removeWeapon(item)
		actor.Weapons = append(actor.Weapons, item)
	}
	r.tell(actor, fmt.Sprintf("You picked up the %s.", item.Name()))
}

func executeOpenDoor(r *resolution, a *Action) {
	if openable(a.Actor, a.TargetRoom) {
		a.TargetRoom.IsOpen = true
		r.tell(a.Actor, fmt.Sprintf("You opened the %s.", a.TargetRoom.Name()))
	}
}

// executeCloseDoor is a no-op if the room stopped being closeable from the
// actor's position since the declaration.
func executeCloseDoor(r *resolution, a *Action) {
	if !closeable(a.Actor, a.TargetRoom) {
		r.game.Logger.Debugf("Close door on %s skipped: no longer closeable by %s", a.TargetRoom.ID(), a.Actor.ID)
		return
	}
	a.TargetRoom.IsOpen = false
	r.tell(a.Actor, fmt.Sprintf("You closed the %s.", a.TargetRoom.Name()))
}

func executeRoomAction(r *resolution, a *Action) {
	if a.Actor.Room.roomAction(a.RoomAction.ID) == nil {
		return
	}
	a.RoomAction.run(r, a.Actor)
}
