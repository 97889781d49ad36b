// internal/game/game_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMessenger collects private messages instead of sending them over WS.
type mockMessenger struct {
	mu       sync.Mutex
	messages map[uuid.UUID][]string
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{messages: make(map[uuid.UUID][]string)}
}

func (m *mockMessenger) PostMessage(c *Character, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[c.ID] = append(m.messages[c.ID], text)
}

func (m *mockMessenger) last(c *Character) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[c.ID]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// setupTestGame creates a game on the default mansion with one character per persona name.
func setupTestGame(t *testing.T, rules Rules, personas ...string) (*Game, *mockMessenger) {
	t.Helper()
	participants := make([]Participant, len(personas))
	for i, p := range personas {
		participants[i] = Participant{PlayerID: uuid.New(), Persona: p}
	}
	g, err := NewGame(world.DefaultConfig(), rules, participants)
	require.NoError(t, err)
	mm := newMockMessenger()
	g.Messenger = mm
	return g, mm
}

func startedGame(t *testing.T, rules Rules, personas ...string) (*Game, *mockMessenger) {
	t.Helper()
	g, mm := setupTestGame(t, rules, personas...)
	require.NoError(t, g.Start())
	return g, mm
}

// confirmAll re-confirms every unconfirmed action until the turn resolves.
func confirmAll(t *testing.T, chars ...*Character) {
	t.Helper()
	for _, c := range chars {
		if a := c.CurrentAction(); a != nil && !a.Confirmed {
			require.NoError(t, c.ConfirmAction())
		}
	}
}

func declare(t *testing.T, c *Character, kind ActionKind, targets ActionTargets) *Action {
	t.Helper()
	a, err := c.DeclareAction(kind, targets)
	require.NoError(t, err)
	return a
}

var (
	psychologist = "Miriam Hale"
	bodyguard    = "Victor Crane"
	undertaker   = "Ezra Moss"
	avenger      = "Ines Duval"
	host         = "Lord Ashby"
	maniac       = "Silas Reed"
	exMarine     = "Gwen Harker"
	manipulator  = "Julian Frost"
	reporter     = "Nora Bell"
	policeman    = "Oscar Pike"
)

func TestNewGameRejectsPlayerCount(t *testing.T) {
	_, err := NewGame(world.DefaultConfig(), DefaultRules(), []Participant{{PlayerID: uuid.New()}, {PlayerID: uuid.New()}})
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)

	participants := make([]Participant, 11)
	for i := range participants {
		participants[i] = Participant{PlayerID: uuid.New()}
	}
	_, err = NewGame(world.DefaultConfig(), DefaultRules(), participants)
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)
}

func TestNewGameAssignsPersonas(t *testing.T) {
	g, err := NewGame(world.DefaultConfig(), DefaultRules(), []Participant{
		{PlayerID: uuid.New()},
		{PlayerID: uuid.New(), Persona: psychologist},
		{PlayerID: uuid.New()},
	})
	require.NoError(t, err)

	assert.Equal(t, bodyguard, g.Characters[0].Persona.Name)
	assert.Equal(t, psychologist, g.Characters[1].Persona.Name)
	assert.Equal(t, undertaker, g.Characters[2].Persona.Name)
	for _, c := range g.Characters {
		assert.True(t, c.Alive)
		assert.Nil(t, c.Room, "characters have no room before the first night")
		require.Len(t, c.Weapons, 1)
		assert.Equal(t, "Gun", c.Weapons[0].Name())
		assert.Equal(t, 0, c.Weapons[0].Ammo)
	}

	_, err = NewGame(world.DefaultConfig(), DefaultRules(), []Participant{
		{PlayerID: uuid.New(), Persona: host},
		{PlayerID: uuid.New(), Persona: host},
		{PlayerID: uuid.New()},
	})
	assert.Error(t, err)
}

func TestStartOpensFirstNight(t *testing.T) {
	g, _ := setupTestGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	assert.Equal(t, PhaseUnstarted, g.Phase())

	require.NoError(t, g.Start())
	assert.Equal(t, PhaseNight, g.Phase())

	night := g.CurrentNight()
	require.NotNil(t, night)
	assert.Equal(t, 1, night.Number)
	assert.True(t, night.IsNew())
	require.NotNil(t, night.CurrentTurn())
	assert.Equal(t, 1, night.CurrentTurn().Number)
	for _, c := range g.Characters {
		assert.Equal(t, "hall", c.Room.ID())
	}

	assert.ErrorIs(t, g.Start(), ErrAlreadyStarted)
}

func TestStartRunsStartgameAbilities(t *testing.T) {
	g, mm := startedGame(t, DefaultRules(), psychologist, maniac, exMarine)
	m, ex := g.Characters[1], g.Characters[2]

	require.NotNil(t, m.Weapon("Knife"))
	assert.False(t, m.Ability(world.AbilityCuttingEdge).Available)

	gun := ex.Weapon("Gun")
	require.NotNil(t, gun)
	assert.Equal(t, 2, gun.Ammo)
	assert.False(t, ex.Ability(world.AbilityReload).Available)
	assert.Contains(t, mm.last(ex), "2 bullets")

	// Startgame abilities can not be triggered once the game runs.
	err := g.RunAbility(m.ID, world.AbilityCuttingEdge, AbilityArgs{})
	assert.ErrorIs(t, err, ErrAbility)
}

func TestAdvance(t *testing.T) {
	rules := DefaultRules()
	rules.TotalNights = 2
	g, _ := setupTestGame(t, rules, psychologist, bodyguard, undertaker)

	assert.ErrorIs(t, g.Advance(), ErrGameUnstarted)

	require.NoError(t, g.Start())
	x := g.Characters[0]
	declare(t, x, ActionMove, ActionTargets{Room: "kitchen"})

	require.NoError(t, g.Advance())
	assert.Equal(t, PhaseDay, g.Phase())
	require.NotNil(t, g.CurrentDay())
	assert.Equal(t, 1, g.CurrentDay().Number)
	assert.Nil(t, g.CurrentNight(), "no night runs during the day")
	require.Len(t, g.Nights, 1)
	assert.Nil(t, g.Nights[0].CurrentTurn())

	_, err := x.DeclareAction(ActionWait, ActionTargets{})
	assert.ErrorIs(t, err, ErrActionInWrongStage)

	require.NoError(t, g.Advance())
	assert.Equal(t, PhaseNight, g.Phase())
	assert.Equal(t, 2, g.NightCount())
	assert.True(t, g.CurrentNight().IsNew())
	assert.Equal(t, "hall", x.Room.ID())

	assert.ErrorIs(t, g.Advance(), ErrGameComplete)
	assert.Equal(t, PhaseComplete, g.Phase())
	assert.Nil(t, g.CurrentNight())
	assert.Nil(t, g.CurrentDay())
	assert.ErrorIs(t, g.Advance(), ErrGameComplete)

	_, err = x.DeclareAction(ActionWait, ActionTargets{})
	assert.ErrorIs(t, err, ErrGameComplete)
}

func TestStartingRoomResolver(t *testing.T) {
	g, _ := setupTestGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	first := g.Characters[0]
	g.StartingRoomFn = func(c *Character) string {
		if c == first {
			return "kitchen"
		}
		return ""
	}
	require.NoError(t, g.Start())

	assert.Equal(t, "kitchen", first.Room.ID())
	assert.Equal(t, "hall", g.Characters[1].Room.ID())
}

func TestOnPhaseChange(t *testing.T) {
	g, _ := setupTestGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	var phases []Phase
	g.OnPhaseChange = func(st GameState) {
		phases = append(phases, st.Phase)
	}
	require.NoError(t, g.Start())
	require.NoError(t, g.Advance())
	require.NoError(t, g.Advance())
	assert.Equal(t, []Phase{PhaseNight, PhaseDay, PhaseNight}, phases)
}

func TestDeclareSupersedesPreviousAction(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	x := g.Characters[0]

	wait := declare(t, x, ActionWait, ActionTargets{})
	move := declare(t, x, ActionMove, ActionTargets{Room: "library"})

	assert.False(t, wait.Active)
	assert.True(t, move.Active)
	assert.True(t, move.Confirmed)
	assert.Equal(t, move, x.CurrentAction())

	history := g.CurrentNight().CurrentTurn().History()
	require.Len(t, history, 2)
	assert.Equal(t, wait, history[0])
	assert.Equal(t, move, history[1])
}

func TestDeclareRejectsInvalidActions(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	x := g.Characters[0]

	_, err := x.DeclareAction(ActionHide, ActionTargets{})
	assert.ErrorIs(t, err, ErrActionUnavailable, "the hall is no observatory")

	_, err = x.DeclareAction(ActionAttackKill, ActionTargets{Character: g.Characters[1].ID, Weapon: "Gun"})
	assert.ErrorIs(t, err, ErrActionUnavailable, "the gun is empty")

	_, err = x.DeclareAction(ActionCloseDoor, ActionTargets{Room: "library"})
	assert.ErrorIs(t, err, ErrActionUnavailable, "closing doors needs the gatekeeper")

	_, err = x.DeclareAction(ActionMove, ActionTargets{Room: "attic"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = x.DeclareAction(ActionPickWeapon, ActionTargets{Weapon: "Knife"})
	assert.ErrorIs(t, err, ErrInvalidTarget, "the knife lies in the kitchen")

	assert.ErrorIs(t, x.ConfirmAction(), ErrNoAction)
	assert.Empty(t, g.CurrentNight().CurrentTurn().History())
}

func TestAvailableActions(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, host, undertaker)
	x, h := g.Characters[0], g.Characters[1]

	avail := x.AvailableActions()
	assert.Contains(t, avail, ActionMove)
	assert.Contains(t, avail, ActionWait)
	assert.Contains(t, avail, ActionPickWeapon)
	assert.NotContains(t, avail, ActionHide)
	assert.NotContains(t, avail, ActionAttackKill)
	assert.NotContains(t, avail, ActionCloseDoor)
	assert.NotContains(t, avail, ActionOpenDoor)
	assert.Len(t, avail[ActionMove].Rooms, 5)
	assert.Equal(t, []Option{{ID: "Chandelier", Name: "Chandelier"}}, avail[ActionPickWeapon].Weapons)

	hostActions := g.Room("hall").ListAvailableActions(h)
	require.Contains(t, hostActions, ActionCloseDoor)
	assert.Len(t, hostActions[ActionCloseDoor].Rooms, 5)

	// A room only lists actions for the characters standing in it.
	assert.Empty(t, g.Room("kitchen").ListAvailableActions(x))
}

func TestMoveUnavailableWithoutOpenDestination(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	x := g.Characters[0]
	for _, id := range []string{"library", "observatory", "master_bedroom", "kitchen", "basement"} {
		g.Room(id).Close()
	}

	avail := x.AvailableActions()
	assert.NotContains(t, avail, ActionMove)
	require.Contains(t, avail, ActionOpenDoor)
	assert.Len(t, avail[ActionOpenDoor].Rooms, 5)

	_, err := x.DeclareAction(ActionMove, ActionTargets{Room: "kitchen"})
	assert.ErrorIs(t, err, ErrActionUnavailable)
}

func TestCoLocationInvalidation(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	x, y, z := g.Characters[0], g.Characters[1], g.Characters[2]

	// Turn 1 takes x to the kitchen.
	declare(t, x, ActionMove, ActionTargets{Room: "kitchen"})
	declare(t, y, ActionWait, ActionTargets{})
	declare(t, z, ActionWait, ActionTargets{})
	confirmAll(t, x, y, z)
	require.Equal(t, "kitchen", x.Room.ID())
	require.Equal(t, 2, g.CurrentNight().CurrentTurn().Number)

	xWait := declare(t, x, ActionWait, ActionTargets{})
	yWait := declare(t, y, ActionWait, ActionTargets{})
	assert.True(t, xWait.Confirmed, "declarations in the hall do not reach the kitchen")
	assert.True(t, yWait.Confirmed)

	declare(t, z, ActionWait, ActionTargets{})
	assert.True(t, xWait.Confirmed)
	assert.False(t, yWait.Confirmed)
	assert.False(t, g.CurrentNight().CurrentTurn().IsResolved())
}

func TestThreeCharacterScenario(t *testing.T) {
	rules := DefaultRules()
	rules.NightTurns = 2
	g, _ := startedGame(t, rules, psychologist, bodyguard, undertaker)
	x, y, z := g.Characters[0], g.Characters[1], g.Characters[2]
	night := g.CurrentNight()
	turn1 := night.CurrentTurn()

	yWait := declare(t, y, ActionWait, ActionTargets{})
	require.True(t, yWait.Confirmed)

	move := declare(t, x, ActionMove, ActionTargets{Room: "library"})
	assert.False(t, yWait.Confirmed, "x's declaration unconfirms y in the same room")
	assert.True(t, move.Confirmed)

	require.NoError(t, y.ConfirmAction())
	assert.False(t, turn1.IsResolved())

	declare(t, z, ActionWait, ActionTargets{})
	// z's declaration unconfirmed both others.
	assert.False(t, turn1.IsResolved())
	require.NoError(t, y.ConfirmAction())
	require.NoError(t, x.ConfirmAction())

	assert.True(t, turn1.IsResolved())
	assert.Equal(t, "library", x.Room.ID())
	assert.False(t, night.IsNew())
	turn2 := night.CurrentTurn()
	require.NotNil(t, turn2)
	assert.Equal(t, 2, turn2.Number)
	assert.False(t, move.Active, "resolved actions are deactivated")
	assert.Nil(t, x.CurrentAction())

	// Completing the last turn of the night breaks the day.
	declare(t, x, ActionWait, ActionTargets{})
	declare(t, y, ActionWait, ActionTargets{})
	declare(t, z, ActionWait, ActionTargets{})
	confirmAll(t, x, y, z)

	assert.True(t, turn2.IsResolved())
	assert.Len(t, night.Turns, 2)
	assert.Nil(t, night.CurrentTurn())
	assert.Equal(t, PhaseDay, g.Phase())
	assert.Equal(t, "library", x.lastNightRoom.ID())
}

func TestResolutionPriorityOrder(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, host, exMarine)
	a, h, ex := g.Characters[0], g.Characters[1], g.Characters[2]
	turn := g.CurrentNight().CurrentTurn()

	declare(t, a, ActionMove, ActionTargets{Room: "kitchen"})
	declare(t, h, ActionCloseDoor, ActionTargets{Room: "library"})
	declare(t, ex, ActionAttackKill, ActionTargets{Character: h.ID, Weapon: "Gun"})
	confirmAll(t, a, h, ex)

	require.True(t, turn.IsResolved())
	var kinds []ActionKind
	for _, act := range turn.ExecutionOrder() {
		kinds = append(kinds, act.Kind)
	}
	assert.Equal(t, []ActionKind{ActionCloseDoor, ActionAttackKill, ActionMove}, kinds)

	assert.False(t, g.Room("library").IsOpen)
	assert.False(t, h.Alive)
	assert.Equal(t, "kitchen", a.Room.ID())
	assert.Equal(t, 1, ex.Weapon("Gun").Ammo)
	require.Len(t, g.Kills, 1)
	assert.Equal(t, ex, g.Kills[0].Killer)
	assert.Equal(t, "Gun", g.Kills[0].Weapon)
}

func TestTiesKeepDeclarationOrder(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	x, y, z := g.Characters[0], g.Characters[1], g.Characters[2]
	turn := g.CurrentNight().CurrentTurn()

	declare(t, z, ActionMove, ActionTargets{Room: "kitchen"})
	declare(t, x, ActionMove, ActionTargets{Room: "library"})
	declare(t, y, ActionMove, ActionTargets{Room: "basement"})
	// z redeclares: its new action is submitted last.
	declare(t, z, ActionMove, ActionTargets{Room: "observatory"})
	confirmAll(t, x, y, z)

	order := turn.ExecutionOrder()
	require.Len(t, order, 3)
	assert.Equal(t, x, order[0].Actor)
	assert.Equal(t, y, order[1].Actor)
	assert.Equal(t, z, order[2].Actor)
	assert.Equal(t, "observatory", z.Room.ID())
}

func TestAttackAgainstGunReflex(t *testing.T) {
	g, mm := startedGame(t, DefaultRules(), bodyguard, exMarine, undertaker)
	bg, ex, u := g.Characters[0], g.Characters[1], g.Characters[2]
	bg.Weapon("Gun").Ammo = 1

	declare(t, ex, ActionAttackKill, ActionTargets{Character: bg.ID, Weapon: "Gun"})
	assert.Contains(t, mm.last(bg), "draws a Gun")
	declare(t, bg, ActionWait, ActionTargets{})
	declare(t, u, ActionWait, ActionTargets{})
	confirmAll(t, bg, ex, u)

	assert.True(t, bg.Alive)
	assert.False(t, ex.Alive)
	assert.Equal(t, 0, bg.Weapon("Gun").Ammo)
	require.Len(t, g.Kills, 1)
	assert.Equal(t, bg, g.Kills[0].Killer)
}

func TestSpentCopyDoesNotShadowLoadedWeapon(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a, b := g.Characters[0], g.Characters[1]
	spent := newWeaponItem(g.config.Weapon("Chandelier"))
	require.True(t, spent.consume())
	loaded := newWeaponItem(g.config.Weapon("Chandelier"))
	a.Weapons = append(a.Weapons, spent, loaded)

	avail := a.AvailableActions()
	require.Contains(t, avail, ActionAttackKill)
	assert.Contains(t, avail[ActionAttackKill].Weapons, Option{ID: "Chandelier", Name: "Chandelier"})
	require.Contains(t, avail, ActionAttackDefend)
	assert.Contains(t, avail[ActionAttackDefend].Weapons, Option{ID: "Chandelier", Name: "Chandelier"})

	attack := declare(t, a, ActionAttackKill, ActionTargets{Character: b.ID, Weapon: "Chandelier"})
	assert.Same(t, loaded, attack.TargetWeapon)

	defend := declare(t, a, ActionAttackDefend, ActionTargets{Weapon: "Chandelier"})
	assert.Same(t, loaded, defend.TargetWeapon)

	require.True(t, loaded.consume())
	_, err := a.DeclareAction(ActionAttackDefend, ActionTargets{Weapon: "Chandelier"})
	assert.Error(t, err, "every copy is spent")
}

func TestPoisonKillsAfterTwoTurns(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a, b, c := g.Characters[0], g.Characters[1], g.Characters[2]
	a.Weapons = append(a.Weapons, newWeaponItem(g.config.Weapon("Poison")))

	declare(t, a, ActionAttackKill, ActionTargets{Character: b.ID, Weapon: "Poison"})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	assert.True(t, b.Alive)
	assert.Equal(t, 1, b.TurnsToDie)
	assert.Empty(t, g.Kills)
	assert.False(t, a.Weapon("Poison").Usable())

	declare(t, a, ActionWait, ActionTargets{})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	assert.False(t, b.Alive)
	require.Len(t, g.Kills, 1)
	assert.Equal(t, a, g.Kills[0].Killer)
	assert.Equal(t, "Poison", g.Kills[0].Weapon)
	assert.Equal(t, 2, g.Kills[0].Turn)
}

func TestDeadCharactersAreNotWaitedFor(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, host, exMarine)
	a, h, ex := g.Characters[0], g.Characters[1], g.Characters[2]

	declare(t, ex, ActionAttackKill, ActionTargets{Character: h.ID, Weapon: "Gun"})
	declare(t, a, ActionWait, ActionTargets{})
	declare(t, h, ActionWait, ActionTargets{})
	confirmAll(t, a, h, ex)
	require.False(t, h.Alive)

	turn := g.CurrentNight().CurrentTurn()
	_, err := h.DeclareAction(ActionWait, ActionTargets{})
	assert.ErrorIs(t, err, ErrCharacterDead)

	declare(t, a, ActionWait, ActionTargets{})
	declare(t, ex, ActionWait, ActionTargets{})
	confirmAll(t, a, ex)
	assert.True(t, turn.IsResolved())
}

func TestPickWeapon(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a, b, c := g.Characters[0], g.Characters[1], g.Characters[2]

	declare(t, a, ActionPickWeapon, ActionTargets{Weapon: "Chandelier"})
	declare(t, b, ActionMove, ActionTargets{Room: "basement"})
	declare(t, c, ActionMove, ActionTargets{Room: "kitchen"})
	confirmAll(t, a, b, c)

	require.NotNil(t, a.Weapon("Chandelier"), "resource weapons are copied")
	assert.NotNil(t, g.Room("hall").weapon("Chandelier"))

	declare(t, a, ActionWait, ActionTargets{})
	declare(t, b, ActionPickWeapon, ActionTargets{Weapon: "Bullets"})
	declare(t, c, ActionPickWeapon, ActionTargets{Weapon: "Knife"})
	confirmAll(t, a, b, c)

	assert.Equal(t, 2, b.Weapon("Gun").Ammo, "bullets reload the gun")
	assert.Nil(t, b.Weapon("Bullets"))
	require.NotNil(t, c.Weapon("Knife"))
	assert.Nil(t, g.Room("kitchen").weapon("Knife"), "the knife left the kitchen")
}

func TestHideInObservatory(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a, b, c := g.Characters[0], g.Characters[1], g.Characters[2]

	declare(t, a, ActionMove, ActionTargets{Room: "observatory"})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	require.Contains(t, a.AvailableActions(), ActionHide)
	declare(t, a, ActionHide, ActionTargets{})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	assert.True(t, a.Hidden)
	assert.Empty(t, g.Room("observatory").ListVisiblePresence())
}

func TestRoomAction(t *testing.T) {
	g, mm := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a, b, c := g.Characters[0], g.Characters[1], g.Characters[2]

	declare(t, a, ActionMove, ActionTargets{Room: "library"})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	_, err := a.DeclareAction(ActionRoomAction, ActionTargets{RoomAction: RoomActionWatchGrounds})
	assert.ErrorIs(t, err, ErrRoomAction)
	var raErr *RoomActionError
	require.ErrorAs(t, err, &raErr)
	assert.Equal(t, "library", raErr.Room)

	declare(t, a, ActionRoomAction, ActionTargets{RoomAction: RoomActionConsultArchives})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	assert.Equal(t, "The archives record no death in this mansion.", mm.last(a))
}

func TestWatchGroundsSkipsDarkRooms(t *testing.T) {
	cfg := world.DefaultConfig()
	for i := range cfg.Rooms {
		if cfg.Rooms[i].ID == "library" {
			cfg.Rooms[i].Dark = true
		}
	}
	participants := []Participant{
		{PlayerID: uuid.New(), Persona: psychologist},
		{PlayerID: uuid.New(), Persona: bodyguard},
		{PlayerID: uuid.New(), Persona: undertaker},
	}
	g, err := NewGame(cfg, DefaultRules(), participants)
	require.NoError(t, err)
	mm := newMockMessenger()
	g.Messenger = mm
	require.NoError(t, g.Start())
	a, b, c := g.Characters[0], g.Characters[1], g.Characters[2]
	assert.True(t, g.Room("library").IsDark)
	assert.False(t, g.Room("hall").IsDark)

	declare(t, a, ActionMove, ActionTargets{Room: "observatory"})
	declare(t, b, ActionMove, ActionTargets{Room: "library"})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	declare(t, a, ActionRoomAction, ActionTargets{RoomAction: RoomActionWatchGrounds})
	declare(t, b, ActionWait, ActionTargets{})
	declare(t, c, ActionWait, ActionTargets{})
	confirmAll(t, a, b, c)

	seen := mm.last(a)
	assert.Contains(t, seen, undertaker+" in the Hall")
	assert.NotContains(t, seen, bodyguard)
}

func TestRoomStatus(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a := g.Characters[0]
	declare(t, a, ActionMove, ActionTargets{Room: "kitchen"})

	st := g.Room("hall").Status()
	assert.Equal(t, "hall", st.Description.ID)
	assert.True(t, st.Description.IsOpen)
	assert.Equal(t, []string{"Chandelier"}, st.Description.Weapons)
	assert.Equal(t, 1, st.TurnCount)
	require.Len(t, st.Activity, 3)
	require.NotNil(t, st.Activity[0].Event)
	assert.Equal(t, ActionMove, st.Activity[0].Event.Action)
	assert.Equal(t, "Kitchen", st.Activity[0].Event.Target)
	assert.Nil(t, st.Activity[1].Event)
}

func TestConcurrentDeclarationsResolveOnce(t *testing.T) {
	personas := []string{psychologist, bodyguard, undertaker, avenger, host, maniac, exMarine, manipulator, reporter, policeman}
	g, _ := startedGame(t, DefaultRules(), personas...)
	night := g.CurrentNight()
	turn1 := night.CurrentTurn()

	var wg sync.WaitGroup
	for _, c := range g.Characters {
		wg.Add(1)
		go func(c *Character) {
			defer wg.Done()
			_, err := c.DeclareAction(ActionWait, ActionTargets{})
			assert.NoError(t, err)
		}(c)
	}
	wg.Wait()
	assert.False(t, turn1.IsResolved())

	for _, c := range g.Characters {
		wg.Add(1)
		go func(c *Character) {
			defer wg.Done()
			// The last declarer is already confirmed and may find the next turn.
			_ = c.ConfirmAction()
		}(c)
	}
	wg.Wait()

	assert.True(t, turn1.IsResolved())
	assert.Len(t, turn1.ExecutionOrder(), len(personas))
	assert.Equal(t, 2, night.CurrentTurn().Number)
	assert.False(t, night.CurrentTurn().IsResolved())
}

func TestParallelGamesAreIndependent(t *testing.T) {
	games := make([]*Game, 4)
	for i := range games {
		games[i], _ = startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	}
	var wg sync.WaitGroup
	for _, g := range games {
		wg.Add(1)
		go func(g *Game) {
			defer wg.Done()
			for _, c := range g.Characters {
				_, err := c.DeclareAction(ActionWait, ActionTargets{})
				assert.NoError(t, err)
			}
			for _, c := range g.Characters[:2] {
				assert.NoError(t, c.ConfirmAction())
			}
		}(g)
	}
	wg.Wait()
	for _, g := range games {
		assert.Equal(t, 2, g.CurrentNight().CurrentTurn().Number)
	}
}

func TestStateSnapshot(t *testing.T) {
	g, _ := startedGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	a := g.Characters[0]
	declare(t, a, ActionWait, ActionTargets{})

	st := g.State()
	assert.Equal(t, g.ID, st.GameID)
	assert.Equal(t, PhaseNight, st.Phase)
	assert.Equal(t, 1, st.Night)
	assert.Equal(t, 1, st.Turn)
	require.Len(t, st.Characters, 3)
	assert.True(t, st.Characters[0].Confirmed)
	assert.False(t, st.Characters[1].Confirmed)
	assert.Len(t, st.Rooms, 6)

	ps, err := g.PrivateStateFor(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, ps.Self.ID)
	require.NotNil(t, ps.Action)
	assert.Equal(t, ActionWait, ps.Action.Action)
	assert.Equal(t, []string{"Gun"}, ps.Weapons)
	require.NotNil(t, ps.Room)
	assert.Equal(t, "hall", ps.Room.Description.ID)

	_, err = g.PrivateStateFor(uuid.New())
	assert.ErrorIs(t, err, ErrUnknownCharacter)
}

func TestGameStore(t *testing.T) {
	store := NewGameStore()
	g, _ := setupTestGame(t, DefaultRules(), psychologist, bodyguard, undertaker)
	store.AddGame(g)

	got, ok := store.GetGame(g.ID)
	require.True(t, ok)
	assert.Equal(t, g, got)
	assert.Equal(t, []*Game{g}, store.GamesOfPlayer(g.Characters[0].PlayerID))
	assert.Empty(t, store.GamesOfPlayer(uuid.New()))

	store.DeleteGame(g.ID)
	_, ok = store.GetGame(g.ID)
	assert.False(t, ok)
}
