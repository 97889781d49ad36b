package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	g, err := cfg.Graph()
	require.NoError(t, err)
	require.NotNil(t, g.Room(DefaultStartingRoom), "starting room must exist")
	assert.Len(t, g.Rooms(), 6)
	assert.Len(t, cfg.Personas, 10)
}

func TestGraphConnections(t *testing.T) {
	g, err := DefaultConfig().Graph()
	require.NoError(t, err)

	assert.True(t, g.Connected("hall", "kitchen"))
	assert.True(t, g.Connected("kitchen", "hall"))
	assert.False(t, g.Connected("kitchen", "library"))
	assert.False(t, g.Connected("nowhere", "hall"))

	var names []string
	for _, r := range g.Neighbors("kitchen") {
		names = append(names, r.ID)
	}
	assert.Equal(t, []string{"hall", "basement"}, names)
}

func TestNewGraphRejectsBrokenMaps(t *testing.T) {
	_, err := NewGraph([]Room{{ID: "a", Connections: []string{"b"}}})
	assert.Error(t, err, "dangling connection")

	_, err = NewGraph([]Room{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err, "duplicate id")

	_, err = NewGraph([]Room{{ID: "a", Connections: []string{"a"}}})
	assert.Error(t, err, "self loop")
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
rooms:
  - id: hall
    name: Hall
    type: hall
    connections: [attic]
  - id: attic
    name: Attic
    type: observatory
    closeable: true
    dark: true
    connections: [hall]
    weapons: [Rope]
weapons:
  - name: Rope
    type: stunt
    max_ammo: -1
    starting_ammo: -1
personas:
  - name: Ada
    title: The Guest
    abilities: [stealth]
starting_weapons: [Rope]
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	require.Len(t, cfg.Rooms, 2)
	assert.Equal(t, RoomObservatory, cfg.Rooms[1].Type)
	assert.True(t, cfg.Rooms[1].Closeable)
	assert.True(t, cfg.Rooms[1].Dark)
	assert.False(t, cfg.Rooms[0].Dark)

	rope := cfg.Weapon("Rope")
	require.NotNil(t, rope)
	assert.True(t, rope.Unlimited())
	assert.Equal(t, []string{"stealth"}, cfg.Personas[0].Abilities)
}

func TestParseConfigUnknownWeapon(t *testing.T) {
	data := []byte(`
rooms:
  - id: hall
    weapons: [Nope]
personas:
  - name: Ada
`)
	_, err := ParseConfig(data)
	assert.Error(t, err)
}
