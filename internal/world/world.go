// internal/world/world.go
package world

import (
	"fmt"
)

// RoomType classifies a room. Each type may enable special behavior for the
// characters standing in it (hiding in the observatory, archives in the library...).
type RoomType string

const (
	RoomBasic       RoomType = "basic"
	RoomHall        RoomType = "hall"
	RoomKitchen     RoomType = "kitchen"
	RoomDormitory   RoomType = "dormitory"
	RoomObservatory RoomType = "observatory"
	RoomLibrary     RoomType = "library"
	RoomBasement    RoomType = "basement"
)

// Room is a static node of the mansion. Rooms never change during play; the
// per-game mutable overlay lives in game.GameRoom.
type Room struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Type      RoomType `yaml:"type" json:"type"`
	Closeable bool     `yaml:"closeable" json:"closeable"`

	// Dark rooms can not be watched from a neighbouring room.
	Dark bool `yaml:"dark" json:"dark,omitempty"`

	// Connections lists the rooms reachable from this one. Passages are directed,
	// a symmetric corridor must be declared on both ends.
	Connections []string `yaml:"connections" json:"connections"`

	// Weapons names the weapons lying in this room when a game is created.
	Weapons []string `yaml:"weapons" json:"weapons,omitempty"`
}

// Graph is the read-only room connectivity of a mansion.
type Graph struct {
	rooms map[string]*Room
	order []string
}

// NewGraph validates the given rooms and builds a Graph from them.
// Every connection must point to a known room and room ids must be unique.
func NewGraph(rooms []Room) (*Graph, error) {
	g := &Graph{
		rooms: make(map[string]*Room, len(rooms)),
		order: make([]string, 0, len(rooms)),
	}
	for i := range rooms {
		r := rooms[i]
		if r.ID == "" {
			return nil, fmt.Errorf("room #%d has no id", i)
		}
		if _, dup := g.rooms[r.ID]; dup {
			return nil, fmt.Errorf("duplicate room id %q", r.ID)
		}
		g.rooms[r.ID] = &r
		g.order = append(g.order, r.ID)
	}
	for _, id := range g.order {
		for _, conn := range g.rooms[id].Connections {
			if _, ok := g.rooms[conn]; !ok {
				return nil, fmt.Errorf("room %q connects to unknown room %q", id, conn)
			}
			if conn == id {
				return nil, fmt.Errorf("room %q connects to itself", id)
			}
		}
	}
	return g, nil
}

// Room returns the room with the given id, or nil.
func (g *Graph) Room(id string) *Room {
	return g.rooms[id]
}

// Rooms returns every room in declaration order.
func (g *Graph) Rooms() []*Room {
	out := make([]*Room, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.rooms[id])
	}
	return out
}

// Connected reports whether there is a passage from one room to another.
func (g *Graph) Connected(from, to string) bool {
	r, ok := g.rooms[from]
	if !ok {
		return false
	}
	for _, c := range r.Connections {
		if c == to {
			return true
		}
	}
	return false
}

// Neighbors returns the rooms reachable from id, in declaration order of the passages.
func (g *Graph) Neighbors(id string) []*Room {
	r, ok := g.rooms[id]
	if !ok {
		return nil
	}
	out := make([]*Room, 0, len(r.Connections))
	for _, c := range r.Connections {
		out = append(out, g.rooms[c])
	}
	return out
}
