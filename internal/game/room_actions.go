// internal/game/room_actions.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/mansion/internal/world"
)

// RoomAction is a special action offered by a room to the characters standing in it.
type RoomAction struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	run func(r *resolution, c *Character)
}

const (
	RoomActionConsultArchives = "consult_archives"
	RoomActionWatchGrounds    = "watch_grounds"
	RoomActionSearchSupplies  = "search_supplies"
)

// roomActionsFor returns the special actions a room of the given type offers.
func roomActionsFor(t world.RoomType) []*RoomAction {
	switch t {
	case world.RoomLibrary:
		return []*RoomAction{{ID: RoomActionConsultArchives, Name: "Consult the archives", run: consultArchives}}
	case world.RoomObservatory:
		return []*RoomAction{{ID: RoomActionWatchGrounds, Name: "Watch the grounds", run: watchGrounds}}
	case world.RoomBasement:
		return []*RoomAction{{ID: RoomActionSearchSupplies, Name: "Search the supplies", run: searchSupplies}}
	default:
		return nil
	}
}

func consultArchives(r *resolution, c *Character) {
	n := len(r.game.Kills)
	switch n {
	case 0:
		r.tell(c, "The archives record no death in this mansion.")
	case 1:
		r.tell(c, "The archives record one death in this mansion.")
	default:
		r.tell(c, fmt.Sprintf("The archives record %d deaths in this mansion.", n))
	}
}

// watchGrounds reports who is visible in the lit rooms connected to the observatory.
func watchGrounds(r *resolution, c *Character) {
	var seen []string
	for _, room := range r.game.World.Neighbors(c.Room.ID()) {
		gr := r.game.rooms[room.ID]
		if gr == nil || gr.IsDark {
			continue
		}
		for _, other := range gr.visiblePresence() {
			seen = append(seen, fmt.Sprintf("%s in the %s", other.Persona.Name, gr.Name()))
		}
	}
	if len(seen) == 0 {
		r.tell(c, "You see no one from up here.")
		return
	}
	r.tell(c, "You see "+strings.Join(seen, ", ")+".")
}

func searchSupplies(r *resolution, c *Character) {
	var found []string
	for _, room := range r.game.World.Neighbors(c.Room.ID()) {
		gr := r.game.rooms[room.ID]
		if gr != nil && len(gr.Weapons) > 0 {
			found = append(found, gr.Name())
		}
	}
	if len(found) == 0 {
		r.tell(c, "The shelves point nowhere.")
		return
	}
	r.tell(c, "Weapons are stored in: "+strings.Join(found, ", ")+".")
}
