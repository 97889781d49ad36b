// internal/game/abilities.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/mansion/internal/world"
)

// DefaultAbilityRegistry returns the registry holding every ability of the default personas.
func DefaultAbilityRegistry() *AbilityRegistry {
	r := NewAbilityRegistry()
	r.Register(world.AbilityProfiling, profiling{})
	r.Register(world.AbilityGunReflex, gunReflex{})
	r.Register(world.AbilityFamilyPrivilege, familyPrivilege{})
	r.Register(world.AbilityStealth, stealth{})
	r.Register(world.AbilityGatekeeper, gatekeeper{})
	r.Register(world.AbilityCuttingEdge, cuttingEdge{})
	r.Register(world.AbilityReload, reload{})
	r.Register(world.AbilityManipulation, manipulation{})
	r.Register(world.AbilityInvestigativeWork, investigativeWork{})
	r.Register(world.AbilityExamination, examination{})
	return r
}

// profiling reveals the persona title of a character.
type profiling struct{}

func (profiling) Phase() AbilityPhase    { return AbilityPhaseDay }
func (profiling) Capability() Capability { return Reusable }

func (profiling) Run(ctx *AbilityContext) error {
	if ctx.Target == nil || ctx.Target == ctx.Character {
		return abilityErr(world.AbilityProfiling, "Profiling requires another character as target")
	}
	ctx.tell(fmt.Sprintf("%s is %s.", ctx.Target.Persona.Name, ctx.Target.Persona.Title))
	return nil
}

// gunReflex lets its owner counter any attack with a loaded gun.
type gunReflex struct{}

func (gunReflex) Phase() AbilityPhase        { return AbilityPhaseNight }
func (gunReflex) Capability() Capability     { return Passive }
func (gunReflex) Run(_ *AbilityContext) error { return nil }

func (gunReflex) defenseWeapon(c *Character) *WeaponItem {
	if gun := c.weaponOfType(world.WeaponGun); gun != nil && gun.Usable() {
		return gun
	}
	return nil
}

// familyPrivilege identifies the dead lying in the owner's room.
type familyPrivilege struct{}

func (familyPrivilege) Phase() AbilityPhase    { return AbilityPhaseNight }
func (familyPrivilege) Capability() Capability { return Reusable }

func (familyPrivilege) Run(ctx *AbilityContext) error {
	room := ctx.Character.Room
	if room == nil {
		return abilityErr(world.AbilityFamilyPrivilege, "You are not in any room")
	}
	var dead []string
	for _, c := range ctx.Game.Characters {
		if !c.Alive && c.Room == room {
			dead = append(dead, fmt.Sprintf("%s (%s)", c.Persona.Name, c.Persona.Title))
		}
	}
	if len(dead) == 0 {
		ctx.tell(fmt.Sprintf("No one has died in the %s.", room.Name()))
		return nil
	}
	ctx.tell(fmt.Sprintf("Lying in the %s: %s.", room.Name(), strings.Join(dead, ", ")))
	return nil
}

// stealth hides its owner at once, and lets them declare Hide anywhere while unused.
type stealth struct{}

func (stealth) Phase() AbilityPhase    { return AbilityPhaseNight }
func (stealth) Capability() Capability { return SingleUse }

func (stealth) Run(ctx *AbilityContext) error {
	ctx.Character.Hidden = true
	ctx.tell("You slip into the shadows.")
	return nil
}

func (stealth) enables(_ *Character, kind ActionKind) bool {
	return kind == ActionHide
}

// gatekeeper closes an open, closeable room within the owner's reach, and lets
// the owner declare CloseDoor.
type gatekeeper struct{}

func (gatekeeper) Phase() AbilityPhase    { return AbilityPhaseNight }
func (gatekeeper) Capability() Capability { return Reusable }

func (gatekeeper) Run(ctx *AbilityContext) error {
	room := ctx.Room
	if room == nil {
		return abilityErr(world.AbilityGatekeeper, "Gatekeeper requires a target room")
	}
	if !room.IsOpen || !room.Room.Closeable || !room.reachableFrom(ctx.Character.Room) {
		return abilityErr(world.AbilityGatekeeper, "Room is closed, not closable, or out of reach")
	}
	room.IsOpen = false
	ctx.tell(fmt.Sprintf("You locked the %s.", room.Name()))
	return nil
}

func (gatekeeper) enables(_ *Character, kind ActionKind) bool {
	return kind == ActionCloseDoor
}

// cuttingEdge hands its owner a knife at the start of the game.
type cuttingEdge struct{}

func (cuttingEdge) Phase() AbilityPhase    { return AbilityPhaseStartgame }
func (cuttingEdge) Capability() Capability { return SingleUse }

func (cuttingEdge) Run(ctx *AbilityContext) error {
	knife := ctx.Game.config.Weapon("Knife")
	if knife == nil {
		return abilityErr(world.AbilityCuttingEdge, "There is no knife in this mansion")
	}
	ctx.Character.Weapons = append(ctx.Character.Weapons, newWeaponItem(knife))
	ctx.tell("You hide a knife in your sleeve.")
	return nil
}

// reloadBullets is the number of rounds the reload ability loads.
const reloadBullets = 2

// reload loads the owner's gun at the start of the game.
type reload struct{}

func (reload) Phase() AbilityPhase    { return AbilityPhaseStartgame }
func (reload) Capability() Capability { return SingleUse }

func (reload) Run(ctx *AbilityContext) error {
	gun := ctx.Character.weaponOfType(world.WeaponGun)
	if gun == nil {
		return abilityErr(world.AbilityReload, "You have no gun to reload")
	}
	gun.reload(reloadBullets)
	ctx.tell(fmt.Sprintf("Your %s holds %d bullets.", gun.Name(), gun.Ammo))
	return nil
}

// Manipulation is a vote tampering recorded for the external voting layer.
type Manipulation struct {
	By     *Character
	Target *Character
	Day    int
}

// manipulation flags a target whose next vote is tampered with.
type manipulation struct{}

func (manipulation) Phase() AbilityPhase    { return AbilityPhaseVoting }
func (manipulation) Capability() Capability { return SingleUse }

func (manipulation) Run(ctx *AbilityContext) error {
	if ctx.Target == nil || ctx.Target == ctx.Character || !ctx.Target.Alive {
		return abilityErr(world.AbilityManipulation, "Manipulation requires another living character as target")
	}
	day := 0
	if ctx.Game.currentDay != nil {
		day = ctx.Game.currentDay.Number
	}
	ctx.Game.manipulations = append(ctx.Game.manipulations, Manipulation{
		By: ctx.Character, Target: ctx.Target, Day: day,
	})
	ctx.tell(fmt.Sprintf("%s will vote as you wish today.", ctx.Target.Persona.Name))
	return nil
}

// investigativeWork reveals where a character spent the end of last night.
type investigativeWork struct{}

func (investigativeWork) Phase() AbilityPhase    { return AbilityPhaseDay }
func (investigativeWork) Capability() Capability { return Reusable }

func (investigativeWork) Run(ctx *AbilityContext) error {
	if ctx.Target == nil {
		return abilityErr(world.AbilityInvestigativeWork, "Investigative work requires a target character")
	}
	if ctx.Target.lastNightRoom == nil {
		ctx.tell(fmt.Sprintf("Nobody knows where %s was last night.", ctx.Target.Persona.Name))
		return nil
	}
	ctx.tell(fmt.Sprintf("%s ended last night in the %s.", ctx.Target.Persona.Name, ctx.Target.lastNightRoom.Name()))
	return nil
}

// examination lists the kills committed in the owner's room.
type examination struct{}

func (examination) Phase() AbilityPhase    { return AbilityPhaseRoom }
func (examination) Capability() Capability { return Reusable }

func (examination) Run(ctx *AbilityContext) error {
	room := ctx.Character.Room
	if room == nil {
		return abilityErr(world.AbilityExamination, "You are not in any room")
	}
	var found []string
	for _, k := range ctx.Game.Kills {
		if k.Room == room {
			found = append(found, fmt.Sprintf("%s was killed with a %s", k.Victim.Persona.Name, k.Weapon))
		}
	}
	if len(found) == 0 {
		ctx.tell(fmt.Sprintf("The %s shows no sign of violence.", room.Name()))
		return nil
	}
	ctx.tell(fmt.Sprintf("In the %s: %s.", room.Name(), strings.Join(found, "; ")))
	return nil
}
