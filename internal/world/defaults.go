// internal/world/defaults.go
package world

// Ability identifiers bound to the default personas.
const (
	AbilityProfiling         = "profiling"
	AbilityGunReflex         = "gun_reflex"
	AbilityFamilyPrivilege   = "family_privilege"
	AbilityStealth           = "stealth"
	AbilityGatekeeper        = "gatekeeper"
	AbilityCuttingEdge       = "cutting_edge"
	AbilityReload            = "reload"
	AbilityManipulation      = "manipulation"
	AbilityInvestigativeWork = "investigative_work"
	AbilityExamination       = "examination"
)

// DefaultStartingRoom is where every character wakes up at the start of a night.
const DefaultStartingRoom = "hall"

// DefaultConfig returns the standard mansion: six rooms around the hall, their
// weapons, and the ten default personas.
func DefaultConfig() *Config {
	return &Config{
		Rooms: []Room{
			{ID: "hall", Name: "Hall", Type: RoomHall, Closeable: false,
				Connections: []string{"library", "observatory", "master_bedroom", "kitchen", "basement"},
				Weapons:     []string{"Chandelier"}},
			{ID: "library", Name: "Library", Type: RoomLibrary, Closeable: true,
				Connections: []string{"hall", "observatory"},
				Weapons:     []string{"Poison"}},
			{ID: "observatory", Name: "Observatory", Type: RoomObservatory, Closeable: true,
				Connections: []string{"hall", "library", "master_bedroom"},
				Weapons:     []string{"Wrench"}},
			{ID: "master_bedroom", Name: "Master Bedroom", Type: RoomDormitory, Closeable: true,
				Connections: []string{"hall", "observatory"},
				Weapons:     []string{"Cane"}},
			{ID: "kitchen", Name: "Kitchen", Type: RoomKitchen, Closeable: true,
				Connections: []string{"hall", "basement"},
				Weapons:     []string{"Knife"}},
			{ID: "basement", Name: "Basement", Type: RoomBasement, Closeable: true,
				Connections: []string{"hall", "kitchen"},
				Weapons:     []string{"Bullets"}},
		},
		Weapons: []Weapon{
			{Name: "Gun", Description: "A revolver. Loud, fast and short on bullets.",
				Type: WeaponGun, MaxAmmo: 6, StartingAmmo: 0, Intention: true},
			{Name: "Bullets", Description: "A box of revolver rounds.",
				Type: WeaponGun, MaxAmmo: 2, StartingAmmo: 2, Resource: true, Intention: false, Reloads: WeaponGun},
			{Name: "Knife", Description: "A kitchen knife.",
				Type: WeaponKnife, MaxAmmo: UnlimitedAmmo, StartingAmmo: UnlimitedAmmo, Intention: true},
			{Name: "Poison", Description: "A vial of slow poison.",
				Type: WeaponPoison, MaxAmmo: 1, StartingAmmo: 1, Intention: false, EffectTurns: 2},
			{Name: "Wrench", Description: "A heavy brass wrench.",
				Type: WeaponStunt, MaxAmmo: UnlimitedAmmo, StartingAmmo: UnlimitedAmmo, Intention: true},
			{Name: "Cane", Description: "A walking cane with a silver knob.",
				Type: WeaponStunt, MaxAmmo: UnlimitedAmmo, StartingAmmo: UnlimitedAmmo, Intention: true},
			{Name: "Chandelier", Description: "Someone could drop it on the people below.",
				Type: WeaponStunt, MaxAmmo: 1, StartingAmmo: 1, Resource: true, Intention: false},
		},
		Personas: []Persona{
			{Name: "Miriam Hale", Title: "The Psychologist", Abilities: []string{AbilityProfiling}},
			{Name: "Victor Crane", Title: "The Bodyguard", Abilities: []string{AbilityGunReflex}},
			{Name: "Ezra Moss", Title: "The Undertaker", Abilities: []string{AbilityFamilyPrivilege}},
			{Name: "Ines Duval", Title: "The Avenger", Abilities: []string{AbilityStealth}},
			{Name: "Lord Ashby", Title: "The Host", Abilities: []string{AbilityGatekeeper}},
			{Name: "Silas Reed", Title: "The Maniac", Abilities: []string{AbilityCuttingEdge}},
			{Name: "Gwen Harker", Title: "The Ex-Marine", Abilities: []string{AbilityReload}},
			{Name: "Julian Frost", Title: "The Manipulator", Abilities: []string{AbilityManipulation}},
			{Name: "Nora Bell", Title: "The Reporter", Abilities: []string{AbilityInvestigativeWork}},
			{Name: "Oscar Pike", Title: "The Policeman", Abilities: []string{AbilityExamination}},
		},
		StartingWeapons: []string{"Gun"},
	}
}
