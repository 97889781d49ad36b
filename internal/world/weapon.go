// internal/world/weapon.go
package world

// WeaponType decides when an attack is resolved during a turn: guns first,
// then knives, then stunts, and poison last.
type WeaponType string

const (
	WeaponGun    WeaponType = "gun"
	WeaponKnife  WeaponType = "knife"
	WeaponStunt  WeaponType = "stunt"
	WeaponPoison WeaponType = "poison"
)

// UnlimitedAmmo marks weapons that never run out (knives, stunts).
const UnlimitedAmmo = -1

// Weapon is a static weapon definition.
type Weapon struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Type        WeaponType `yaml:"type" json:"type"`

	MaxAmmo      int `yaml:"max_ammo" json:"maxAmmo"`
	StartingAmmo int `yaml:"starting_ammo" json:"startingAmmo"`

	// Resource weapons stay in their room when picked up.
	Resource bool `yaml:"resource" json:"resource"`

	// Intention weapons let everyone in the room know when an attack is declared with them.
	Intention bool `yaml:"intention" json:"intention"`

	// EffectTurns delays the lethal effect by this number of turns (poison). Zero kills at once.
	EffectTurns int `yaml:"effect_turns" json:"effectTurns"`

	// Reloads names the weapon type refilled when this weapon is picked up (bullets
	// refill a gun). Weapons that reload something are never carried themselves.
	Reloads WeaponType `yaml:"reloads" json:"reloads,omitempty"`
}

// Unlimited reports whether the weapon never runs out of ammunition.
func (w *Weapon) Unlimited() bool {
	return w.MaxAmmo == UnlimitedAmmo
}
