// internal/world/config.go
package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is a playable identity. Players control personas through game characters.
type Persona struct {
	Name      string   `yaml:"name" json:"name"`
	Title     string   `yaml:"title" json:"title"`
	Bio       string   `yaml:"bio" json:"bio,omitempty"`
	Abilities []string `yaml:"abilities" json:"abilities"`
}

// Config is the full static description of a mansion: its rooms, weapons and
// the personas handed out to players, in assignment order.
type Config struct {
	Rooms    []Room    `yaml:"rooms"`
	Weapons  []Weapon  `yaml:"weapons"`
	Personas []Persona `yaml:"personas"`

	// StartingWeapons are handed to every character when the game is created.
	StartingWeapons []string `yaml:"starting_weapons"`
}

// Graph builds the room graph of the configuration.
func (c *Config) Graph() (*Graph, error) {
	return NewGraph(c.Rooms)
}

// Weapon returns the weapon definition with the given name, or nil.
func (c *Config) Weapon(name string) *Weapon {
	for i := range c.Weapons {
		if c.Weapons[i].Name == name {
			return &c.Weapons[i]
		}
	}
	return nil
}

// Validate checks that every weapon referenced by rooms or starting kits exists
// and that the room graph is consistent.
func (c *Config) Validate() error {
	if _, err := c.Graph(); err != nil {
		return err
	}
	for _, r := range c.Rooms {
		for _, w := range r.Weapons {
			if c.Weapon(w) == nil {
				return fmt.Errorf("room %q references unknown weapon %q", r.ID, w)
			}
		}
	}
	for _, w := range c.StartingWeapons {
		if c.Weapon(w) == nil {
			return fmt.Errorf("unknown starting weapon %q", w)
		}
	}
	if len(c.Personas) == 0 {
		return fmt.Errorf("no personas defined")
	}
	return nil
}

// ParseConfig decodes a YAML mansion description and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding world config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads a YAML mansion description from disk.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world config %s: %w", path, err)
	}
	return ParseConfig(data)
}
