// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/mansion/internal/world"
)

// Rules holds the per-game configuration of the night cycle and roster limits.
type Rules struct {
	NightTurns   int    `json:"nightTurns"`   // turns played in each night
	TotalNights  int    `json:"totalNights"`  // nights played before the game is complete
	StartingRoom string `json:"startingRoom"` // room every character wakes up in at nightfall
	MinPlayers   int    `json:"minPlayers"`
	MaxPlayers   int    `json:"maxPlayers"`
}

// DefaultRules returns the standard game configuration.
func DefaultRules() Rules {
	return Rules{
		NightTurns:   3,
		TotalNights:  3,
		StartingRoom: world.DefaultStartingRoom,
		MinPlayers:   3,
		MaxPlayers:   10,
	}
}

// Validate checks the rules are internally consistent.
func (rules Rules) Validate() error {
	if rules.NightTurns < 1 {
		return fmt.Errorf("nightTurns must be at least 1")
	}
	if rules.TotalNights < 1 {
		return fmt.Errorf("totalNights must be at least 1")
	}
	if rules.StartingRoom == "" {
		return fmt.Errorf("startingRoom is required")
	}
	if rules.MinPlayers < 1 || rules.MaxPlayers < rules.MinPlayers {
		return fmt.Errorf("player limits must satisfy 1 <= minPlayers <= maxPlayers")
	}
	return nil
}

// Update overrides the rules with the values present in newRules.
// Keys that are missing or nil keep their previous value.
func (rules *Rules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64
		switch v := val.(type) {
		case float64:
			*field = int(v)
		case int:
			*field = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if *field < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		return nil
	}

	if err := assignInt(&rules.NightTurns, "nightTurns", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.TotalNights, "totalNights", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.MinPlayers, "minPlayers", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.MaxPlayers, "maxPlayers", 1); err != nil {
		return err
	}
	if val, exists := newRules["startingRoom"]; exists && val != nil {
		s, ok := val.(string)
		if !ok || s == "" {
			return fmt.Errorf("invalid type for startingRoom")
		}
		rules.StartingRoom = s
	}
	return rules.Validate()
}

// ParseRules applies a map of overrides on top of current and validates the result.
func ParseRules(overrides map[string]interface{}, current Rules) (Rules, error) {
	rules := current
	err := rules.Update(overrides)
	return rules, err
}
