// internal/game/errors.go
package game

import "errors"

// Errors returned to whatever layer drove the call. None of them are fatal to the game.
var (
	ErrGameUnstarted      = errors.New("game has not started yet")
	ErrGameComplete       = errors.New("game is complete")
	ErrAlreadyStarted     = errors.New("game has already started")
	ErrInvalidPlayerCount = errors.New("invalid number of players")
	ErrActionInWrongStage = errors.New("actions can only be declared during a night turn")

	ErrActionUnavailable = errors.New("action is not available")
	ErrInvalidTarget     = errors.New("invalid action target")
	ErrUnknownCharacter  = errors.New("character is not part of this game")
	ErrCharacterDead     = errors.New("character is dead")
	ErrNoAction          = errors.New("character has no action in the current turn")

	// ErrAbility and ErrRoomAction are matched by AbilityError and RoomActionError.
	ErrAbility    = errors.New("ability error")
	ErrRoomAction = errors.New("room action error")
)

// AbilityError is returned when an ability's conditions are not met.
// A failed run never consumes a single-use ability.
type AbilityError struct {
	Ability AbilityID
	Reason  string
}

func (e *AbilityError) Error() string {
	return e.Reason
}

// Is lets errors.Is(err, ErrAbility) match any AbilityError.
func (e *AbilityError) Is(target error) bool {
	return target == ErrAbility
}

func abilityErr(id AbilityID, reason string) *AbilityError {
	return &AbilityError{Ability: id, Reason: reason}
}

// RoomActionError is returned when a room special action can not be executed.
type RoomActionError struct {
	Room   string
	Action string
	Reason string
}

func (e *RoomActionError) Error() string {
	return e.Reason
}

func (e *RoomActionError) Is(target error) bool {
	return target == ErrRoomAction
}
