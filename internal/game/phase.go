// internal/game/phase.go
package game

// Phase is the top-level state of a game: Unstarted → Night ⇄ Day → Complete.
type Phase string

const (
	PhaseUnstarted Phase = "unstarted"
	PhaseNight     Phase = "night"
	PhaseDay       Phase = "day"
	PhaseComplete  Phase = "complete"
)

// AbilityPhase is the moment an ability may be triggered.
type AbilityPhase string

const (
	AbilityPhaseStartgame AbilityPhase = "startgame"
	AbilityPhaseRoom      AbilityPhase = "room"
	AbilityPhaseDay       AbilityPhase = "day"
	AbilityPhaseNight     AbilityPhase = "night"
	AbilityPhaseVoting    AbilityPhase = "voting"
)

// nightly reports whether abilities of this phase act during night turns.
func (p AbilityPhase) nightly() bool {
	return p == AbilityPhaseNight || p == AbilityPhaseRoom
}

// phaseAllows reports whether an ability of phase p may run right now.
// Startgame abilities only run while Start is dispatching them.
// Assumes lock is held.
func (g *Game) phaseAllows(p AbilityPhase) bool {
	switch p {
	case AbilityPhaseStartgame:
		return g.starting
	case AbilityPhaseNight, AbilityPhaseRoom:
		return !g.starting && g.phase == PhaseNight
	case AbilityPhaseDay, AbilityPhaseVoting:
		return g.phase == PhaseDay
	default:
		return false
	}
}
