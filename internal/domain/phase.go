package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseLobby         Phase = "LOBBY"          // Configuring teams and settings
	PhaseInProgress    Phase = "IN_PROGRESS"    // Round running, timers ticking
	PhaseRoundComplete Phase = "ROUND_COMPLETE" // Every lock of the round solved
	PhaseGameOver      Phase = "GAME_OVER"      // Summary after time up or end game
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:         {PhaseInProgress},
		PhaseInProgress:    {PhaseRoundComplete, PhaseGameOver, PhaseLobby},
		PhaseRoundComplete: {PhaseInProgress, PhaseGameOver, PhaseLobby},
		PhaseGameOver:      {PhaseInProgress, PhaseLobby}, // Play again or back to lobby
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// Mode selects how locks are solved and scored
type Mode string

const (
	ModeCoop   Mode = "coop"   // Everyone works every lock, every team scores
	ModeVersus Mode = "versus" // Teams take turns, steals allowed
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeCoop || m == ModeVersus
}

// EndReason records why a game reached PhaseGameOver
type EndReason string

const (
	EndReasonNone   EndReason = ""
	EndReasonTimeUp EndReason = "TIME_UP"
	EndReasonEnded  EndReason = "ENDED"
)
