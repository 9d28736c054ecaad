// Package profile persists per-profile accessibility preferences and play
// statistics. Persistence is best effort: anything unreadable falls back to
// defaults
package profile

import "errors"

// ErrInvalidID is returned for an empty profile id
var ErrInvalidID = errors.New("profile id is required")

// Accessibility holds presentation preferences. The engine only stores them
type Accessibility struct {
	ReducedMotion bool `json:"reducedMotion"`
	HighContrast  bool `json:"highContrast"`
	LargeText     bool `json:"largeText"`
	SoundEnabled  bool `json:"soundEnabled"`
}

// Statistics accumulates across games played under a profile
type Statistics struct {
	GamesPlayed         int `json:"gamesPlayed"`
	RoundsPlayed        int `json:"roundsPlayed"`
	LocksSolved         int `json:"locksSolved"`
	LocksStolen         int `json:"locksStolen"`
	FastestSolveSeconds int `json:"fastestSolveSeconds,omitempty"`
}

// Preferences is the persisted blob of one profile
type Preferences struct {
	Accessibility Accessibility `json:"accessibility"`
	Statistics    Statistics    `json:"statistics"`
}

// Default returns the preferences used when nothing valid is stored
func Default() Preferences {
	return Preferences{
		Accessibility: Accessibility{SoundEnabled: true},
	}
}

// RecordSolve counts a solved lock
func (s *Statistics) RecordSolve(seconds int, stolen bool) {
	s.LocksSolved++
	if stolen {
		s.LocksStolen++
	}
	if seconds > 0 && (s.FastestSolveSeconds == 0 || seconds < s.FastestSolveSeconds) {
		s.FastestSolveSeconds = seconds
	}
}

// RecordRound counts a finished round
func (s *Statistics) RecordRound() {
	s.RoundsPlayed++
}

// RecordGame counts a finished game
func (s *Statistics) RecordGame() {
	s.GamesPlayed++
}
