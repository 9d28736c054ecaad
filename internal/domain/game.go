package domain

import (
	"slices"
	"time"
)

// LockSource samples content for a round. The catalog selector implements it
type LockSource interface {
	SelectLocks(pack string, excludedTags []string, count int) []ContentItem
}

// Game is the aggregate root of one party game. It is not safe for concurrent
// use; the owning session serializes every command and tick
type Game struct {
	ID        string    `json:"id"`
	Settings  Settings  `json:"settings"`
	Roster    *Roster   `json:"roster"`
	Phase     Phase     `json:"phase"`
	Round     int       `json:"round"`
	EndReason EndReason `json:"endReason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Locks              []*RoundLock `json:"locks"`
	RoundTimeRemaining int          `json:"roundTimeRemainingSeconds"`
	Paused             bool         `json:"isPaused"`

	// Versus turn state
	CurrentTeamIndex  int `json:"currentTeamIndex"`
	OpenLockID        int `json:"openLockId"`
	TurnTimeRemaining int `json:"turnTimeRemainingSeconds"`

	History        []RoundRecord `json:"history"`
	roundStartedAt time.Time

	// Epochs change whenever the matching timer has to be (re)started
	roundEpoch uint64
	turnEpoch  uint64
}

// NewGame creates a new game in the lobby with the given ID
func NewGame(id string) *Game {
	settings := DefaultSettings()
	return &Game{
		ID:                 id,
		Settings:           settings,
		Roster:             NewRoster(),
		Phase:              PhaseLobby,
		Locks:              make([]*RoundLock, 0),
		RoundTimeRemaining: settings.RoundTimeLimitSeconds,
		TurnTimeRemaining:  settings.TurnTimeLimitSeconds,
		CreatedAt:          time.Now(),
	}
}

// RoundEpoch changes every time the round timer must restart
func (g *Game) RoundEpoch() uint64 { return g.roundEpoch }

// TurnEpoch changes every time the turn timer must restart
func (g *Game) TurnEpoch() uint64 { return g.turnEpoch }

// RoundTimerRunning reports whether the round countdown should be ticking
func (g *Game) RoundTimerRunning() bool {
	return g.Phase == PhaseInProgress
}

// TurnTimerRunning reports whether the turn countdown should be ticking
func (g *Game) TurnTimerRunning() bool {
	return g.Phase == PhaseInProgress && g.Settings.Mode == ModeVersus
}

// Configure replaces the lobby settings
func (g *Game) Configure(s Settings) error {
	if g.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	g.Settings = s.Normalize()
	g.RoundTimeRemaining = g.Settings.RoundTimeLimitSeconds
	g.TurnTimeRemaining = g.Settings.TurnTimeLimitSeconds
	return nil
}

// AddTeam appends a new team to the roster
func (g *Game) AddTeam() *Team {
	return g.Roster.Add()
}

// RenameTeam renames a team
func (g *Game) RenameTeam(id int, name string) error {
	return g.Roster.Rename(id, name)
}

// RecolorTeam changes a team's color
func (g *Game) RecolorTeam(id int, color ColorKey) error {
	return g.Roster.Recolor(id, color)
}

// RemoveTeam removes a team and keeps CurrentTeamIndex pointing at a valid team
// Removing the team that holds the turn during a versus round passes the turn
// to the team that now occupies its slot
func (g *Game) RemoveTeam(id int) error {
	if g.Roster.IndexOf(id) < 0 {
		return ErrTeamNotFound
	}
	if g.Phase != PhaseLobby && g.Roster.Len() == 1 {
		return ErrLastTeam
	}

	idx, err := g.Roster.Remove(id)
	if err != nil {
		return err
	}

	n := g.Roster.Len()
	switch {
	case n == 0:
		g.CurrentTeamIndex = 0
	case idx < g.CurrentTeamIndex:
		g.CurrentTeamIndex--
	case idx == g.CurrentTeamIndex:
		if g.CurrentTeamIndex >= n {
			g.CurrentTeamIndex = 0
		}
		if g.TurnTimerRunning() {
			g.resetTurn()
		}
	}
	return nil
}

// CurrentTeam returns the team holding the turn, or nil for an empty roster
func (g *Game) CurrentTeam() *Team {
	if g.CurrentTeamIndex < 0 || g.CurrentTeamIndex >= g.Roster.Len() {
		return nil
	}
	return g.Roster.Teams[g.CurrentTeamIndex]
}

// StartGame resets scores and starts round 1. It fails with ErrNoTeams on an
// empty roster and leaves the game untouched
func (g *Game) StartGame(src LockSource) error {
	if g.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	if g.Roster.Len() == 0 {
		return ErrNoTeams
	}
	g.Roster.ResetScores()
	g.Round = 0
	g.History = nil
	g.startRound(src)
	return nil
}

// StartNewRound starts the next round of the same game, keeping scores
func (g *Game) StartNewRound(src LockSource) error {
	if g.Phase != PhaseRoundComplete {
		return ErrInvalidPhase
	}
	g.startRound(src)
	return nil
}

// PlayAgain starts a fresh game with the same configuration and roster
func (g *Game) PlayAgain(src LockSource) error {
	if g.Phase != PhaseGameOver {
		return ErrInvalidPhase
	}
	if g.Roster.Len() == 0 {
		return ErrNoTeams
	}
	g.Roster.ResetScores()
	g.Round = 0
	g.History = nil
	g.startRound(src)
	return nil
}

// EndGame stops the game and moves to the summary
func (g *Game) EndGame() error {
	if !g.Phase.CanTransitionTo(PhaseGameOver) {
		return ErrInvalidPhase
	}
	g.finish(EndReasonEnded)
	return nil
}

// ReturnToLobby discards game state but keeps the roster and settings
func (g *Game) ReturnToLobby() error {
	if !g.Phase.CanTransitionTo(PhaseLobby) {
		return ErrInvalidPhase
	}
	g.Phase = PhaseLobby
	g.Round = 0
	g.EndReason = EndReasonNone
	g.Locks = make([]*RoundLock, 0)
	g.History = nil
	g.Paused = false
	g.OpenLockID = NoLock
	g.CurrentTeamIndex = 0
	g.RoundTimeRemaining = g.Settings.RoundTimeLimitSeconds
	g.TurnTimeRemaining = g.Settings.TurnTimeLimitSeconds
	g.Roster.ResetScores()
	return nil
}

// TogglePause freezes or resumes both countdowns
func (g *Game) TogglePause() error {
	if g.Phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	g.Paused = !g.Paused
	return nil
}

// OpenLock marks a lock as the one being attempted. In versus mode only one
// lock may be open at a time and opening it restarts the turn countdown
func (g *Game) OpenLock(lockID int) error {
	lock, err := g.playableLock(lockID)
	if err != nil {
		return err
	}

	if g.Settings.Mode == ModeCoop {
		g.OpenLockID = lock.ID()
		return nil
	}

	switch g.OpenLockID {
	case lock.ID():
		return nil
	case NoLock:
		g.OpenLockID = lock.ID()
		g.TurnTimeRemaining = g.Settings.TurnTimeLimitSeconds
		g.turnEpoch++
		return nil
	default:
		return ErrAnotherLockOpen
	}
}

// MarkSolved solves a lock in coop mode and credits every team
func (g *Game) MarkSolved(lockID int) (*RoundLock, error) {
	if g.Settings.Mode != ModeCoop {
		return nil, ErrInvalidMode
	}
	lock, err := g.playableLock(lockID)
	if err != nil {
		return nil, err
	}

	lock.solve(nil, g.Settings.RoundTimeLimitSeconds-g.RoundTimeRemaining)
	for _, t := range g.Roster.Teams {
		t.Score++
	}
	if g.OpenLockID == lock.ID() {
		g.OpenLockID = NoLock
	}

	g.checkRoundComplete()
	return lock, nil
}

// RoundComplete reports whether every lock of the current round is solved
func (g *Game) RoundComplete() bool {
	if len(g.Locks) == 0 {
		return false
	}
	for _, l := range g.Locks {
		if !l.Solved {
			return false
		}
	}
	return true
}

// SolvedCount returns the number of solved locks in the current round
func (g *Game) SolvedCount() int {
	n := 0
	for _, l := range g.Locks {
		if l.Solved {
			n++
		}
	}
	return n
}

// GetLock returns a lock of the current round by ID
func (g *Game) GetLock(lockID int) (*RoundLock, error) {
	for _, l := range g.Locks {
		if l.ID() == lockID {
			return l, nil
		}
	}
	return nil, ErrLockNotFound
}

// TickRound advances the round countdown by one second. It reports whether the
// countdown moved and whether it just expired; expiry ends the game
func (g *Game) TickRound() (ticked, expired bool) {
	if g.Phase != PhaseInProgress || g.Paused {
		return false, false
	}
	g.RoundTimeRemaining--
	if g.RoundTimeRemaining > 0 {
		return true, false
	}
	g.RoundTimeRemaining = 0
	g.TimeUp()
	return true, true
}

// TimeUp ends the game because the round clock ran out
func (g *Game) TimeUp() {
	if g.Phase != PhaseInProgress {
		return
	}
	g.RoundTimeRemaining = 0
	g.finish(EndReasonTimeUp)
}

// Rankings returns the teams ordered by score, ties keeping roster order
func (g *Game) Rankings() []Team {
	ranked := g.Roster.clone()
	slices.SortStableFunc(ranked, func(a, b Team) int {
		return b.Score - a.Score
	})
	return ranked
}

func (g *Game) startRound(src LockSource) {
	content := src.SelectLocks(g.Settings.ContentPack, g.Settings.ExcludedTags, g.Settings.LocksPerRound)

	g.Locks = make([]*RoundLock, 0, len(content))
	for _, c := range content {
		g.Locks = append(g.Locks, NewRoundLock(c))
	}

	g.Round++
	g.Phase = PhaseInProgress
	g.EndReason = EndReasonNone
	g.RoundTimeRemaining = g.Settings.RoundTimeLimitSeconds
	g.Paused = false
	g.roundStartedAt = time.Now()
	g.roundEpoch++

	g.CurrentTeamIndex = 0
	g.OpenLockID = NoLock
	g.TurnTimeRemaining = g.Settings.TurnTimeLimitSeconds
	g.turnEpoch++
}

func (g *Game) checkRoundComplete() {
	if g.Phase == PhaseInProgress && g.RoundComplete() {
		g.recordRound(EndReasonNone)
		g.Phase = PhaseRoundComplete
		g.OpenLockID = NoLock
		g.Paused = false
	}
}

func (g *Game) finish(reason EndReason) {
	if g.Phase == PhaseInProgress {
		g.recordRound(reason)
	}
	g.Phase = PhaseGameOver
	g.EndReason = reason
	g.OpenLockID = NoLock
	g.Paused = false
}

// playableLock returns an unsolved lock of a running, unpaused round
func (g *Game) playableLock(lockID int) (*RoundLock, error) {
	if g.Phase != PhaseInProgress {
		return nil, ErrInvalidPhase
	}
	if g.Paused {
		return nil, ErrPaused
	}
	lock, err := g.GetLock(lockID)
	if err != nil {
		return nil, err
	}
	if lock.Solved {
		return nil, ErrLockSolved
	}
	return lock, nil
}
