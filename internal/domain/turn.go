package domain

// TeamSolvedLock credits the open lock to the team holding the turn and passes
// the turn on
func (g *Game) TeamSolvedLock(lockID int) (*RoundLock, error) {
	lock, err := g.openVersusLock(lockID)
	if err != nil {
		return nil, err
	}
	team := g.CurrentTeam()
	if team == nil {
		return nil, ErrTeamNotFound
	}
	g.awardLock(lock, team)
	return lock, nil
}

// StealLock credits the open lock to another team that answered during the
// same open window
func (g *Game) StealLock(lockID, stealingTeamID int) (*RoundLock, error) {
	lock, err := g.openVersusLock(lockID)
	if err != nil {
		return nil, err
	}
	team, err := g.Roster.Get(stealingTeamID)
	if err != nil {
		return nil, err
	}
	if current := g.CurrentTeam(); current != nil && current.ID == team.ID {
		return nil, ErrStealByTurnOwner
	}
	g.awardLock(lock, team)
	return lock, nil
}

// PassTurn closes the open lock unsolved and hands the turn to the next team
func (g *Game) PassTurn() error {
	if err := g.versusTurn(); err != nil {
		return err
	}
	g.NextTurn()
	return nil
}

// SkipLock leaves the open lock for a later turn. The lock keeps no skipped
// status, so this behaves exactly like PassTurn
func (g *Game) SkipLock(lockID int) error {
	if err := g.versusTurn(); err != nil {
		return err
	}
	if g.OpenLockID == NoLock {
		return ErrNoOpenLock
	}
	if g.OpenLockID != lockID {
		return ErrLockNotOpen
	}
	g.NextTurn()
	return nil
}

// NextTurn closes any open lock and rotates the turn round-robin
func (g *Game) NextTurn() {
	if n := g.Roster.Len(); n > 0 {
		g.CurrentTeamIndex = (g.CurrentTeamIndex + 1) % n
	}
	g.resetTurn()
}

// TickTurn advances the turn countdown by one second. Expiry passes the turn
func (g *Game) TickTurn() (ticked, expired bool) {
	if !g.TurnTimerRunning() || g.Paused {
		return false, false
	}
	g.TurnTimeRemaining--
	if g.TurnTimeRemaining > 0 {
		return true, false
	}
	g.TurnTimeRemaining = 0
	g.TurnTimeUp()
	return true, true
}

// TurnTimeUp force-closes the open lock without a solve and rotates the turn
func (g *Game) TurnTimeUp() {
	if !g.TurnTimerRunning() {
		return
	}
	g.NextTurn()
}

func (g *Game) resetTurn() {
	g.OpenLockID = NoLock
	g.TurnTimeRemaining = g.Settings.TurnTimeLimitSeconds
	g.turnEpoch++
}

func (g *Game) awardLock(lock *RoundLock, team *Team) {
	teamID := team.ID
	lock.solve(&teamID, g.Settings.TurnTimeLimitSeconds-g.TurnTimeRemaining)
	team.Score++
	g.NextTurn()
	g.checkRoundComplete()
}

func (g *Game) versusTurn() error {
	if g.Settings.Mode != ModeVersus {
		return ErrInvalidMode
	}
	if g.Phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	if g.Paused {
		return ErrPaused
	}
	return nil
}

// openVersusLock returns lockID if it is the open, unsolved lock of a versus round
func (g *Game) openVersusLock(lockID int) (*RoundLock, error) {
	if err := g.versusTurn(); err != nil {
		return nil, err
	}
	if g.OpenLockID == NoLock {
		return nil, ErrNoOpenLock
	}
	if g.OpenLockID != lockID {
		return nil, ErrLockNotOpen
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
