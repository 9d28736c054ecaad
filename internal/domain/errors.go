package domain

import "errors"

// Domain errors. A command that returns one of these left the game untouched
var (
	ErrNoTeams          = errors.New("at least one team is required to start")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrInvalidMode      = errors.New("action not available in this mode")
	ErrTeamNotFound     = errors.New("team not found")
	ErrLastTeam         = errors.New("cannot remove the last team during a game")
	ErrInvalidColor     = errors.New("color is not in the palette")
	ErrLockNotFound     = errors.New("lock not found")
	ErrLockSolved       = errors.New("lock already solved")
	ErrLockNotOpen      = errors.New("lock is not the open lock")
	ErrAnotherLockOpen  = errors.New("another lock is already open")
	ErrNoOpenLock       = errors.New("no lock is open")
	ErrStealByTurnOwner = errors.New("the team holding the turn cannot steal")
	ErrPaused           = errors.New("game is paused")
	ErrUnknownPack      = errors.New("content pack not found")

	ErrGameNotFound = errors.New("game not found")
	ErrGameClosed   = errors.New("game is closed")
)

// IsRejection reports whether err is an engine rejection that presentation layers
// should treat as a silent no-op
func IsRejection(err error) bool {
	if err == nil || errors.Is(err, ErrNoTeams) {
		return false
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var rejections = []error{
	ErrInvalidPhase, ErrInvalidMode, ErrTeamNotFound, ErrLastTeam, ErrInvalidColor,
	ErrLockNotFound, ErrLockSolved, ErrLockNotOpen, ErrAnotherLockOpen, ErrNoOpenLock,
	ErrStealByTurnOwner, ErrPaused, ErrUnknownPack,
}
