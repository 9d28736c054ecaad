package domain

// NoLock is the OpenLockID value when no lock is open. Catalog ids are positive
const NoLock = 0

// RoundLock wraps a sampled ContentItem for the duration of one round
type RoundLock struct {
	Content          ContentItem `json:"content"`
	Solved           bool        `json:"solved"`
	SolvedByTeamID   *int        `json:"solvedByTeamId"`
	SolveTimeSeconds *int        `json:"solveTimeSeconds"`
}

// NewRoundLock wraps content as an unsolved lock
func NewRoundLock(content ContentItem) *RoundLock {
	return &RoundLock{Content: content}
}

// ID returns the lock id, which is the id of the wrapped content
func (l *RoundLock) ID() int {
	return l.Content.ID
}

func (l *RoundLock) solve(teamID *int, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	l.Solved = true
	l.SolvedByTeamID = teamID
	l.SolveTimeSeconds = &seconds
}
