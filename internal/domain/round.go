package domain

import "time"

// RoundRecord summarizes a round once it stops running
type RoundRecord struct {
	Number      int       `json:"number"`
	LockIDs     []int     `json:"lockIds"`
	SolvedCount int       `json:"solvedCount"`
	Completed   bool      `json:"completed"`
	EndReason   EndReason `json:"endReason,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
}

// Duration returns how long the round ran on the wall clock
func (r RoundRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// recordRound appends the running round to the history. Called exactly once
// per round, on completion or when the game finishes mid-round
func (g *Game) recordRound(reason EndReason) {
	ids := make([]int, len(g.Locks))
	for i, l := range g.Locks {
		ids[i] = l.ID()
	}

	g.History = append(g.History, RoundRecord{
		Number:      g.Round,
		LockIDs:     ids,
		SolvedCount: g.SolvedCount(),
		Completed:   reason == EndReasonNone,
		EndReason:   reason,
		StartedAt:   g.roundStartedAt,
		EndedAt:     time.Now(),
	})
}

// TotalSolved counts solved locks across every recorded round
func (g *Game) TotalSolved() int {
	n := 0
	for _, r := range g.History {
		n += r.SolvedCount
	}
	return n
}
