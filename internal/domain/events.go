package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventStateChanged EventType = "STATE_CHANGED"
	EventKeyRevealed  EventType = "KEY_REVEALED"
	EventRoundEnded   EventType = "ROUND_ENDED"
	EventGameEnded    EventType = "GAME_ENDED"
)

// GameEvent represents an event that occurred in the game
type GameEvent struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"gameId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new game event
func NewEvent(eventType EventType, gameID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Snapshot is a read-only copy of the game for presentation layers
type Snapshot struct {
	GameID                    string        `json:"gameId"`
	Phase                     Phase         `json:"phase"`
	Round                     int           `json:"round"`
	EndReason                 EndReason     `json:"endReason,omitempty"`
	Settings                  Settings      `json:"settings"`
	Teams                     []Team        `json:"teams"`
	Locks                     []RoundLock   `json:"locks"`
	SolvedCount               int           `json:"solvedCount"`
	RoundComplete             bool          `json:"roundComplete"`
	RoundTimeRemainingSeconds int           `json:"roundTimeRemainingSeconds"`
	IsPaused                  bool          `json:"isPaused"`
	CurrentTeamIndex          int           `json:"currentTeamIndex"`
	CurrentTeamID             int           `json:"currentTeamId,omitempty"`
	OpenLockID                int           `json:"openLockId"`
	TurnTimeRemainingSeconds  int           `json:"turnTimeRemainingSeconds"`
	Rankings                  []Team        `json:"rankings,omitempty"`
	History                   []RoundRecord `json:"history,omitempty"`
	Keys                      []KeyItem     `json:"keys,omitempty"`
}

// Snapshot copies the current state
func (g *Game) Snapshot() Snapshot {
	locks := make([]RoundLock, len(g.Locks))
	for i, l := range g.Locks {
		locks[i] = *l
	}

	settings := g.Settings
	settings.ExcludedTags = append([]string(nil), g.Settings.ExcludedTags...)

	s := Snapshot{
		GameID:                    g.ID,
		Phase:                     g.Phase,
		Round:                     g.Round,
		EndReason:                 g.EndReason,
		Settings:                  settings,
		Teams:                     g.Roster.clone(),
		Locks:                     locks,
		SolvedCount:               g.SolvedCount(),
		RoundComplete:             g.RoundComplete(),
		RoundTimeRemainingSeconds: g.RoundTimeRemaining,
		IsPaused:                  g.Paused,
		CurrentTeamIndex:          g.CurrentTeamIndex,
		OpenLockID:                g.OpenLockID,
		TurnTimeRemainingSeconds:  g.TurnTimeRemaining,
		History:                   append([]RoundRecord(nil), g.History...),
	}
	if t := g.CurrentTeam(); t != nil {
		s.CurrentTeamID = t.ID
	}
	if g.Phase == PhaseRoundComplete || g.Phase == PhaseGameOver {
		s.Rankings = g.Rankings()
	}
	return s
}

// KeyRevealedPayload is sent when a solved lock's key becomes visible
type KeyRevealedPayload struct {
	LockID int     `json:"lockId"`
	Key    KeyItem `json:"key"`
}

// SummaryPayload is sent when a round or game ends
type SummaryPayload struct {
	Round        int       `json:"round"`
	EndReason    EndReason `json:"endReason,omitempty"`
	SolvedCount  int       `json:"solvedCount"`
	LockCount    int       `json:"lockCount"`
	Rankings     []Team    `json:"rankings"`
	TotalSolved  int       `json:"totalSolved"`
	RoundsPlayed int       `json:"roundsPlayed"`
}

// Summary describes the round that just ended
func (g *Game) Summary() *SummaryPayload {
	return &SummaryPayload{
		Round:        g.Round,
		EndReason:    g.EndReason,
		SolvedCount:  g.SolvedCount(),
		LockCount:    len(g.Locks),
		Rankings:     g.Rankings(),
		TotalSolved:  g.TotalSolved(),
		RoundsPlayed: len(g.History),
	}
}
