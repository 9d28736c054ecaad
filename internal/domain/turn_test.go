package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario B: team 0 opens lock 1, team 1 steals it
func TestStealLock(t *testing.T) {
	g := startedGame(t, ModeVersus, 3, 4)
	team0, team1 := g.Roster.Teams[0], g.Roster.Teams[1]

	require.Equal(t, 0, g.CurrentTeamIndex)
	require.NoError(t, g.OpenLock(1))

	lock, err := g.StealLock(1, team1.ID)
	require.NoError(t, err)

	require.NotNil(t, lock.SolvedByTeamID)
	assert.Equal(t, team1.ID, *lock.SolvedByTeamID)
	assert.Equal(t, 1, g.CurrentTeamIndex)
	assert.Equal(t, 1, team1.Score)
	assert.Equal(t, 0, team0.Score)
	assert.Equal(t, NoLock, g.OpenLockID)
}

func TestStealRejections(t *testing.T) {
	g := startedGame(t, ModeVersus, 3, 4)
	owner := g.Roster.Teams[0]
	other := g.Roster.Teams[2]

	_, err := g.StealLock(1, other.ID)
	assert.ErrorIs(t, err, ErrNoOpenLock)

	require.NoError(t, g.OpenLock(1))
	before := g.Snapshot()

	_, err = g.StealLock(1, owner.ID)
	assert.ErrorIs(t, err, ErrStealByTurnOwner)
	_, err = g.StealLock(2, other.ID)
	assert.ErrorIs(t, err, ErrLockNotOpen)
	_, err = g.StealLock(1, 999)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	assert.Equal(t, before, g.Snapshot())
}

func TestTeamSolvedLock(t *testing.T) {
	g := startedGame(t, ModeVersus, 2, 3)
	for i := 0; i < 7; i++ {
		g.TickTurn()
	}
	require.NoError(t, g.OpenLock(2))
	for i := 0; i < 12; i++ {
		g.TickTurn()
	}

	lock, err := g.TeamSolvedLock(2)
	require.NoError(t, err)

	assert.Equal(t, g.Roster.Teams[0].ID, *lock.SolvedByTeamID)
	assert.Equal(t, 12, *lock.SolveTimeSeconds)
	assert.Equal(t, 1, g.Roster.Teams[0].Score)
	assert.Equal(t, 1, g.CurrentTeamIndex)
	assert.Equal(t, DefaultTurnTimeSeconds, g.TurnTimeRemaining)

	_, err = g.TeamSolvedLock(2)
	assert.ErrorIs(t, err, ErrNoOpenLock)
}

func TestVersusOpenLockGating(t *testing.T) {
	g := startedGame(t, ModeVersus, 2, 3)
	epoch := g.TurnEpoch()

	require.NoError(t, g.OpenLock(1))
	assert.Equal(t, epoch+1, g.TurnEpoch())

	g.TickTurn()
	require.NoError(t, g.OpenLock(1))
	assert.Equal(t, 1, g.OpenLockID)
	assert.Equal(t, epoch+1, g.TurnEpoch())
	assert.LessOrEqual(t, g.TurnTimeRemaining, g.Settings.TurnTimeLimitSeconds)

	assert.ErrorIs(t, g.OpenLock(2), ErrAnotherLockOpen)
	assert.Equal(t, 1, g.OpenLockID)
}

func TestVersusRejectsCoopCommands(t *testing.T) {
	g := startedGame(t, ModeVersus, 2, 3)
	_, err := g.MarkSolved(1)
	assert.ErrorIs(t, err, ErrInvalidMode)

	c := startedGame(t, ModeCoop, 2, 3)
	assert.ErrorIs(t, c.PassTurn(), ErrInvalidMode)
	_, err = c.TeamSolvedLock(1)
	assert.ErrorIs(t, err, ErrInvalidMode)
	ticked, _ := c.TickTurn()
	assert.False(t, ticked)
}

func TestPassAndSkipAdvanceTurn(t *testing.T) {
	g := startedGame(t, ModeVersus, 3, 3)

	require.NoError(t, g.OpenLock(1))
	require.NoError(t, g.PassTurn())
	assert.Equal(t, 1, g.CurrentTeamIndex)
	assert.Equal(t, NoLock, g.OpenLockID)

	require.NoError(t, g.OpenLock(1))
	assert.ErrorIs(t, g.SkipLock(2), ErrLockNotOpen)
	require.NoError(t, g.SkipLock(1))
	assert.Equal(t, 2, g.CurrentTeamIndex)
	assert.Equal(t, NoLock, g.OpenLockID)

	lock, err := g.GetLock(1)
	require.NoError(t, err)
	assert.False(t, lock.Solved)
	require.NoError(t, g.OpenLock(1))

	assert.ErrorIs(t, g.SkipLock(2), ErrLockNotOpen)
	require.NoError(t, g.PassTurn())
	assert.ErrorIs(t, g.SkipLock(1), ErrNoOpenLock)
}

func TestNextTurnRoundRobin(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for start := 0; start < n; start++ {
			g := startedGame(t, ModeVersus, n, 3)
			g.CurrentTeamIndex = start
			for i := 0; i < n; i++ {
				g.NextTurn()
				assert.GreaterOrEqual(t, g.CurrentTeamIndex, 0)
				assert.Less(t, g.CurrentTeamIndex, n)
			}
			assert.Equal(t, start, g.CurrentTeamIndex)
		}
	}
}

// Scenario D: turn timer expires with a lock open and unsolved
func TestTurnTimeUp(t *testing.T) {
	g := startedGame(t, ModeVersus, 3, 3)
	require.NoError(t, g.OpenLock(2))

	expirations := 0
	for i := 0; i < DefaultTurnTimeSeconds; i++ {
		if _, expired := g.TickTurn(); expired {
			expirations++
		}
	}

	assert.Equal(t, 1, expirations)
	assert.Equal(t, 1, g.CurrentTeamIndex)
	assert.Equal(t, NoLock, g.OpenLockID)
	assert.Equal(t, DefaultTurnTimeSeconds, g.TurnTimeRemaining)
	lock, err := g.GetLock(2)
	require.NoError(t, err)
	assert.False(t, lock.Solved)
	assert.Equal(t, PhaseInProgress, g.Phase)
}

// Scenario E: removing the team holding the turn keeps the index valid
func TestRemoveTeamHoldingTurn(t *testing.T) {
	tests := []struct {
		name      string
		teams     int
		current   int
		remove    int
		wantIndex int
		wantTeam  int
	}{
		{name: "last team holds turn", teams: 3, current: 2, remove: 2, wantIndex: 0, wantTeam: 1},
		{name: "middle team holds turn", teams: 3, current: 1, remove: 1, wantIndex: 1, wantTeam: 3},
		{name: "earlier team removed", teams: 3, current: 2, remove: 0, wantIndex: 1, wantTeam: 3},
		{name: "later team removed", teams: 3, current: 0, remove: 2, wantIndex: 0, wantTeam: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := startedGame(t, ModeVersus, tt.teams, 3)
			g.CurrentTeamIndex = tt.current
			require.NoError(t, g.OpenLock(1))

			require.NoError(t, g.RemoveTeam(g.Roster.Teams[tt.remove].ID))

			assert.Equal(t, tt.wantIndex, g.CurrentTeamIndex)
			require.NotNil(t, g.CurrentTeam())
			assert.Equal(t, tt.wantTeam, g.CurrentTeam().ID)
			if tt.remove == tt.current {
				assert.Equal(t, NoLock, g.OpenLockID)
			} else {
				assert.Equal(t, 1, g.OpenLockID)
			}
		})
	}
}

func TestRemoveLastTeamDuringGame(t *testing.T) {
	g := startedGame(t, ModeVersus, 1, 3)
	assert.ErrorIs(t, g.RemoveTeam(g.Roster.Teams[0].ID), ErrLastTeam)
	assert.Len(t, g.Roster.Teams, 1)

	lobby := newTestGame(t, ModeVersus, 1, 3)
	require.NoError(t, lobby.RemoveTeam(1))
	assert.Zero(t, lobby.Roster.Len())
	assert.Nil(t, lobby.CurrentTeam())
}

func TestVersusSolveScoresOneTeam(t *testing.T) {
	g := startedGame(t, ModeVersus, 3, 5)

	for _, l := range g.Locks {
		require.NoError(t, g.OpenLock(l.ID()))
		if l.ID()%2 == 0 {
			thief := g.Roster.Teams[(g.CurrentTeamIndex+1)%3]
			_, err := g.StealLock(l.ID(), thief.ID)
			require.NoError(t, err)
		} else {
			_, err := g.TeamSolvedLock(l.ID())
			require.NoError(t, err)
		}
	}

	total := 0
	for _, team := range g.Roster.Teams {
		total += team.Score
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, PhaseRoundComplete, g.Phase)
	assert.False(t, g.TurnTimerRunning())
}
