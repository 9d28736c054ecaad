package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource hands out the first count items of its pool in order
type fixedSource struct {
	pool []ContentItem
}

func (f fixedSource) SelectLocks(_ string, _ []string, count int) []ContentItem {
	if count > len(f.pool) {
		count = len(f.pool)
	}
	return append([]ContentItem(nil), f.pool[:count]...)
}

func pool(n int) fixedSource {
	items := make([]ContentItem, n)
	for i := range items {
		items[i] = ContentItem{ID: i + 1, Title: "item", Difficulty: DifficultyEasy}
	}
	return fixedSource{pool: items}
}

func newTestGame(t *testing.T, mode Mode, teams, locks int) *Game {
	t.Helper()
	g := NewGame("TEST")
	for i := 0; i < teams; i++ {
		g.AddTeam()
	}
	require.NoError(t, g.Configure(Settings{Mode: mode, LocksPerRound: locks}))
	return g
}

func startedGame(t *testing.T, mode Mode, teams, locks int) *Game {
	t.Helper()
	g := newTestGame(t, mode, teams, locks)
	require.NoError(t, g.StartGame(pool(10)))
	return g
}

func TestStartGame(t *testing.T) {
	for n := 1; n <= 5; n++ {
		g := newTestGame(t, ModeCoop, n, 4)
		require.NoError(t, g.StartGame(pool(10)))
		assert.Len(t, g.Roster.Teams, n)
		assert.Equal(t, PhaseInProgress, g.Phase)
		assert.Equal(t, 1, g.Round)
	}
}

func TestStartGameWithoutTeamsLeavesStateUnchanged(t *testing.T) {
	g := NewGame("TEST")
	before := g.Snapshot()

	err := g.StartGame(pool(10))

	assert.ErrorIs(t, err, ErrNoTeams)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, IsRejection(err))
}

func TestStartGameResetsScores(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 3)
	_, err := g.MarkSolved(1)
	require.NoError(t, err)
	require.NoError(t, g.EndGame())
	require.NoError(t, g.ReturnToLobby())

	require.NoError(t, g.StartGame(pool(10)))
	for _, team := range g.Roster.Teams {
		assert.Zero(t, team.Score)
	}
}

func TestRoundLockCount(t *testing.T) {
	tests := []struct {
		name      string
		perRound  int
		available int
		want      int
	}{
		{name: "full pool", perRound: 5, available: 10, want: 5},
		{name: "exact pool", perRound: 3, available: 3, want: 3},
		{name: "short pool", perRound: 5, available: 2, want: 2},
		{name: "empty pool", perRound: 4, available: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, ModeCoop, 1, tt.perRound)
			require.NoError(t, g.StartGame(pool(tt.available)))
			assert.Len(t, g.Locks, tt.want)
			for _, l := range g.Locks {
				assert.False(t, l.Solved)
				assert.Nil(t, l.SolvedByTeamID)
			}
		})
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{
		Mode:                  "chaos",
		ExcludedTags:          []string{" b", "a", "b", ""},
		LocksPerRound:         9,
		RoundTimeLimitSeconds: 100,
	}.Normalize()

	assert.Equal(t, ModeCoop, s.Mode)
	assert.Equal(t, MixedPack, s.ContentPack)
	assert.Equal(t, []string{"a", "b"}, s.ExcludedTags)
	assert.Equal(t, MaxLocksPerRound, s.LocksPerRound)
	assert.Equal(t, MinRoundTimeSeconds, s.RoundTimeLimitSeconds)
	assert.Equal(t, DefaultTurnTimeSeconds, s.TurnTimeLimitSeconds)
}

func TestConfigureOnlyInLobby(t *testing.T) {
	g := startedGame(t, ModeCoop, 1, 3)
	assert.ErrorIs(t, g.Configure(DefaultSettings()), ErrInvalidPhase)
}

// Scenario A: 2 teams, coop mode, 4 locks, all solved before time expires
func TestCoopSolveAllLocks(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 4)

	for i := 0; i < 10; i++ {
		g.TickRound()
	}
	for _, l := range g.Locks {
		require.NoError(t, g.OpenLock(l.ID()))
		solved, err := g.MarkSolved(l.ID())
		require.NoError(t, err)
		assert.Nil(t, solved.SolvedByTeamID)
		require.NotNil(t, solved.SolveTimeSeconds)
		assert.Equal(t, 10, *solved.SolveTimeSeconds)
	}

	assert.True(t, g.RoundComplete())
	assert.Equal(t, PhaseRoundComplete, g.Phase)
	for _, team := range g.Roster.Teams {
		assert.Equal(t, 4, team.Score)
	}
}

func TestRoundCompleteIsMonotonic(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 3)
	for _, l := range g.Locks {
		_, err := g.MarkSolved(l.ID())
		require.NoError(t, err)
	}
	require.True(t, g.RoundComplete())

	for _, l := range g.Locks {
		assert.Error(t, g.OpenLock(l.ID()))
		_, err := g.MarkSolved(l.ID())
		assert.Error(t, err)
		assert.True(t, g.RoundComplete())
	}
	ticked, _ := g.TickRound()
	assert.False(t, ticked)
}

func TestMarkSolvedRejections(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 3)
	_, err := g.MarkSolved(1)
	require.NoError(t, err)
	before := g.Snapshot()

	_, err = g.MarkSolved(1)
	assert.ErrorIs(t, err, ErrLockSolved)
	_, err = g.MarkSolved(99)
	assert.ErrorIs(t, err, ErrLockNotFound)
	assert.ErrorIs(t, g.OpenLock(1), ErrLockSolved)

	assert.Equal(t, before, g.Snapshot())
}

func TestCoopOpenLockReplacesOpenLock(t *testing.T) {
	g := startedGame(t, ModeCoop, 1, 3)
	require.NoError(t, g.OpenLock(1))
	require.NoError(t, g.OpenLock(2))
	assert.Equal(t, 2, g.OpenLockID)

	_, err := g.MarkSolved(2)
	require.NoError(t, err)
	assert.Equal(t, NoLock, g.OpenLockID)
}

// Scenario C: round timer reaches 0 with 2 of 4 locks unsolved
func TestRoundTimeUpEndsGame(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 4)
	g.Settings.RoundTimeLimitSeconds = MinRoundTimeSeconds
	g.RoundTimeRemaining = MinRoundTimeSeconds

	_, err := g.MarkSolved(1)
	require.NoError(t, err)
	_, err = g.MarkSolved(2)
	require.NoError(t, err)

	expirations := 0
	for i := 0; i < MinRoundTimeSeconds+5; i++ {
		if _, expired := g.TickRound(); expired {
			expirations++
		}
	}

	assert.Equal(t, 1, expirations)
	assert.Zero(t, g.RoundTimeRemaining)
	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, EndReasonTimeUp, g.EndReason)
	assert.Equal(t, 2, g.SolvedCount())
	assert.Equal(t, 2, g.Summary().SolvedCount)
	assert.False(t, g.RoundTimerRunning())
}

func TestPauseFreezesBothTimers(t *testing.T) {
	g := startedGame(t, ModeVersus, 2, 3)
	require.NoError(t, g.TogglePause())

	ticked, _ := g.TickRound()
	assert.False(t, ticked)
	ticked, _ = g.TickTurn()
	assert.False(t, ticked)
	assert.Equal(t, DefaultRoundTimeSeconds, g.RoundTimeRemaining)
	assert.Equal(t, DefaultTurnTimeSeconds, g.TurnTimeRemaining)
	assert.ErrorIs(t, g.OpenLock(1), ErrPaused)

	require.NoError(t, g.TogglePause())
	ticked, _ = g.TickRound()
	assert.True(t, ticked)
	assert.Equal(t, DefaultRoundTimeSeconds-1, g.RoundTimeRemaining)
}

func TestRankingsKeepRosterOrderOnTies(t *testing.T) {
	g := startedGame(t, ModeVersus, 4, 5)
	g.Roster.Teams[0].Score = 1
	g.Roster.Teams[1].Score = 3
	g.Roster.Teams[2].Score = 1
	g.Roster.Teams[3].Score = 3

	ids := make([]int, 0)
	for _, team := range g.Rankings() {
		ids = append(ids, team.ID)
	}
	assert.Equal(t, []int{2, 4, 1, 3}, ids)
}

func TestLifecycleTransitions(t *testing.T) {
	g := startedGame(t, ModeCoop, 1, 3)

	assert.ErrorIs(t, g.StartNewRound(pool(10)), ErrInvalidPhase)
	assert.ErrorIs(t, g.PlayAgain(pool(10)), ErrInvalidPhase)

	for _, l := range g.Locks {
		_, err := g.MarkSolved(l.ID())
		require.NoError(t, err)
	}
	require.NoError(t, g.StartNewRound(pool(10)))
	assert.Equal(t, 2, g.Round)
	assert.Equal(t, 3, g.Roster.Teams[0].Score)

	require.NoError(t, g.EndGame())
	assert.Equal(t, EndReasonEnded, g.EndReason)
	assert.ErrorIs(t, g.EndGame(), ErrInvalidPhase)

	require.NoError(t, g.PlayAgain(pool(10)))
	assert.Equal(t, 1, g.Round)
	assert.Zero(t, g.Roster.Teams[0].Score)

	require.NoError(t, g.ReturnToLobby())
	assert.Equal(t, PhaseLobby, g.Phase)
	assert.Empty(t, g.Locks)
	assert.Len(t, g.Roster.Teams, 1)
	assert.ErrorIs(t, g.ReturnToLobby(), ErrInvalidPhase)
}

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, PhaseLobby.CanTransitionTo(PhaseInProgress))
	assert.False(t, PhaseLobby.CanTransitionTo(PhaseGameOver))
	assert.True(t, PhaseRoundComplete.CanTransitionTo(PhaseInProgress))
	assert.False(t, PhaseGameOver.CanTransitionTo(PhaseRoundComplete))
	assert.False(t, Phase("BOGUS").CanTransitionTo(PhaseLobby))
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(ErrLockSolved))
	assert.False(t, IsRejection(nil))
	assert.False(t, IsRejection(ErrNoTeams))
}

func TestRoundHistory(t *testing.T) {
	g := startedGame(t, ModeCoop, 2, 3)
	for _, l := range g.Locks {
		_, err := g.MarkSolved(l.ID())
		require.NoError(t, err)
	}
	require.Len(t, g.History, 1)
	assert.True(t, g.History[0].Completed)
	assert.Equal(t, []int{1, 2, 3}, g.History[0].LockIDs)

	require.NoError(t, g.StartNewRound(pool(10)))
	_, err := g.MarkSolved(1)
	require.NoError(t, err)
	require.NoError(t, g.EndGame())

	require.Len(t, g.History, 2)
	last := g.History[1]
	assert.Equal(t, 2, last.Number)
	assert.False(t, last.Completed)
	assert.Equal(t, EndReasonEnded, last.EndReason)
	assert.GreaterOrEqual(t, last.Duration(), time.Duration(0))

	summary := g.Summary()
	assert.Equal(t, 4, summary.TotalSolved)
	assert.Equal(t, 2, summary.RoundsPlayed)

	require.NoError(t, g.PlayAgain(pool(10)))
	assert.Empty(t, g.History)
}

func TestEndGameAfterRoundCompleteRecordsOnce(t *testing.T) {
	g := startedGame(t, ModeCoop, 1, 3)
	for _, l := range g.Locks {
		_, err := g.MarkSolved(l.ID())
		require.NoError(t, err)
	}
	require.NoError(t, g.EndGame())
	assert.Len(t, g.History, 1)
}
