package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockbox/internal/clock"
	"lockbox/internal/domain"
	"lockbox/internal/profile"
)

func newTestHub(t *testing.T, store profile.Store) (*GameHub, *clock.Manual) {
	t.Helper()
	m := clock.NewManual()
	hub := NewGameHub(testLogger(), HubOptions{
		Scheduler:    m,
		Content:      testContent(t),
		Store:        store,
		Lobby:        domain.Settings{Mode: domain.ModeVersus, LocksPerRound: 3},
		StaleTimeout: time.Hour,
	})
	t.Cleanup(hub.Close)
	return hub, m
}

func TestCreateGame(t *testing.T) {
	hub, _ := newTestHub(t, nil)

	session, err := hub.CreateGame(context.Background(), "")
	require.NoError(t, err)

	code := session.GetRoomCode()
	assert.Len(t, code, DefaultRoomCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(RoomCodeChars, r), "unexpected rune %q", r)
	}
	assert.NotEmpty(t, session.ProfileID())

	snap := session.Snapshot()
	assert.Equal(t, domain.PhaseLobby, snap.Phase)
	assert.Equal(t, domain.ModeVersus, snap.Settings.Mode)
	assert.Equal(t, 3, snap.Settings.LocksPerRound)

	got, err := hub.GetSession(code)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, hub.GetSessionCount())
}

func TestCreateGameLoadsPreferences(t *testing.T) {
	store := newMemoryStore()
	prefs := profile.Default()
	prefs.Accessibility.LargeText = true
	require.NoError(t, store.Save(context.Background(), "known", prefs))

	hub, _ := newTestHub(t, store)
	session, err := hub.CreateGame(context.Background(), "known")
	require.NoError(t, err)

	assert.Equal(t, "known", session.ProfileID())
	assert.True(t, session.Preferences().Accessibility.LargeText)
}

func TestGetSessionUnknown(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	_, err := hub.GetSession("NOPE00")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestDeleteSessionSavesPreferences(t *testing.T) {
	store := newMemoryStore()
	hub, _ := newTestHub(t, store)

	session, err := hub.CreateGame(context.Background(), "p1")
	require.NoError(t, err)
	hub.DeleteSession(session.GetRoomCode())

	_, saves := store.get("p1")
	assert.Equal(t, 1, saves)
	assert.Zero(t, hub.GetSessionCount())
}

func TestCleanupStaleGames(t *testing.T) {
	hub, _ := newTestHub(t, nil)

	idle, err := hub.CreateGame(context.Background(), "")
	require.NoError(t, err)
	watched, err := hub.CreateGame(context.Background(), "")
	require.NoError(t, err)
	watched.RegisterClient("viewer", &recordingClient{id: "viewer"})

	hub.cleanupStaleGames(time.Now().Add(30 * time.Minute))
	assert.Equal(t, 2, hub.GetSessionCount())

	hub.cleanupStaleGames(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 1, hub.GetSessionCount())
	_, err = hub.GetSession(idle.GetRoomCode())
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
	_, err = hub.GetSession(watched.GetRoomCode())
	assert.NoError(t, err)
	assert.Equal(t, 1, hub.GetTotalClientCount())
}

func TestHubStats(t *testing.T) {
	hub, m := newTestHub(t, nil)

	session, err := hub.CreateGame(context.Background(), "")
	require.NoError(t, err)
	_, err = hub.CreateGame(context.Background(), "")
	require.NoError(t, err)

	_, err = session.AddTeam()
	require.NoError(t, err)
	require.NoError(t, session.StartGame())
	assert.Equal(t, 1, hub.GetGamesInProgress())

	m.Seconds(3)
	assert.Equal(t, domain.DefaultRoundTimeSeconds-3, session.Snapshot().RoundTimeRemainingSeconds)
}

func TestHubCloseStopsEverything(t *testing.T) {
	m := clock.NewManual()
	hub := NewGameHub(testLogger(), HubOptions{Scheduler: m, Content: testContent(t)})

	session, err := hub.CreateGame(context.Background(), "")
	require.NoError(t, err)
	_, err = session.AddTeam()
	require.NoError(t, err)
	require.NoError(t, session.StartGame())
	assert.Equal(t, 2, m.Active(), "cleanup and the coop round timer")

	hub.Close()
	assert.Zero(t, m.Active())
	assert.Zero(t, hub.GetSessionCount())
}

func TestUpdateAccessibilityReachesLiveSessions(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	mine, err := hub.CreateGame(context.Background(), "me")
	require.NoError(t, err)
	other, err := hub.CreateGame(context.Background(), "you")
	require.NoError(t, err)

	_, ok := hub.UpdateAccessibility("me", profile.Accessibility{ReducedMotion: true})

	assert.True(t, ok)
	assert.True(t, mine.Preferences().Accessibility.ReducedMotion)
	assert.False(t, other.Preferences().Accessibility.ReducedMotion)
}

func TestCreateGameRejectsUnknownLobbyPack(t *testing.T) {
	hub := NewGameHub(testLogger(), HubOptions{
		Scheduler: clock.NewManual(),
		Content:   testContent(t),
		Lobby:     domain.Settings{ContentPack: "nope"},
	})
	t.Cleanup(hub.Close)

	_, err := hub.CreateGame(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnknownPack)
	assert.Zero(t, hub.GetSessionCount())
}

func TestCreateGameRandomFailure(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	hub.random = func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

	_, err := hub.CreateGame(context.Background(), "")
	assert.ErrorContains(t, err, "entropy exhausted")
	assert.Zero(t, hub.GetSessionCount())
}

func TestUpdateAccessibilityReturnsLivePreferences(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	session, err := hub.CreateGame(context.Background(), "me")
	require.NoError(t, err)

	_, err = session.AddTeam()
	require.NoError(t, err)
	require.NoError(t, session.Configure(domain.Settings{Mode: domain.ModeCoop}))
	require.NoError(t, session.StartGame())
	require.NoError(t, session.MarkSolved(session.Snapshot().Locks[0].ID()))

	prefs, ok := hub.UpdateAccessibility("me", profile.Accessibility{HighContrast: true})
	require.True(t, ok)
	assert.True(t, prefs.Accessibility.HighContrast)
	assert.Equal(t, 1, prefs.Statistics.LocksSolved)

	_, ok = hub.UpdateAccessibility("nobody", profile.Accessibility{})
	assert.False(t, ok)
}
