package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lockbox/internal/clock"
	"lockbox/internal/domain"
	"lockbox/internal/profile"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// StaleGameTimeout is how long an abandoned game survives by default
	StaleGameTimeout = 2 * time.Hour

	// CleanupInterval is how often stale games are looked for by default
	CleanupInterval = 10 * time.Minute
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HubOptions configures a GameHub. Zero values fall back to the package defaults
type HubOptions struct {
	Scheduler       clock.Scheduler
	Content         Content
	Store           profile.Store // optional
	Lobby           domain.Settings
	RoomCodeLength  int
	StaleTimeout    time.Duration
	CleanupInterval time.Duration
}

// GameHub manages all active game sessions
type GameHub struct {
	sessions       map[string]*GameSession
	mu             sync.RWMutex
	roomCodeLength int
	staleTimeout   time.Duration
	lobby          domain.Settings
	deps           SessionDeps
	logger         *slog.Logger
	stopCleanup    func()
	random         func([]byte) (int, error) // crypto/rand.Read, swapped in tests
}

// NewGameHub creates a new game hub
func NewGameHub(logger *slog.Logger, opts HubOptions) *GameHub {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.RoomCodeLength <= 0 {
		opts.RoomCodeLength = DefaultRoomCodeLength
	}
	if opts.StaleTimeout <= 0 {
		opts.StaleTimeout = StaleGameTimeout
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = CleanupInterval
	}

	hub := &GameHub{
		sessions:       make(map[string]*GameSession),
		roomCodeLength: opts.RoomCodeLength,
		staleTimeout:   opts.StaleTimeout,
		lobby:          opts.Lobby.Normalize(),
		deps: SessionDeps{
			Scheduler: opts.Scheduler,
			Content:   opts.Content,
			Store:     opts.Store,
			Logger:    logger,
		},
		logger: logger,
		random: rand.Read,
	}

	// Start cleanup ticks
	hub.stopCleanup = opts.Scheduler.Every(opts.CleanupInterval, func() {
		hub.cleanupStaleGames(time.Now())
	})

	return hub
}

// CreateGame creates a new game for profileID and returns its session. An
// empty profileID gets a fresh one
func (h *GameHub) CreateGame(ctx context.Context, profileID string) (*GameSession, error) {
	if profileID == "" {
		profileID = uuid.NewString()
	}
	prefs := h.loadPreferences(ctx, profileID)

	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var roomCode string
	for attempts := 0; attempts < 10; attempts++ {
		code, err := h.generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		roomCode = code
		if _, exists := h.sessions[roomCode]; !exists {
			break
		}
	}

	// Check if we found a unique code
	if _, exists := h.sessions[roomCode]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	game := domain.NewGame(roomCode)
	if h.deps.Content != nil && !h.deps.Content.Has(h.lobby.ContentPack) {
		return nil, fmt.Errorf("configuring new game: %w: %q", domain.ErrUnknownPack, h.lobby.ContentPack)
	}
	if err := game.Configure(h.lobby); err != nil {
		return nil, fmt.Errorf("configuring new game: %w", err)
	}
	session := NewGameSession(game, profileID, prefs, h.deps)
	h.sessions[roomCode] = session

	h.logger.Info("game created", "roomCode", roomCode, "profileID", profileID)

	return session, nil
}

// loadPreferences never fails; an unreadable profile plays with defaults
func (h *GameHub) loadPreferences(ctx context.Context, profileID string) profile.Preferences {
	if h.deps.Store == nil {
		return profile.Default()
	}
	prefs, err := h.deps.Store.Load(ctx, profileID)
	if err != nil {
		h.logger.Warn("failed to load preferences", "profileID", profileID, "error", err)
		return profile.Default()
	}
	return prefs
}

// GetSession returns a game session by room code
func (h *GameHub) GetSession(roomCode string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[roomCode]
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	return session, nil
}

// DeleteSession removes a game session
func (h *GameHub) DeleteSession(roomCode string) {
	h.mu.Lock()
	session, ok := h.sessions[roomCode]
	delete(h.sessions, roomCode)
	h.mu.Unlock()

	if ok {
		session.Close()
		h.logger.Info("game deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalClientCount returns the number of connected clients across all sessions
func (h *GameHub) GetTotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.ClientCount()
	}
	return total
}

// GetGamesInProgress returns how many sessions have a round running
func (h *GameHub) GetGamesInProgress() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, session := range h.sessions {
		if session.GetPhase() == domain.PhaseInProgress {
			n++
		}
	}
	return n
}

// UpdateAccessibility pushes new accessibility preferences into every live
// session of profileID so a later save does not overwrite them. It returns the
// preferences held by the most recently active of those sessions, whose
// statistics are newer than anything stored
func (h *GameHub) UpdateAccessibility(profileID string, a profile.Accessibility) (profile.Preferences, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var (
		latest profile.Preferences
		seen   time.Time
		found  bool
	)
	for _, session := range h.sessions {
		if session.ProfileID() != profileID {
			continue
		}
		prefs := session.SetAccessibility(a)
		if at := session.LastActivity(); !found || at.After(seen) {
			latest, seen, found = prefs, at, true
		}
	}
	return latest, found
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.stopCleanup()

	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*GameSession)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// generateRoomCode generates a random room code
func (h *GameHub) generateRoomCode() (string, error) {
	b := make([]byte, h.roomCodeLength)
	if _, err := h.random(b); err != nil {
		return "", err
	}

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code), nil
}

// cleanupStaleGames closes games nobody is connected to that have been idle
// longer than the stale timeout
func (h *GameHub) cleanupStaleGames(now time.Time) {
	h.mu.Lock()
	stale := make([]*GameSession, 0)
	for roomCode, session := range h.sessions {
		if session.ClientCount() == 0 && now.Sub(session.LastActivity()) > h.staleTimeout {
			stale = append(stale, session)
			delete(h.sessions, roomCode)
		}
	}
	h.mu.Unlock()

	for _, session := range stale {
		session.Close()
		h.logger.Info("stale game cleaned up", "roomCode", session.GetRoomCode())
	}
}
