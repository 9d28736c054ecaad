package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lockbox/internal/clock"
	"lockbox/internal/domain"
	"lockbox/internal/profile"
)

// persistTimeout bounds a single best-effort preferences write
const persistTimeout = 5 * time.Second

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	Close() error
}

// Content supplies locks for new rounds and the keys revealed on solve
type Content interface {
	domain.LockSource
	KeyFor(contentID int) (domain.KeyItem, bool)
	Has(pack string) bool
}

// GameSession owns one game and serializes every command and timer tick on it
type GameSession struct {
	game      *domain.Game
	mu        sync.Mutex
	clients   map[string]ClientConnection // clientID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger
	content   Content

	// Timers
	roundTimer *clock.Countdown
	turnTimer  *clock.Countdown
	roundEpoch uint64
	turnEpoch  uint64

	// Preferences of the profile that created the room
	profileID string
	prefs     profile.Preferences
	store     profile.Store
	persistWG sync.WaitGroup

	lastActivity time.Time

	// Event channel for broadcasting
	events chan *domain.GameEvent
	done   chan struct{}
	closed bool
}

// SessionDeps are the collaborators a session needs
type SessionDeps struct {
	Scheduler clock.Scheduler
	Content   Content
	Store     profile.Store // optional
	Logger    *slog.Logger
}

// NewGameSession creates a new game session
func NewGameSession(game *domain.Game, profileID string, prefs profile.Preferences, deps SessionDeps) *GameSession {
	session := &GameSession{
		game:         game,
		clients:      make(map[string]ClientConnection),
		logger:       deps.Logger.With("roomCode", game.ID),
		content:      deps.Content,
		profileID:    profileID,
		prefs:        prefs,
		store:        deps.Store,
		lastActivity: time.Now(),
		events:       make(chan *domain.GameEvent, 100),
		done:         make(chan struct{}),
	}
	session.roundTimer = clock.NewCountdown(deps.Scheduler, &session.mu)
	session.turnTimer = clock.NewCountdown(deps.Scheduler, &session.mu)

	// Start event broadcaster
	go session.eventLoop()

	return session
}

// GetRoomCode returns the room code
func (s *GameSession) GetRoomCode() string {
	return s.game.ID
}

// GetCreatedAt returns when the game was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.game.CreatedAt
}

// ProfileID returns the profile the room was created for
func (s *GameSession) ProfileID() string {
	return s.profileID
}

// Preferences returns a copy of the room's profile preferences
func (s *GameSession) Preferences() profile.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetAccessibility replaces the accessibility preferences held by the room and
// returns a copy of the updated preferences
func (s *GameSession) SetAccessibility(a profile.Accessibility) profile.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Accessibility = a
	return s.prefs
}

// GetPhase returns the current game phase
func (s *GameSession) GetPhase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase
}

// GetTeamCount returns the number of teams
func (s *GameSession) GetTeamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Roster.Len()
}

// LastActivity returns when the session last applied a command
func (s *GameSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Snapshot returns the current state including the keys of solved locks
func (s *GameSession) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// RegisterClient registers a client connection
func (s *GameSession) RegisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[clientID] = client
}

// UnregisterClient removes a client connection
func (s *GameSession) UnregisterClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, clientID)
}

// ClientCount returns the number of connected clients
func (s *GameSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Configure replaces the lobby settings. A pack the content source does not
// know is rejected
func (s *GameSession) Configure(settings domain.Settings) error {
	return s.apply(func(g *domain.Game) error {
		if pack := settings.Normalize().ContentPack; !s.content.Has(pack) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownPack, pack)
		}
		return g.Configure(settings)
	})
}

// AddTeam adds a team to the roster and returns a copy of it
func (s *GameSession) AddTeam() (domain.Team, error) {
	var team domain.Team
	err := s.apply(func(g *domain.Game) error {
		team = *g.AddTeam()
		return nil
	})
	return team, err
}

// RemoveTeam removes a team from the roster
func (s *GameSession) RemoveTeam(teamID int) error {
	return s.apply(func(g *domain.Game) error { return g.RemoveTeam(teamID) })
}

// RenameTeam renames a team
func (s *GameSession) RenameTeam(teamID int, name string) error {
	return s.apply(func(g *domain.Game) error { return g.RenameTeam(teamID, name) })
}

// RecolorTeam changes a team's color
func (s *GameSession) RecolorTeam(teamID int, color domain.ColorKey) error {
	return s.apply(func(g *domain.Game) error { return g.RecolorTeam(teamID, color) })
}

// StartGame starts round 1
func (s *GameSession) StartGame() error {
	return s.apply(func(g *domain.Game) error { return g.StartGame(s.content) })
}

// StartNewRound starts the next round after a completed one
func (s *GameSession) StartNewRound() error {
	return s.apply(func(g *domain.Game) error { return g.StartNewRound(s.content) })
}

// PlayAgain restarts from round 1 with the same teams and settings
func (s *GameSession) PlayAgain() error {
	return s.apply(func(g *domain.Game) error { return g.PlayAgain(s.content) })
}

// EndGame ends the game early
func (s *GameSession) EndGame() error {
	return s.apply(func(g *domain.Game) error { return g.EndGame() })
}

// ReturnToLobby discards the game and keeps the roster
func (s *GameSession) ReturnToLobby() error {
	return s.apply(func(g *domain.Game) error { return g.ReturnToLobby() })
}

// TogglePause pauses or resumes the round
func (s *GameSession) TogglePause() error {
	return s.apply(func(g *domain.Game) error { return g.TogglePause() })
}

// OpenLock opens a lock for an attempt
func (s *GameSession) OpenLock(lockID int) error {
	return s.apply(func(g *domain.Game) error { return g.OpenLock(lockID) })
}

// MarkSolved solves a lock in coop mode
func (s *GameSession) MarkSolved(lockID int) error {
	return s.solve(false, func(g *domain.Game) (*domain.RoundLock, error) { return g.MarkSolved(lockID) })
}

// TeamSolvedLock credits the open lock to the team holding the turn
func (s *GameSession) TeamSolvedLock(lockID int) error {
	return s.solve(false, func(g *domain.Game) (*domain.RoundLock, error) { return g.TeamSolvedLock(lockID) })
}

// StealLock credits the open lock to another team
func (s *GameSession) StealLock(lockID, teamID int) error {
	return s.solve(true, func(g *domain.Game) (*domain.RoundLock, error) { return g.StealLock(lockID, teamID) })
}

// PassTurn hands the turn to the next team
func (s *GameSession) PassTurn() error {
	return s.apply(func(g *domain.Game) error { return g.PassTurn() })
}

// SkipLock leaves the open lock for later and passes the turn
func (s *GameSession) SkipLock(lockID int) error {
	return s.apply(func(g *domain.Game) error { return g.SkipLock(lockID) })
}

// apply runs cmd under the session lock and publishes the result. A rejected
// command publishes nothing
func (s *GameSession) apply(cmd func(g *domain.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrGameClosed
	}
	phase, rounds := s.game.Phase, len(s.game.History)
	if err := cmd(s.game); err != nil {
		return err
	}
	s.lastActivity = time.Now()
	s.commit(phase, rounds)
	return nil
}

func (s *GameSession) solve(stolen bool, cmd func(g *domain.Game) (*domain.RoundLock, error)) error {
	return s.apply(func(g *domain.Game) error {
		lock, err := cmd(g)
		if err != nil {
			return err
		}

		seconds := 0
		if lock.SolveTimeSeconds != nil {
			seconds = *lock.SolveTimeSeconds
		}
		s.prefs.Statistics.RecordSolve(seconds, stolen)

		if key, ok := s.content.KeyFor(lock.ID()); ok {
			s.queueEvent(domain.NewEvent(domain.EventKeyRevealed, g.ID, &domain.KeyRevealedPayload{
				LockID: lock.ID(),
				Key:    key,
			}))
		} else {
			s.logger.Warn("no key for solved lock", "lockID", lock.ID())
		}
		return nil
	})
}

// commit reconciles timers with the game and publishes what changed since
// phase and rounds were captured. Caller must hold mu
func (s *GameSession) commit(phase domain.Phase, rounds int) {
	s.syncTimers()

	for i := rounds; i < len(s.game.History); i++ {
		s.prefs.Statistics.RecordRound()
	}

	if s.game.Phase != phase {
		switch s.game.Phase {
		case domain.PhaseRoundComplete:
			s.logger.Info("round complete", "round", s.game.Round)
			s.queueEvent(domain.NewEvent(domain.EventRoundEnded, s.game.ID, s.game.Summary()))
		case domain.PhaseGameOver:
			s.logger.Info("game over", "round", s.game.Round, "reason", s.game.EndReason)
			s.prefs.Statistics.RecordGame()
			s.queueEvent(domain.NewEvent(domain.EventGameEnded, s.game.ID, s.game.Summary()))
			s.persist()
		}
	}

	snap := s.snapshot()
	s.queueEvent(domain.NewEvent(domain.EventStateChanged, s.game.ID, &snap))
}

// syncTimers starts, restarts or stops the countdowns to match the game
// Caller must hold mu
func (s *GameSession) syncTimers() {
	switch {
	case !s.game.RoundTimerRunning():
		s.roundTimer.Stop()
	case !s.roundTimer.Running() || s.roundEpoch != s.game.RoundEpoch():
		s.roundEpoch = s.game.RoundEpoch()
		s.roundTimer.Start(s.tickRound)
	}

	switch {
	case !s.game.TurnTimerRunning():
		s.turnTimer.Stop()
	case !s.turnTimer.Running() || s.turnEpoch != s.game.TurnEpoch():
		s.turnEpoch = s.game.TurnEpoch()
		s.turnTimer.Start(s.tickTurn)
	}
}

// tickRound runs with mu held by the countdown
func (s *GameSession) tickRound() {
	phase, rounds := s.game.Phase, len(s.game.History)
	ticked, expired := s.game.TickRound()
	if !ticked {
		return
	}
	if expired {
		s.logger.Info("round time up", "round", s.game.Round)
	}
	s.commit(phase, rounds)
}

// tickTurn runs with mu held by the countdown
func (s *GameSession) tickTurn() {
	phase, rounds := s.game.Phase, len(s.game.History)
	ticked, expired := s.game.TickTurn()
	if !ticked {
		return
	}
	if expired {
		s.logger.Debug("turn time up", "round", s.game.Round, "teamIndex", s.game.CurrentTeamIndex)
	}
	s.commit(phase, rounds)
}

// snapshot copies the game state and attaches the keys of solved locks
// Caller must hold mu
func (s *GameSession) snapshot() domain.Snapshot {
	snap := s.game.Snapshot()
	for _, l := range snap.Locks {
		if !l.Solved {
			continue
		}
		if key, ok := s.content.KeyFor(l.ID()); ok {
			snap.Keys = append(snap.Keys, key)
		}
	}
	return snap
}

// persist writes a copy of the preferences in the background. Caller must
// hold mu; the write itself happens outside it
func (s *GameSession) persist() {
	if s.store == nil || s.profileID == "" {
		return
	}
	prefs := s.prefs
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.store.Save(ctx, s.profileID, prefs); err != nil {
			s.logger.Warn("failed to save preferences", "profileID", s.profileID, "error", err)
		}
	}()
}

// queueEvent adds an event to the broadcast queue
func (s *GameSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to every connected client
func (s *GameSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "clientID", clientID, "error", err)
		}
	}
}

// Close stops the timers, saves preferences and disconnects every client
func (s *GameSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.roundTimer.Stop()
	s.turnTimer.Stop()
	s.persist()
	s.mu.Unlock()

	close(s.done)
	s.persistWG.Wait()

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
