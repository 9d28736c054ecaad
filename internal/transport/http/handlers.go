package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lockbox/internal/app"
	"lockbox/internal/catalog"
	"lockbox/internal/domain"
	"lockbox/internal/profile"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomRequest is the optional body of POST /api/rooms
type CreateRoomRequest struct {
	ProfileID string `json:"profileId"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	ProfileID  string `json:"profileId"`
	InviteLink string `json:"inviteLink"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string          `json:"roomCode"`
	Phase       string          `json:"phase"`
	Round       int             `json:"round"`
	TeamCount   int             `json:"teamCount"`
	ClientCount int             `json:"clientCount"`
	Settings    domain.Settings `json:"settings"`
}

// ProfileResponse is the response for profile lookups
type ProfileResponse struct {
	ProfileID   string              `json:"profileId"`
	Preferences profile.Preferences `json:"preferences"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveGames      int `json:"activeGames"`
	GamesInProgress  int `json:"gamesInProgress"`
	ConnectedClients int `json:"connectedClients"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
			return
		}
	}
	if req.ProfileID != "" {
		if _, err := uuid.Parse(req.ProfileID); err != nil {
			s.sendError(w, http.StatusBadRequest, "INVALID_PROFILE_ID", "profileId must be a UUID")
			return
		}
	}

	session, err := s.hub.CreateGame(r.Context(), req.ProfileID)
	if err != nil {
		s.logger.Error("failed to create room", "error", err)
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	// Build invite link
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	inviteLink := scheme + "://" + r.Host + "/join/" + session.GetRoomCode()

	s.sendJSON(w, http.StatusCreated, &CreateRoomResponse{
		RoomCode:   session.GetRoomCode(),
		ProfileID:  session.ProfileID(),
		InviteLink: inviteLink,
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	snap := session.Snapshot()
	s.sendJSON(w, http.StatusOK, &GetRoomResponse{
		RoomCode:    session.GetRoomCode(),
		Phase:       snap.Phase.String(),
		Round:       snap.Round,
		TeamCount:   len(snap.Teams),
		ClientCount: session.ClientCount(),
		Settings:    snap.Settings,
	})
}

// handleGetRoomState handles GET /api/rooms/{roomCode}/state
func (s *Server) handleGetRoomState(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, session.Snapshot())
}

// handleListPacks handles GET /api/packs
func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs := s.packs.Packs()
	packs = append(packs, catalog.PackInfo{Name: domain.MixedPack, Title: "Mixed"})
	s.sendJSON(w, http.StatusOK, packs)
}

// handleGetProfile handles GET /api/profiles/{profileId}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.profileID(w, r)
	if !ok {
		return
	}

	prefs := profile.Default()
	if s.store != nil {
		var err error
		prefs, err = s.store.Load(r.Context(), id)
		if err != nil {
			s.logger.Error("failed to load profile", "profileID", id, "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
			return
		}
	}

	s.sendJSON(w, http.StatusOK, &ProfileResponse{ProfileID: id, Preferences: prefs})
}

// handlePutAccessibility handles PUT /api/profiles/{profileId}/accessibility
func (s *Server) handlePutAccessibility(w http.ResponseWriter, r *http.Request) {
	id, ok := s.profileID(w, r)
	if !ok {
		return
	}

	var a profile.Accessibility
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}

	// A live room holds newer statistics than the store
	prefs, live := s.hub.UpdateAccessibility(id, a)
	if !live {
		prefs = profile.Default()
		prefs.Accessibility = a
		if s.store != nil {
			current, err := s.store.Load(r.Context(), id)
			if err != nil {
				s.logger.Warn("failed to load profile before update", "profileID", id, "error", err)
			} else {
				prefs.Statistics = current.Statistics
			}
		}
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), id, prefs); err != nil {
			s.logger.Error("failed to save profile", "profileID", id, "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save profile")
			return
		}
	}

	s.sendJSON(w, http.StatusOK, &ProfileResponse{ProfileID: id, Preferences: prefs})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := &HealthResponse{Status: "ok", Checks: make(map[string]string)}
	status := http.StatusOK
	for name, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			s.logger.Error("health check failed", "name", name, "error", err)
			resp.Checks[name] = "error"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	s.sendJSON(w, status, resp)
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, &StatsResponse{
		ActiveGames:      s.hub.GetSessionCount(),
		GamesInProgress:  s.hub.GetGamesInProgress(),
		ConnectedClients: s.hub.GetTotalClientCount(),
	})
}

func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*app.GameSession, bool) {
	roomCode := strings.ToUpper(chi.URLParam(r, "roomCode"))
	session, err := s.hub.GetSession(roomCode)
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return nil, false
	}
	return session, true
}

func (s *Server) profileID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "profileId")
	if _, err := uuid.Parse(id); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_PROFILE_ID", "profileId must be a UUID")
		return "", false
	}
	return id, true
}

// sendJSON sends a successful JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: status < http.StatusBadRequest,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
