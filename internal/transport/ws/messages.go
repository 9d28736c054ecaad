package ws

import (
	"encoding/json"
	"time"

	"lockbox/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgAddTeam        MessageType = "add_team"
	MsgRemoveTeam     MessageType = "remove_team"
	MsgRenameTeam     MessageType = "rename_team"
	MsgRecolorTeam    MessageType = "recolor_team"
	MsgConfigure      MessageType = "configure"
	MsgStartGame      MessageType = "start_game"
	MsgOpenLock       MessageType = "open_lock"
	MsgMarkSolved     MessageType = "mark_solved"
	MsgTeamSolvedLock MessageType = "team_solved_lock"
	MsgStealLock      MessageType = "steal_lock"
	MsgPassTurn       MessageType = "pass_turn"
	MsgSkipLock       MessageType = "skip_lock"
	MsgTogglePause    MessageType = "toggle_pause"
	MsgStartNewRound  MessageType = "start_new_round"
	MsgEndGame        MessageType = "end_game"
	MsgPlayAgain      MessageType = "play_again"
	MsgReturnToLobby  MessageType = "return_to_lobby"
	MsgPing           MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected   MessageType = "connected"
	MsgError       MessageType = "error"
	MsgState       MessageType = "state"
	MsgKeyRevealed MessageType = "key_revealed"
	MsgRoundEnded  MessageType = "round_ended"
	MsgGameEnded   MessageType = "game_ended"
	MsgPong        MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// eventMessages maps game events onto their wire message type
var eventMessages = map[domain.EventType]MessageType{
	domain.EventStateChanged: MsgState,
	domain.EventKeyRevealed:  MsgKeyRevealed,
	domain.EventRoundEnded:   MsgRoundEnded,
	domain.EventGameEnded:    MsgGameEnded,
}

// fromEvent converts a session event into a server message
func fromEvent(event *domain.GameEvent) (*ServerMessage, bool) {
	msgType, ok := eventMessages[event.Type]
	if !ok {
		return nil, false
	}
	return &ServerMessage{
		Type:      msgType,
		Payload:   event.Payload,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}, true
}

// Client message payloads

// TeamPayload addresses a team
type TeamPayload struct {
	TeamID int `json:"teamId"`
}

// RenameTeamPayload is the payload for rename_team
type RenameTeamPayload struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`
}

// RecolorTeamPayload is the payload for recolor_team
type RecolorTeamPayload struct {
	TeamID int             `json:"teamId"`
	Color  domain.ColorKey `json:"color"`
}

// ConfigurePayload is the payload for configure
type ConfigurePayload struct {
	Settings domain.Settings `json:"settings"`
}

// LockPayload addresses a lock
type LockPayload struct {
	LockID int `json:"lockId"`
}

// StealLockPayload is the payload for steal_lock
type StealLockPayload struct {
	LockID int `json:"lockId"`
	TeamID int `json:"teamId"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID string          `json:"clientId"`
	RoomCode string          `json:"roomCode"`
	State    domain.Snapshot `json:"state"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeNoTeams        = "NO_TEAMS"
)
