package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lockbox/internal/app"
	"lockbox/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

var errInvalidPayload = errors.New("invalid payload")

// command applies one client message to the session
type command func(s *app.GameSession, payload json.RawMessage) error

var commands = map[MessageType]command{
	MsgAddTeam: func(s *app.GameSession, _ json.RawMessage) error {
		_, err := s.AddTeam()
		return err
	},
	MsgRemoveTeam: withPayload(func(s *app.GameSession, p TeamPayload) error {
		return s.RemoveTeam(p.TeamID)
	}),
	MsgRenameTeam: withPayload(func(s *app.GameSession, p RenameTeamPayload) error {
		return s.RenameTeam(p.TeamID, p.Name)
	}),
	MsgRecolorTeam: withPayload(func(s *app.GameSession, p RecolorTeamPayload) error {
		return s.RecolorTeam(p.TeamID, p.Color)
	}),
	MsgConfigure: withPayload(func(s *app.GameSession, p ConfigurePayload) error {
		return s.Configure(p.Settings)
	}),
	MsgOpenLock: withPayload(func(s *app.GameSession, p LockPayload) error {
		return s.OpenLock(p.LockID)
	}),
	MsgMarkSolved: withPayload(func(s *app.GameSession, p LockPayload) error {
		return s.MarkSolved(p.LockID)
	}),
	MsgTeamSolvedLock: withPayload(func(s *app.GameSession, p LockPayload) error {
		return s.TeamSolvedLock(p.LockID)
	}),
	MsgStealLock: withPayload(func(s *app.GameSession, p StealLockPayload) error {
		return s.StealLock(p.LockID, p.TeamID)
	}),
	MsgSkipLock: withPayload(func(s *app.GameSession, p LockPayload) error {
		return s.SkipLock(p.LockID)
	}),
	MsgStartGame:     noPayload((*app.GameSession).StartGame),
	MsgPassTurn:      noPayload((*app.GameSession).PassTurn),
	MsgTogglePause:   noPayload((*app.GameSession).TogglePause),
	MsgStartNewRound: noPayload((*app.GameSession).StartNewRound),
	MsgEndGame:       noPayload((*app.GameSession).EndGame),
	MsgPlayAgain:     noPayload((*app.GameSession).PlayAgain),
	MsgReturnToLobby: noPayload((*app.GameSession).ReturnToLobby),
}

func withPayload[P any](fn func(*app.GameSession, P) error) command {
	return func(s *app.GameSession, raw json.RawMessage) error {
		var p P
		if len(raw) == 0 {
			return fmt.Errorf("%w: payload is required", errInvalidPayload)
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("%w: %v", errInvalidPayload, err)
		}
		return fn(s, p)
	}
}

func noPayload(fn func(*app.GameSession) error) command {
	return func(s *app.GameSession, _ json.RawMessage) error {
		return fn(s)
	}
}

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	session  *app.GameSession
	clientID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.GameSession, clientID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("roomCode", session.GetRoomCode(), "clientID", clientID),
	}
}

// GetClientID returns the ID of this connection
func (c *Client) GetClientID() string {
	return c.clientID
}

// Send implements app.ClientConnection. Game events are translated into
// their wire message first
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.GameEvent); ok {
		msg, ok := fromEvent(event)
		if !ok {
			return nil
		}
		message = msg
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.clientID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client. Rejected
// commands are dropped silently; only malformed input and starting without
// teams are reported back
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	if msg.Type == MsgPing {
		c.sendPong()
		return
	}

	cmd, ok := commands[msg.Type]
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
		return
	}

	err := cmd(c.session, msg.Payload)
	switch {
	case err == nil:
	case errors.Is(err, errInvalidPayload):
		c.sendError(ErrCodeInvalidMessage, err.Error())
	case errors.Is(err, domain.ErrNoTeams):
		c.sendError(ErrCodeNoTeams, "Add at least one team before starting")
	case domain.IsRejection(err):
		c.logger.Debug("command rejected", "type", msg.Type, "reason", err)
	default:
		c.logger.Warn("command failed", "type", msg.Type, "error", err)
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ClientID: c.clientID,
		RoomCode: c.session.GetRoomCode(),
		State:    c.session.Snapshot(),
	}

	c.Send(NewServerMessage(MsgConnected, payload))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	c.Send(NewServerMessage(MsgError, payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
