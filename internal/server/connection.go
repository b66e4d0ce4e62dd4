package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pilcrowe/diceduel/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection wraps one client's WebSocket with its pumps and the
// identity bound at create/join time (player name + room code).
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	player    string
	room      string
	registry  *Registry
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper around an upgraded socket.
func NewConnection(conn *websocket.Conn, registry *Registry, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		id:       id,
		conn:     conn,
		send:     make(chan *Message, 256),
		registry: registry,
		logger:   logger.WithPrefix("conn").With("id", id),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// Send queues a message for delivery. A full buffer means the client
// has stopped draining, so the connection is closed rather than letting
// one slow socket stall its room.
func (c *Connection) Send(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown.
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// bind associates this connection with a player and room.
func (c *Connection) bind(player, room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = player
	c.room = room
}

// Player returns the bound player name.
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player
}

// Room returns the bound room code.
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeCreate:
		var data CreateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_input", "Failed to parse create data")
			return
		}
		c.handleCreate(data)

	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_input", "Failed to parse join data")
			return
		}
		c.handleJoin(data)

	case MessageTypeStateRequest:
		c.handleStateRequest()

	case MessageTypeCommand:
		var data CommandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_input", "Failed to parse command data")
			return
		}
		c.handleCommand(data)

	default:
		c.sendError("invalid_input", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.Send(errorMsg)
}

// reject maps a game or room error onto the wire taxonomy.
func (c *Connection) reject(err error) {
	c.sendError(errorCode(err), err.Error())
}

func (c *Connection) handleCreate(data CreateData) {
	c.logger.Info("Create room request", "name", data.Name)

	if data.Name == "" {
		c.sendError("invalid_input", "Player name required")
		return
	}
	if c.Room() != "" {
		c.sendError("invalid_input", "Connection already bound to a room")
		return
	}

	room, snap, err := c.registry.CreateRoom(data.Name, c)
	if err != nil {
		c.reject(err)
		return
	}

	response, _ := NewMessage(MessageTypeCreated, CreatedData{Code: room.Code()})
	_ = c.Send(response)
	c.registry.Broadcast(room, snap)
}

func (c *Connection) handleJoin(data JoinData) {
	c.logger.Info("Join room request", "name", data.Name, "code", data.Code)

	if data.Name == "" {
		c.sendError("invalid_input", "Player name required")
		return
	}
	if c.Room() != "" {
		c.sendError("invalid_input", "Connection already bound to a room")
		return
	}

	room, snap, err := c.registry.JoinRoom(data.Code, data.Name, c)
	if err != nil {
		c.reject(err)
		return
	}

	response, _ := NewMessage(MessageTypeJoined, JoinedData{Code: room.Code()})
	_ = c.Send(response)
	c.registry.Broadcast(room, snap)
}

func (c *Connection) handleStateRequest() {
	code := c.Room()
	if code == "" {
		c.sendError("room_not_found", "Connection is not in a room")
		return
	}

	room, snap, err := c.registry.Snapshot(code)
	if err != nil {
		c.reject(err)
		return
	}
	c.registry.Broadcast(room, snap)
}

func (c *Connection) handleCommand(data CommandData) {
	// Commands must match the identity bound at create/join time.
	if c.Room() == "" || data.Room != c.Room() || data.Player != c.Player() {
		c.sendError("invalid_input", "Command does not match connection identity")
		return
	}

	var (
		room *Room
		snap *RoomSnapshot
		err  error
	)
	switch data.Action {
	case ActionRoll:
		room, snap, err = c.registry.Roll(data.Room, data.Player, data.Keep)
	case ActionScore:
		var cat game.Category
		cat, err = game.ParseCategory(data.Category)
		if err == nil {
			room, snap, err = c.registry.ScoreCategory(data.Room, data.Player, cat)
		}
	default:
		c.sendError("invalid_input", "Unknown command action: "+data.Action)
		return
	}
	if err != nil {
		c.reject(err)
		return
	}

	c.registry.Broadcast(room, snap)
}
