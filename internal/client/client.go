package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pilcrowe/diceduel/internal/server" // Reuse message types
)

// Client is the WebSocket side of the dice game: it owns the socket
// pumps, tracks the identity echoed back by the server, and fans
// incoming messages out to registered handlers.
type Client struct {
	serverURL  string
	conn       *websocket.Conn
	send       chan *server.Message
	receive    chan *server.Message
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	connected  bool
	playerName string
	roomCode   string
	closeOnce  sync.Once

	dialTimeout   time.Duration
	eventHandlers map[server.MessageType][]EventHandler
	onDisconnect  func()
}

// EventHandler is a function that handles incoming messages.
type EventHandler func(*server.Message)

// NewClient creates a client for the given server URL. Call Connect
// before sending anything.
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		dialTimeout:   10 * time.Second,
		eventHandlers: make(map[server.MessageType][]EventHandler),
	}

	// The server acks create/join with the room code; remember it so
	// later commands carry the right identity.
	c.AddEventHandler(server.MessageTypeCreated, c.handleRoomAck)
	c.AddEventHandler(server.MessageTypeJoined, c.handleRoomAck)

	return c
}

// Connect establishes the WebSocket connection and starts the pumps.
func (c *Client) Connect() error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection.
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}

		close(c.send)
		close(c.receive)

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetConnectTimeout sets the WebSocket handshake timeout. Call before
// Connect.
func (c *Client) SetConnectTimeout(d time.Duration) {
	c.dialTimeout = d
}

// SetDisconnectHandler registers a callback fired once when the read
// side of the connection dies.
func (c *Client) SetDisconnectHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

// SendMessage queues a message for the server.
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		fn := c.onDisconnect
		c.mu.Unlock()
		if fn != nil && c.ctx.Err() == nil {
			fn()
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// eventProcessor processes incoming messages and dispatches to handlers
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches messages to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.mu.RLock()
	handlers, exists := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	if exists {
		for _, handler := range handlers {
			go handler(msg) // Handle asynchronously
		}
	} else {
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
}

// AddEventHandler adds an event handler for a specific message type.
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

func (c *Client) handleRoomAck(msg *server.Message) {
	var data server.CreatedData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.logger.Error("Failed to parse room ack", "error", err)
		return
	}

	c.mu.Lock()
	c.roomCode = data.Code
	c.mu.Unlock()
	c.logger.Info("Bound to room", "code", data.Code)
}

// Create asks the server for a new room with this player as its host.
func (c *Client) Create(name string) error {
	c.mu.Lock()
	c.playerName = name
	c.mu.Unlock()

	msg, err := server.NewMessage(server.MessageTypeCreate, server.CreateData{
		Name: name,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// Join enters an existing room by its 4-digit code.
func (c *Client) Join(name, code string) error {
	c.mu.Lock()
	c.playerName = name
	c.mu.Unlock()

	msg, err := server.NewMessage(server.MessageTypeJoin, server.JoinData{
		Name: name,
		Code: code,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// Roll sends a roll command. A nil keep mask rerolls all five dice.
func (c *Client) Roll(keep []bool) error {
	msg, err := server.NewMessage(server.MessageTypeCommand, server.CommandData{
		Room:   c.RoomCode(),
		Player: c.PlayerName(),
		Action: server.ActionRoll,
		Keep:   keep,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// Score commits the current dice to the named category.
func (c *Client) Score(category string) error {
	msg, err := server.NewMessage(server.MessageTypeCommand, server.CommandData{
		Room:     c.RoomCode(),
		Player:   c.PlayerName(),
		Action:   server.ActionScore,
		Category: category,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// RequestState asks the server to rebroadcast the room snapshot.
func (c *Client) RequestState() error {
	msg, err := server.NewMessage(server.MessageTypeStateRequest, nil)
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// RoomCode returns the room the server bound this client to, or empty.
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// PlayerName returns the player name used at create/join time.
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// WaitForMessage waits for a specific message type with timeout.
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	handler := func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	}

	c.AddEventHandler(messageType, handler)

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}
