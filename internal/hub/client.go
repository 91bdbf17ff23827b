package hub

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// State is the lifecycle stage of a connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Config tunes websocket pumps.
type Config struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBufferSize int           `mapstructure:"send_buffer_size"`
}

// DefaultConfig returns the pump settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
		SendBufferSize: 64,
	}
}

// Client is one websocket connection bound to a single identity.
type Client struct {
	ID     string
	UserID string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	cfg       Config
	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an upgraded connection for userID.
func NewClient(id, userID string, hub *Hub, conn *websocket.Conn, cfg Config) *Client {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = DefaultConfig().SendBufferSize
	}
	return &Client{
		ID:     id,
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, cfg.SendBufferSize),
		cfg:    cfg,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// enqueue offers data to the write pump without blocking.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendMessage encodes message and enqueues it.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

// Close stops both pumps and closes the socket. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		close(c.done)
		c.conn.Close()
	})
}

// ReadPump reads client frames until the connection drops, then leaves the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Leave(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := pkglog.L()
				l.Warn().Err(err).Str(pkglog.FieldConnectionID, c.ID).Msg("websocket read error")
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	if string(bytes.TrimSpace(message)) == MsgTypePing {
		c.SendMessage(Message{Type: MsgTypePong})
		return
	}

	var base Message
	if err := json.Unmarshal(message, &base); err != nil {
		c.SendMessage(newErrorMessage(ErrCodeBadRequest, "Invalid message format"))
		return
	}

	switch base.Type {
	case MsgTypePing:
		c.SendMessage(Message{Type: MsgTypePong})
	default:
		c.SendMessage(newErrorMessage(ErrCodeBadRequest, "Unknown message type"))
	}
}

// WritePump writes queued frames and keepalive pings until the client closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
