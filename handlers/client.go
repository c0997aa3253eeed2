package handlers

import (
	"sync"
	"time"

	"github.com/Arvi89/planning-taki/config"
	"github.com/Arvi89/planning-taki/models"
	"github.com/eapache/queue"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one websocket connection. Frames queued with Send are written by
// the write pump; the read pump decodes inbound frames and submits them to
// the hub.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	cfg  config.WebSocketConfig
	log  *zap.Logger

	mu      sync.Mutex
	pending *queue.Queue
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func newClient(id string, conn *websocket.Conn, hub *Hub, cfg config.WebSocketConfig, log *zap.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		hub:     hub,
		cfg:     cfg,
		log:     log.With(zap.String("conn", id)),
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Send queues a frame without waiting for delivery.
func (c *Client) Send(frame []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending.Add(frame)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// close stops the write pump; queued frames are dropped.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *Client) next() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending.Length() == 0 {
		return nil, false
	}
	return c.pending.Remove().([]byte), true
}

// readPump runs until the connection fails, then reports the disconnect.
func (c *Client) readPump() {
	defer func() {
		if err := c.hub.Unregister(c.id); err != nil {
			c.log.Debug("unregister", zap.Error(err))
		}
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		req, err := models.DecodeFrame(frame)
		if err != nil {
			c.log.Debug("malformed frame ignored", zap.Error(err))
			continue
		}
		if err := c.hub.Submit(c.id, req); err != nil {
			return
		}
	}
}

// writePump drains the outbox and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.wake:
			for {
				frame, ok := c.next()
				if !ok {
					break
				}
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					c.log.Debug("write failed", zap.Error(err))
					return
				}
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait))
			return
		}
	}
}
