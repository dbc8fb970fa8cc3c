package websocket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one connected dashboard. It only receives change messages;
// anything it sends is discarded.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	logger *slog.Logger
}

// NewClient creates a Client tied to the given hub and connection. remote is
// the peer address used in log lines.
func NewClient(hub *Hub, conn *ws.Conn, remote string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: hub.logger.With("remote", remote),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			c.logClose("read", err)
			return
		}
	}
}

// writePump delivers queued change messages and pings so stale dashboards
// are noticed.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				c.logClose("write", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				c.logClose("ping", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// logClose records why a connection ended. Normal closes and cancellation
// are routine; anything else is worth a warning.
func (c *Client) logClose(op string, err error) {
	status := ws.CloseStatus(err)
	switch {
	case status == ws.StatusNormalClosure || status == ws.StatusGoingAway:
		c.logger.Debug("client closed", "op", op, "status", status)
	case errors.Is(err, context.Canceled):
		c.logger.Debug("client context done", "op", op)
	default:
		c.logger.Warn("client connection lost", "op", op, "status", status, "error", err)
	}
}
