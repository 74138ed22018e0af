// Package binance provides the transport and message decoding for the
// Binance public trade stream.
package binance

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the time allowed to write a control message to the peer.
	writeWait = 5 * time.Second

	// readWait is the time allowed between inbound frames before the
	// connection is considered dead. Refreshed on every pong.
	readWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than readWait.
	pingPeriod = 20 * time.Second

	// maxMessageSize bounds a single inbound frame.
	maxMessageSize = 1 << 20
)

// Conn is a single live trade-stream connection. ReadMessage blocks until the
// next raw frame arrives or the connection fails.
type Conn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens trade-stream connections. The streaming feed depends on this
// interface so tests can substitute a scripted transport.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials real websocket connections with keep-alive pings.
type WSDialer struct {
	HandshakeTimeout time.Duration
}

// Dial opens a websocket connection to the combined-stream URL.
func (d WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &wsConn{ws: ws, done: make(chan struct{})}

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})
	go c.pingLoop()

	return c, nil
}

type wsConn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
	done      chan struct{}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, msg, err := c.ws.ReadMessage()
	return msg, err
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		err = c.ws.Close()
	})
	return err
}

// pingLoop keeps the connection alive; it exits when Close is called or a
// ping write fails (the read side will then time out and surface the error).
func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
