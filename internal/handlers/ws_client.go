package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// wsClient is one WebSocket connection. It implements session.Handle: Send
// only enqueues, and writePump drains the queue onto the socket.
type wsClient struct {
	id   string
	conn *websocket.Conn
	out  chan any
	done chan struct{}
	once sync.Once

	writeTimeout time.Duration
	pingInterval time.Duration
	log          *logrus.Entry

	// playerID is the participant this connection joined as. Only touched by
	// the read loop.
	playerID string
}

func newWSClient(conn *websocket.Conn, buffer int, writeTimeout, pingInterval time.Duration, logger *logrus.Logger) *wsClient {
	id := uuid.NewString()
	return &wsClient{
		id:           id,
		conn:         conn,
		out:          make(chan any, buffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		log:          logger.WithField("conn", id),
	}
}

func (c *wsClient) ID() string { return c.id }

// Send queues msg without blocking. It returns false once the client is
// closed or its buffer is full.
func (c *wsClient) Send(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump writes queued messages with a per-write timeout and pings the
// peer periodically. A failed write closes the connection, which ends the
// read loop.
func (c *wsClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg := <-c.out:
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Warnf("failed to marshal outgoing message: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warnf("failed to write to websocket: %v", err)
				c.close()
				_ = c.conn.Close(SlowConsumerError, "write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.log.Debugf("ping failed: %v", err)
				c.close()
				_ = c.conn.Close(websocket.StatusGoingAway, "ping failed")
				return
			}
		}
	}
}
