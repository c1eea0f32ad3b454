package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/holdem/internal/dispatch"
	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Subprotocol is the WebSocket subprotocol clients must request.
const Subprotocol = "holdem"

// Inbound message types.
const (
	TypeJoin   = "game:join"
	TypeAction = "game:action"
	TypeLeave  = "game:leave"
	TypePing   = "ping"
)

// maxRateStrikes is how many consecutive rate-limited messages a client may
// send before the connection is closed.
const maxRateStrikes = 10

// GameMessage is the inbound envelope. Only the fields relevant to Type are read.
type GameMessage struct {
	Type string `json:"type"`

	// game:join
	RoomID     string `json:"roomId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	// game:action
	Action string `json:"action,omitempty"`
	Amount int    `json:"amount,omitempty"`
}

// GameWSHandler upgrades the connection, runs the write pump, and reads
// player events until the client goes away. The player is removed from their
// room when the connection closes.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the holdem subprotocol")
			return
		}

		client := newWSClient(c, gs.opts.OutboundBuffer, gs.opts.WriteTimeout, gs.opts.PingInterval, logger)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, client.id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go client.writePump(ctx)

		err = gs.readLoop(ctx, client)

		client.close()
		gs.Disconnect(context.WithoutCancel(ctx), client, client.playerID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, client.id, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

// readLoop reads and routes messages until the connection closes. A normal
// closure returns nil.
func (gs *GameServer) readLoop(ctx context.Context, client *wsClient) error {
	limiter := rate.NewLimiter(gs.opts.MsgRate, gs.opts.MsgBurst)
	strikes := 0

	for {
		msgType, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			client.log.Warnf("received non-text message type %d, ignoring", msgType)
			continue
		}

		if !limiter.Allow() {
			strikes++
			if strikes >= maxRateStrikes {
				client.conn.Close(RateLimitedError, "too many messages")
				return fmt.Errorf("rate limit exceeded %d times", strikes)
			}
			gs.Dispatch.SendError(client, "rate limit exceeded")
			continue
		}
		strikes = 0

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.log.Warnf("invalid JSON received: %v", err)
			gs.Dispatch.SendError(client, "invalid JSON format")
			continue
		}
		gs.handleMessage(ctx, client, msg)
	}
}

func (gs *GameServer) handleMessage(ctx context.Context, client *wsClient, msg GameMessage) {
	client.log.Debugf("received %s", msg.Type)

	var err error
	switch msg.Type {
	case TypeJoin:
		if client.playerID != "" {
			err = fmt.Errorf("%w as %s", game.ErrAlreadySeated, client.playerID)
			break
		}
		if err = gs.Join(ctx, client, msg.RoomID, msg.PlayerID, msg.PlayerName); err == nil {
			client.playerID = msg.PlayerID
		}
	case TypeAction:
		if client.playerID == "" {
			err = ErrNotSeated
			break
		}
		err = gs.Action(ctx, client, client.playerID, msg.Action, msg.Amount)
	case TypeLeave:
		if client.playerID == "" {
			err = ErrNotSeated
			break
		}
		err = gs.Leave(ctx, client, client.playerID)
		client.playerID = ""
	case TypePing:
		client.Send(dispatch.Message{Type: dispatch.TypePong})
	default:
		err = fmt.Errorf("unknown message type: %s", msg.Type)
	}

	if err != nil {
		client.log.WithError(err).Debugf("%s rejected", msg.Type)
		gs.Dispatch.SendError(client, err.Error())
	}
}
