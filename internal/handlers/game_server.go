package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/holdem/internal/cache"
	"github.com/jason-s-yu/holdem/internal/dispatch"
	"github.com/jason-s-yu/holdem/internal/game"
	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/jason-s-yu/holdem/internal/session"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/jason-s-yu/holdem/internal/handlers"

// joinAttempts bounds retries when a join races with removal of an empty room.
const joinAttempts = 3

var (
	ErrMissingField = errors.New("roomId and playerId are required")
	ErrNotSeated    = errors.New("join a room first")
)

// ServerOptions tune the transport side of the GameServer.
type ServerOptions struct {
	Game           game.Options
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	OutboundBuffer int
	MsgRate        rate.Limit
	MsgBurst       int
}

// DefaultServerOptions mirrors the config defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Game:           game.DefaultOptions(),
		WriteTimeout:   3 * time.Second,
		PingInterval:   30 * time.Second,
		OutboundBuffer: 32,
		MsgRate:        10,
		MsgBurst:       20,
	}
}

// GameServer routes inbound player events to rooms and pushes the resulting
// state back out. It owns the room store and the session directory.
type GameServer struct {
	Rooms    *game.RoomStore
	Sessions *session.Directory
	Dispatch *dispatch.Dispatcher
	Recorder *cache.Recorder

	opts   ServerOptions
	logger *logrus.Logger
	tracer trace.Tracer
}

// NewGameServer wires a store, directory and dispatcher together. rec may be nil.
func NewGameServer(logger *logrus.Logger, opts ServerOptions, rec *cache.Recorder) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.Game.Logger = logger
	dir := session.NewDirectory()
	gs := &GameServer{
		Sessions: dir,
		Dispatch: dispatch.New(dir, logger),
		Recorder: rec,
		opts:     opts,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
	gs.Rooms = game.NewRoomStore(opts.Game, gs.onDeal)
	return gs
}

// Close stops pending deals and waits for queued hand records.
func (gs *GameServer) Close() {
	gs.Rooms.Close()
	gs.Recorder.Close()
}

// Join seats playerID in roomID, creating the room if needed, and binds the
// player to h. Rejections leave everything unchanged.
func (gs *GameServer) Join(ctx context.Context, h session.Handle, roomID, playerID, name string) (err error) {
	_, span := gs.tracer.Start(ctx, "holdem.join", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("player.id", playerID),
	))
	defer func() { endSpan(span, err) }()

	if roomID == "" || playerID == "" {
		return ErrMissingField
	}
	if name == "" {
		name = playerID
	}
	if cur, ok := gs.Sessions.Reserve(playerID, roomID); !ok {
		return fmt.Errorf("%w (room %s)", game.ErrAlreadySeated, cur)
	}

	var room *game.Room
	for attempt := 0; attempt < joinAttempts; attempt++ {
		room = gs.Rooms.GetOrCreate(roomID)
		err = room.Join(playerID, name)
		if !errors.Is(err, game.ErrRoomClosed) {
			break
		}
	}
	if err != nil {
		gs.Sessions.UnbindRoom(playerID)
		gs.Rooms.RemoveIfEmpty(roomID)
		return err
	}

	gs.Sessions.Register(playerID, h)

	handID, handNumber := room.Hand()
	gs.Recorder.Record(cache.ActionRecord{
		HandID:     handID,
		RoomID:     roomID,
		HandNumber: handNumber,
		PlayerID:   playerID,
		ActionType: cache.ActionJoin,
		Payload:    map[string]any{"name": name},
	})

	gs.Dispatch.Notify(room, dispatch.Message{Type: dispatch.TypePlayerJoined, ID: playerID, Name: name})
	gs.Dispatch.BroadcastState(room)
	return nil
}

// Action applies a betting action in the player's current room.
func (gs *GameServer) Action(ctx context.Context, h session.Handle, playerID, kind string, amount int) (err error) {
	_, span := gs.tracer.Start(ctx, "holdem.action", trace.WithAttributes(
		attribute.String("player.id", playerID),
		attribute.String("action.kind", kind),
		attribute.Int("action.amount", amount),
	))
	defer func() { endSpan(span, err) }()

	room, err := gs.roomOf(playerID)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("room.id", room.ID))

	action, err := models.ParseAction(kind, amount)
	if err != nil {
		return fmt.Errorf("%w: %q", game.ErrUnknownAction, kind)
	}
	out, err := room.PerformAction(playerID, action)
	if err != nil {
		return err
	}

	rec := cache.ActionRecord{
		HandID:     out.HandID,
		RoomID:     room.ID,
		HandNumber: out.HandNumber,
		PlayerID:   playerID,
		ActionType: string(action.Kind()),
		Payload:    map[string]any{"phase": out.Phase},
	}
	if r, ok := action.(models.Raise); ok {
		rec.Payload["amount"] = r.Amount
	}
	gs.Recorder.Record(rec)
	gs.recordResult(room.ID, out.Result)

	gs.Dispatch.BroadcastState(room)
	return nil
}

// Leave removes the player from their room but keeps the connection open.
// Only the connection the player joined on may leave for them.
func (gs *GameServer) Leave(ctx context.Context, h session.Handle, playerID string) (err error) {
	ctx, span := gs.tracer.Start(ctx, "holdem.leave", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer func() { endSpan(span, err) }()

	roomID, ok := gs.Sessions.RoomOf(playerID)
	if !ok {
		return ErrNotSeated
	}
	if !gs.Sessions.Release(playerID, h) {
		return ErrNotSeated
	}
	gs.removePlayer(ctx, roomID, playerID)
	return nil
}

// Disconnect cleans up after a closed connection. It does nothing if the
// player has since been bound to a newer connection.
func (gs *GameServer) Disconnect(ctx context.Context, h session.Handle, playerID string) {
	if playerID == "" {
		return
	}
	ctx, span := gs.tracer.Start(ctx, "holdem.disconnect", trace.WithAttributes(attribute.String("player.id", playerID)))
	defer span.End()

	roomID, seated := gs.Sessions.RoomOf(playerID)
	if !gs.Sessions.Release(playerID, h) {
		return
	}
	if seated {
		gs.removePlayer(ctx, roomID, playerID)
	}
}

func (gs *GameServer) removePlayer(_ context.Context, roomID, playerID string) {
	room, ok := gs.Rooms.Get(roomID)
	if !ok {
		return
	}
	out, err := room.Leave(playerID)
	if err != nil {
		gs.logger.WithError(err).WithFields(logrus.Fields{"room": roomID, "player": playerID}).Debug("leave ignored")
		return
	}
	gs.Recorder.Record(cache.ActionRecord{
		HandID:     out.HandID,
		RoomID:     roomID,
		HandNumber: out.HandNumber,
		PlayerID:   playerID,
		ActionType: cache.ActionLeave,
		Payload:    map[string]any{"phase": out.Phase},
	})
	gs.recordResult(roomID, out.Result)

	if gs.Rooms.RemoveIfEmpty(roomID) {
		return
	}
	gs.Dispatch.Notify(room, dispatch.Message{Type: dispatch.TypePlayerLeft, ID: playerID})
	gs.Dispatch.BroadcastState(room)
}

// onDeal runs after a timer-driven deal.
func (gs *GameServer) onDeal(room *game.Room, dealt game.Outcome) {
	gs.Recorder.Record(cache.ActionRecord{
		HandID:     dealt.HandID,
		RoomID:     room.ID,
		HandNumber: dealt.HandNumber,
		ActionType: cache.ActionDeal,
		Payload:    map[string]any{"players": room.PlayerIDs()},
	})
	gs.Dispatch.BroadcastState(room)
}

func (gs *GameServer) recordResult(roomID string, res *game.HandResult) {
	if res == nil {
		return
	}
	kind := cache.ActionHandEnd
	if res.Aborted {
		kind = cache.ActionHandAborted
	}
	gs.Recorder.Record(cache.ActionRecord{
		HandID:     res.HandID,
		RoomID:     roomID,
		HandNumber: res.HandNumber,
		ActionType: kind,
		Payload: map[string]any{
			"winners": res.Winners,
			"amount":  res.Amount,
			"hand":    res.Hand,
		},
	})
}

func (gs *GameServer) roomOf(playerID string) (*game.Room, error) {
	roomID, ok := gs.Sessions.RoomOf(playerID)
	if !ok {
		return nil, ErrNotSeated
	}
	room, ok := gs.Rooms.Get(roomID)
	if !ok {
		return nil, ErrNotSeated
	}
	return room, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
