// Package cache publishes hand-history records onto a Redis list for the
// historian to persist.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/holdem/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Action types written to the queue besides the betting actions themselves.
const (
	ActionJoin        = "join"
	ActionLeave       = "leave"
	ActionDeal        = "deal"
	ActionHandEnd     = "hand_end"
	ActionHandAborted = "hand_aborted" // hand unwound, committed chips refunded
)

// Terminal reports whether the action type closes its hand.
func Terminal(actionType string) bool {
	return actionType == ActionHandEnd || actionType == ActionHandAborted
}

// ActionRecord holds the minimal info needed by the historian.
type ActionRecord struct {
	HandID      uuid.UUID      `json:"hand_id"`
	RoomID      string         `json:"room_id"`
	HandNumber  int            `json:"hand_number"`
	ActionIndex int            `json:"action_index"`
	PlayerID    string         `json:"player_id,omitempty"`
	ActionType  string         `json:"action_type"`
	Payload     map[string]any `json:"action_payload,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// Connect opens a client for cfg and pings it.
func Connect(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Recorder pushes action records onto the historian queue. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	rdb     *redis.Client
	queue   string
	timeout time.Duration
	log     *logrus.Entry

	mu  sync.Mutex
	seq map[uuid.UUID]int
	wg  sync.WaitGroup
}

func NewRecorder(rdb *redis.Client, queue string, logger *logrus.Logger) *Recorder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Recorder{
		rdb:     rdb,
		queue:   queue,
		timeout: 2 * time.Second,
		log:     logger.WithField("component", "recorder"),
		seq:     make(map[uuid.UUID]int),
	}
}

// Publish serializes the record and pushes it to the queue.
func (r *Recorder) Publish(ctx context.Context, rec ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", r.queue, err)
	}
	return nil
}

// Record stamps the record with its per-hand index and publishes it in the
// background. Records outside a hand (nil HandID) are not numbered. Failures
// are logged; the game never waits on Redis.
func (r *Recorder) Record(rec ActionRecord) {
	if r == nil {
		return
	}
	if rec.HandID != uuid.Nil {
		r.mu.Lock()
		rec.ActionIndex = r.seq[rec.HandID]
		r.seq[rec.HandID]++
		if Terminal(rec.ActionType) {
			delete(r.seq, rec.HandID)
		}
		r.mu.Unlock()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.Publish(ctx, rec); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{"room": rec.RoomID, "type": rec.ActionType}).Warn("action record dropped")
		}
	}()
}

// Close waits for in-flight publishes.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
