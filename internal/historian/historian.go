// Package historian drains the hand-history queue into durable storage.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/holdem/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists batches of action records.
type Sink interface {
	WriteActions(ctx context.Context, recs []cache.ActionRecord) error
	MarkAbandoned(ctx context.Context, handID uuid.UUID) error
}

type Options struct {
	Queue             string
	BatchSize         int
	FlushInterval     time.Duration
	PopTimeout        time.Duration
	InactivityTimeout time.Duration
	SweepInterval     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Queue == "" {
		o.Queue = "holdem_actions"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	if o.InactivityTimeout <= 0 {
		o.InactivityTimeout = 10 * time.Minute
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	return o
}

// Service pops records with BLPop, batches them, and flushes a batch when it
// fills up or the flush interval elapses. Hands that go quiet without a
// hand_end are marked abandoned.
type Service struct {
	rdb  *redis.Client
	sink Sink
	opts Options
	log  *logrus.Entry
	now  func() time.Time

	mu           sync.Mutex
	batch        []cache.ActionRecord
	lastActivity map[uuid.UUID]time.Time
}

func New(rdb *redis.Client, sink Sink, opts Options, logger *logrus.Logger) *Service {
	opts = opts.withDefaults()
	return &Service{
		rdb:          rdb,
		sink:         sink,
		opts:         opts,
		log:          logger.WithField("queue", opts.Queue),
		now:          time.Now,
		batch:        make([]cache.ActionRecord, 0, opts.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is buffered.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("historian started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.tickLoop(ctx)
	}()

	for ctx.Err() == nil {
		res, err := s.rdb.BLPop(ctx, s.opts.PopTimeout, s.opts.Queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.WithError(err).Error("BLPop failed")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		// res[0] is the queue name, res[1] the payload.
		if len(res) < 2 {
			continue
		}
		s.handle(ctx, res[1])
	}

	wg.Wait()
	s.flush(context.WithoutCancel(ctx))
	s.log.Info("historian stopped")
	return nil
}

func (s *Service) handle(ctx context.Context, payload string) {
	var rec cache.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		s.log.WithError(err).Warn("invalid action record")
		return
	}

	s.mu.Lock()
	if rec.HandID != uuid.Nil {
		if cache.Terminal(rec.ActionType) {
			delete(s.lastActivity, rec.HandID)
		} else {
			s.lastActivity[rec.HandID] = s.now()
		}
	}
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.opts.BatchSize
	s.mu.Unlock()

	if full {
		s.flush(ctx)
	}
}

func (s *Service) tickLoop(ctx context.Context) {
	flush := time.NewTicker(s.opts.FlushInterval)
	defer flush.Stop()
	sweep := time.NewTicker(s.opts.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-flush.C:
			s.flush(ctx)
		case <-sweep.C:
			s.sweep(ctx)
		}
	}
}

// flush writes the current batch in one call to the sink. A failed batch is
// logged and dropped.
func (s *Service) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.batch
	s.batch = make([]cache.ActionRecord, 0, s.opts.BatchSize)
	s.mu.Unlock()

	if err := s.sink.WriteActions(ctx, batch); err != nil {
		s.log.WithError(err).WithField("records", len(batch)).Error("flush failed")
		return
	}
	s.log.Debugf("flushed %d actions", len(batch))
}

func (s *Service) sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.opts.InactivityTimeout)

	s.mu.Lock()
	var stale []uuid.UUID
	for id, last := range s.lastActivity {
		if last.Before(cutoff) {
			stale = append(stale, id)
			delete(s.lastActivity, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		if err := s.sink.MarkAbandoned(ctx, id); err != nil {
			s.log.WithError(err).WithField("hand", id).Error("failed to mark hand abandoned")
			continue
		}
		s.log.WithField("hand", id).Info("marked hand abandoned after inactivity")
	}
}
