// Package database persists hand history to Postgres.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/holdem/internal/cache"
	"github.com/jason-s-yu/holdem/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS hands (
	id          UUID PRIMARY KEY,
	room_id     TEXT NOT NULL,
	hand_number INTEGER NOT NULL,
	status      TEXT NOT NULL DEFAULT 'in_progress',
	start_time  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS hand_actions (
	id             BIGSERIAL PRIMARY KEY,
	hand_id        UUID REFERENCES hands (id),
	room_id        TEXT NOT NULL,
	action_index   INTEGER NOT NULL,
	player_id      TEXT,
	action_type    TEXT NOT NULL,
	action_payload JSONB,
	recorded_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS hand_actions_hand_idx ON hand_actions (hand_id, action_index);
`

// Connect opens a pool for cfg and pings it.
func Connect(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Store writes hand history through a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// WriteActions inserts a batch of records in a single transaction. Records of
// a new hand create its row; a hand_end record completes it and hand_aborted
// marks it aborted. Join and leave
// records outside a hand carry no hand id and are stored unlinked.
func (s *Store) WriteActions(ctx context.Context, recs []cache.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertActionTx: %w", err)
			}
		}
		return nil
	})
}

// MarkAbandoned closes out a hand that never recorded a hand_end.
func (s *Store) MarkAbandoned(ctx context.Context, handID uuid.UUID) error {
	return beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE hands
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`, handID)
		return err
	})
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.ActionRecord) error {
	var handID *uuid.UUID
	if rec.HandID != uuid.Nil {
		handID = &rec.HandID
		_, err := tx.Exec(ctx, `
			INSERT INTO hands (id, room_id, hand_number, status, start_time)
			VALUES ($1, $2, $3, 'in_progress', NOW())
			ON CONFLICT (id) DO UPDATE SET hand_number = GREATEST(hands.hand_number, EXCLUDED.hand_number)
		`, rec.HandID, rec.RoomID, rec.HandNumber)
		if err != nil {
			return err
		}
	}

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	var playerID *string
	if rec.PlayerID != "" {
		playerID = &rec.PlayerID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO hand_actions (
			hand_id, room_id, action_index, player_id, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, handID, rec.RoomID, rec.ActionIndex, playerID, rec.ActionType, payload, time.UnixMilli(rec.Timestamp))
	if err != nil {
		return err
	}

	if cache.Terminal(rec.ActionType) && handID != nil {
		status := "completed"
		if rec.ActionType == cache.ActionHandAborted {
			status = "aborted"
		}
		_, err = tx.Exec(ctx, `
			UPDATE hands
			SET status = $2, end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`, rec.HandID, status)
	}
	return err
}

// beginTxFunc starts a transaction, runs f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
