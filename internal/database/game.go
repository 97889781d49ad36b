// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/jason-s-yu/mansion/internal/game"
)

// UpsertGameSnapshot stores the latest snapshot of a game. A complete game is
// marked completed and gets its end time.
func UpsertGameSnapshot(ctx context.Context, state game.GameState) error {
	js, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot of game %s: %w", state.GameID, err)
	}
	status := "in_progress"
	if state.Phase == game.PhaseComplete {
		status = "completed"
	}
	q := `
		INSERT INTO games (id, status, phase, night, day, game_state)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			phase = EXCLUDED.phase,
			night = EXCLUDED.night,
			day = EXCLUDED.day,
			game_state = EXCLUDED.game_state,
			end_time = CASE WHEN EXCLUDED.status = 'completed' THEN NOW() ELSE games.end_time END
	`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, state.GameID, status, string(state.Phase), state.Night, state.Day, js)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing snapshot of game %s: %w", state.GameID, err)
	}
	return nil
}

// InsertGameActions persists a batch of action records in one transaction,
// creating the game rows they reference when missing. Records already stored
// are ignored.
func InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %d of game %s: %w", rec.ActionIndex, rec.GameID, err)
			}
		}
		return nil
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec cache.GameActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status)
		VALUES ($1, 'in_progress')
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID); err != nil {
		return err
	}

	jsonPayload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	var actor *uuid.UUID
	if rec.ActorID != uuid.Nil {
		actor = &rec.ActorID
	}
	actionInsertQ := `
		INSERT INTO game_actions (game_id, action_index, actor_id, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, actor, rec.ActionType, jsonPayload, time.UnixMilli(rec.Timestamp),
	); err != nil {
		return err
	}

	if rec.ActionType == "game_complete" {
		finalizeQ := `
			UPDATE games
			SET status = 'completed', phase = 'complete', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID); err != nil {
			return err
		}
	}
	return nil
}

// MarkGameAbandoned marks a game still in progress as abandoned.
func MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var affected int64
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		tag, e := tx.Exec(ctx, q, gameID)
		if e != nil {
			return e
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark game %s abandoned: %w", gameID, err)
	}
	return affected > 0, nil
}

// ActionStore exposes the action history functions as a value, for the historian.
type ActionStore struct{}

func (ActionStore) InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error {
	return InsertGameActions(ctx, records)
}

func (ActionStore) MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return MarkGameAbandoned(ctx, gameID)
}
