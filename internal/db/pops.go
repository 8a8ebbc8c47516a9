package db

import (
	"fmt"
	"time"
)

type PopEvent struct {
	GameID              string
	PlayerID            string
	BalloonID           int
	Points              int
	OnTarget            bool
	Golden              bool
	BalloonSize         int
	BalloonX            int
	BalloonY            int
	SpawnedAt           time.Time
	PoppedAt            time.Time
	ReactionMs          int
	SpeedMultiplier     float64
	ToleranceMultiplier float64
}

func (d *DB) RecordPop(ev PopEvent) error {
	_, err := d.conn.Exec(`
		INSERT INTO pop_events (game_id, player_id, balloon_id, points, on_target, golden, balloon_size, balloon_x, balloon_y, spawned_at, popped_at, reaction_ms, speed_multiplier, tolerance_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, ev.GameID, ev.PlayerID, ev.BalloonID, ev.Points, ev.OnTarget, ev.Golden, ev.BalloonSize, ev.BalloonX, ev.BalloonY, ev.SpawnedAt, ev.PoppedAt, ev.ReactionMs, ev.SpeedMultiplier, ev.ToleranceMultiplier)
	if err != nil {
		return fmt.Errorf("recording pop: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordPops(events []PopEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO pop_events (game_id, player_id, balloon_id, points, on_target, golden, balloon_size, balloon_x, balloon_y, spawned_at, popped_at, reaction_ms, speed_multiplier, tolerance_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.GameID, ev.PlayerID, ev.BalloonID, ev.Points, ev.OnTarget, ev.Golden, ev.BalloonSize, ev.BalloonX, ev.BalloonY, ev.SpawnedAt, ev.PoppedAt, ev.ReactionMs, ev.SpeedMultiplier, ev.ToleranceMultiplier); err != nil {
			return fmt.Errorf("recording pop in batch: %w", err)
		}
	}

	return tx.Commit()
}
