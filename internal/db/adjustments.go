package db

import "fmt"

// AdjustmentEvent is one difficulty controller decision, kept for analytics.
type AdjustmentEvent struct {
	GameID          string
	PlayerSlot      int
	RecentRate      int
	SuccessRate     float64
	IdleSeconds     float64
	TargetSpeed     float64
	TargetTolerance float64
}

func (d *DB) BatchRecordAdjustments(events []AdjustmentEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO difficulty_adjustments (game_id, player_slot, recent_rate, success_rate, idle_seconds, target_speed, target_tolerance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.GameID, ev.PlayerSlot, ev.RecentRate, ev.SuccessRate, ev.IdleSeconds, ev.TargetSpeed, ev.TargetTolerance); err != nil {
			return fmt.Errorf("recording adjustment in batch: %w", err)
		}
	}

	return tx.Commit()
}
