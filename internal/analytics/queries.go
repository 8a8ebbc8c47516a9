package analytics

import (
	"fmt"

	"balloonpop/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetPlayerGameStats(gameID, playerID string) (*PlayerGameStats, error) {
	stats := &PlayerGameStats{
		GameID:   gameID,
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`
		SELECT p.name, p.color, gp.final_score
		FROM game_players gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id = $1 AND gp.player_id = $2
	`, gameID, playerID).Scan(&stats.PlayerName, &stats.PlayerColor, &stats.Score)
	if err != nil {
		return nil, fmt.Errorf("getting game player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as pops,
			COALESCE(AVG(reaction_ms), 0) as avg_reaction,
			COALESCE(MIN(reaction_ms), 0) as best_reaction,
			COUNT(*) FILTER (WHERE on_target) as on_target,
			COUNT(*) FILTER (WHERE golden) as goldens
		FROM pop_events
		WHERE game_id = $1 AND player_id = $2
	`, gameID, playerID).Scan(&stats.Pops, &stats.AvgReaction, &stats.BestReaction, &stats.OnTarget, &stats.Goldens)
	if err != nil {
		return nil, fmt.Errorf("getting pop stats: %w", err)
	}

	// Calculate PPS from game duration
	var durationSecs float64
	q.DB.QueryRow(`
		SELECT EXTRACT(EPOCH FROM (ended_at - started_at))
		FROM games WHERE id = $1 AND ended_at IS NOT NULL AND started_at IS NOT NULL
	`, gameID).Scan(&durationSecs)
	if durationSecs > 0 {
		stats.PPS = float64(stats.Pops) / durationSecs
	}

	if stats.Pops > 0 {
		stats.OnTargetRate = float64(stats.OnTarget) / float64(stats.Pops) * 100
	}

	return stats, nil
}

func (q *Queries) GetPlayerLifetimeStats(playerID string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`SELECT name, color FROM players WHERE id = $1`, playerID).
		Scan(&stats.PlayerName, &stats.PlayerColor)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as games_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_game,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM game_players
		WHERE player_id = $1
	`, playerID).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.BestGame, &stats.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	// Calculate win streak (most recent consecutive wins)
	rows, err := q.DB.Query(`
		SELECT gp.rank
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.player_id = $1 AND g.ended_at IS NOT NULL
		ORDER BY g.ended_at DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		if rank == 1 {
			streak++
		} else {
			break
		}
	}
	stats.WinStreak = streak

	stats.Badges = EvaluateLifetimeBadges(*stats)

	return stats, nil
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "score":
		query = `
			SELECT p.id, p.name, p.color, COALESCE(SUM(gp.final_score), 0) as value
			FROM players p
			JOIN game_players gp ON gp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "reaction":
		query = `
			SELECT p.id, p.name, p.color, COALESCE(MIN(pe.reaction_ms), 0) as value
			FROM players p
			JOIN pop_events pe ON pe.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value ASC
			LIMIT $1`
	case "wins":
		query = `
			SELECT p.id, p.name, p.color, COUNT(*) FILTER (WHERE gp.rank = 1) as value
			FROM players p
			JOIN game_players gp ON gp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "goldens":
		query = `
			SELECT p.id, p.name, p.color, COUNT(*) FILTER (WHERE pe.golden) as value
			FROM players p
			JOIN pop_events pe ON pe.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "pps":
		query = `
			SELECT p.id, p.name, p.color,
				COALESCE(ROUND(COUNT(pe.id)::numeric / NULLIF(SUM(EXTRACT(EPOCH FROM (g.ended_at - g.started_at))), 0), 2)::int, 0) as value
			FROM players p
			JOIN pop_events pe ON pe.player_id = p.id
			JOIN games g ON g.id = pe.game_id AND g.ended_at IS NOT NULL AND g.started_at IS NOT NULL
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.PlayerColor, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, nil
}

func (q *Queries) GetGameRecap(gameID string) (*GameRecap, error) {
	recap := &GameRecap{GameID: gameID}

	err := q.DB.QueryRow(`
		SELECT room_code, mode, difficulty_profile, started_at, ended_at FROM games WHERE id = $1
	`, gameID).Scan(&recap.RoomCode, &recap.Mode, &recap.Profile, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}

	rows, err := q.DB.Query(`
		SELECT gp.player_id FROM game_players gp WHERE gp.game_id = $1 ORDER BY gp.rank
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		stats, err := q.GetPlayerGameStats(gameID, playerID)
		if err != nil {
			return nil, err
		}
		recap.Players = append(recap.Players, *stats)
	}

	return recap, nil
}

// GetDifficultyTrace returns the controller decisions for a game in order,
// for charting how each player's multipliers moved over the round.
func (q *Queries) GetDifficultyTrace(gameID string) ([]DifficultyPoint, error) {
	rows, err := q.DB.Query(`
		SELECT player_slot, recent_rate, success_rate, idle_seconds, target_speed, target_tolerance, created_at
		FROM difficulty_adjustments
		WHERE game_id = $1
		ORDER BY created_at
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting difficulty trace: %w", err)
	}
	defer rows.Close()

	var points []DifficultyPoint
	for rows.Next() {
		var p DifficultyPoint
		if err := rows.Scan(&p.PlayerSlot, &p.RecentRate, &p.SuccessRate, &p.IdleSeconds, &p.TargetSpeed, &p.TargetTolerance, &p.At); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
