package repository

import (
	"database/sql"
	"fmt"

	"chessmonitor/internal/models"
)

const gameColumns = `id, tournament_id, round, table_num,
	player1_name, player1_rating, player1_points,
	result, raw_result,
	player2_name, player2_rating, player2_points,
	finished_at, observed_at`

type GamePostgres struct {
	db *sql.DB
}

func NewGamePostgres(db *sql.DB) *GamePostgres {
	return &GamePostgres{db: db}
}

func (r *GamePostgres) GetBatch(tournamentID, round int) ([]models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE tournament_id = $1 AND round = $2`, gameColumns)
	return r.queryGames(query, tournamentID, round)
}

// ListOrdered returns the batch in "most recent" order: finished games by
// finish time descending, unfinished ones by last observation descending.
func (r *GamePostgres) ListOrdered(tournamentID, round int) ([]models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE tournament_id = $1 AND round = $2
		ORDER BY COALESCE(finished_at, observed_at) DESC`, gameColumns)
	return r.queryGames(query, tournamentID, round)
}

func (r *GamePostgres) queryGames(query string, tournamentID, round int) ([]models.Game, error) {
	rows, err := r.db.Query(query, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		var finishedAt sql.NullTime
		err := rows.Scan(&g.ID, &g.TournamentID, &g.Round, &g.TableNum,
			&g.Player1Name, &g.Player1Rating, &g.Player1Points,
			&g.Result, &g.RawResult,
			&g.Player2Name, &g.Player2Rating, &g.Player2Points,
			&finishedAt, &g.ObservedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			g.FinishedAt = &t
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// ReplaceBatch swaps the stored batch for the key in one transaction, so
// readers never observe a partially written round.
func (r *GamePostgres) ReplaceBatch(tournamentID, round int, games []models.Game) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM games WHERE tournament_id = $1 AND round = $2`,
		tournamentID, round); err != nil {
		return fmt.Errorf("failed to clear previous batch: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO games (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, gameColumns)
	for _, g := range games {
		var finishedAt sql.NullTime
		if g.FinishedAt != nil {
			finishedAt = sql.NullTime{Time: *g.FinishedAt, Valid: true}
		}
		if _, err = tx.Exec(insert, g.ID, g.TournamentID, g.Round, g.TableNum,
			g.Player1Name, g.Player1Rating, g.Player1Points,
			g.Result, g.RawResult,
			g.Player2Name, g.Player2Rating, g.Player2Points,
			finishedAt, g.ObservedAt); err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (r *GamePostgres) Count(tournamentID, round int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM games WHERE tournament_id = $1 AND round = $2`,
		tournamentID, round).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}
