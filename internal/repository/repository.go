package repository

import (
	"database/sql"

	"chessmonitor/internal/models"
)

// Game stores reconciled game batches keyed by (tournament, round). A batch
// is always replaced wholesale under single-writer discipline per key.
type Game interface {
	GetBatch(tournamentID, round int) ([]models.Game, error)
	ListOrdered(tournamentID, round int) ([]models.Game, error)
	ReplaceBatch(tournamentID, round int, games []models.Game) error
	Count(tournamentID, round int) (int, error)
}

// Preferences stores the last-used target and the watch-list. Values are
// independent; no atomicity across them is assumed.
type Preferences interface {
	GetTournamentID() (string, error)
	SetTournamentID(id string) error
	GetRound() (string, error)
	SetRound(round string) error

	GetWatchList() (map[string]struct{}, error)
	AddToWatchList(name string) error
	RemoveFromWatchList(name string) error
}

type Repository struct {
	Game
	Preferences
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Game:        NewGamePostgres(db),
		Preferences: NewPreferencesPostgres(db),
		db:          db,
	}
}
