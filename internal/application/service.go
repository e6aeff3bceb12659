package application

import (
	"context"
	"time"

	"chessmonitor/internal/models"
	"chessmonitor/internal/repository"
	"chessmonitor/pkg/sheets"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Fetcher retrieves the raw results page for a (tournament, round) target.
type Fetcher interface {
	FetchPage(ctx context.Context, tournamentID, round int) (string, error)
}

// PageParser turns raw markup into the page's games and players.
type PageParser interface {
	Parse(markup string, tournamentID, round int) (*models.TournamentPage, error)
}

// Notifier receives games that just finished with a watched player involved.
// Delivery beyond this handoff is the sink's concern.
type Notifier interface {
	GameFinished(game models.Game, watchedNames []string) error
}

type MonitorService interface {
	Start(tournamentID, round int) error
	Stop()
	RunCycle(ctx context.Context, tournamentID, round int) (*models.Snapshot, error)
	Snapshot() *models.Snapshot
	State() MonitorState
	RecentGames() ([]models.Game, error)
	OnCycle(fn func(*models.Snapshot))

	Watchlist() ([]string, error)
	AddToWatchlist(name string) error
	RemoveFromWatchlist(name string) error

	StandingsReport() ([]byte, error)
	SyncStandingsToSheet() (string, error)
}

type Service struct {
	Monitor MonitorService
}

func NewService(repos *repository.Repository, fetcher Fetcher, pageParser PageParser,
	notifiers []Notifier, sheetsClient sheets.Client, spreadsheetID string,
	pollInterval time.Duration, logger Logger) *Service {
	return &Service{
		Monitor: NewMonitorServiceImpl(repos.Game, repos.Preferences, fetcher, pageParser,
			notifiers, sheetsClient, spreadsheetID, pollInterval, logger),
	}
}
