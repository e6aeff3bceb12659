package application

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"chessmonitor/internal/models"
	"chessmonitor/internal/repository"
	"chessmonitor/pkg/sheets"
)

type MonitorServiceImpl struct {
	games         repository.Game
	prefs         repository.Preferences
	fetcher       Fetcher
	parser        PageParser
	notifiers     []Notifier
	sheetsClient  sheets.Client
	spreadsheetID string
	pollInterval  time.Duration
	logger        Logger

	mu           sync.Mutex
	cancel       context.CancelFunc
	tournamentID int
	round        int
	status       Status
	snapshot     *models.Snapshot
	lastUpdate   time.Time
	onCycle      func(*models.Snapshot)
}

// MonitorState is the connectivity and target summary exposed to observers.
type MonitorState struct {
	Monitoring   bool      `json:"monitoring"`
	TournamentID int       `json:"tournament_id"`
	Round        int       `json:"round"`
	Status       Status    `json:"status"`
	GameCount    int       `json:"game_count"`
	LastUpdate   time.Time `json:"last_update,omitempty"`
}

func NewMonitorServiceImpl(games repository.Game, prefs repository.Preferences,
	fetcher Fetcher, parser PageParser, notifiers []Notifier,
	sheetsClient sheets.Client, spreadsheetID string,
	pollInterval time.Duration, logger Logger) *MonitorServiceImpl {
	return &MonitorServiceImpl{
		games:         games,
		prefs:         prefs,
		fetcher:       fetcher,
		parser:        parser,
		notifiers:     notifiers,
		sheetsClient:  sheetsClient,
		spreadsheetID: spreadsheetID,
		pollInterval:  pollInterval,
		logger:        logger,
		status:        StatusDisconnected,
	}
}

// Start begins periodic monitoring of one (tournament, round) target,
// replacing any target monitored before. The first cycle runs immediately.
func (s *MonitorServiceImpl) Start(tournamentID, round int) error {
	if tournamentID < 1 || round < 1 {
		return ErrInvalidTarget
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.tournamentID = tournamentID
	s.round = round
	s.mu.Unlock()

	if err := s.prefs.SetTournamentID(strconv.Itoa(tournamentID)); err != nil {
		s.logger.Warn("failed to save tournament id: %s", err.Error())
	}
	if err := s.prefs.SetRound(strconv.Itoa(round)); err != nil {
		s.logger.Warn("failed to save round: %s", err.Error())
	}

	go s.run(ctx, tournamentID, round)
	return nil
}

// Stop prevents any new cycle from starting. A cycle already in flight
// completes on its own; its fetch is not aborted mid-flight.
func (s *MonitorServiceImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = StatusDisconnected
}

// run executes cycles until the context is cancelled. Cycles run
// synchronously in this goroutine, so at most one is in flight per target;
// ticks arriving while a cycle runs are dropped by the ticker.
func (s *MonitorServiceImpl) run(ctx context.Context, tournamentID, round int) {
	s.logger.Info("monitoring started for tournament %d round %d", tournamentID, round)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunCycle(ctx, tournamentID, round); err != nil && ctx.Err() == nil {
			s.logger.Error("fetch cycle failed: %s", err.Error())
		}
		select {
		case <-ctx.Done():
			s.logger.Info("monitoring stopped for tournament %d round %d", tournamentID, round)
			return
		case <-ticker.C:
		}
	}
}

// RunCycle performs one fetch-parse-reconcile-persist-detect pass. On any
// failure before persistence the stored batch stays untouched and the
// connectivity status reflects the failure class.
func (s *MonitorServiceImpl) RunCycle(ctx context.Context, tournamentID, round int) (*models.Snapshot, error) {
	previous, err := s.games.GetBatch(tournamentID, round)
	if err != nil {
		s.setFailure(err)
		return nil, fmt.Errorf("failed to load previous batch: %w", err)
	}
	watchlist, err := s.prefs.GetWatchList()
	if err != nil {
		// Running with an empty watch-list would consume transitions without
		// emitting alerts, so the cycle fails instead.
		s.setFailure(err)
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}

	markup, err := s.fetcher.FetchPage(ctx, tournamentID, round)
	if err != nil {
		s.setFailure(err)
		return nil, err
	}
	page, err := s.parser.Parse(markup, tournamentID, round)
	if err != nil {
		s.setFailure(err)
		return nil, err
	}

	// Stop may have run while the fetch was in flight; the result is
	// discarded so the stored batch and the status stay as Stop left them.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	now := time.Now()
	reconciled := Reconcile(previous, page.Games, now)

	if err := s.games.ReplaceBatch(tournamentID, round, reconciled); err != nil {
		s.setFailure(err)
		return nil, fmt.Errorf("failed to persist batch: %w", err)
	}

	transitions := DetectTransitions(FinishedIDs(previous), reconciled, watchlist)
	for _, game := range transitions.Unwatched {
		s.logger.Debug("finished game without watched players: %s", game.FormattedResult())
	}
	for _, game := range transitions.Alerts {
		watched := watchedNames(game, watchlist)
		s.logger.Info("finished game with watched player: %s", game.FormattedResult())
		for _, notifier := range s.notifiers {
			if err := notifier.GameFinished(game, watched); err != nil {
				s.logger.Error("notification delivery failed for %s: %s", game.ID, err.Error())
			}
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	snapshot := &models.Snapshot{
		TournamentID:   tournamentID,
		Round:          round,
		TournamentName: page.TournamentName,
		Games:          reconciled,
		Players:        Standings(reconciled),
		FetchedAt:      now,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.status = StatusConnected
	s.lastUpdate = now
	callback := s.onCycle
	s.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
	return snapshot, nil
}

// setFailure updates the connectivity indicator; the last good snapshot is
// deliberately kept.
func (s *MonitorServiceImpl) setFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = classifyFailure(err)
}

// Snapshot returns the result of the last successful cycle, or nil before
// the first one.
func (s *MonitorServiceImpl) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *MonitorServiceImpl) State() MonitorState {
	s.mu.Lock()
	state := MonitorState{
		Monitoring: s.cancel != nil,
		Status:     s.status,
		LastUpdate: s.lastUpdate,
	}
	s.mu.Unlock()

	state.TournamentID, state.Round = s.lastTarget()
	if state.TournamentID > 0 {
		count, err := s.games.Count(state.TournamentID, state.Round)
		if err != nil {
			s.logger.Warn("failed to count stored games: %s", err.Error())
		} else {
			state.GameCount = count
		}
	}
	return state
}

// OnCycle registers a callback invoked after every successful cycle with the
// fresh snapshot. Used by the push layer; a single subscriber is enough.
func (s *MonitorServiceImpl) OnCycle(fn func(*models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCycle = fn
}

// lastTarget resolves the active target, falling back to the one saved in
// preferences so the last-used tournament survives a restart.
func (s *MonitorServiceImpl) lastTarget() (int, int) {
	s.mu.Lock()
	tournamentID, round := s.tournamentID, s.round
	s.mu.Unlock()
	if tournamentID > 0 {
		return tournamentID, round
	}

	if v, err := s.prefs.GetTournamentID(); err == nil {
		tournamentID, _ = strconv.Atoi(v)
	}
	if v, err := s.prefs.GetRound(); err == nil {
		round, _ = strconv.Atoi(v)
	}
	return tournamentID, round
}

// RecentGames returns the stored batch for the current or last-used target,
// most recently finished or observed first.
func (s *MonitorServiceImpl) RecentGames() ([]models.Game, error) {
	tournamentID, round := s.lastTarget()
	if tournamentID < 1 || round < 1 {
		return nil, ErrNoTarget
	}
	return s.games.ListOrdered(tournamentID, round)
}

func (s *MonitorServiceImpl) Watchlist() ([]string, error) {
	set, err := s.prefs.GetWatchList()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MonitorServiceImpl) AddToWatchlist(name string) error {
	if name == "" {
		return ErrBlankPlayerName
	}
	return s.prefs.AddToWatchList(name)
}

func (s *MonitorServiceImpl) RemoveFromWatchlist(name string) error {
	if name == "" {
		return ErrBlankPlayerName
	}
	return s.prefs.RemoveFromWatchList(name)
}
