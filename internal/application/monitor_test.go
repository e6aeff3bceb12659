package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"chessmonitor/internal/fetch"
	"chessmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type fakeGameStore struct {
	batches      map[string][]models.Game
	replaceCalls int
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{batches: make(map[string][]models.Game)}
}

func batchKey(tournamentID, round int) string {
	return fmt.Sprintf("%d/%d", tournamentID, round)
}

func (s *fakeGameStore) GetBatch(tournamentID, round int) ([]models.Game, error) {
	return append([]models.Game(nil), s.batches[batchKey(tournamentID, round)]...), nil
}

func (s *fakeGameStore) ListOrdered(tournamentID, round int) ([]models.Game, error) {
	return s.GetBatch(tournamentID, round)
}

func (s *fakeGameStore) ReplaceBatch(tournamentID, round int, games []models.Game) error {
	s.replaceCalls++
	s.batches[batchKey(tournamentID, round)] = append([]models.Game(nil), games...)
	return nil
}

func (s *fakeGameStore) Count(tournamentID, round int) (int, error) {
	return len(s.batches[batchKey(tournamentID, round)]), nil
}

type fakePrefs struct {
	tournamentID string
	round        string
	watchlist    map[string]struct{}
}

func newFakePrefs(watched ...string) *fakePrefs {
	p := &fakePrefs{watchlist: make(map[string]struct{})}
	for _, name := range watched {
		p.watchlist[name] = struct{}{}
	}
	return p
}

func (p *fakePrefs) GetTournamentID() (string, error) { return p.tournamentID, nil }
func (p *fakePrefs) SetTournamentID(id string) error  { p.tournamentID = id; return nil }
func (p *fakePrefs) GetRound() (string, error)        { return p.round, nil }
func (p *fakePrefs) SetRound(round string) error      { p.round = round; return nil }

func (p *fakePrefs) GetWatchList() (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(p.watchlist))
	for k := range p.watchlist {
		out[k] = struct{}{}
	}
	return out, nil
}

func (p *fakePrefs) AddToWatchList(name string) error {
	p.watchlist[name] = struct{}{}
	return nil
}

func (p *fakePrefs) RemoveFromWatchList(name string) error {
	delete(p.watchlist, name)
	return nil
}

type fakeFetcher struct {
	markup string
	err    error
	calls  int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, tournamentID, round int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.markup, nil
}

type fakeParser struct {
	pages map[string]*models.TournamentPage
}

func (p *fakeParser) Parse(markup string, tournamentID, round int) (*models.TournamentPage, error) {
	page, ok := p.pages[markup]
	if !ok {
		return nil, errors.New("unreadable page")
	}
	return page, nil
}

type fakeNotifier struct {
	events []models.Game
}

func (n *fakeNotifier) GameFinished(game models.Game, watchedNames []string) error {
	n.events = append(n.events, game)
	return nil
}

func newTestMonitor(store *fakeGameStore, prefs *fakePrefs, fetcher *fakeFetcher,
	pages map[string]*models.TournamentPage, notifier *fakeNotifier) *MonitorServiceImpl {
	return NewMonitorServiceImpl(store, prefs, fetcher, &fakeParser{pages: pages},
		[]Notifier{notifier}, nil, "", time.Minute, nopLogger{})
}

func TestRunCycleEndToEnd(t *testing.T) {
	unfinished := makeGame(3, "-")
	finished := makeGame(3, "1-0")

	pages := map[string]*models.TournamentPage{
		"page-unfinished": {TournamentName: "Open de Test", Games: []models.Game{unfinished}},
		"page-finished":   {TournamentName: "Open de Test", Games: []models.Game{finished}},
	}

	store := newFakeGameStore()
	fetcher := &fakeFetcher{markup: "page-unfinished"}
	notifier := &fakeNotifier{}
	svc := newTestMonitor(store, newFakePrefs("WHITE Player"), fetcher, pages, notifier)

	// Cycle 1: game exists but is unfinished. No events.
	snap, err := svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Equal(t, "Open de Test", snap.TournamentName)
	assert.Empty(t, notifier.events)

	// Cycle 2: the game finished. Exactly one event.
	fetcher.markup = "page-finished"
	snap, err = svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "1_8_3", notifier.events[0].ID)
	require.NotNil(t, snap.Games[0].FinishedAt)
	firstFinish := *snap.Games[0].FinishedAt

	// Cycle 3: same page again. Timestamp preserved, no new event.
	snap, err = svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Len(t, notifier.events, 1)
	require.NotNil(t, snap.Games[0].FinishedAt)
	assert.Equal(t, firstFinish, *snap.Games[0].FinishedAt)

	assert.Equal(t, StatusConnected, svc.State().Status)
	assert.Equal(t, 3, store.replaceCalls, "exactly one persist per successful cycle")
}

func TestRunCycleUnwatchedGameProducesNoEvent(t *testing.T) {
	pages := map[string]*models.TournamentPage{
		"page": {Games: []models.Game{makeGame(3, "1-0")}},
	}
	notifier := &fakeNotifier{}
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs("SOMEBODY Else"),
		&fakeFetcher{markup: "page"}, pages, notifier)

	_, err := svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Empty(t, notifier.events)
}

func TestRunCycleFetchFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeGameStore()
	fetcher := &fakeFetcher{err: &fetch.TransportError{URL: "http://x", Err: errors.New("refused")}}
	svc := newTestMonitor(store, newFakePrefs(), fetcher, nil, &fakeNotifier{})

	_, err := svc.RunCycle(context.Background(), 1, 8)
	require.Error(t, err)
	assert.Equal(t, 0, store.replaceCalls)
	assert.Equal(t, StatusNetworkError, svc.State().Status)
}

func TestRunCycleHTTPStatusFailureClassifiedAsError(t *testing.T) {
	fetcher := &fakeFetcher{err: &fetch.HTTPStatusError{URL: "http://x", StatusCode: 503, Status: "503 Service Unavailable"}}
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), fetcher, nil, &fakeNotifier{})

	_, err := svc.RunCycle(context.Background(), 1, 8)
	require.Error(t, err)
	assert.Equal(t, StatusError, svc.State().Status)
}

func TestRunCycleKeepsLastSnapshotAfterFailure(t *testing.T) {
	pages := map[string]*models.TournamentPage{
		"page": {TournamentName: "Open", Games: []models.Game{makeGame(3, "1-0")}},
	}
	fetcher := &fakeFetcher{markup: "page"}
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), fetcher, pages, &fakeNotifier{})

	_, err := svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)

	fetcher.err = &fetch.TransportError{URL: "http://x", Err: errors.New("timeout")}
	_, err = svc.RunCycle(context.Background(), 1, 8)
	require.Error(t, err)

	require.NotNil(t, svc.Snapshot(), "last good snapshot survives a failed cycle")
	assert.Equal(t, "Open", svc.Snapshot().TournamentName)
}

func TestRunCycleCancelledBeforePersistDiscardsResult(t *testing.T) {
	pages := map[string]*models.TournamentPage{
		"page": {Games: []models.Game{makeGame(3, "1-0")}},
	}
	store := newFakeGameStore()
	svc := newTestMonitor(store, newFakePrefs("WHITE Player"),
		&fakeFetcher{markup: "page"}, pages, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunCycle(ctx, 1, 8)
	require.Error(t, err)
	assert.Equal(t, 0, store.replaceCalls, "stored batch stays untouched")
	assert.Nil(t, svc.Snapshot())
	assert.Equal(t, StatusDisconnected, svc.State().Status)
}

type cancellingNotifier struct {
	cancel context.CancelFunc
}

func (n *cancellingNotifier) GameFinished(models.Game, []string) error {
	n.cancel()
	return nil
}

func TestRunCycleStoppedMidCyclePublishesNothing(t *testing.T) {
	pages := map[string]*models.TournamentPage{
		"page": {Games: []models.Game{makeGame(3, "1-0")}},
	}
	store := newFakeGameStore()
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewMonitorServiceImpl(store, newFakePrefs("WHITE Player"),
		&fakeFetcher{markup: "page"}, &fakeParser{pages: pages},
		[]Notifier{&cancellingNotifier{cancel: cancel}}, nil, "", time.Minute, nopLogger{})

	_, err := svc.RunCycle(ctx, 1, 8)
	require.Error(t, err)
	assert.Equal(t, 1, store.replaceCalls, "the batch was already persisted when the stop landed")
	assert.Nil(t, svc.Snapshot(), "a stopped cycle publishes no snapshot")
	assert.Equal(t, StatusDisconnected, svc.State().Status)
}

func TestStartValidatesTarget(t *testing.T) {
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), &fakeFetcher{}, nil, &fakeNotifier{})
	assert.ErrorIs(t, svc.Start(0, 1), ErrInvalidTarget)
	assert.ErrorIs(t, svc.Start(1, 0), ErrInvalidTarget)
}

func TestStartSavesLastUsedTarget(t *testing.T) {
	pages := map[string]*models.TournamentPage{"page": {Games: nil}}
	prefs := newFakePrefs()
	svc := newTestMonitor(newFakeGameStore(), prefs, &fakeFetcher{markup: "page"}, pages, &fakeNotifier{})

	require.NoError(t, svc.Start(42, 7))
	defer svc.Stop()

	assert.Equal(t, "42", prefs.tournamentID)
	assert.Equal(t, "7", prefs.round)
}

func TestOnCycleCallbackReceivesSnapshot(t *testing.T) {
	pages := map[string]*models.TournamentPage{
		"page": {TournamentName: "Open", Games: []models.Game{makeGame(1, "-")}},
	}
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), &fakeFetcher{markup: "page"}, pages, &fakeNotifier{})

	var got *models.Snapshot
	svc.OnCycle(func(s *models.Snapshot) { got = s })

	_, err := svc.RunCycle(context.Background(), 1, 8)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Open", got.TournamentName)
}

func TestStateFallsBackToSavedTarget(t *testing.T) {
	prefs := newFakePrefs()
	prefs.tournamentID = "42"
	prefs.round = "7"
	svc := newTestMonitor(newFakeGameStore(), prefs, &fakeFetcher{}, nil, &fakeNotifier{})

	state := svc.State()
	assert.False(t, state.Monitoring)
	assert.Equal(t, 42, state.TournamentID)
	assert.Equal(t, 7, state.Round)
}

func TestRecentGamesUsesSavedTarget(t *testing.T) {
	store := newFakeGameStore()
	store.batches[batchKey(42, 7)] = []models.Game{makeGame(1, "1-0")}
	prefs := newFakePrefs()
	prefs.tournamentID = "42"
	prefs.round = "7"
	svc := newTestMonitor(store, prefs, &fakeFetcher{}, nil, &fakeNotifier{})

	games, err := svc.RecentGames()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, models.GameID(1, 8, 1), games[0].ID)
}

func TestRecentGamesWithoutTarget(t *testing.T) {
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), &fakeFetcher{}, nil, &fakeNotifier{})
	_, err := svc.RecentGames()
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestWatchlistManagement(t *testing.T) {
	svc := newTestMonitor(newFakeGameStore(), newFakePrefs(), &fakeFetcher{}, nil, &fakeNotifier{})

	assert.ErrorIs(t, svc.AddToWatchlist(""), ErrBlankPlayerName)
	require.NoError(t, svc.AddToWatchlist("DUPONT Jean"))
	require.NoError(t, svc.AddToWatchlist("MARTIN Paul"))

	names, err := svc.Watchlist()
	require.NoError(t, err)
	assert.Equal(t, []string{"DUPONT Jean", "MARTIN Paul"}, names)

	require.NoError(t, svc.RemoveFromWatchlist("DUPONT Jean"))
	names, err = svc.Watchlist()
	require.NoError(t, err)
	assert.Equal(t, []string{"MARTIN Paul"}, names)
}
