package application

import "chessmonitor/internal/models"

// Transitions is the outcome of one detection pass. Alerts are newly finished
// games involving a watched player and are handed to the notification sinks;
// Unwatched games are detected but only logged, the split is kept observable.
type Transitions struct {
	Alerts    []models.Game
	Unwatched []models.Game
}

// DetectTransitions computes the games that just became finished relative to
// the previously stored finished set. As long as a finished game keeps its id
// in the stored batch it can never be reported twice.
func DetectTransitions(previousFinished map[string]struct{}, reconciled []models.Game,
	watchlist map[string]struct{}) Transitions {
	var tr Transitions
	for _, game := range reconciled {
		if !game.IsFinished() {
			continue
		}
		if _, known := previousFinished[game.ID]; known {
			continue
		}
		_, w1 := watchlist[game.Player1Name]
		_, w2 := watchlist[game.Player2Name]
		if w1 || w2 {
			tr.Alerts = append(tr.Alerts, game)
		} else {
			tr.Unwatched = append(tr.Unwatched, game)
		}
	}
	return tr
}

// FinishedIDs collects the ids of finished games in a batch.
func FinishedIDs(games []models.Game) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, g := range games {
		if g.IsFinished() {
			ids[g.ID] = struct{}{}
		}
	}
	return ids
}

// watchedNames lists the watched players involved in a game, white first.
func watchedNames(game models.Game, watchlist map[string]struct{}) []string {
	var names []string
	if _, ok := watchlist[game.Player1Name]; ok {
		names = append(names, game.Player1Name)
	}
	if _, ok := watchlist[game.Player2Name]; ok {
		names = append(names, game.Player2Name)
	}
	return names
}
