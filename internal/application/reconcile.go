package application

import (
	"time"

	"chessmonitor/internal/models"
)

// Reconcile merges a freshly parsed batch against the previously stored batch
// for the same (tournament, round) key. The incoming batch is authoritative
// for which games exist; stored games absent from it are dropped.
//
// FinishedAt assignment:
//   - a game observed finished for the first time gets FinishedAt = now
//   - a game that was already finished keeps its original FinishedAt, so
//     repeated fetches of a finished round never move the timestamp
//   - a game observed unfinished gets FinishedAt = nil even if it was
//     finished before; the source can retract or correct results
func Reconcile(previous, incoming []models.Game, now time.Time) []models.Game {
	prevByID := make(map[string]models.Game, len(previous))
	for _, g := range previous {
		prevByID[g.ID] = g
	}

	out := make([]models.Game, 0, len(incoming))
	for _, game := range incoming {
		game.ObservedAt = now
		game.FinishedAt = nil
		if game.IsFinished() {
			if prev, ok := prevByID[game.ID]; ok && prev.IsFinished() && prev.FinishedAt != nil {
				finishedAt := *prev.FinishedAt
				game.FinishedAt = &finishedAt
			} else {
				finishedAt := now
				game.FinishedAt = &finishedAt
			}
		}
		out = append(out, game)
	}
	return out
}
