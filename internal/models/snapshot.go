package models

import "time"

// Snapshot is the observable output of one fetch cycle: the tournament name,
// the full reconciled game list and the derived standings. It is rebuilt on
// every cycle and never persisted as a whole.
type Snapshot struct {
	TournamentID   int       `json:"tournament_id"`
	Round          int       `json:"round"`
	TournamentName string    `json:"tournament_name"`
	Games          []Game    `json:"games"`
	Players        []Player  `json:"players"`
	FetchedAt      time.Time `json:"fetched_at"`
}
