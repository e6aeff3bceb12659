package models

import (
	"fmt"
	"strings"
	"time"
)

// UnplayedMarker is the literal the source page uses for a pairing that has
// not been played yet.
const UnplayedMarker = "-"

type Game struct {
	ID            string     `json:"id" db:"id"`
	TournamentID  int        `json:"tournament_id" db:"tournament_id"`
	Round         int        `json:"round" db:"round"`
	TableNum      int        `json:"table_num" db:"table_num"`
	Player1Name   string     `json:"player1_name" db:"player1_name"`
	Player1Rating string     `json:"player1_rating" db:"player1_rating"`
	Player1Points string     `json:"player1_points" db:"player1_points"`
	Result        string     `json:"result" db:"result"`
	RawResult     string     `json:"raw_result" db:"raw_result"`
	Player2Name   string     `json:"player2_name" db:"player2_name"`
	Player2Rating string     `json:"player2_rating" db:"player2_rating"`
	Player2Points string     `json:"player2_points" db:"player2_points"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	ObservedAt    time.Time  `json:"observed_at" db:"observed_at"`
}

// GameID builds the synthetic identifier for a pairing. It must stay stable
// across re-fetches of the same table.
func GameID(tournamentID, round, tableNum int) string {
	return fmt.Sprintf("%d_%d_%d", tournamentID, round, tableNum)
}

// IsFinished reports whether the game has a result. The unplayed marker and a
// blank cell both mean the game is still in progress.
func (g Game) IsFinished() bool {
	r := strings.TrimSpace(g.Result)
	return r != "" && r != UnplayedMarker
}

// Score maps the raw result text to the points earned by each player. Any
// non-blank text outside the known table still counts as a finished game but
// scores nothing.
func (g Game) Score() (float64, float64) {
	switch strings.ReplaceAll(g.Result, " ", "") {
	case "1-0":
		return 1, 0
	case "0-1":
		return 0, 1
	case "X-X", "½-½":
		return 0.5, 0.5
	case "1-0F", "+/-":
		return 1, 0
	case "0-1F", "-/+":
		return 0, 1
	default:
		return 0, 0
	}
}

// FormattedResult renders the pairing for notifications.
func (g Game) FormattedResult() string {
	return fmt.Sprintf("%s (%s) %s %s (%s)",
		g.Player1Name, g.Player1Rating, g.Result, g.Player2Name, g.Player2Rating)
}
