package models

// TournamentPage is the result of parsing one results page: the tournament
// display name, the pairings in page order and the players seen in them.
type TournamentPage struct {
	TournamentName string
	Games          []Game
	Players        []Player
}
