package application

import (
	"sort"

	"chessmonitor/internal/models"
)

// Standings derives the ranked player list from a game set. Players are
// deduplicated by name across both slots of every game; the first encounter
// in page order keeps its rating and points. The page lists points *before*
// the round, so a later duplicate with different values is ignored rather
// than merged.
func Standings(games []models.Game) []models.Player {
	seen := make(map[string]struct{})
	var players []models.Player

	add := func(name, rating, points string) {
		if models.IsExempt(name) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		players = append(players, models.Player{
			Name:   name,
			Rating: models.ParseRating(rating),
			Points: models.ParsePoints(points),
		})
	}

	for _, g := range games {
		add(g.Player1Name, g.Player1Rating, g.Player1Points)
		add(g.Player2Name, g.Player2Rating, g.Player2Points)
	}

	sort.SliceStable(players, func(i, j int) bool {
		return comparePlayers(players[i], players[j])
	})
	return players
}

// comparePlayers orders by points descending, ties by rating descending.
func comparePlayers(a, b models.Player) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Rating > b.Rating
}
