package application

import (
	"testing"

	"chessmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairing(table int, p1, r1, pts1, p2, r2, pts2 string) models.Game {
	return models.Game{
		ID:       models.GameID(1, 1, table),
		TableNum: table,
		Player1Name: p1, Player1Rating: r1, Player1Points: pts1,
		Player2Name: p2, Player2Rating: r2, Player2Points: pts2,
	}
}

func TestStandingsRanking(t *testing.T) {
	games := []models.Game{
		pairing(1, "Alice", "2400", "6½", "Bob", "2500", "6"),
		pairing(2, "Carol", "2300", "6½", "Dave", "2200", "5"),
	}

	players := Standings(games)
	require.Len(t, players, 4)

	assert.Equal(t, "Alice", players[0].Name, "rating breaks the 6.5 tie")
	assert.Equal(t, "Carol", players[1].Name)
	assert.Equal(t, "Bob", players[2].Name)
	assert.Equal(t, "Dave", players[3].Name)
	assert.Equal(t, 6.5, players[0].Points)
	assert.Equal(t, 2400, players[0].Rating)
}

func TestStandingsDeterministic(t *testing.T) {
	games := []models.Game{
		pairing(1, "Alice", "2400", "5", "Bob", "2500", "4"),
		pairing(2, "Carol", "2300", "5", "Dave", "2200", "4"),
	}
	first := Standings(games)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Standings(games))
	}
}

func TestStandingsFirstEncounterWins(t *testing.T) {
	// The same name with inconsistent data across rows keeps its first values.
	games := []models.Game{
		pairing(1, "Alice", "2400", "6", "Bob", "2500", "6"),
		pairing(2, "Alice", "1000", "0", "Carol", "2300", "5"),
	}

	players := Standings(games)
	require.Len(t, players, 3)
	for _, p := range players {
		if p.Name == "Alice" {
			assert.Equal(t, 2400, p.Rating)
			assert.Equal(t, 6.0, p.Points)
		}
	}
}

func TestStandingsExcludesExempt(t *testing.T) {
	games := []models.Game{
		pairing(1, "Alice", "2400", "6", "EXEMPT", "", ""),
		pairing(2, "exempt", "", "", "Bob", "2500", "5"),
	}

	players := Standings(games)
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, "Bob", players[1].Name)
}

func TestStandingsEqualPointsAndRatingKeepEncounterOrder(t *testing.T) {
	games := []models.Game{
		pairing(1, "Alice", "2000", "3", "Bob", "2000", "3"),
	}
	players := Standings(games)
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, "Bob", players[1].Name)
}
