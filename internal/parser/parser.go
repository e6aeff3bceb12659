package parser

import (
	"fmt"
	"strconv"
	"strings"

	"chessmonitor/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// resultRowCells is the number of columns a pairing row carries: table
// number, points/name/rating for white, the result, then name/rating/points
// for black.
const resultRowCells = 8

type Logger interface {
	Warn(format string, v ...interface{})
}

// PageParser extracts games and players from a raw results page. It performs
// no I/O and keeps no state between calls.
type PageParser struct {
	logger Logger
}

func New(logger Logger) *PageParser {
	return &PageParser{logger: logger}
}

// Parse turns the raw markup of a round's results page into a TournamentPage.
// Malformed rows are skipped and logged, never fatal; only unreadable markup
// fails the whole parse.
func (p *PageParser) Parse(markup string, tournamentID, round int) (*models.TournamentPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}

	page := &models.TournamentPage{
		TournamentName: extractTournamentName(doc),
	}

	playerIndex := make(map[string]int)

	p.selectResultRows(doc).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < resultRowCells {
			return
		}
		game, err := parseGameRow(cells, tournamentID, round)
		if err != nil {
			p.logger.Warn("skipping result row %d: %s", i, err.Error())
			return
		}
		page.Games = append(page.Games, *game)
		addPlayer(page, playerIndex, game.Player1Name, game.Player1Rating, game.Player1Points)
		addPlayer(page, playerIndex, game.Player2Name, game.Player2Rating, game.Player2Points)
	})

	return page, nil
}

// extractTournamentName reads the title row. The source crams the name and
// the venue into one cell separated by a line break; only the part before the
// break is the name.
func extractTournamentName(doc *goquery.Document) string {
	title := doc.Find("tr.papi_titre td").First()
	if title.Length() == 0 {
		return ""
	}
	inner, err := title.Html()
	if err != nil {
		return ""
	}
	if i := strings.Index(inner, "<br"); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

// selectResultRows finds candidate pairing rows. The page stripes them with
// two alternating classes; when neither class is present it falls back to any
// row shaped like a result row.
func (p *PageParser) selectResultRows(doc *goquery.Document) *goquery.Selection {
	rows := doc.Find("tr.papi_liste_c, tr.papi_liste_f")
	if rows.Length() > 0 {
		return rows
	}
	return doc.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find("td").Length() >= resultRowCells
	})
}

func parseGameRow(cells *goquery.Selection, tournamentID, round int) (*models.Game, error) {
	tableText := strings.TrimSpace(cells.Eq(0).Text())
	tableNum, err := strconv.Atoi(tableText)
	if err != nil {
		return nil, fmt.Errorf("table number %q is not numeric", tableText)
	}

	// The raw result is kept untrimmed for display; logic uses the trimmed copy.
	rawResult := cells.Eq(4).Text()

	return &models.Game{
		ID:            models.GameID(tournamentID, round, tableNum),
		TournamentID:  tournamentID,
		Round:         round,
		TableNum:      tableNum,
		Player1Points: strings.TrimSpace(cells.Eq(1).Text()),
		Player1Name:   strings.TrimSpace(cells.Eq(2).Text()),
		Player1Rating: strings.TrimSpace(cells.Eq(3).Text()),
		Result:        strings.TrimSpace(rawResult),
		RawResult:     rawResult,
		Player2Name:   strings.TrimSpace(cells.Eq(5).Text()),
		Player2Rating: strings.TrimSpace(cells.Eq(6).Text()),
		Player2Points: strings.TrimSpace(cells.Eq(7).Text()),
	}, nil
}

// addPlayer folds one player slot into the page's player set. Later rows for
// the same name win; a page is expected to list each player once anyway.
func addPlayer(page *models.TournamentPage, index map[string]int, name, rating, points string) {
	if models.IsExempt(name) {
		return
	}
	player := models.Player{
		Name:   name,
		Rating: models.ParseRating(rating),
		Points: models.ParsePoints(points),
	}
	if i, ok := index[name]; ok {
		page.Players[i] = player
		return
	}
	index[name] = len(page.Players)
	page.Players = append(page.Players, player)
}
