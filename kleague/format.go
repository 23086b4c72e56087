package kleague

import (
	"fmt"
	"strings"
)

// MatchString renders a fixture as the multi-line chat text.
func MatchString(m Match) string {
	score := ""
	if m.Score != "" {
		score = " (" + m.Score + ")"
	}
	return strings.Join([]string{
		m.League,
		m.Home + " vs " + m.Away + score,
		"TV중계: " + m.Broadcasting,
		m.Stadium,
		m.Date + " " + m.Time,
	}, "\n")
}

// PlayerString renders "<pos>. <NN>. <name>".
func PlayerString(p Player) string {
	return fmt.Sprintf("%s. %02d. %s", p.Position, p.Number, p.Name)
}

// LineupString renders the starting positions in blocks separated by a blank
// line. Reserves are left out.
func LineupString(players []Player) string {
	blocks := make([]string, 0, 4)
	for _, pos := range []Position{Goalkeeper, Defender, Midfielder, Forward} {
		var lines []string
		for _, p := range players {
			if p.Position == pos {
				lines = append(lines, PlayerString(p))
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RankingRowString renders "NN. <team> (경기수: g, 승점: p)".
func RankingRowString(r RankingRow) string {
	return fmt.Sprintf("%02d. %s (경기수: %d, 승점: %d)", r.Rank, r.Team, r.Games, r.Points)
}

var bandBounds = map[int][4]int{
	1: {0, 3, 10, 12},
	2: {0, 1, 3, 10},
}

// Bands splits a table into the three display bands of a league: the title
// or promotion places, the middle of the table and the relegation places.
func Bands(league int, rows []RankingRow) [3][]RankingRow {
	b, ok := bandBounds[league]
	if !ok {
		b = bandBounds[1]
	}
	clamp := func(i int) int { return min(i, len(rows)) }
	var out [3][]RankingRow
	for i := range out {
		out[i] = rows[clamp(b[i]):clamp(b[i+1])]
	}
	return out
}

// RankingString renders a table in its display bands.
func RankingString(league int, rows []RankingRow) string {
	bands := Bands(league, rows)
	parts := make([]string, 0, len(bands))
	for _, band := range bands {
		lines := make([]string, 0, len(band))
		for _, r := range band {
			lines = append(lines, RankingRowString(r))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
