package kleague

import (
	"slices"
	"strings"
	"time"
)

// Match is one fixture as listed on the portal's monthly schedule.
type Match struct {
	League       string    `msgpack:"league" json:"league"`
	GameID       string    `msgpack:"game_id" json:"game_id"`
	Home         string    `msgpack:"home" json:"home"`
	Away         string    `msgpack:"away" json:"away"`
	Date         string    `msgpack:"date" json:"date"`
	Time         string    `msgpack:"time" json:"time"`
	Stadium      string    `msgpack:"stadium" json:"stadium"`
	Broadcasting string    `msgpack:"broadcasting" json:"broadcasting"`
	Score        string    `msgpack:"score,omitempty" json:"score,omitempty"`
	Label        string    `msgpack:"label" json:"label"`
	KickoffAt    time.Time `msgpack:"kickoff_at" json:"kickoff_at"`
}

// Kickoff returns the scheduled start of the match.
func (m Match) Kickoff() time.Time {
	return m.KickoffAt
}

// Involves reports whether club appears in the fixture.
func (m Match) Involves(club string) bool {
	if club == "" {
		return false
	}
	return strings.Contains(m.Label, club) || strings.Contains(m.Home, club) || strings.Contains(m.Away, club)
}

// Position is a player's lineup position as reported by the media API.
type Position string

const (
	Goalkeeper Position = "GK"
	Defender   Position = "DF"
	Midfielder Position = "MF"
	Forward    Position = "FW"
	Reserve    Position = "대기"
)

// Rank orders positions GK < DF < MF < FW < reserve < anything else.
func (p Position) Rank() int {
	switch p {
	case Goalkeeper:
		return 0
	case Defender:
		return 1
	case Midfielder:
		return 2
	case Forward:
		return 3
	case Reserve:
		return 4
	default:
		return 5
	}
}

// Player is a single lineup entry.
type Player struct {
	Number       int      `msgpack:"number" json:"number"`
	Position     Position `msgpack:"position" json:"position"`
	Name         string   `msgpack:"name" json:"name"`
	PlayerID     string   `msgpack:"player_id" json:"player_id"`
	Captain      bool     `msgpack:"captain" json:"captain"`
	Link         string   `msgpack:"link" json:"link"`
	ProfileImage string   `msgpack:"profile_image" json:"profile_image"`
}

// SortLineup orders players by position rank, keeping the feed order within
// a position.
func SortLineup(players []Player) {
	slices.SortStableFunc(players, func(a, b Player) int {
		return a.Position.Rank() - b.Position.Rank()
	})
}

// RankingRow is one line of a league table.
type RankingRow struct {
	Rank   int    `msgpack:"rank" json:"rank"`
	Team   string `msgpack:"team" json:"team"`
	Games  int    `msgpack:"games" json:"games"`
	Points int    `msgpack:"points" json:"points"`
}

// Highlight is a published video clip of a match.
type Highlight struct {
	Title string `msgpack:"title" json:"title"`
	Video string `msgpack:"video" json:"video"`
	Image string `msgpack:"image" json:"image"`
}
