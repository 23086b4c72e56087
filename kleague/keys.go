package kleague

import (
	"strconv"
	"time"

	"github.com/zntus/jbfc-kakao-chatbot/cache"
)

const dayFormat = "20060102"

// TodayMatchKey keys the fixture of club on day.
func TodayMatchKey(club string, day time.Time) cache.Key {
	return cache.Key{Namespace: cache.Namespace("today-match-" + club), ID: day.Format(dayFormat)}
}

// NextMatchKey keys the first fixture of club after day.
func NextMatchKey(club string, day time.Time) cache.Key {
	return cache.Key{Namespace: cache.Namespace("next-match-" + club), ID: day.Format(dayFormat)}
}

// LastMatchKey keys the last fixture of club before day.
func LastMatchKey(club string, day time.Time) cache.Key {
	return cache.Key{Namespace: cache.Namespace("last-match-" + club), ID: day.Format(dayFormat)}
}

// LineupKey keys the lineup of teamID in a game.
func LineupKey(teamID string, year int, gameID string) cache.Key {
	return cache.Key{Namespace: cache.Namespace("lineup-" + teamID), ID: strconv.Itoa(year) + "-" + gameID}
}

// RefereesKey keys the referee list of a game.
func RefereesKey(year int, gameID string) cache.Key {
	return cache.Key{Namespace: "referees", ID: strconv.Itoa(year) + "-" + gameID}
}

// RankingKey keys the league table on day.
func RankingKey(league int, day time.Time) cache.Key {
	return cache.Key{Namespace: cache.Namespace("league-" + strconv.Itoa(league) + "-ranking"), ID: day.Format(dayFormat)}
}

// HighlightsKey keys the highlight videos of a game.
func HighlightsKey(league int, gameID string) cache.Key {
	return cache.Key{Namespace: cache.Namespace("league-" + strconv.Itoa(league) + "-highlights"), ID: gameID}
}

// SessionKey keys the portal session cookie for host.
func SessionKey(host string) cache.Key {
	return cache.Key{Namespace: "session", ID: host}
}

// MediaGameIDKey keys the media site's id for a portal game id.
func MediaGameIDKey(gameID string) cache.Key {
	return cache.Key{Namespace: "daumgameid", ID: gameID}
}
