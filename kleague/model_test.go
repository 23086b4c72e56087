package kleague

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zntus/jbfc-kakao-chatbot/cache"
)

func TestPositionOrder(t *testing.T) {
	order := []Position{Goalkeeper, Defender, Midfielder, Forward, Reserve, Position("CB")}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank(), "%s before %s", order[i-1], order[i])
	}
	assert.Equal(t, Position("CB").Rank(), Position("").Rank())
}

func TestSortLineupIsStable(t *testing.T) {
	players := []Player{
		{Name: "unknown", Position: "ST"},
		{Name: "sub1", Position: Reserve},
		{Name: "fw", Position: Forward},
		{Name: "df1", Position: Defender},
		{Name: "gk", Position: Goalkeeper},
		{Name: "df2", Position: Defender},
		{Name: "sub2", Position: Reserve},
	}
	SortLineup(players)
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"gk", "df1", "df2", "fw", "sub1", "sub2", "unknown"}, names)
}

func TestMatchInvolves(t *testing.T) {
	m := Match{Home: "전북", Away: "울산", Label: "전북 vs 울산"}
	assert.True(t, m.Involves("전북"))
	assert.True(t, m.Involves("울산"))
	assert.False(t, m.Involves("포항"))
	assert.False(t, m.Involves(""))
}

func TestKeys(t *testing.T) {
	day := time.Date(2024, 3, 15, 10, 0, 0, 0, KST)
	tests := []struct {
		key  cache.Key
		want string
	}{
		{TodayMatchKey("전북", day), "today-match-전북/20240315"},
		{NextMatchKey("전북", day), "next-match-전북/20240315"},
		{LastMatchKey("전북", day), "last-match-전북/20240315"},
		{LineupKey("K05", 2024, "123"), "lineup-K05/2024-123"},
		{RefereesKey(2024, "123"), "referees/2024-123"},
		{RankingKey(1, day), "league-1-ranking/20240315"},
		{HighlightsKey(1, "123"), "league-1-highlights/123"},
		{SessionKey("data.kleague.com"), "session/data.kleague.com"},
		{MediaGameIDKey("123"), "daumgameid/123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.String())
	}
}
