package kleague

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchString(t *testing.T) {
	m := Match{League: "K리그1", Home: "전북", Away: "울산", Date: "2024.03.09", Time: "14:00", Stadium: "전주월드컵경기장", Broadcasting: "SKY SPORTS", Score: "2:1"}
	assert.Equal(t, "K리그1\n전북 vs 울산 (2:1)\nTV중계: SKY SPORTS\n전주월드컵경기장\n2024.03.09 14:00", MatchString(m))

	m.Score = ""
	assert.Equal(t, "K리그1\n전북 vs 울산\nTV중계: SKY SPORTS\n전주월드컵경기장\n2024.03.09 14:00", MatchString(m))
}

func TestPlayerString(t *testing.T) {
	assert.Equal(t, "GK. 01. 골키퍼", PlayerString(Player{Position: Goalkeeper, Number: 1, Name: "골키퍼"}))
	assert.Equal(t, "대기. 23. 교체", PlayerString(Player{Position: Reserve, Number: 23, Name: "교체"}))
}

func TestLineupString(t *testing.T) {
	players := []Player{
		{Position: Goalkeeper, Number: 1, Name: "a"},
		{Position: Defender, Number: 2, Name: "b"},
		{Position: Defender, Number: 3, Name: "c"},
		{Position: Midfielder, Number: 8, Name: "d"},
		{Position: Forward, Number: 9, Name: "e"},
		{Position: Reserve, Number: 30, Name: "f"},
	}
	assert.Equal(t, "GK. 01. a\n\nDF. 02. b\nDF. 03. c\n\nMF. 08. d\n\nFW. 09. e", LineupString(players))
}

func rows(n int) []RankingRow {
	out := make([]RankingRow, n)
	for i := range out {
		out[i] = RankingRow{Rank: i + 1, Team: fmt.Sprintf("T%d", i+1), Games: 10, Points: 30 - i}
	}
	return out
}

func TestBands(t *testing.T) {
	b := Bands(1, rows(12))
	assert.Len(t, b[0], 3)
	assert.Len(t, b[1], 7)
	assert.Len(t, b[2], 2)

	b = Bands(2, rows(10))
	assert.Len(t, b[0], 1)
	assert.Len(t, b[1], 2)
	assert.Len(t, b[2], 7)

	b = Bands(1, rows(5))
	assert.Len(t, b[0], 3)
	assert.Len(t, b[1], 2)
	assert.Empty(t, b[2])
}

func TestRankingString(t *testing.T) {
	assert.Equal(t, "01. T1 (경기수: 10, 승점: 30)\n\n02. T2 (경기수: 10, 승점: 29)\n03. T3 (경기수: 10, 승점: 28)\n\n",
		RankingString(2, rows(3)))
}
