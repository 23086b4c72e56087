package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
	"github.com/zntus/jbfc-kakao-chatbot/server"
)

type stubService struct {
	match   kleague.Match
	err     error
	rows    []kleague.RankingRow
	players []kleague.Player
	league  int
	gameID  string
}

func (s *stubService) TodayMatch(context.Context) (kleague.Match, error) { return s.match, s.err }
func (s *stubService) NextMatch(context.Context) (kleague.Match, error)  { return s.match, s.err }
func (s *stubService) LastMatch(context.Context) (kleague.Match, error)  { return s.match, s.err }

func (s *stubService) Lineup(_ context.Context, gameID string) ([]kleague.Player, error) {
	s.gameID = gameID
	return s.players, s.err
}

func (s *stubService) Referees(_ context.Context, gameID string) (string, error) {
	s.gameID = gameID
	return "주심: 김대용", s.err
}

func (s *stubService) Ranking(_ context.Context, league int) ([]kleague.RankingRow, error) {
	s.league = league
	return s.rows, s.err
}

func (s *stubService) Highlights(_ context.Context, gameID string) ([]kleague.Highlight, error) {
	s.gameID = gameID
	return []kleague.Highlight{{Title: "하이라이트 1", Video: "https://tv/1"}}, s.err
}

func TestRunQueryMatch(t *testing.T) {
	svc := &stubService{match: kleague.Match{
		League: "K리그1", GameID: "42", Home: "전북", Away: "포항", Label: "전북 vs 포항",
		KickoffAt: time.Date(2024, 3, 15, 19, 0, 0, 0, kleague.KST),
	}}
	var buf bytes.Buffer
	require.NoError(t, runQuery(context.Background(), &buf, svc, 1, []string{"today"}))
	assert.Contains(t, buf.String(), "전북 vs 포항")
	assert.Contains(t, buf.String(), "game_id 42")
}

func TestRunQueryAbsent(t *testing.T) {
	var buf bytes.Buffer
	svc := &stubService{err: errors.Wrap(kleague.ErrNoMatch, "none")}
	require.NoError(t, runQuery(context.Background(), &buf, svc, 1, []string{"last"}))
	assert.Contains(t, buf.String(), server.MsgNoMatchLast)

	buf.Reset()
	svc = &stubService{err: kleague.ErrNoLineup}
	require.NoError(t, runQuery(context.Background(), &buf, svc, 1, []string{"lineup", "42"}))
	assert.Equal(t, "42", svc.gameID)
	assert.Contains(t, buf.String(), server.MsgNoLineup)
}

func TestRunQueryRanking(t *testing.T) {
	svc := &stubService{rows: []kleague.RankingRow{{Rank: 1, Team: "전북", Games: 3, Points: 9}}}
	var buf bytes.Buffer
	require.NoError(t, runQuery(context.Background(), &buf, svc, 1, []string{"ranking", "2"}))
	assert.Equal(t, 2, svc.league)
	assert.Contains(t, buf.String(), "전북")
	assert.Contains(t, buf.String(), "승점")

	err := runQuery(context.Background(), &buf, svc, 1, []string{"ranking", "one"})
	assert.ErrorIs(t, err, kleague.ErrUnknownLeague)
}

func TestRunQueryErrors(t *testing.T) {
	var buf bytes.Buffer
	upstream := errors.Mark(errors.New("timeout"), kleague.ErrUpstream)
	err := runQuery(context.Background(), &buf, &stubService{err: upstream}, 1, []string{"referees", "7"})
	assert.ErrorIs(t, err, kleague.ErrUpstream)

	err = runQuery(context.Background(), &buf, &stubService{}, 1, []string{"weather"})
	assert.Error(t, err)
}

func TestRunQueryHighlights(t *testing.T) {
	var buf bytes.Buffer
	svc := &stubService{}
	require.NoError(t, runQuery(context.Background(), &buf, svc, 1, []string{"highlights", "9"}))
	assert.Equal(t, "9", svc.gameID)
	assert.Contains(t, buf.String(), "https://tv/1")
}
