package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/zntus/jbfc-kakao-chatbot/kakao"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
)

// Replies shown to the user.
const (
	MsgNoMatchToday = "오늘 경기가 없습니다"
	MsgNoMatchNext  = "경기 일정이 없습니다"
	MsgNoMatchLast  = "지난 경기가 없습니다"
	MsgNoGameID     = "어떤 경기에 대해 물어 보셨는지 모르겠어요."
	MsgNoLineup     = "라인업이 공개되지 않았습니다."
	MsgNoReferees   = "심판이 공개되지 않았습니다."
	MsgNoHighlight  = "하이라이트가 아직 공개되지 않았습니다."
	MsgUnavailable  = "현재 챗봇이 정상 작동하지 않습니다. 잠시후 다시 시도해 주세요."
)

// Skill block ids the match card buttons jump to.
const (
	BlockLineup    = "5d7d48eeffa7480001c23697"
	BlockReferees  = "5d86b373ffa74800015154be"
	BlockHighlight = "5d94abbb92690d0001a42fe1"
)

const (
	gameContext  = "game"
	gameLifeSpan = 5
	gameIDParam  = "game_id"
)

func (s *Server) routes() {
	r := s.router
	r.Use(s.instrument)
	r.HandleFunc("/matches/today", s.handleToday).Name("today")
	r.HandleFunc("/matches/next", s.handleNext).Name("next")
	r.HandleFunc("/matches/last", s.handleLast).Name("last")
	r.HandleFunc("/lineup", s.handleLineup).Name("lineup")
	r.HandleFunc("/matches/{game_id}/lineup", s.handleLineup).Name("lineup")
	r.HandleFunc("/referees", s.handleReferees).Name("referees")
	r.HandleFunc("/matches/{game_id}/referees", s.handleReferees).Name("referees")
	r.HandleFunc("/ranking/{league}", s.handleRanking).Name("ranking")
	r.HandleFunc("/highlight", s.handleHighlight).Name("highlight")
	r.HandleFunc("/matches/{game_id}/highlight", s.handleHighlight).Name("highlight")
	r.HandleFunc("/healthz", s.handleHealth).Name("healthz")
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Name("metrics")
	}
}

// reply writes a skill envelope. Skill responses are always 200.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, resp *kakao.Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithContext(r.Context()).Error("encode response: %s", err)
	}
}

// fail renders err as the user-facing message. Absent results get their own
// text; anything else is logged and answered with MsgUnavailable.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, noMatch string) {
	var msg string
	switch {
	case errors.Is(err, kleague.ErrNoGameID):
		msg = MsgNoGameID
	case errors.Is(err, kleague.ErrNoLineup):
		msg = MsgNoLineup
	case errors.Is(err, kleague.ErrNoReferees):
		msg = MsgNoReferees
	case errors.Is(err, kleague.ErrNoHighlight):
		msg = MsgNoHighlight
	case noMatch != "" && errors.Is(err, kleague.ErrNoMatch):
		msg = noMatch
	default:
		s.logger.WithContext(r.Context()).Error("%s: %+v", r.URL.Path, err)
		msg = MsgUnavailable
	}
	s.reply(w, r, kakao.Text(msg))
}

// gameID takes the id from the path, then the action params, then the game
// context of the previous turn.
func (s *Server) gameID(r *http.Request) string {
	if id := mux.Vars(r)[gameIDParam]; id != "" {
		return id
	}
	if r.Body == nil {
		return ""
	}
	req, err := kakao.DecodeSkillRequest(r.Body)
	if err != nil {
		s.logger.WithContext(r.Context()).Warn("%s", err)
		return ""
	}
	if id := req.Param(gameIDParam); id != "" {
		return id
	}
	return req.ContextParam(gameContext, gameIDParam)
}

func matchCard(m kleague.Match) kakao.BasicCard {
	return kakao.BasicCard{
		Description: kleague.MatchString(m),
		Buttons: []kakao.Button{
			kakao.BlockButton("라인업", BlockLineup),
			kakao.BlockButton("심판", BlockReferees),
			kakao.BlockButton("하이라이트", BlockHighlight),
		},
	}
}

func gameOf(m kleague.Match) kakao.Context {
	return kakao.NewContext(gameContext, gameLifeSpan).With(gameIDParam, m.GameID)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.TodayMatch(r.Context())
	if err != nil {
		s.fail(w, r, err, MsgNoMatchToday)
		return
	}
	s.reply(w, r, kakao.NewResponse().AddOutput(matchCard(m)).AddContext(gameOf(m)))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.NextMatch(r.Context())
	if err != nil {
		s.fail(w, r, err, MsgNoMatchNext)
		return
	}
	s.reply(w, r, kakao.Text(kleague.MatchString(m)).AddContext(gameOf(m)))
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.LastMatch(r.Context())
	if err != nil {
		s.fail(w, r, err, MsgNoMatchLast)
		return
	}
	s.reply(w, r, kakao.NewResponse().AddOutput(matchCard(m)).AddContext(gameOf(m)))
}

func (s *Server) handleLineup(w http.ResponseWriter, r *http.Request) {
	players, err := s.service.Lineup(r.Context(), s.gameID(r))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	cards := make([]kakao.BasicCard, 0, len(players))
	for _, p := range players {
		cards = append(cards, kakao.BasicCard{
			Title:   kleague.PlayerString(p),
			Buttons: []kakao.Button{kakao.LinkButton("자세히 보기", p.Link)},
		}.WithImage(p.ProfileImage, true, 80, 101))
	}
	s.reply(w, r, kakao.Text(kleague.LineupString(players)).AddOutput(kakao.NewCarousel(cards...)))
}

func (s *Server) handleReferees(w http.ResponseWriter, r *http.Request) {
	referees, err := s.service.Referees(r.Context(), s.gameID(r))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.reply(w, r, kakao.Text(referees))
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	league, err := strconv.Atoi(mux.Vars(r)["league"])
	if err != nil {
		s.fail(w, r, errors.Mark(errors.Wrapf(err, "league %q", mux.Vars(r)["league"]), kleague.ErrUnknownLeague), "")
		return
	}
	rows, err := s.service.Ranking(r.Context(), league)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.reply(w, r, kakao.Text(kleague.RankingString(league, rows)))
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	videos, err := s.service.Highlights(r.Context(), s.gameID(r))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	cards := make([]kakao.BasicCard, 0, len(videos))
	for _, v := range videos {
		cards = append(cards, kakao.BasicCard{
			Title:   v.Title,
			Buttons: []kakao.Button{kakao.LinkButton("영상 보기", v.Video)},
		}.WithImage(v.Image, false, 0, 0))
	}
	s.reply(w, r, kakao.NewResponse().AddOutput(kakao.NewCarousel(cards...)))
}

type healthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := healthStatus{Status: "ok"}, http.StatusOK
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.WithContext(r.Context()).Warn("health check failed: %s", err)
			status, code = healthStatus{Status: "unavailable", Error: err.Error()}, http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
