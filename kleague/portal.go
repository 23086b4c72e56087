package kleague

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

const (
	DefaultPortalURL = "http://portal.kleague.com"
	DefaultDataURL   = "http://data.kleague.com"
)

// portalLeagueIDs maps league numbers to the portal's table ids.
var portalLeagueIDs = map[int]string{
	1: "2",
	2: "3",
}

// Portal scrapes the league portal.
type Portal struct {
	client  *Client
	baseURL string
	dataURL string
	loc     *time.Location
}

// NewPortal returns a Portal. Empty URLs fall back to the public portal and
// kickoff times are read in loc.
func NewPortal(client *Client, baseURL, dataURL string, loc *time.Location) *Portal {
	if baseURL == "" {
		baseURL = DefaultPortalURL
	}
	if dataURL == "" {
		dataURL = DefaultDataURL
	}
	return &Portal{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		dataURL: strings.TrimRight(dataURL, "/"),
		loc:     loc,
	}
}

// DataHost is the host the session cookie belongs to.
func (p *Portal) DataHost() string {
	u, err := url.Parse(p.dataURL)
	if err != nil || u.Host == "" {
		return p.dataURL
	}
	return u.Host
}

// Schedule returns every fixture listed for the month containing t.
func (p *Portal) Schedule(ctx context.Context, t time.Time) ([]Match, error) {
	t = t.In(p.loc)
	resp, err := p.client.do(ctx, request{
		endpoint: "portal.schedule",
		method:   http.MethodPost,
		url:      p.baseURL + "/view/schedule/list.do",
		form: url.Values{
			"selectYear":  {strconv.Itoa(t.Year())},
			"selectMonth": {fmt.Sprintf("%02d", int(t.Month()))},
		},
	})
	if err != nil {
		return nil, err
	}
	matches, err := parseSchedule(resp.body, t.Year(), t.Month(), p.loc)
	return matches, upstream(err, "parse schedule %d-%02d", t.Year(), int(t.Month()))
}

var scoreRe = regexp.MustCompile(`\((\d+):(\d+)\)`)

func parseSchedule(body []byte, year int, month time.Month, loc *time.Location) ([]Match, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var matches []Match
	doc.Find("div.full-calendar-title").Each(func(_ int, cell *goquery.Selection) {
		daySpan := cell.Find("span.taL.pl5").First()
		if daySpan.Length() == 0 || daySpan.HasClass("gray") {
			return
		}
		day, err := strconv.Atoi(strings.TrimSpace(daySpan.Text()))
		if err != nil {
			return
		}
		cell.Find("div.full-calendar-data-k1, div.full-calendar-data-k2, div.full-calendar-data-k5").Each(func(_ int, data *goquery.Selection) {
			label := data.Find("span.flL.pl5").First()
			if label.Length() == 0 {
				return
			}
			tip, ok := data.Find("span").First().Attr("onmouseover")
			if !ok {
				return
			}
			args := tipArgs(tip)
			if len(args) < 8 {
				return
			}
			m := Match{
				League:       args[0],
				GameID:       args[1],
				Home:         args[2],
				Away:         args[3],
				Date:         args[4],
				Time:         args[5],
				Stadium:      args[6],
				Broadcasting: strings.ReplaceAll(args[7], "<BR/>", ""),
				Label:        strings.TrimSpace(label.Text()),
				KickoffAt:    kickoff(year, month, day, args[5], loc),
			}
			if sm := scoreRe.FindStringSubmatch(strings.TrimSpace(data.Find("span.flR.pr5").First().Text())); sm != nil {
				m.Score = sm[1] + ":" + sm[2]
			}
			matches = append(matches, m)
		})
	})
	return matches, nil
}

// tipArgs splits the arguments of a ddrivetip(...) handler. Quoted and bare
// arguments are both accepted.
func tipArgs(js string) []string {
	open := strings.Index(js, "(")
	closing := strings.LastIndex(js, ")")
	if open < 0 || closing <= open {
		return nil
	}
	src := js[open+1 : closing]
	var args []string
	var cur strings.Builder
	var quote rune
	for _, r := range src {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(args, strings.TrimSpace(cur.String()))
}

func kickoff(year int, month time.Month, day int, clock string, loc *time.Location) time.Time {
	hour, minute := 0, 0
	if hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":"); ok {
		if h, err := strconv.Atoi(hh); err == nil {
			hour = h
		}
		if m, err := strconv.Atoi(mm); err == nil {
			minute = m
		}
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

// Session opens a portal session and returns its cookie ("JSESSIONID=...").
func (p *Portal) Session(ctx context.Context) (string, error) {
	resp, err := p.client.do(ctx, request{
		endpoint: "portal.frames",
		method:   http.MethodGet,
		url:      p.dataURL + "/",
	})
	if err != nil {
		return "", err
	}
	loginURL, err := parseLoginFrame(resp.body, p.dataURL)
	if err != nil {
		return "", upstream(err, "parse frames")
	}
	resp, err = p.client.do(ctx, request{
		endpoint:   "portal.session",
		method:     http.MethodGet,
		url:        loginURL,
		noRedirect: true,
	})
	if err != nil {
		return "", err
	}
	cookie, ok := sessionCookie(resp.header.Values("Set-Cookie"))
	if !ok {
		return "", upstream(errors.New("no JSESSIONID cookie"), "open session at %s", loginURL)
	}
	return cookie, nil
}

func parseLoginFrame(body []byte, base string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	frames := doc.Find("frame")
	if frames.Length() < 2 {
		return "", errors.Newf("expected at least 2 frames, got %d", frames.Length())
	}
	src, ok := frames.Eq(1).Attr("src")
	if !ok || src == "" {
		return "", errors.New("login frame has no src")
	}
	baseURL, err := url.Parse(base + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

var sessionRe = regexp.MustCompile(`JSESSIONID=([A-Za-z0-9._-]+)`)

func sessionCookie(setCookies []string) (string, bool) {
	for _, c := range setCookies {
		if m := sessionRe.FindStringSubmatch(c); m != nil {
			return "JSESSIONID=" + m[1], true
		}
	}
	return "", false
}

// Referees returns the referee text of a game, or "" when the portal has not
// published it yet.
func (p *Portal) Referees(ctx context.Context, session string, year int, gameID string) (string, error) {
	header := http.Header{}
	if session != "" {
		header.Set("Cookie", session)
	}
	resp, err := p.client.do(ctx, request{
		endpoint: "portal.referees",
		method:   http.MethodPost,
		url:      p.baseURL + "/mainFrame.do",
		form: url.Values{
			"selectedMenuCd": {"0301"},
			"mainMeetYear":   {strconv.Itoa(year)},
			"mainGameId":     {gameID},
		},
		header: header,
	})
	if err != nil {
		return "", err
	}
	text, err := parseReferees(resp.body)
	return text, upstream(err, "parse referees %d-%s", year, gameID)
}

func parseReferees(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	items := doc.Find("div.match-prame-box li")
	if items.Length() < 5 {
		return "", nil
	}
	span := items.Eq(4).Find("span").Eq(1)
	main := strings.TrimSpace(span.Text())
	if main == "" {
		return "", nil
	}
	lines := []string{"주심 : " + main}
	title, _ := span.Attr("title")
	for _, l := range strings.FieldsFunc(title, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n"), nil
}

type rankingQuery struct {
	MenuVo struct {
		MenuCd  string `json:"menuCd"`
		URIPath string `json:"uriPath"`
		ChartYn string `json:"chartYn"`
	} `json:"menuVo"`
	SearchVo struct {
		SearchDate     string `json:"searchDate"`
		SelectMeetYear string `json:"selectMeetYear"`
	} `json:"searchVo"`
	MenuCodeVo struct {
		MenuCd   string `json:"menuCd"`
		LeagueID string `json:"leagueId"`
		WorkCode string `json:"workCode"`
	} `json:"menuCodeVo"`
}

// Ranking returns the league table as of day.
func (p *Portal) Ranking(ctx context.Context, league int, day time.Time) ([]RankingRow, error) {
	leagueID, ok := portalLeagueIDs[league]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLeague, "league %d", league)
	}
	day = day.In(p.loc)
	var q rankingQuery
	q.MenuVo.MenuCd = "0041"
	q.MenuVo.URIPath = "data/offi/"
	q.MenuVo.ChartYn = "N"
	q.SearchVo.SearchDate = day.Format("2006/01/02")
	q.SearchVo.SelectMeetYear = strconv.Itoa(day.Year())
	q.MenuCodeVo.MenuCd = "0041"
	q.MenuCodeVo.LeagueID = leagueID
	q.MenuCodeVo.WorkCode = "S"
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, errors.Wrap(err, "encode ranking query")
	}
	resp, err := p.client.do(ctx, request{
		endpoint: "portal.ranking",
		method:   http.MethodPost,
		url:      p.baseURL + "/common/search/change.do",
		form:     url.Values{"commonvostr": {string(payload)}},
	})
	if err != nil {
		return nil, err
	}
	rows, err := parseRanking(resp.body)
	return rows, upstream(err, "parse ranking league %d", league)
}

var rankingDataRe = regexp.MustCompile(`var jsonResultData\s*=\s*(.*)`)

type rankingJSON struct {
	Rank      flexString `json:"Rank"`
	TeamName  flexString `json:"Team_Name"`
	GameCount flexString `json:"Game_Count"`
	GainPoint flexString `json:"Gain_Point"`
}

func parseRanking(body []byte) ([]RankingRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := rankingDataRe.FindStringSubmatch(s.Text()); m != nil {
			raw = strings.TrimSuffix(strings.TrimSpace(m[1]), ";")
			return false
		}
		return true
	})
	if raw == "" {
		return nil, errors.New("jsonResultData not found")
	}
	var tables [][]rankingJSON
	if err := json.Unmarshal([]byte(raw), &tables); err != nil {
		return nil, errors.Wrap(err, "decode jsonResultData")
	}
	if len(tables) == 0 {
		return []RankingRow{}, nil
	}
	rows := make([]RankingRow, 0, len(tables[0]))
	for _, r := range tables[0] {
		rows = append(rows, RankingRow{
			Rank:   r.Rank.Int(),
			Team:   string(r.TeamName),
			Games:  r.GameCount.Int(),
			Points: r.GainPoint.Int(),
		})
	}
	return rows, nil
}
