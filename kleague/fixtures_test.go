package kleague

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fixtureMatch struct {
	day                int
	league, gameID     string
	home, away         string
	clock, stadium, tv string
	score              string
}

func calendarHTML(year, month int, matches ...fixtureMatch) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"full-calendar\">")
	// trailing day of the previous month is greyed out
	b.WriteString(`<div class="full-calendar-title"><span class="taL pl5 gray">31</span>` +
		`<div class="full-calendar-data-k1"><span onmouseover="ddrivetip('K리그1','999','전북','서울','x','19:00','x','x')"><span class="flL pl5">전북 vs 서울</span><span class="flR pr5"></span></span></div></div>`)
	byDay := map[int][]fixtureMatch{}
	for _, m := range matches {
		byDay[m.day] = append(byDay[m.day], m)
	}
	for day := 1; day <= 31; day++ {
		fmt.Fprintf(&b, `<div class="full-calendar-title"><span class="taL pl5">%02d</span>`, day)
		for _, m := range byDay[day] {
			score := ""
			if m.score != "" {
				score = "(" + m.score + ")"
			}
			fmt.Fprintf(&b, `<div class="full-calendar-data-k1"><span onmouseover="ddrivetip('%s','%s','%s','%s','%04d.%02d.%02d','%s','%s','%s<BR/>')"><span class="flL pl5">%s vs %s</span><span class="flR pr5">%s</span></span></div>`,
				m.league, m.gameID, m.home, m.away, year, month, day, m.clock, m.stadium, m.tv, m.home, m.away, score)
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

const refereesHTML = `<html><body><div class="match-prame-box"><ul>
<li><span>a</span></li><li><span>b</span></li><li><span>c</span></li><li><span>d</span></li>
<li><span>심판</span><span title="부심 : 김부심&#13;부심 : 이부심&#13;대기심 : 박대기">홍주심 </span></li>
</ul></div></body></html>`

const emptyRefereesHTML = `<html><body><div class="match-prame-box"><ul><li></li></ul></div></body></html>`

const rankingHTML = `<html><head>
<script>var a = 1;</script>
<script>
var jsonResultData = [[{"Rank":1,"Team_Name":"울산","Game_Count":"4","Gain_Point":10},{"Rank":"2","Team_Name":"전북","Game_Count":4,"Gain_Point":9}]];
</script></head><body></body></html>`

const framesHTML = `<html><frameset><frame src="/top.do"><frame src="/login.do?redirect=1"></frameset></html>`

// fakeUpstream is a fake portal, data site and media site on one server.
type fakeUpstream struct {
	t        *testing.T
	mu       sync.Mutex
	hits     map[string]int
	months   map[string]string
	referees string
	ranking  string
	games    string
	liveData string
	videos   string
	cookie   string
	fail     bool
}

func newUpstream(t *testing.T) (*fakeUpstream, *httptest.Server) {
	u := &fakeUpstream{
		t:        t,
		hits:     map[string]int{},
		months:   map[string]string{},
		referees: refereesHTML,
		ranking:  rankingHTML,
		games:    `callback({"list":[{"cpGameId":"2024112","gameId":80012345},{"cpGameId":"2024113","gameId":"80012346"}]});`,
		liveData: `callback({"home":{"team":{"cpTeamId":"K05"}},"homePerson":[` +
			`{"backNumber":9,"positionName":"FW","name":"공격수","cpPersonId":"2001","personId":1},` +
			`{"backNumber":12,"positionName":null,"name":"교체","cpPersonId":"2002","personId":2},` +
			`{"backNumber":1,"positionName":"GK","name":"골키퍼","cpPersonId":"2003","personId":3},` +
			`{"backNumber":4,"positionName":"DF","name":"수비수","cpPersonId":"2004","personId":4}],` +
			`"awayPerson":[{"backNumber":7,"positionName":"MF","name":"원정","cpPersonId":"3001","personId":5}]})`,
		videos: `callback({"data":[{"title":"전북 vs 울산 하이라이트","_id":{"key":"v123"},"image":["http://img/1.jpg"]}]})`,
		cookie: "JSESSIONID=ABC123XYZ",
	}
	srv := httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *fakeUpstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	fail := u.fail
	u.mu.Unlock()
	if fail {
		http.Error(w, "maintenance", http.StatusInternalServerError)
		return
	}
	_ = r.ParseForm()
	switch r.URL.Path {
	case "/view/schedule/list.do":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, u.months[r.FormValue("selectYear")+"-"+r.FormValue("selectMonth")])
	case "/mainFrame.do":
		if r.Header.Get("Cookie") != u.cookie {
			http.Error(w, "login required", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, u.referees)
	case "/common/search/change.do":
		if !strings.Contains(r.FormValue("commonvostr"), `"leagueId":"2"`) {
			http.Error(w, "bad league", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, u.ranking)
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, framesHTML)
	case "/login.do":
		w.Header().Add("Set-Cookie", u.cookie+"; Path=/; HttpOnly")
		http.Redirect(w, r, "/main.do", http.StatusFound)
	case "/proxy/hermes/api/game/list.json":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		fmt.Fprint(w, u.games)
	case "/proxy/hermes/api/game/get.json":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		fmt.Fprint(w, u.liveData)
	case "/proxy/api/mc2/clusters/more.json":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		fmt.Fprint(w, u.videos)
	default:
		http.NotFound(w, r)
	}
}
