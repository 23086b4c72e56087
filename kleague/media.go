package kleague

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	DefaultMediaURL = "https://media.daum.net"
	playerLinkURL   = "https://m.sports.media.daum.net/m/sports/player/kl/"
	videoURL        = "http://tv.kakao.com/v/"
)

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(string(f)))
	return n
}

// unwrapJSONP strips a "callback(...)" wrapper, if present.
func unwrapJSONP(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && (body[0] == '{' || body[0] == '[') {
		return body
	}
	open := bytes.IndexByte(body, '(')
	closing := bytes.LastIndexByte(body, ')')
	if open < 0 || closing <= open {
		return body
	}
	return body[open+1 : closing]
}

// MediaClient reads the sports media site's JSONP API.
type MediaClient struct {
	client  *Client
	baseURL string
}

// NewMediaClient returns a MediaClient. An empty baseURL falls back to the
// public site.
func NewMediaClient(client *Client, baseURL string) *MediaClient {
	if baseURL == "" {
		baseURL = DefaultMediaURL
	}
	return &MediaClient{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *MediaClient) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	params.Set("callback", "callback")
	u := m.baseURL + path + "?" + params.Encode()
	resp, err := m.client.do(ctx, request{endpoint: endpoint, method: http.MethodGet, url: u})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(unwrapJSONP(resp.body), out); err != nil {
		return upstream(err, "decode %s", endpoint)
	}
	return nil
}

// CPGameID is the media site's id for a portal game.
func CPGameID(year, league int, gameID string) string {
	return strconv.Itoa(year) + strconv.Itoa(league) + gameID
}

type gameListJSON struct {
	List []struct {
		CPGameID flexString `json:"cpGameId"`
		GameID   flexString `json:"gameId"`
	} `json:"list"`
}

// GameID returns the media site's game id for a portal game of the given
// season, or "" when the site does not list it.
func (m *MediaClient) GameID(ctx context.Context, year, league int, gameID string) (string, error) {
	y := strconv.Itoa(year)
	var out gameListJSON
	err := m.get(ctx, "media.games", "/proxy/hermes/api/game/list.json", url.Values{
		"leagueCode": {"KL,KL_RELEGATION"},
		"pageSize":   {"350"},
		"fromDate":   {y + "0301"},
		"toDate":     {y + "1231"},
	}, &out)
	if err != nil {
		return "", err
	}
	want := CPGameID(year, league, gameID)
	for _, g := range out.List {
		if string(g.CPGameID) == want {
			return string(g.GameID), nil
		}
	}
	return "", nil
}

type personJSON struct {
	BackNumber   flexString `json:"backNumber"`
	PositionName flexString `json:"positionName"`
	Name         flexString `json:"name"`
	CPPersonID   flexString `json:"cpPersonId"`
	PersonID     flexString `json:"personId"`
}

type liveDataJSON struct {
	Home struct {
		Team struct {
			CPTeamID flexString `json:"cpTeamId"`
		} `json:"team"`
	} `json:"home"`
	HomePerson []personJSON `json:"homePerson"`
	AwayPerson []personJSON `json:"awayPerson"`
}

// Lineup returns the sorted lineup of teamID in a media game. An empty slice
// means the lineup is not published yet. Profile images point at portalURL,
// DefaultPortalURL when empty.
func (m *MediaClient) Lineup(ctx context.Context, mediaGameID, teamID string, year int, portalURL string) ([]Player, error) {
	var out liveDataJSON
	err := m.get(ctx, "media.lineup", "/proxy/hermes/api/game/get.json", url.Values{
		"gameId": {mediaGameID},
		"detail": {"liveData"},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.HomePerson == nil || out.AwayPerson == nil {
		return []Player{}, nil
	}
	persons := out.AwayPerson
	if string(out.Home.Team.CPTeamID) == teamID {
		persons = out.HomePerson
	}
	portalURL = strings.TrimRight(portalURL, "/")
	if portalURL == "" {
		portalURL = DefaultPortalURL
	}
	players := make([]Player, 0, len(persons))
	for _, p := range persons {
		pos := Position(p.PositionName)
		if pos == "" {
			// the feed omits the position of substitutes
			pos = Reserve
		}
		players = append(players, Player{
			Number:       p.BackNumber.Int(),
			Position:     pos,
			Name:         string(p.Name),
			PlayerID:     string(p.CPPersonID),
			Link:         playerLinkURL + string(p.PersonID) + "/record",
			ProfileImage: portalURL + "/common/playerPhotoById.do?playerId=" + url.QueryEscape(string(p.CPPersonID)) + "&recYn=Y&searchYear=" + strconv.Itoa(year),
		})
	}
	SortLineup(players)
	return players, nil
}

type clustersJSON struct {
	Data []struct {
		Title flexString `json:"title"`
		ID    struct {
			Key flexString `json:"key"`
		} `json:"_id"`
		Image []string `json:"image"`
	} `json:"data"`
}

// Highlights returns the videos published for a media game.
func (m *MediaClient) Highlights(ctx context.Context, mediaGameID string) ([]Highlight, error) {
	var out clustersJSON
	err := m.get(ctx, "media.highlights", "/proxy/api/mc2/clusters/more.json", url.Values{
		"service":      {"sports"},
		"type":         {"game"},
		"contentsType": {"video"},
		"pageSize":     {"100"},
		"keyName":      {"orgId"},
		"orgId":        {mediaGameID},
	}, &out)
	if err != nil {
		return nil, err
	}
	videos := make([]Highlight, 0, len(out.Data))
	for _, d := range out.Data {
		if d.ID.Key == "" {
			return nil, upstream(errors.New("video without key"), "decode media.highlights")
		}
		h := Highlight{Title: string(d.Title), Video: videoURL + string(d.ID.Key)}
		if len(d.Image) > 0 {
			h.Image = d.Image[0]
		}
		videos = append(videos, h)
	}
	return videos, nil
}
