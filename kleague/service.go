package kleague

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zntus/jbfc-kakao-chatbot/cache"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"github.com/zntus/jbfc-kakao-chatbot/search"
)

const (
	DefaultClubName   = "전북"
	DefaultTeamID     = "K05"
	DefaultLeague     = 1
	DefaultMaxWindows = 1
	// DefaultMediaIDTTL is how long a media game id mapping is kept.
	DefaultMediaIDTTL = 30 * 24 * time.Hour
)

// KST is the league's time zone, used when no location is configured.
var KST = time.FixedZone("KST", 9*60*60)

// Club identifies the club the bot answers for.
type Club struct {
	Name   string
	TeamID string
	League int
}

// Service answers the bot's questions through the cache.
type Service struct {
	exec       *cache.Executor
	portal     *Portal
	media      *MediaClient
	club       Club
	loc        *time.Location
	now        func() time.Time
	maxWindows int
	mediaIDTTL time.Duration
	logger     logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClub sets the club. Zero fields keep their defaults.
func WithClub(c Club) ServiceOption {
	return func(s *Service) {
		if c.Name != "" {
			s.club.Name = c.Name
		}
		if c.TeamID != "" {
			s.club.TeamID = c.TeamID
		}
		if c.League != 0 {
			s.club.League = c.League
		}
	}
}

// WithLocation sets the time zone days are counted in.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNow replaces time.Now, mostly for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithMaxWindows sets how many extra months next/last searches examine.
func WithMaxWindows(n int) ServiceOption {
	return func(s *Service) {
		if n >= 0 {
			s.maxWindows = n
		}
	}
}

// WithMediaIDTTL sets how long media game id mappings are cached.
func WithMediaIDTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.mediaIDTTL = d
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service reading through exec.
func NewService(exec *cache.Executor, portal *Portal, media *MediaClient, opts ...ServiceOption) *Service {
	s := &Service{
		exec:   exec,
		portal: portal,
		media:  media,
		club: Club{
			Name:   DefaultClubName,
			TeamID: DefaultTeamID,
			League: DefaultLeague,
		},
		loc:        KST,
		now:        time.Now,
		maxWindows: DefaultMaxWindows,
		mediaIDTTL: DefaultMediaIDTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewConsoleLogger(logger.LevelNone)
	}
	return s
}

// Club returns the configured club.
func (s *Service) Club() Club {
	return s.club
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// findMatch searches the schedule for the club's fixture. A fruitless
// search is a negative result and is not cached.
func (s *Service) findMatch(ctx context.Context, key cache.Key, dir search.Direction, ref time.Time, maxWindows int) (Match, error) {
	found, m, err := cache.Exec(ctx, s.exec, cache.Config{Key: key}, func(ctx context.Context) (Match, bool, error) {
		m, err := search.Find(ctx, search.Query[Match]{
			Direction:  dir,
			Reference:  ref,
			MaxWindows: maxWindows,
			Match:      func(m Match) bool { return m.Involves(s.club.Name) },
		}, s.portal.Schedule)
		if errors.Is(err, search.ErrNotFound) {
			s.logger.Debug("%s: %s", key, err)
			return Match{}, false, nil
		}
		return m, err == nil, err
	})
	if err != nil {
		return Match{}, err
	}
	if !found {
		return Match{}, ErrNoMatch
	}
	return m, nil
}

// TodayMatch returns the club's fixture today.
func (s *Service) TodayMatch(ctx context.Context) (Match, error) {
	today := s.today()
	return s.findMatch(ctx, TodayMatchKey(s.club.Name, today), search.Exact, today, 0)
}

// NextMatch returns the club's first fixture after today.
func (s *Service) NextMatch(ctx context.Context) (Match, error) {
	today := s.today()
	return s.findMatch(ctx, NextMatchKey(s.club.Name, today), search.Forward, endOfDay(today), s.maxWindows)
}

// LastMatch returns the club's last fixture before today.
func (s *Service) LastMatch(ctx context.Context) (Match, error) {
	today := s.today()
	return s.findMatch(ctx, LastMatchKey(s.club.Name, today), search.Backward, startOfDay(today), s.maxWindows)
}

// Lineup returns the club's lineup for a game of the current season.
func (s *Service) Lineup(ctx context.Context, gameID string) ([]Player, error) {
	if gameID == "" {
		return nil, ErrNoGameID
	}
	year := s.today().Year()
	found, players, err := cache.Exec(ctx, s.exec, cache.Config{Key: LineupKey(s.club.TeamID, year, gameID)},
		func(ctx context.Context) ([]Player, bool, error) {
			mediaID, err := s.mediaGameID(ctx, year, gameID)
			if err != nil {
				return nil, false, err
			}
			players, err := s.media.Lineup(ctx, mediaID, s.club.TeamID, year, s.portal.baseURL)
			return players, len(players) > 0, err
		})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoLineup
	}
	return players, nil
}

// Referees returns the referee text for a game of the current season.
func (s *Service) Referees(ctx context.Context, gameID string) (string, error) {
	if gameID == "" {
		return "", ErrNoGameID
	}
	year := s.today().Year()
	found, text, err := cache.Exec(ctx, s.exec, cache.Config{Key: RefereesKey(year, gameID)},
		func(ctx context.Context) (string, bool, error) {
			session, err := s.session(ctx)
			if err != nil {
				return "", false, err
			}
			text, err := s.portal.Referees(ctx, session, year, gameID)
			return text, text != "", err
		})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNoReferees
	}
	return text, nil
}

// Ranking returns today's table of a league.
func (s *Service) Ranking(ctx context.Context, league int) ([]RankingRow, error) {
	if _, ok := portalLeagueIDs[league]; !ok {
		return nil, errors.Wrapf(ErrUnknownLeague, "league %d", league)
	}
	today := s.today()
	_, rows, err := cache.Exec(ctx, s.exec, cache.Config{Key: RankingKey(league, today)},
		func(ctx context.Context) ([]RankingRow, bool, error) {
			rows, err := s.portal.Ranking(ctx, league, today)
			return rows, len(rows) > 0, err
		})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Highlights returns the highlight videos of a game of the current season.
func (s *Service) Highlights(ctx context.Context, gameID string) ([]Highlight, error) {
	if gameID == "" {
		return nil, ErrNoGameID
	}
	year := s.today().Year()
	found, videos, err := cache.Exec(ctx, s.exec, cache.Config{Key: HighlightsKey(s.club.League, gameID)},
		func(ctx context.Context) ([]Highlight, bool, error) {
			mediaID, err := s.mediaGameID(ctx, year, gameID)
			if err != nil {
				return nil, false, err
			}
			videos, err := s.media.Highlights(ctx, mediaID)
			return videos, len(videos) > 0, err
		})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoHighlight
	}
	return videos, nil
}

func (s *Service) session(ctx context.Context) (string, error) {
	_, cookie, err := cache.Exec(ctx, s.exec, cache.Config{Key: SessionKey(s.portal.DataHost())},
		func(ctx context.Context) (string, bool, error) {
			cookie, err := s.portal.Session(ctx)
			return cookie, cookie != "", err
		})
	return cookie, err
}

func (s *Service) mediaGameID(ctx context.Context, year int, gameID string) (string, error) {
	found, id, err := cache.Exec(ctx, s.exec, cache.Config{Key: MediaGameIDKey(gameID), Expires: cache.Within(s.mediaIDTTL)},
		func(ctx context.Context) (string, bool, error) {
			id, err := s.media.GameID(ctx, year, s.club.League, gameID)
			return id, id != "", err
		})
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Wrapf(ErrNoGameID, "game %s not listed", gameID)
	}
	return id, nil
}
