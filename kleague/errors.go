package kleague

import (
	"github.com/cockroachdb/errors"
	"github.com/zntus/jbfc-kakao-chatbot/search"
)

var (
	// ErrNoMatch means no fixture qualified for the request.
	ErrNoMatch = search.ErrNotFound
	// ErrNoLineup means the lineup has not been published yet.
	ErrNoLineup = errors.New("kleague: lineup not published")
	// ErrNoReferees means the referees have not been published yet.
	ErrNoReferees = errors.New("kleague: referees not published")
	// ErrNoHighlight means no highlight video exists yet.
	ErrNoHighlight = errors.New("kleague: no highlight")
	// ErrNoGameID means the request did not name a game, or the game is
	// unknown to the media site.
	ErrNoGameID = errors.New("kleague: no game id")
	// ErrUnknownLeague means the league number has no table on the portal.
	ErrUnknownLeague = errors.New("kleague: unknown league")
	// ErrUpstream marks every fetch or parse failure.
	ErrUpstream = errors.New("kleague: upstream failure")
)

func upstream(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrUpstream)
}
