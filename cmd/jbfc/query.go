package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
	"github.com/zntus/jbfc-kakao-chatbot/server"
	"github.com/zntus/jbfc-kakao-chatbot/tui"
)

func newQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <today|next|last|ranking [league]|lineup <game>|referees <game>|highlights <game>>",
		Short: "Answer one question from the terminal, through the configured cache",
		Args:  cobra.RangeArgs(1, 2),
		ValidArgs: []string{
			"today", "next", "last", "ranking", "lineup", "referees", "highlights",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.ShowSpinner(ctx, "K리그 정보를 가져오는 중...", func(ctx context.Context) error {
				return runQuery(ctx, cmd.OutOrStdout(), a.service, cfg.Club.League, args)
			})
		},
	}
	return cmd
}

// absent maps domain "nothing there" errors to the chat replies. ok is false
// for anything else.
func absent(err error, noMatch string) (msg string, ok bool) {
	switch {
	case errors.Is(err, kleague.ErrNoGameID):
		return server.MsgNoGameID, true
	case errors.Is(err, kleague.ErrNoLineup):
		return server.MsgNoLineup, true
	case errors.Is(err, kleague.ErrNoReferees):
		return server.MsgNoReferees, true
	case errors.Is(err, kleague.ErrNoHighlight):
		return server.MsgNoHighlight, true
	case errors.Is(err, kleague.ErrNoMatch):
		return noMatch, true
	}
	return "", false
}

func runQuery(ctx context.Context, w io.Writer, svc server.Service, defaultLeague int, args []string) error {
	what := args[0]
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}
	var err error
	var noMatch string
	switch what {
	case "today", "next", "last":
		var m kleague.Match
		switch what {
		case "today":
			noMatch = server.MsgNoMatchToday
			m, err = svc.TodayMatch(ctx)
		case "next":
			noMatch = server.MsgNoMatchNext
			m, err = svc.NextMatch(ctx)
		default:
			noMatch = server.MsgNoMatchLast
			m, err = svc.LastMatch(ctx)
		}
		if err == nil {
			fmt.Fprintln(w, tui.Title(m.Label))
			fmt.Fprintln(w, kleague.MatchString(m))
			fmt.Fprintln(w, tui.Muted("game_id "+m.GameID))
		}
	case "ranking":
		league := defaultLeague
		if arg != "" {
			if league, err = strconv.Atoi(arg); err != nil {
				return errors.Wrapf(kleague.ErrUnknownLeague, "league %q", arg)
			}
		}
		var rows []kleague.RankingRow
		if rows, err = svc.Ranking(ctx, league); err == nil {
			fmt.Fprintln(w, tui.Title(fmt.Sprintf("K리그%d 순위", league)))
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{strconv.Itoa(r.Rank), r.Team, strconv.Itoa(r.Games), strconv.Itoa(r.Points)})
			}
			tui.PrintTable(w, []string{"순위", "팀", "경기", "승점"}, table)
		}
	case "lineup":
		var players []kleague.Player
		if players, err = svc.Lineup(ctx, arg); err == nil {
			fmt.Fprintln(w, tui.Title("라인업"))
			fmt.Fprintln(w, kleague.LineupString(players))
			table := make([][]string, 0, len(players))
			for _, p := range players {
				table = append(table, []string{string(p.Position), strconv.Itoa(p.Number), p.Name})
			}
			tui.PrintTable(w, []string{"포지션", "번호", "이름"}, table)
		}
	case "referees":
		var text string
		if text, err = svc.Referees(ctx, arg); err == nil {
			fmt.Fprintln(w, tui.Title("심판"))
			fmt.Fprintln(w, text)
		}
	case "highlights":
		var videos []kleague.Highlight
		if videos, err = svc.Highlights(ctx, arg); err == nil {
			fmt.Fprintln(w, tui.Title("하이라이트"))
			for _, v := range videos {
				fmt.Fprintf(w, "%s\n  %s\n", v.Title, tui.Link("%s", v.Video))
			}
		}
	default:
		return errors.Newf("unknown query %q", what)
	}
	if err != nil {
		if msg, ok := absent(err, noMatch); ok {
			fmt.Fprintln(w, tui.Warning(msg))
			return nil
		}
		return err
	}
	return nil
}
