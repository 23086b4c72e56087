package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zntus/jbfc-kakao-chatbot/server"
	"github.com/zntus/jbfc-kakao-chatbot/tui"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chatbot skill endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log, true)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Options{
				Service: a.service,
				Health:  a.store,
				Metrics: a.metrics,
				Logger:  log,
			})
			tui.ShowBanner(os.Stdout, "jbfc "+cmd.Root().Version,
				fmt.Sprintf("club      %s (%s, K리그%d)\ncache     %s\nlistening %s",
					cfg.Club.Name, cfg.Club.TeamID, cfg.Club.League, cfg.Cache.Backend, cfg.HTTP.Addr))
			return srv.Run(ctx, cfg.HTTP.Addr, cfg.HTTP.ReadTimeout.Std(), cfg.HTTP.WriteTimeout.Std())
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides http.addr")
	return cmd
}
