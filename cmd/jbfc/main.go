package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/zntus/jbfc-kakao-chatbot/config"
	"github.com/zntus/jbfc-kakao-chatbot/env"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jbfc",
		Short:         "K League club chatbot skill server",
		Version:       kleague.Version + " (" + kleague.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "path to a YAML config file (or "+config.EnvConfigFile+")")
	flags.String("env-file", "", "dotenv file to load (or "+env.EnvFile+", default .env)")
	flags.String("log-level", "", "trace, debug, info, warn, error or none")
	flags.String("log-format", "", "console or json")

	root.AddCommand(newServeCommand(), newQueryCommand(), newConfigCommand())
	return root
}

// loadConfig loads the dotenv file and the config, and makes the resolved log
// settings visible to env.NewLogger.
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	if _, err := env.Load(env.FlagOrEnv(cmd, "env-file", env.EnvFile, ".env")); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(env.FlagOrEnv(cmd, "config", config.EnvConfigFile, ""))
	if err != nil {
		return nil, nil, err
	}
	if err := exportLogSettings(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, env.NewLogger(cmd), nil
}

func exportLogSettings(cfg *config.Config) error {
	for _, kv := range [][2]string{
		{logger.EnvLogLevel, cfg.Log.Level},
		{env.EnvLogFormat, cfg.Log.Format},
	} {
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return errors.Wrapf(err, "set %s", kv[0])
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
