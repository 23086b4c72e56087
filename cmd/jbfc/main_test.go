package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zntus/jbfc-kakao-chatbot/config"
	"github.com/zntus/jbfc-kakao-chatbot/env"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
)

func TestExportLogSettings(t *testing.T) {
	t.Setenv(logger.EnvLogLevel, "")
	t.Setenv(env.EnvLogFormat, "")

	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	require.NoError(t, exportLogSettings(cfg))
	assert.Equal(t, "debug", os.Getenv(logger.EnvLogLevel))
	assert.Equal(t, "json", os.Getenv(env.EnvLogFormat))
}

func TestExportLogSettingsError(t *testing.T) {
	t.Setenv(logger.EnvLogLevel, "info")
	t.Setenv(env.EnvLogFormat, "console")

	cfg := config.Default()
	cfg.Log.Level = "debug\x00"
	err := exportLogSettings(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), logger.EnvLogLevel)
	assert.Equal(t, "info", os.Getenv(logger.EnvLogLevel))
}
