package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
)

func parseString(t *testing.T, s string) map[string]string {
	t.Helper()
	vars, err := parse(strings.NewReader(s))
	require.NoError(t, err)
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v.Key] = v.Value
	}
	return out
}

func TestParse(t *testing.T) {
	got := parseString(t, `
# cache
JBFC_CACHE_BACKEND=redis
JBFC_CLUB_NAME="전북"
JBFC_CLUB_TEAM_ID='K05'
export JBFC_HTTP_ADDR = ':8080'
JBFC_UPSTREAM_USER_AGENT=jbfc bot/1.0
JBFC_CACHE_PREFIX=
JBFC_MIXED="it's'
`)
	assert.Equal(t, map[string]string{
		"JBFC_CACHE_BACKEND":       "redis",
		"JBFC_CLUB_NAME":           "전북",
		"JBFC_CLUB_TEAM_ID":        "K05",
		"JBFC_HTTP_ADDR":           ":8080",
		"JBFC_UPSTREAM_USER_AGENT": "jbfc bot/1.0",
		"JBFC_CACHE_PREFIX":        "",
		"JBFC_MIXED":               `"it's'`,
	}, got)
}

func TestParseKeepsOrder(t *testing.T) {
	vars, err := parse(strings.NewReader("B=2\nA=1\n"))
	require.NoError(t, err)
	assert.Equal(t, []Var{{Key: "B", Value: "2"}, {Key: "A", Value: "1"}}, vars)
}

func TestParseRejectsMalformedLines(t *testing.T) {
	_, err := parse(strings.NewReader("A=1\nNOVALUE\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = parse(strings.NewReader("=orphan\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestParseExpandsReferences(t *testing.T) {
	t.Setenv("JBFC_TEST_HOST", "cache.internal")
	got := parseString(t, `REDIS_HOST=${env:JBFC_TEST_HOST}
REDIS_PORT=${PORT:-6379}
JBFC_CACHE_REDIS_URL=redis://${REDIS_HOST}:${REDIS_PORT}/0
EARLY=${LATE_URL}
LATE_URL=http://${REDIS_HOST}
MISSING=${NOPE}
UNSET_OS=${env:JBFC_TEST_UNSET}
`)
	assert.Equal(t, "cache.internal", got["REDIS_HOST"])
	assert.Equal(t, "6379", got["REDIS_PORT"])
	assert.Equal(t, "redis://cache.internal:6379/0", got["JBFC_CACHE_REDIS_URL"])
	assert.Equal(t, "http://cache.internal", got["EARLY"])
	assert.Equal(t, "${NOPE}", got["MISSING"])
	assert.Equal(t, "${env:JBFC_TEST_UNSET}", got["UNSET_OS"])
}

func TestExpandMalformed(t *testing.T) {
	assert.Equal(t, "${OPEN", expand("${OPEN", nil))
	assert.Equal(t, "a${}b", expand("a${}b", nil))
	assert.Equal(t, "$PLAIN and pa$$word", expand("$PLAIN and pa$$word", nil))
}

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("JBFC_TEST_A=from-file\nJBFC_TEST_B=from-file\n"), 0644))
	t.Setenv("JBFC_TEST_A", "from-env")
	os.Unsetenv("JBFC_TEST_B")
	t.Cleanup(func() { os.Unsetenv("JBFC_TEST_B") })

	applied, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, []Var{{Key: "JBFC_TEST_B", Value: "from-file"}}, applied)
	assert.Equal(t, "from-env", os.Getenv("JBFC_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("JBFC_TEST_B"))
}

func TestLoadMissingFile(t *testing.T) {
	applied, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestLoadMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("JBFC_CLUB_NAME\n"), 0644))
	_, err := Load(file)
	assert.ErrorContains(t, err, file)
}

func newCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "jbfc"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-format", "", "")
	cmd.Flags().String("config", "", "")
	return cmd
}

func TestFlagOrEnv(t *testing.T) {
	cmd := newCommand(t)
	t.Setenv("JBFC_CONFIG", "/etc/jbfc/env.yaml")
	assert.Equal(t, "/etc/jbfc/env.yaml", FlagOrEnv(cmd, "config", "JBFC_CONFIG", "jbfc.yaml"))

	require.NoError(t, cmd.Flags().Set("config", "/etc/jbfc/flag.yaml"))
	assert.Equal(t, "/etc/jbfc/flag.yaml", FlagOrEnv(cmd, "config", "JBFC_CONFIG", "jbfc.yaml"))

	os.Unsetenv("JBFC_CONFIG")
	require.NoError(t, cmd.Flags().Set("config", ""))
	assert.Equal(t, "jbfc.yaml", FlagOrEnv(cmd, "config", "JBFC_CONFIG", "jbfc.yaml"))
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		expected logger.LogLevel
	}{
		{"flag", "debug", "", logger.LevelDebug},
		{"env", "", "WARN", logger.LevelWarn},
		{"warning alias", "", "warning", logger.LevelWarn},
		{"flag wins over env", "error", "debug", logger.LevelError},
		{"unknown falls back to info", "loud", "", logger.LevelInfo},
		{"default", "", "", logger.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCommand(t)
			t.Setenv(logger.EnvLogLevel, tt.env)
			if tt.env == "" {
				os.Unsetenv(logger.EnvLogLevel)
			}
			require.NoError(t, cmd.Flags().Set("log-level", tt.flag))
			assert.Equal(t, tt.expected, LogLevel(cmd))
		})
	}
}

func TestNewLoggerFormat(t *testing.T) {
	cmd := newCommand(t)
	t.Setenv(EnvLogFormat, "json")
	assert.NotNil(t, NewLogger(cmd))

	require.NoError(t, cmd.Flags().Set("log-format", "console"))
	assert.NotNil(t, NewLogger(cmd))
}
