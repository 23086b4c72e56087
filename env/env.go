// Package env loads dotenv files and resolves the settings shared by every
// jbfc command: flags first, then JBFC_* variables, then defaults.
package env

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
)

const (
	// EnvLogFormat selects the log encoding: "console" (default) or "json".
	EnvLogFormat = "JBFC_LOG_FORMAT"
	// EnvFile names the dotenv file loaded at startup.
	EnvFile = "JBFC_ENV_FILE"
)

// Var is one KEY=value assignment from a dotenv file.
type Var struct {
	Key   string
	Value string
}

// Load reads a dotenv file and exports every variable that is not already
// set in the process environment. A missing file is not an error. It returns
// the variables it exported.
func Load(filename string) ([]Var, error) {
	buf, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	vars, err := parse(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filename)
	}
	var applied []Var
	for _, v := range vars {
		if _, ok := os.LookupEnv(v.Key); ok {
			continue
		}
		if err := os.Setenv(v.Key, v.Value); err != nil {
			return nil, errors.Wrapf(err, "set %s", v.Key)
		}
		applied = append(applied, v)
	}
	return applied, nil
}

// parse reads KEY=value lines. Blank lines and "#" comments are skipped, a
// leading "export " is dropped and one layer of matching quotes is removed.
// Values may reference earlier or later keys with ${KEY}, fall back with
// ${KEY:-default} and read the process environment with ${env:KEY}.
func parse(r io.Reader) ([]Var, error) {
	var vars []Var
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf("line %d: expected KEY=value", n)
		}
		vars = append(vars, Var{Key: key, Value: unquote(strings.TrimSpace(value))})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	known := make(map[string]string, len(vars))
	for _, v := range vars {
		known[v.Key] = v.Value
	}
	// the second pass settles references to keys defined further down
	for pass := 0; pass < 2; pass++ {
		for i := range vars {
			vars[i].Value = expand(vars[i].Value, known)
			known[vars[i].Key] = vars[i].Value
		}
	}
	return vars, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// expand resolves ${...} references in s. A reference that resolves to
// nothing and has no default is kept verbatim.
func expand(s string, known map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			break
		}
		end += start
		b.WriteString(s[:start])
		b.WriteString(resolve(s[start:end+1], s[start+2:end], known))
		s = s[end+1:]
	}
	b.WriteString(s)
	return b.String()
}

func resolve(ref, inner string, known map[string]string) string {
	name, fallback, _ := strings.Cut(inner, ":-")
	var val string
	if osName, ok := strings.CutPrefix(name, "env:"); ok {
		val = os.Getenv(osName)
	} else {
		val = known[name]
	}
	switch {
	case val != "":
		return val
	case fallback != "":
		return fallback
	default:
		return ref
	}
}

// FlagOrEnv returns the flag's value when set, else the variable's, else
// defaultValue.
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	if v, _ := cmd.Flags().GetString(flagName); v != "" {
		return v
	}
	if v, ok := os.LookupEnv(envName); ok {
		return v
	}
	return defaultValue
}

// LogLevel resolves --log-level, then JBFC_LOG_LEVEL, then info.
func LogLevel(cmd *cobra.Command) logger.LogLevel {
	level, _ := logger.ParseLevel(FlagOrEnv(cmd, "log-level", logger.EnvLogLevel, "info"))
	return level
}

// NewLogger builds the console or JSON logger selected by --log-format or
// JBFC_LOG_FORMAT at the LogLevel.
func NewLogger(cmd *cobra.Command) logger.Logger {
	level := LogLevel(cmd)
	if strings.EqualFold(FlagOrEnv(cmd, "log-format", EnvLogFormat, "console"), "json") {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}
