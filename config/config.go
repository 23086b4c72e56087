// Package config loads the chatbot's settings: built-in defaults, then an
// optional YAML file, then JBFC_* environment variables.
package config

import (
	"bytes"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	cstr "github.com/zntus/jbfc-kakao-chatbot/string"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// EnvConfigFile names the variable holding the config file path.
const EnvConfigFile = "JBFC_CONFIG"

// Duration is a time.Duration written in YAML as "90s", "12h" or "30d".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string {
	if d == 0 {
		return "0s"
	}
	return str2duration.String(time.Duration(d))
}

func parseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	v, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}
	return Duration(v), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

type HTTP struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

type Club struct {
	Name     string `yaml:"name"`
	TeamID   string `yaml:"team_id"`
	League   int    `yaml:"league"`
	TimeZone string `yaml:"time_zone"`
}

type DynamoDB struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

type Cache struct {
	Backend      string            `yaml:"backend"`
	DefaultTTL   Duration          `yaml:"default_ttl"`
	MediaIDTTL   Duration          `yaml:"media_id_ttl"`
	SingleFlight bool              `yaml:"single_flight"`
	Prefix       string            `yaml:"prefix,omitempty"`
	RedisURL     cstr.MaskedString `yaml:"redis_url,omitempty"`
	SQLitePath   string            `yaml:"sqlite_path,omitempty"`
	DynamoDB     DynamoDB          `yaml:"dynamodb"`
	PostgresDSN  cstr.MaskedString `yaml:"postgres_dsn,omitempty"`
	// L1TTL puts an in-memory store in front of a remote backend. Zero disables it.
	L1TTL Duration `yaml:"l1_ttl"`
}

type Upstream struct {
	PortalURL string   `yaml:"portal_url"`
	DataURL   string   `yaml:"data_url"`
	MediaURL  string   `yaml:"media_url"`
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent,omitempty"`
}

type Search struct {
	MaxWindows int `yaml:"max_windows"`
}

type Telemetry struct {
	// OTLPEndpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty"`
	ServiceName  string  `yaml:"service_name"`
	SampleRate   float64 `yaml:"sample_rate"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full set of settings for the serve and query commands.
type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Club      Club      `yaml:"club"`
	Cache     Cache     `yaml:"cache"`
	Upstream  Upstream  `yaml:"upstream"`
	Search    Search    `yaml:"search"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
		},
		Club: Club{Name: "전북", TeamID: "K05", League: 1, TimeZone: "Asia/Seoul"},
		Cache: Cache{
			Backend:    BackendMemory,
			DefaultTTL: Duration(24 * time.Hour),
			MediaIDTTL: Duration(30 * 24 * time.Hour),
			SQLitePath: "jbfc-cache.db",
			DynamoDB:   DynamoDB{Table: "JBFCCache", Region: "ap-northeast-2"},
		},
		Upstream: Upstream{
			PortalURL: "http://portal.kleague.com",
			DataURL:   "http://data.kleague.com",
			MediaURL:  "https://media.daum.net",
			Timeout:   Duration(10 * time.Second),
		},
		Search:    Search{MaxWindows: 1},
		Telemetry: Telemetry{ServiceName: "jbfc", SampleRate: 1},
		Log:       Log{Level: "info", Format: "console"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := cfg.decode(buf); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(buf []byte) error {
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	return dec.Decode(c)
}

type override struct {
	name string
	set  func(string) error
}

func str(dst *string) func(string) error {
	return func(v string) error { *dst = v; return nil }
}

func masked(dst *cstr.MaskedString) func(string) error {
	return func(v string) error { *dst = cstr.MaskedString(v); return nil }
}

func integer(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func boolean(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func float(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func duration(dst *Duration) func(string) error {
	return func(v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func (c *Config) overrides() []override {
	return []override{
		{"JBFC_HTTP_ADDR", str(&c.HTTP.Addr)},
		{"JBFC_HTTP_READ_TIMEOUT", duration(&c.HTTP.ReadTimeout)},
		{"JBFC_HTTP_WRITE_TIMEOUT", duration(&c.HTTP.WriteTimeout)},
		{"JBFC_CLUB_NAME", str(&c.Club.Name)},
		{"JBFC_CLUB_TEAM_ID", str(&c.Club.TeamID)},
		{"JBFC_CLUB_LEAGUE", integer(&c.Club.League)},
		{"JBFC_CLUB_TIME_ZONE", str(&c.Club.TimeZone)},
		{"JBFC_CACHE_BACKEND", str(&c.Cache.Backend)},
		{"JBFC_CACHE_DEFAULT_TTL", duration(&c.Cache.DefaultTTL)},
		{"JBFC_CACHE_MEDIA_ID_TTL", duration(&c.Cache.MediaIDTTL)},
		{"JBFC_CACHE_SINGLE_FLIGHT", boolean(&c.Cache.SingleFlight)},
		{"JBFC_CACHE_PREFIX", str(&c.Cache.Prefix)},
		{"JBFC_CACHE_REDIS_URL", masked(&c.Cache.RedisURL)},
		{"JBFC_CACHE_SQLITE_PATH", str(&c.Cache.SQLitePath)},
		{"JBFC_CACHE_DYNAMODB_TABLE", str(&c.Cache.DynamoDB.Table)},
		{"JBFC_CACHE_DYNAMODB_REGION", str(&c.Cache.DynamoDB.Region)},
		{"JBFC_CACHE_DYNAMODB_ENDPOINT", str(&c.Cache.DynamoDB.Endpoint)},
		{"JBFC_CACHE_POSTGRES_DSN", masked(&c.Cache.PostgresDSN)},
		{"JBFC_CACHE_L1_TTL", duration(&c.Cache.L1TTL)},
		{"JBFC_UPSTREAM_PORTAL_URL", str(&c.Upstream.PortalURL)},
		{"JBFC_UPSTREAM_DATA_URL", str(&c.Upstream.DataURL)},
		{"JBFC_UPSTREAM_MEDIA_URL", str(&c.Upstream.MediaURL)},
		{"JBFC_UPSTREAM_TIMEOUT", duration(&c.Upstream.Timeout)},
		{"JBFC_UPSTREAM_USER_AGENT", str(&c.Upstream.UserAgent)},
		{"JBFC_SEARCH_MAX_WINDOWS", integer(&c.Search.MaxWindows)},
		{"JBFC_TELEMETRY_OTLP_ENDPOINT", str(&c.Telemetry.OTLPEndpoint)},
		{"JBFC_TELEMETRY_SERVICE_NAME", str(&c.Telemetry.ServiceName)},
		{"JBFC_TELEMETRY_SAMPLE_RATE", float(&c.Telemetry.SampleRate)},
		{logger.EnvLogLevel, str(&c.Log.Level)},
		{"JBFC_LOG_FORMAT", str(&c.Log.Format)},
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range c.overrides() {
		v, ok := lookup(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.set(v); err != nil {
			return errors.Wrapf(err, "%s", o.name)
		}
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendDynamoDB:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis backend")
		}
	case BackendPostgres:
		if c.Cache.PostgresDSN == "" {
			return errors.New("cache.postgres_dsn is required for the postgres backend")
		}
	default:
		return errors.Newf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.DefaultTTL <= 0 {
		return errors.New("cache.default_ttl must be positive")
	}
	if c.Cache.MediaIDTTL <= 0 {
		return errors.New("cache.media_id_ttl must be positive")
	}
	if c.Cache.L1TTL < 0 {
		return errors.New("cache.l1_ttl must not be negative")
	}
	if c.Club.Name == "" || c.Club.TeamID == "" {
		return errors.New("club.name and club.team_id are required")
	}
	if c.Club.League != 1 && c.Club.League != 2 {
		return errors.Newf("club.league must be 1 or 2, got %d", c.Club.League)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Search.MaxWindows < 0 {
		return errors.New("search.max_windows must not be negative")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	if c.Telemetry.OTLPEndpoint != "" {
		u, err := url.Parse(c.Telemetry.OTLPEndpoint)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return errors.Newf("telemetry.otlp_endpoint must be an http(s) URL")
		}
	}
	if c.Telemetry.SampleRate <= 0 || c.Telemetry.SampleRate > 1 {
		return errors.Newf("telemetry.sample_rate must be in (0, 1], got %g", c.Telemetry.SampleRate)
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return errors.Newf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return errors.Newf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Location loads club.time_zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Club.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "club.time_zone %q", c.Club.TimeZone)
	}
	return loc, nil
}

// LogLevel returns the parsed log.level.
func (c *Config) LogLevel() logger.LogLevel {
	level, _ := logger.ParseLevel(c.Log.Level)
	return level
}

// YAML renders the effective configuration with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
