// Package config loads wmp settings from ~/.config/wmp/config.toml and
// WMP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configDir  = ".config/wmp"
	configName = "config"
	configType = "toml"
	envPrefix  = "WMP"
)

const (
	KeySubscriptionsPath = "subscriptions.path"
	KeySecretsBackend    = "secrets.backend"
	KeySecretsDir        = "secrets.dir"
	KeySecretsPassPrefix = "secrets.pass_prefix"
	KeyStatePath         = "state.path"
	KeyUpstreamAuthURL   = "upstream.auth_url"
	KeyUpstreamAPIURL    = "upstream.api_url"
	KeyUpstreamClientID  = "upstream.client_id"
	KeyUpstreamAPIKey    = "upstream.api_key"
	KeyUpstreamTimeout   = "upstream.timeout"
	KeyScheduleDaily     = "schedule.daily"
	KeyScheduleFallback  = "schedule.fallback"
	KeyScheduleTimezone  = "schedule.timezone"
	KeyPollConcurrency   = "poll.concurrency"
	KeyPollRate          = "poll.rate_per_second"
	KeyCacheEnabled      = "session_cache.enabled"
	KeyCacheRedisURL     = "session_cache.redis_url"
	KeyCacheTTL          = "session_cache.ttl"
	KeyHTTPListen        = "http.listen"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
)

// Secret backends.
const (
	SecretsAuto = "auto"
	SecretsPass = "pass"
	SecretsFile = "file"
)

type Config struct {
	SubscriptionsPath string
	Secrets           SecretsConfig
	StatePath         string
	Upstream          UpstreamConfig
	Schedule          ScheduleConfig
	Poll              PollConfig
	SessionCache      SessionCacheConfig
	HTTPListen        string
	Log               LogConfig
}

type SecretsConfig struct {
	Backend    string
	Dir        string
	PassPrefix string
}

type UpstreamConfig struct {
	AuthURL  string
	APIURL   string
	ClientID string
	APIKey   string
	Timeout  time.Duration
}

type ScheduleConfig struct {
	Daily    string
	Fallback string
	Location *time.Location
}

type PollConfig struct {
	Concurrency   int
	RatePerSecond float64
}

type SessionCacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeySubscriptionsPath, filepath.Join(homeDir, configDir, "subscriptions.toml"))
	v.SetDefault(KeySecretsBackend, SecretsAuto)
	v.SetDefault(KeySecretsDir, filepath.Join(homeDir, configDir, "secrets"))
	v.SetDefault(KeySecretsPassPrefix, "wmp")
	v.SetDefault(KeyStatePath, filepath.Join(homeDir, ".local", "state", "wmp", "pickups.db"))
	v.SetDefault(KeyUpstreamAuthURL, "https://sso.wm.com")
	v.SetDefault(KeyUpstreamAPIURL, "https://rest-api.wm.com")
	v.SetDefault(KeyUpstreamClientID, "")
	v.SetDefault(KeyUpstreamAPIKey, "")
	v.SetDefault(KeyUpstreamTimeout, 30*time.Second)
	v.SetDefault(KeyScheduleDaily, "1 0 * * *")
	v.SetDefault(KeyScheduleFallback, "@every 12h")
	v.SetDefault(KeyScheduleTimezone, "Local")
	v.SetDefault(KeyPollConcurrency, 4)
	v.SetDefault(KeyPollRate, 2.0)
	v.SetDefault(KeyCacheEnabled, false)
	v.SetDefault(KeyCacheRedisURL, "redis://localhost:6379/0")
	v.SetDefault(KeyCacheTTL, 10*time.Minute)
	v.SetDefault(KeyHTTPListen, "127.0.0.1:8765")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads the optional config file and environment into v and returns
// the typed view. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	SetDefaults(v, homeDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v, homeDir)
}

func decode(v *viper.Viper, homeDir string) (Config, error) {
	loc, err := loadLocation(v.GetString(KeyScheduleTimezone))
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString(KeySecretsBackend)))
	switch backend {
	case SecretsAuto, SecretsPass, SecretsFile:
	default:
		return Config{}, fmt.Errorf("unsupported secrets backend %q", backend)
	}

	cfg := Config{
		SubscriptionsPath: expandHome(v.GetString(KeySubscriptionsPath), homeDir),
		Secrets: SecretsConfig{
			Backend:    backend,
			Dir:        expandHome(v.GetString(KeySecretsDir), homeDir),
			PassPrefix: v.GetString(KeySecretsPassPrefix),
		},
		StatePath: expandHome(v.GetString(KeyStatePath), homeDir),
		Upstream: UpstreamConfig{
			AuthURL:  strings.TrimRight(v.GetString(KeyUpstreamAuthURL), "/"),
			APIURL:   strings.TrimRight(v.GetString(KeyUpstreamAPIURL), "/"),
			ClientID: v.GetString(KeyUpstreamClientID),
			APIKey:   v.GetString(KeyUpstreamAPIKey),
			Timeout:  v.GetDuration(KeyUpstreamTimeout),
		},
		Schedule: ScheduleConfig{
			Daily:    v.GetString(KeyScheduleDaily),
			Fallback: v.GetString(KeyScheduleFallback),
			Location: loc,
		},
		Poll: PollConfig{
			Concurrency:   v.GetInt(KeyPollConcurrency),
			RatePerSecond: v.GetFloat64(KeyPollRate),
		},
		SessionCache: SessionCacheConfig{
			Enabled:  v.GetBool(KeyCacheEnabled),
			RedisURL: v.GetString(KeyCacheRedisURL),
			TTL:      v.GetDuration(KeyCacheTTL),
		},
		HTTPListen: v.GetString(KeyHTTPListen),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}
	if cfg.Poll.Concurrency < 1 {
		return Config{}, fmt.Errorf("%s must be at least 1", KeyPollConcurrency)
	}

	// Downstream readers of v see the expanded path.
	v.Set(KeySubscriptionsPath, cfg.SubscriptionsPath)

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
