package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jdelaire/climabot/internal/keychain"
)

const (
	envPrefix         = "CLIMABOT_"
	defaultConfigPath = "climabot.yaml"

	// Keychain accounts used when a secret is missing from file and env.
	TelegramTokenAccount  = "telegram_token"
	OpenWeatherKeyAccount = "openweather_key"
)

// Unprefixed variables kept for compatibility with existing .env files.
var legacyEnv = map[string]string{
	"TELEGRAM_TOKEN":  "telegram_token",
	"OPENWEATHER_KEY": "openweather_key",
}

// Config holds everything the bot needs at startup.
type Config struct {
	TelegramToken   string  `koanf:"telegram_token"`
	OpenWeatherKey  string  `koanf:"openweather_key"`
	TelegramBaseURL string  `koanf:"telegram_base_url"`
	WeatherBaseURL  string  `koanf:"weather_base_url"`
	Units           string  `koanf:"units"`
	Lang            string  `koanf:"lang"`
	PollTimeout     int     `koanf:"poll_timeout"`
	LogLevel        string  `koanf:"log_level"`
	RatePerSecond   float64 `koanf:"rate_per_second"`
	RateBurst       int     `koanf:"rate_burst"`
	AllowedChats    string  `koanf:"allowed_chats"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		TelegramBaseURL: "https://api.telegram.org",
		WeatherBaseURL:  "https://api.openweathermap.org/data/2.5",
		Units:           "metric",
		Lang:            "pt_br",
		PollTimeout:     30,
		LogLevel:        "info",
		RateBurst:       5,
	}
}

// Load builds the configuration from, in increasing priority: defaults,
// the YAML file at path (optional), the environment (after loading .env if
// present), and finally the system keychain for secrets still missing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.fillFromKeychain(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps CLIMABOT_POLL_TIMEOUT -> poll_timeout and the legacy secret
// names to their keys. Anything else is ignored.
func envKey(s string) string {
	if key, ok := legacyEnv[s]; ok {
		return key
	}
	if strings.HasPrefix(s, envPrefix) && s != envPrefix+"CONFIG" {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}
	return ""
}

// fillFromKeychain looks up secrets still empty after file and env. A
// missing entry is fine; a keychain that cannot be queried is an error.
func (c *Config) fillFromKeychain() error {
	secrets := []struct {
		account string
		dst     *string
	}{
		{TelegramTokenAccount, &c.TelegramToken},
		{OpenWeatherKeyAccount, &c.OpenWeatherKey},
	}
	for _, s := range secrets {
		if *s.dst != "" {
			continue
		}
		v, err := keychain.Lookup(s.account)
		if err != nil {
			return fmt.Errorf("keychain lookup %s: %w", s.account, err)
		}
		*s.dst = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram token is required: set TELEGRAM_TOKEN or store %q in the keychain", TelegramTokenAccount)
	}
	if c.OpenWeatherKey == "" {
		return fmt.Errorf("openweather key is required: set OPENWEATHER_KEY or store %q in the keychain", OpenWeatherKeyAccount)
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("poll_timeout must be non-negative")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second must be non-negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.AllowedChatIDs(); err != nil {
		return err
	}
	return nil
}

// PollTimeoutDuration returns the long-poll timeout.
func (c *Config) PollTimeoutDuration() time.Duration {
	return time.Duration(c.PollTimeout) * time.Second
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return lvl, nil
}

// AllowedChatIDs parses the comma-separated allowlist. Empty means all
// chats are allowed.
func (c *Config) AllowedChatIDs() ([]int64, error) {
	var ids []int64
	for _, f := range strings.Split(c.AllowedChats, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q in allowed_chats: %w", f, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
