package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hot-channels-bot/internal/apperr"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// MaxPageSize is the largest page conversations.history accepts
const MaxPageSize = 999

// Config represents the application configuration
type Config struct {
	LogLevel      string              `yaml:"log_level"`
	DryRun        bool                `yaml:"dry_run"`
	EnvFile       string              `yaml:"env_file"`
	Slack         SlackConfig         `yaml:"slack"`
	Channels      ChannelsConfig      `yaml:"channels"`
	BotAppearance BotAppearanceConfig `yaml:"bot_appearance"`
	Ranking       RankingConfig       `yaml:"ranking"`
	Activity      ActivityConfig      `yaml:"activity"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Health        HealthConfig        `yaml:"health"`
}

// SlackConfig defines Slack API settings
type SlackConfig struct {
	Token  string `yaml:"-"`
	APIURL string `yaml:"api_url"`
	Debug  bool   `yaml:"debug"`
}

// ChannelsConfig selects the ranking channel and the channels that are counted
type ChannelsConfig struct {
	ChannelName string `yaml:"channel_name"`
	// ExcludeFromStat entries are applied both as literal names and as full-match patterns
	ExcludeFromStat ExclusionList `yaml:"exclude_from_stat"`
	// ExcludeNames entries are only compared literally
	ExcludeNames []string `yaml:"exclude_names"`
	AutoJoin     bool     `yaml:"auto_join_to_public_channels"`
}

// BotAppearanceConfig defines how the bot shows up when posting
type BotAppearanceConfig struct {
	Username  string `yaml:"username"`
	IconEmoji string `yaml:"icon_emoji"`
}

// RankingConfig bounds the size of the leaderboard. A negative MaxEntries means no limit.
type RankingConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// ActivityConfig tunes the history calls
type ActivityConfig struct {
	PageSize          int     `yaml:"page_size"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// ScheduleConfig turns the bot into a resident process when Cron is set
type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// HealthConfig defines the health endpoint used in scheduled mode
type HealthConfig struct {
	Port int `yaml:"port"`
}

// ExclusionList accepts a YAML sequence or a string holding a JSON array
type ExclusionList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (e *ExclusionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*e = ExclusionList{}
			return nil
		}
		var entries []string
		if err := json.Unmarshal([]byte(value.Value), &entries); err != nil {
			return fmt.Errorf("exclude_from_stat must be a list or a JSON array of strings: %w", err)
		}
		*e = entries
		return nil
	case yaml.SequenceNode:
		var entries []string
		if err := value.Decode(&entries); err != nil {
			return err
		}
		*e = entries
		return nil
	default:
		return fmt.Errorf("exclude_from_stat must be a list or a JSON array of strings")
	}
}

// Load loads configuration from file and environment variables
func Load(path string) (*Config, error) {
	logrus.Debugf("Loading configuration from: %s", path)

	cfg := &Config{
		LogLevel: "info",
		EnvFile:  ".env",
		Channels: ChannelsConfig{
			ExcludeFromStat: ExclusionList{},
			ExcludeNames:    []string{},
		},
		Ranking: RankingConfig{
			MaxEntries: -1,
		},
		Activity: ActivityConfig{
			PageSize:          100,
			Concurrency:       1,
			RequestsPerSecond: 0,
		},
		Health: HealthConfig{
			Port: 8080,
		},
	}

	// Load from file if it exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		logrus.Debugf("Config file does not exist at: %s (error: %v)", path, err)
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err == nil {
			logrus.Debugf("Loaded environment from %s", cfg.EnvFile)
		}
	}

	// Override with environment variables
	cfg.Slack.Token = getEnv("SLACK_API_TOKEN", cfg.Slack.Token)
	cfg.Slack.APIURL = getEnv("SLACK_API_URL", cfg.Slack.APIURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Channels.ChannelName = getEnv("HOT_CHANNELS_TARGET", cfg.Channels.ChannelName)
	if v := os.Getenv("HOT_CHANNELS_DRY_RUN"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HOT_CHANNELS_DRY_RUN value %q: %w", v, err)
		}
		cfg.DryRun = dryRun
	}

	logrus.Debugf("Slack token loaded: %s", func() string {
		if len(cfg.Slack.Token) > 4 {
			return "***" + cfg.Slack.Token[len(cfg.Slack.Token)-4:] // Show last 4 chars
		}
		return "NOT SET"
	}())

	return cfg, nil
}

// Validate reports settings that would make a run fail
func (c *Config) Validate() error {
	if c.Slack.Token == "" {
		return apperr.Configf("config", "SLACK_API_TOKEN is not set")
	}
	if c.Channels.ChannelName == "" {
		return apperr.Configf("config", "channels.channel_name is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return apperr.Configf("config", "invalid log level: %v", err)
	}
	if c.Activity.PageSize < 1 || c.Activity.PageSize > MaxPageSize {
		return apperr.Configf("config", "activity.page_size must be between 1 and %d, got %d", MaxPageSize, c.Activity.PageSize)
	}
	if c.Activity.Concurrency < 1 {
		return apperr.Configf("config", "activity.concurrency must be at least 1, got %d", c.Activity.Concurrency)
	}
	if c.Activity.RequestsPerSecond < 0 {
		return apperr.Configf("config", "activity.requests_per_second must not be negative")
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return apperr.Configf("config", "invalid schedule.cron %q: %v", c.Schedule.Cron, err)
		}
	}
	if c.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return apperr.Configf("config", "invalid schedule.timezone %q: %v", c.Schedule.Timezone, err)
		}
	}
	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return apperr.Configf("config", "invalid health.port %d", c.Health.Port)
	}
	return nil
}

// Scheduled reports whether the bot should stay resident
func (c *Config) Scheduled() bool {
	return c.Schedule.Cron != ""
}

// ConfigPath returns the config file location from HOT_CHANNELS_CONFIG
func ConfigPath() string {
	return getEnv("HOT_CHANNELS_CONFIG", "config.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
