package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Secrets (OpenAI and
// Vestaboard keys) are deliberately not part of this file; they are read
// from the environment.
type Config struct {
	// DefaultTimezone is the IANA timezone used when the caller passes no
	// (or an unresolvable) -timezone value.
	DefaultTimezone string `yaml:"default_timezone" json:"default_timezone"`

	// LookAheadDays is the expansion horizon beyond the reference date.
	// 0 means only the reference date itself.
	LookAheadDays int `yaml:"look_ahead_days" json:"look_ahead_days"`

	// FileDeadlineSeconds bounds expansion+filtering wall-clock time per
	// input file.
	FileDeadlineSeconds int `yaml:"file_deadline_seconds" json:"file_deadline_seconds"`

	// TimedTitleLimit / AllDayTitleLimit are the per-entry title budgets in
	// the rendered digest.
	TimedTitleLimit  int `yaml:"timed_title_limit" json:"timed_title_limit"`
	AllDayTitleLimit int `yaml:"all_day_title_limit" json:"all_day_title_limit"`

	// OpenAIModel is the chat model used for title summarization and poem
	// generation.
	OpenAIModel string `yaml:"openai_model" json:"openai_model"`

	// FeedURL is the RSS feed the news poem is built from.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// RefreshCron, when the -refresh flag is set, is the cron schedule on
	// which the pipeline re-runs (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultTimezone:     "America/Los_Angeles",
		LookAheadDays:       1,
		FileDeadlineSeconds: 5,
		TimedTitleLimit:     16,
		AllDayTitleLimit:    22,
		OpenAIModel:         "gpt-4-turbo",
		FeedURL:             "http://rss.cnn.com/rss/cnn_topstories.rss",
		RefreshCron:         "*/15 * * * *",
		LogLevel:            "info",
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.DefaultTimezone == "" {
		c.DefaultTimezone = def.DefaultTimezone
	}
	if c.LookAheadDays < 0 {
		c.LookAheadDays = def.LookAheadDays
	}
	if c.FileDeadlineSeconds <= 0 {
		c.FileDeadlineSeconds = def.FileDeadlineSeconds
	}
	if c.TimedTitleLimit <= 0 {
		c.TimedTitleLimit = def.TimedTitleLimit
	}
	if c.AllDayTitleLimit <= 0 {
		c.AllDayTitleLimit = def.AllDayTitleLimit
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = def.OpenAIModel
	}
	if c.FeedURL == "" {
		c.FeedURL = def.FeedURL
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: write a default config (0600, parent dir
//     created as needed) and return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".vestacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save writes the receiver to path; convenience wrapper over the package
// function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
