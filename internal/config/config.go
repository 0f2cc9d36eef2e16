package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"ResultsMonitor/internal/decoder"
)

const (
	DefaultLoginDomain = "https://sso-legacy.sun.ac.za"
	DefaultLoginPath   = "/cas/login?service=https://web-apps.sun.ac.za/AcademicResults/shiro-cas"
	DefaultSchedule    = "@every 1m"
)

// ScheduleParser accepts standard five-field specs, an optional seconds field
// and descriptors such as "@every 1m".
var ScheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds all application configuration.
type Config struct {
	Portal struct {
		LoginDomain string        `yaml:"login_domain" toml:"login_domain"`
		LoginPath   string        `yaml:"login_path" toml:"login_path"`
		UserAgent   string        `yaml:"user_agent" toml:"user_agent"`
		Timeout     time.Duration `yaml:"timeout" toml:"timeout"`
	} `yaml:"portal" toml:"portal"`
	Decoder struct {
		CellSelector string `yaml:"cell_selector" toml:"cell_selector"`
	} `yaml:"decoder" toml:"decoder"`
	Poll struct {
		Schedule               string `yaml:"schedule" toml:"schedule"`
		MaxConsecutiveFailures int    `yaml:"max_consecutive_failures" toml:"max_consecutive_failures"`
	} `yaml:"poll" toml:"poll"`
	Username string `yaml:"username" toml:"username"`
	// Password only ever comes from the environment or the prompt.
	Password string `yaml:"-" toml:"-"`
	Notify   struct {
		Desktop  *bool `yaml:"desktop" toml:"desktop"`
		Telegram struct {
			BotToken string `yaml:"bot_token" toml:"bot_token"`
			ChatID   string `yaml:"chat_id" toml:"chat_id"`
		} `yaml:"telegram" toml:"telegram"`
		Email struct {
			Server  string   `yaml:"server" toml:"server"`
			Port    int      `yaml:"port" toml:"port"`
			Address string   `yaml:"address" toml:"address"`
			To      []string `yaml:"to" toml:"to"`

			// SMTP password, from SMTP_PASSWORD only.
			Password string `yaml:"-" toml:"-"`
		} `yaml:"email" toml:"email"`
	} `yaml:"notify" toml:"notify"`
	Database struct {
		// A file path or ":memory:" for SQLite, or a libsql:// URL.
		SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
	} `yaml:"database" toml:"database"`
	Proxy string `yaml:"proxy" toml:"proxy"`
}

// Notify.Desktop stays nil here: mergo overwrites an explicit false through the
// pointer. DesktopEnabled reads nil as on.
func defaults() Config {
	var d Config
	d.Portal.LoginDomain = DefaultLoginDomain
	d.Portal.LoginPath = DefaultLoginPath
	d.Portal.Timeout = 30 * time.Second
	d.Decoder.CellSelector = decoder.DefaultCellSelector
	d.Poll.Schedule = DefaultSchedule
	d.Poll.MaxConsecutiveFailures = 5
	d.Notify.Email.Port = 587
	return d
}

// Load reads config from a YAML (or, by extension, TOML) file, then applies
// environment variable overrides and fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RESULTS_LOGIN_DOMAIN"); v != "" {
		cfg.Portal.LoginDomain = v
	}
	if v := os.Getenv("RESULTS_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("RESULTS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("RESULTS_SCHEDULE"); v != "" {
		cfg.Poll.Schedule = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notify.Telegram.ChatID = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Notify.Email.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DESKTOP_NOTIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Notify.Desktop = &b
		}
	}

	d := defaults()
	if err := mergo.Merge(cfg, d); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well formed.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Portal.LoginDomain)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("portal.login_domain must be an absolute http(s) URL, got %q", c.Portal.LoginDomain)
	}
	if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" {
		return fmt.Errorf("portal.login_domain must not carry a path or query, put it in portal.login_path: %q", c.Portal.LoginDomain)
	}
	if c.Portal.Timeout <= 0 {
		return fmt.Errorf("portal.timeout must be positive")
	}
	sched, err := c.Schedule()
	if err != nil {
		return fmt.Errorf("poll.schedule: %w", err)
	}
	if sched.Next(time.Now()).IsZero() {
		return fmt.Errorf("poll.schedule %q never fires", c.Poll.Schedule)
	}
	if c.Poll.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("poll.max_consecutive_failures must be at least 1")
	}
	if (c.Notify.Telegram.BotToken == "") != (c.Notify.Telegram.ChatID == "") {
		return fmt.Errorf("notify.telegram.bot_token and notify.telegram.chat_id must be set together")
	}
	if c.Notify.Email.Server != "" && (c.Notify.Email.Address == "" || len(c.Notify.Email.To) == 0) {
		return fmt.Errorf("notify.email needs an address and at least one recipient")
	}
	return nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// Schedule parses the poll schedule.
func (c *Config) Schedule() (cron.Schedule, error) {
	return ScheduleParser.Parse(c.Poll.Schedule)
}

// DesktopEnabled reports whether desktop notifications are on.
func (c *Config) DesktopEnabled() bool {
	return c.Notify.Desktop == nil || *c.Notify.Desktop
}

// TelegramEnabled reports whether a Telegram chat is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Notify.Telegram.BotToken != "" && c.Notify.Telegram.ChatID != ""
}

// EmailEnabled reports whether an SMTP server is configured.
func (c *Config) EmailEnabled() bool {
	return c.Notify.Email.Server != ""
}
