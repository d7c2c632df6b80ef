// Package config provides YAML-based configuration loading for calyard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level calyard configuration, loaded from calyard.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Hours      HoursConfig      `yaml:"hours"`
	Cron       CronConfig       `yaml:"cron"`
	Log        LogConfig        `yaml:"log"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// CronSecret authorizes unattended callers via "Authorization: Bearer <secret>".
	CronSecret string `yaml:"cron_secret"`
}

// DatabaseConfig selects and addresses the backing SQL store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql or sqlite
	Path     string `yaml:"path"`   // sqlite file
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// SchedulingConfig holds engine defaults.
type SchedulingConfig struct {
	WindowDays      int           `yaml:"window_days"`
	SlotMinutes     int           `yaml:"slot_minutes"`
	MinSplitMinutes int           `yaml:"min_split_minutes"`
	MaxSplitMinutes int           `yaml:"max_split_minutes"`
	LockTimeout     time.Duration `yaml:"lock_timeout"`
}

// HoursConfig maps an hour kind (personal, work, meeting) to its weekly ranges.
type HoursConfig map[string]WeekConfig

// WeekConfig maps a lowercase weekday name to its ranges.
type WeekConfig map[string][]RangeConfig

// RangeConfig is one working range in local wall-clock time.
type RangeConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// CronConfig controls unattended commit runs.
type CronConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// RateLimitConfig bounds commit requests per workspace.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

// HourKinds lists the recognised hour kinds.
var HourKinds = []string{"personal", "work", "meeting"}

// Weekdays lists weekday keys in time.Weekday order.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "calyard.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "calyard"
		}
	}
	if c.Scheduling.WindowDays == 0 {
		c.Scheduling.WindowDays = 30
	}
	if c.Scheduling.SlotMinutes == 0 {
		c.Scheduling.SlotMinutes = 15
	}
	if c.Scheduling.MinSplitMinutes == 0 {
		c.Scheduling.MinSplitMinutes = 30
	}
	if c.Scheduling.MaxSplitMinutes == 0 {
		c.Scheduling.MaxSplitMinutes = 120
	}
	if c.Scheduling.LockTimeout == 0 {
		c.Scheduling.LockTimeout = 10 * time.Minute
	}
	if c.Hours == nil {
		c.Hours = HoursConfig{}
	}
	for _, kind := range HourKinds {
		if _, ok := c.Hours[kind]; !ok {
			c.Hours[kind] = defaultWeek()
		}
	}
	if c.Cron.Schedule == "" {
		c.Cron.Schedule = "0 */6 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 6
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 2
	}
}

// defaultWeek is 07:00-23:00 on every day.
func defaultWeek() WeekConfig {
	w := WeekConfig{}
	for _, d := range Weekdays {
		w[d] = []RangeConfig{{Start: "07:00", End: "23:00"}}
	}
	return w
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Scheduling.WindowDays < 7 || c.Scheduling.WindowDays > 90 {
		errs = append(errs, "scheduling.window_days must be between 7 and 90")
	}
	if c.Scheduling.SlotMinutes < 1 || c.Scheduling.SlotMinutes > 60 {
		errs = append(errs, "scheduling.slot_minutes must be between 1 and 60")
	}
	if c.Scheduling.MinSplitMinutes > c.Scheduling.MaxSplitMinutes {
		errs = append(errs, "scheduling.min_split_minutes must not exceed max_split_minutes")
	}
	for kind, week := range c.Hours {
		if !knownKind(kind) {
			errs = append(errs, fmt.Sprintf("hours.%s is not a known hour kind", kind))
			continue
		}
		for day, ranges := range week {
			if !knownDay(day) {
				errs = append(errs, fmt.Sprintf("hours.%s.%s is not a weekday", kind, day))
				continue
			}
			for i, r := range ranges {
				start, err1 := ParseClock(r.Start)
				end, err2 := ParseClock(r.End)
				if err1 != nil || err2 != nil {
					errs = append(errs, fmt.Sprintf("hours.%s.%s[%d] must use HH:MM", kind, day, i))
					continue
				}
				if end <= start {
					errs = append(errs, fmt.Sprintf("hours.%s.%s[%d] ends before it starts", kind, day, i))
				}
			}
		}
	}
	if c.Cron.Enabled && c.Server.CronSecret == "" {
		errs = append(errs, "server.cron_secret is required when cron is enabled")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParseClock parses "HH:MM" (24:00 allowed) into minutes after midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("config: clock %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("config: clock %q out of range", s)
	}
	return h*60 + m, nil
}

func knownKind(k string) bool {
	for _, want := range HourKinds {
		if k == want {
			return true
		}
	}
	return false
}

func knownDay(d string) bool {
	for _, want := range Weekdays {
		if d == want {
			return true
		}
	}
	return false
}
