// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	Posters  PostersConfig  `toml:"posters"`
	Schedule ScheduleConfig `toml:"schedule"`
	State    StateConfig    `toml:"state"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Log      LogConfig      `toml:"log"`
}

type PlexConfig struct {
	URL            string        `toml:"url"`
	Token          string        `toml:"token"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`
	Timeout        time.Duration `toml:"timeout"`
	PageSize       int           `toml:"page_size"`
}

type PostersConfig struct {
	Root             string   `toml:"root"`
	Movies           bool     `toml:"movies"`
	Shows            bool     `toml:"shows"`
	Seasons          bool     `toml:"seasons"`
	Collections      bool     `toml:"collections"`
	ExcludeLibraries []string `toml:"exclude_libraries"`
	RefreshExisting  bool     `toml:"refresh_existing"`
}

// MoviesDir returns the directory holding movie posters.
func (p PostersConfig) MoviesDir() string { return filepath.Join(p.Root, "movies") }

// ShowsDir returns the directory holding show posters.
func (p PostersConfig) ShowsDir() string { return filepath.Join(p.Root, "shows") }

// SeasonsDir returns the directory holding season posters.
func (p PostersConfig) SeasonsDir() string { return filepath.Join(p.Root, "seasons") }

// CollectionsDir returns the directory holding collection posters.
func (p PostersConfig) CollectionsDir() string { return filepath.Join(p.Root, "collections") }

type ScheduleConfig struct {
	Interval       string        `toml:"interval"`
	LockStaleAfter time.Duration `toml:"lock_stale_after"`
}

// IntervalDuration parses Interval.
func (s ScheduleConfig) IntervalDuration() (time.Duration, error) {
	return ParseInterval(s.Interval)
}

type StateConfig struct {
	Dir string `toml:"dir"`
}

type TMDBConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url,omitempty"` // empty uses api.themoviedb.org
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Plex: PlexConfig{
			URL:            "http://localhost:32400",
			ConnectTimeout: 5 * time.Second,
			Timeout:        30 * time.Second,
			PageSize:       50,
		},
		Posters: PostersConfig{
			Root:        "./posters",
			Movies:      true,
			Shows:       true,
			Seasons:     true,
			Collections: true,
		},
		Schedule: ScheduleConfig{
			Interval:       "12h",
			LockStaleAfter: 2 * time.Hour,
		},
		State: StateConfig{Dir: "./data"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads, parses and validates the configuration file.
// Returns a *ConfigError when environment variables are missing or
// validation fails.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file without
// validating values. Unresolved environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment variable references. ${VAR} must
// be set; ${VAR:-default} falls back when VAR is unset or empty;
// ${VAR:?message} reports message when VAR is unset or empty. Unresolved
// references are left in place and returned in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if value == "" {
				return arg
			}
			return value
		case ":?":
			if value == "" {
				missing = append(missing, name+": "+arg)
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
