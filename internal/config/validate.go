package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Plex
	if c.Plex.URL == "" {
		errs = append(errs, "plex.url: required")
	} else if u, err := url.Parse(c.Plex.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("plex.url: must be an http(s) URL, got %q", c.Plex.URL))
	}
	if c.Plex.Token == "" {
		errs = append(errs, "plex.token: required")
	}
	if c.Plex.PageSize < 1 || c.Plex.PageSize > 1000 {
		errs = append(errs, fmt.Sprintf("plex.page_size: must be between 1 and 1000, got %d", c.Plex.PageSize))
	}
	if c.Plex.ConnectTimeout < 0 {
		errs = append(errs, "plex.connect_timeout: must not be negative")
	}
	if c.Plex.Timeout < 0 {
		errs = append(errs, "plex.timeout: must not be negative")
	}

	// Posters
	if c.Posters.Root == "" {
		errs = append(errs, "posters.root: required")
	}
	if !c.Posters.Movies && !c.Posters.Shows && !c.Posters.Seasons && !c.Posters.Collections {
		errs = append(errs, "posters: at least one of movies, shows, seasons or collections must be enabled")
	}
	for i, name := range c.Posters.ExcludeLibraries {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Sprintf("posters.exclude_libraries[%d]: must not be empty", i))
		}
	}

	// Schedule
	if _, err := ParseInterval(c.Schedule.Interval); err != nil {
		errs = append(errs, "schedule.interval: "+err.Error())
	}
	if c.Schedule.LockStaleAfter <= 0 {
		errs = append(errs, "schedule.lock_stale_after: must be positive")
	}

	// State
	if c.State.Dir == "" {
		errs = append(errs, "state.dir: required")
	}

	// Log
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be one of text, json; got %q", c.Log.Format))
	}

	return errs
}
