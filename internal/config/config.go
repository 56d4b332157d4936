// Package config loads planbook settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Config holds runtime settings.
type Config struct {
	DBPath         string
	ReadOnly       bool
	LogUseCases    bool
	DefaultCulture language.Tag
	// Classifications maps taxonomy ids to labels. Nil accepts any id.
	Classifications map[string]string
}

// DefaultConfig returns a Config with sensible defaults. The store lives in
// ~/.planbook/planbook.db, or in the working directory when no home
// directory is available.
func DefaultConfig() Config {
	dbPath := "planbook.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".planbook", "planbook.db")
	}
	return Config{
		DBPath:         dbPath,
		DefaultCulture: language.English,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or invalid values.
func Load() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PLANBOOK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANBOOK_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ReadOnly = b
		}
	}
	if v := os.Getenv("PLANBOOK_LOG_USE_CASES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogUseCases = b
		}
	}
	if v := os.Getenv("PLANBOOK_CULTURE"); v != "" {
		if tag, err := language.Parse(v); err == nil {
			cfg.DefaultCulture = tag
		}
	}
	if v := os.Getenv("PLANBOOK_TAXONOMY"); v != "" {
		cfg.Classifications = parseTaxonomy(v)
	}

	return cfg
}

// parseTaxonomy reads "id=label,id=label". Entries without "=" use the id
// as label; blank entries are skipped.
func parseTaxonomy(v string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, label, ok := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !ok {
			label = id
		}
		out[id] = strings.TrimSpace(label)
	}
	return out
}
