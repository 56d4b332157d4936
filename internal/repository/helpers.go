package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// timeLayout keeps sub-second precision so stored timestamps round-trip exactly.
const timeLayout = time.RFC3339Nano

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// formatTime keeps the zone offset of t.
func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// nullableTimeToString returns nil (SQL NULL) for a nil pointer.
func nullableTimeToString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseNullableTime returns nil for SQL NULL or an empty string.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullableJSON encodes v, storing SQL NULL when isNil is set so that a nil
// map or slice stays distinguishable from an empty one.
func nullableJSON(v any, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// decodeNullableJSON leaves dst untouched for SQL NULL.
func decodeNullableJSON(s sql.NullString, dst any) error {
	if !s.Valid {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}

func parseCulture(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parsing culture %q: %w", s, err)
	}
	return tag, nil
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}
