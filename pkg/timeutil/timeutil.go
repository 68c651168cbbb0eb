// Package timeutil provides time helpers for LeetScope: parsing the compact
// finish-time duration strings used in contest filters ("1hrs 5mins 30s")
// and converting LeetCode epoch timestamps.
// No external dependencies - uses only standard library.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned when a duration string cannot be parsed.
var ErrInvalidDuration = errors.New("timeutil: invalid duration format")

// Seconds-per-unit multipliers for the compact duration grammar.
const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// ParseCompactDuration parses a compact human duration string into total
// seconds. The grammar is whitespace-delimited tokens, each one of:
//
//	<integer>hrs  - hours
//	<integer>mins - minutes
//	<integer>s    - seconds
//
// Tokens are summed; order does not matter and duplicate units are additive.
// Input is lowercased and trimmed first. An empty string parses to 0.
// Any token outside the grammar yields ErrInvalidDuration.
//
// Note the suffix check order: "hrs" and "mins" must be tested before the
// bare "s" suffix, which would otherwise swallow them.
func ParseCompactDuration(text string) (int64, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0, nil
	}

	var total int64
	for _, token := range strings.Fields(text) {
		var value string
		var multiplier int64

		switch {
		case strings.HasSuffix(token, "hrs"):
			value = strings.TrimSuffix(token, "hrs")
			multiplier = secondsPerHour
		case strings.HasSuffix(token, "mins"):
			value = strings.TrimSuffix(token, "mins")
			multiplier = secondsPerMinute
		case strings.HasSuffix(token, "s"):
			value = strings.TrimSuffix(token, "s")
			multiplier = 1
		default:
			return 0, fmt.Errorf("%w: %q (use forms like \"30s\", \"5mins\", \"1hrs\")", ErrInvalidDuration, token)
		}

		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, token)
		}

		total += n * multiplier
	}

	return total, nil
}

// FormatCompactDuration renders seconds back into the compact grammar,
// e.g. 3930 -> "1hrs 5mins 30s". Zero-valued units are omitted; 0 seconds
// renders as "0s".
func FormatCompactDuration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	hours := seconds / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute
	secs := seconds % secondsPerMinute

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dhrs", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dmins", minutes))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}

	return strings.Join(parts, " ")
}

// FromEpochSeconds converts a LeetCode epoch-seconds timestamp to a UTC time.
func FromEpochSeconds(epoch int64) time.Time {
	return time.Unix(epoch, 0).UTC()
}

// ToEpochSeconds converts a time to epoch seconds.
func ToEpochSeconds(t time.Time) int64 {
	return t.Unix()
}

// NowUTC returns the current time in UTC. Record timestamps are always
// stored in UTC regardless of server locale.
func NowUTC() time.Time {
	return time.Now().UTC()
}
