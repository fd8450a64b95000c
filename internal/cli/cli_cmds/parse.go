package cli_cmds

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

// TimeLayout is the timestamp layout accepted by --from/--to and used in listings
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is accepted by --from/--to as a whole day
const DateLayout = "2006-01-02"

var timeLayouts = []string{TimeLayout, time.RFC3339}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q: %w", s, models.ErrInvalidAccountID)
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, models.ErrInvalidAmount)
	}
	return amount, nil
}

// parseTime parses a flag value. wholeDay is set when only a date was given.
func parseTime(s string) (t time.Time, wholeDay bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, false, nil
		}
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid time %q, expected %q or %q", s, TimeLayout, DateLayout)
}

// parseRange builds a closed range from the --from/--to flag values.
// A date-only --to covers that whole day.
func parseRange(from, to string) (models.TimeRange, error) {
	start, _, err := parseTime(from)
	if err != nil {
		return models.All, err
	}
	end, wholeDay, err := parseTime(to)
	if err != nil {
		return models.All, err
	}
	if wholeDay {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return models.All, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return models.Between(start, end), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected table or json", format)
	}
}
