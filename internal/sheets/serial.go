package sheets

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from 1899-12-30; fractions are time of
// day. All bot timestamps are written and interpreted in IST.

var (
	serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	// IST has no DST, so a fixed zone is sufficient.
	IST = time.FixedZone("IST", (5*60+30)*60)
)

const TimestampLayout = "2006-01-02 15:04:05"

// NowIST returns the current wall-clock time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// Timestamp renders t the way every sheet row stores it.
func Timestamp(t time.Time) string {
	return t.In(IST).Format(TimestampLayout)
}

// SerialToTime converts a spreadsheet serial number to a UTC time.
func SerialToTime(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	secs := int64(frac*86400 + 0.5)
	return serialEpoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second)
}

// TimeToSerial is the inverse of SerialToTime.
func TimeToSerial(t time.Time) float64 {
	d := t.Sub(serialEpoch)
	return d.Hours() / 24
}

// cellDateLayouts are the formats timestamps have historically been written
// in, tried in order.
var cellDateLayouts = []string{
	TimestampLayout,
	"2006-01-02-15:04:05",
	"2006 01 02-15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 03:04:05 PM",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseCellDate interprets a cell that should hold a date: either a numeric
// serial (float64 from the API, or a numeric string) or one of the known text
// layouts. The second return is false when nothing matched.
func ParseCellDate(cell interface{}, logger *slog.Logger) (time.Time, bool) {
	switch v := cell.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return SerialToTime(v), true
	case int:
		return SerialToTime(float64(v)), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return SerialToTime(serial), true
		}
		for _, layout := range cellDateLayouts {
			if t, err := time.ParseInLocation(layout, s, IST); err == nil {
				return t, true
			}
		}
		if logger != nil {
			logger.Warn("unparseable date cell", "value", s)
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
