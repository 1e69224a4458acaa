// Package bytesize parses human-friendly byte sizes such as "512MB" or "1.5GiB".
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Binary multipliers. KB and KiB are both 1024 bytes, matching what
// container engines report for volume and image sizes.
const (
	KB int64 = 1 << (10 * (iota + 1))
	MB
	GB
	TB
)

var units = map[string]int64{
	"":    1,
	"B":   1,
	"K":   KB,
	"KB":  KB,
	"KIB": KB,
	"M":   MB,
	"MB":  MB,
	"MIB": MB,
	"G":   GB,
	"GB":  GB,
	"GIB": GB,
	"T":   TB,
	"TB":  TB,
	"TIB": TB,
}

// Parse converts a size string into bytes. A bare number is a byte count.
//
//	Parse("1024")   // 1024
//	Parse("512MB")  // 536870912
//	Parse("1.5g")   // 1610612736
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	multiplier, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown unit %q (supported: B, KB, MB, GB, TB)", s, unit)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || number == "" {
		return 0, fmt.Errorf("invalid size %q: missing or malformed number", s)
	}

	bytes := value * float64(multiplier)
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q: overflows int64", s)
	}
	return int64(bytes), nil
}

// Format renders bytes with the largest unit that keeps the value >= 1.
func Format(bytes int64) string {
	switch {
	case bytes >= TB:
		return formatUnit(bytes, TB, "TB")
	case bytes >= GB:
		return formatUnit(bytes, GB, "GB")
	case bytes >= MB:
		return formatUnit(bytes, MB, "MB")
	case bytes >= KB:
		return formatUnit(bytes, KB, "KB")
	}
	return strconv.FormatInt(bytes, 10) + "B"
}

func formatUnit(bytes, unit int64, suffix string) string {
	return strconv.FormatFloat(float64(bytes)/float64(unit), 'f', -1, 64) + suffix
}
