// Package duration parses durations written with calendar units.
package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Calendar units. Month and Year are fixed approximations.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// units is ordered so two-letter suffixes win over their one-letter prefixes.
var units = []struct {
	suffix string
	value  time.Duration
}{
	{"ns", time.Nanosecond},
	{"us", time.Microsecond},
	{"µs", time.Microsecond},
	{"ms", time.Millisecond},
	{"s", time.Second},
	{"m", time.Minute},
	{"h", time.Hour},
	{"d", Day},
	{"w", Week},
	{"M", Month},
	{"y", Year},
}

const supported = "ns, us, ms, s, m, h, d, w, M, y"

// Parse reads a sequence of <number><unit> terms such as "90s", "1d12h" or
// "1.5w" and returns their sum. "M" is months and "m" is minutes. A lone "0"
// is accepted as zero. Negative values are rejected.
func Parse(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if in == "0" {
		return 0, nil
	}

	var total time.Duration
	for rest := in; rest != ""; {
		n := numberPrefix(rest)
		if n == 0 {
			return 0, fmt.Errorf("invalid duration %q: expected a number at %q", s, rest)
		}
		number := rest[:n]
		rest = rest[n:]

		unit, size, ok := unitPrefix(rest)
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit at %q (supported: %s)", s, rest, supported)
		}
		rest = rest[size:]

		term, err := scale(number, unit)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if total > math.MaxInt64-term {
			return 0, fmt.Errorf("duration %q overflows", s)
		}
		total += term
	}
	return total, nil
}

// scale multiplies number by unit, keeping whole numbers in integer math.
func scale(number string, unit time.Duration) (time.Duration, error) {
	if !strings.Contains(number, ".") {
		v, err := strconv.ParseInt(number, 10, 64)
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("%s overflows", number)
		}
		return time.Duration(v) * unit, nil
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, err
	}
	if f*float64(unit) >= math.MaxInt64 {
		return 0, fmt.Errorf("%s overflows", number)
	}
	return time.Duration(f * float64(unit)), nil
}

func numberPrefix(s string) int {
	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	return i
}

func unitPrefix(s string) (time.Duration, int, bool) {
	for _, u := range units {
		if strings.HasPrefix(s, u.suffix) {
			return u.value, len(u.suffix), true
		}
	}
	return 0, 0, false
}

// Window parses a look-back window for log queries. It must be positive.
func Window(s string) (time.Duration, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("window %q must be greater than zero", s)
	}
	return d, nil
}
