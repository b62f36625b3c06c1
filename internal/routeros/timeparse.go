package routeros

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses RouterOS duration strings: "5s", "2m10s",
// "1w2d3h4m5s", "1d" and the "hh:mm:ss" form. A bare trailing number is
// taken as seconds.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(value, ":") {
		parts := strings.Split(value, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("invalid hh:mm:ss: %s", value)
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, err
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, err
		}
		s, err := strconv.Atoi(parts[2])
		if err != nil {
			return 0, err
		}
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, nil
	}

	mult := map[byte]time.Duration{
		'w': 7 * 24 * time.Hour,
		'd': 24 * time.Hour,
		'h': time.Hour,
		'm': time.Minute,
		's': time.Second,
	}

	var dur time.Duration
	number := ""
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch >= '0' && ch <= '9' {
			number += string(ch)
			continue
		}
		unit, ok := mult[ch]
		if !ok || number == "" {
			return 0, fmt.Errorf("invalid duration segment: %s", value)
		}
		v, err := strconv.Atoi(number)
		if err != nil {
			return 0, err
		}
		dur += time.Duration(v) * unit
		number = ""
	}
	if number != "" {
		v, err := strconv.Atoi(number)
		if err != nil {
			return 0, err
		}
		dur += time.Duration(v) * time.Second
	}
	return dur, nil
}

// parseDurationOrZero is the lenient form used for router-reported uptimes,
// where "N/A" and malformed values degrade to zero.
func parseDurationOrZero(value string) time.Duration {
	d, err := ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
