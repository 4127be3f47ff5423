package schedule

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidClock is returned for daily window strings that are not HH:MM.
var ErrInvalidClock = errors.New("invalid time, expected HH:MM")

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: hour in %q", ErrInvalidClock, s)
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: minute in %q", ErrInvalidClock, s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Before reports whether c comes strictly before o within the same day.
func (c Clock) Before(o Clock) bool {
	return c.Hour < o.Hour || (c.Hour == o.Hour && c.Minute < o.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ValidateDailyWindow checks that start and end are both set or both empty and well formed.
func ValidateDailyWindow(start, end *string) error {
	hasStart := start != nil && *start != ""
	hasEnd := end != nil && *end != ""
	switch {
	case !hasStart && !hasEnd:
		return nil
	case hasStart != hasEnd:
		return errors.New("daily_start_time and daily_end_time must be set together")
	}
	if _, err := ParseClock(*start); err != nil {
		return fmt.Errorf("daily_start_time: %w", err)
	}
	if _, err := ParseClock(*end); err != nil {
		return fmt.Errorf("daily_end_time: %w", err)
	}
	return nil
}
