package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 5}, c)
	assert.Equal(t, "09:05", c.String())

	for _, bad := range []string{"", "9:00", "25:00", "12:60", "12-30", "ab:cd", "12:300", "+9:00", "-0:30", "09:+5", "09:-1", " 9:00"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, bad)
	}
}

func TestClock_Before(t *testing.T) {
	assert.True(t, Clock{9, 0}.Before(Clock{9, 1}))
	assert.True(t, Clock{8, 59}.Before(Clock{9, 0}))
	assert.False(t, Clock{9, 0}.Before(Clock{9, 0}))
	assert.False(t, Clock{17, 0}.Before(Clock{16, 59}))
}

func TestValidateDailyWindow(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.NoError(t, ValidateDailyWindow(nil, nil))
	assert.NoError(t, ValidateDailyWindow(s(""), s("")))
	assert.NoError(t, ValidateDailyWindow(s("09:00"), s("10:00")))
	assert.Error(t, ValidateDailyWindow(s("09:00"), nil))
	assert.Error(t, ValidateDailyWindow(nil, s("10:00")))
	assert.ErrorIs(t, ValidateDailyWindow(s("25:00"), s("10:00")), ErrInvalidClock)
	assert.ErrorIs(t, ValidateDailyWindow(s("+9:00"), s("10:00")), ErrInvalidClock)
	assert.ErrorIs(t, ValidateDailyWindow(s("09:00"), s("-0:30")), ErrInvalidClock)
}
