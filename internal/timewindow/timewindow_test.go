package timewindow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Minute
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"9:05", 545},
		{" 14:30 ", 870},
		{"23:59", 1439},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "24:00", "12:60", "1200", "ab:cd", "12:5", "123:00", "-1:00"} {
		_, err := ParseClock(bad)
		assert.True(t, errors.Is(err, ErrInvalidClock), "expected ErrInvalidClock for %q, got %v", bad, err)
	}
}

func TestMinuteAddHoursWraps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "16:00", MustParseClock("14:00").AddHours(2).String())
	assert.Equal(t, "00:30", MustParseClock("23:30").AddHours(1).String())
	assert.Equal(t, "02:15", MustParseClock("23:15").AddHours(3).String())
	assert.Equal(t, "23:00", MustParseClock("01:00").AddHours(-2).String())
}

func TestDayNameAndParseDay(t *testing.T) {
	t.Parallel()

	monday := time.Date(2024, time.March, 4, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "Monday", DayName(monday))
	assert.Equal(t, Minute(545), MinuteOf(monday))

	day, err := ParseDay(" wednesday")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", day)

	_, err = ParseDay("Funday")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseWindow("09:00", "10:00")
	require.NoError(t, err)

	assert.True(t, w.Contains(MustParseClock("09:00")))
	assert.True(t, w.Contains(MustParseClock("09:59")))
	assert.False(t, w.Contains(MustParseClock("10:00")))
	assert.False(t, w.Contains(MustParseClock("08:59")))
	assert.Equal(t, 60, w.Minutes())

	assert.True(t, w.Overlaps(Window{Start: MustParseClock("09:30"), End: MustParseClock("11:00")}))
	assert.False(t, w.Overlaps(Window{Start: MustParseClock("10:00"), End: MustParseClock("11:00")}))

	inverted, err := ParseWindow("23:00", "01:00")
	require.NoError(t, err)
	for _, probe := range []string{"23:30", "00:30", "12:00"} {
		assert.False(t, inverted.Contains(MustParseClock(probe)), probe)
	}
	assert.Negative(t, inverted.Minutes())
}
