package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"09:00": 540,
		"12:30": 750,
		"23:59": 1439,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "9:00", "24:00", "12:60", "12-30", "12:301", "noon"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, "input %q", bad)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:59", FormatClock(1439))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-11-05")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.November, Day: 5}, d)
	assert.Equal(t, "2025-11-05", d.String())

	_, err = ParseDate("11/05/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("2025-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOfIgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	ts := time.Date(2025, time.November, 5, 23, 45, 0, 0, loc)
	assert.Equal(t, Date{Year: 2025, Month: time.November, Day: 5}, DateOf(ts))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(KindMinistry, StatusNoShow))
	assert.False(t, ValidStatus(KindSafety, StatusNoShow))
	assert.True(t, ValidStatus(KindSafety, StatusCancelled))
	assert.False(t, ValidStatus(KindMinistry, Status("archived")))
}

func TestCanTransition(t *testing.T) {
	// Scheduled entries may close out.
	assert.True(t, CanTransition(KindMinistry, StatusScheduled, StatusCompleted))
	assert.True(t, CanTransition(KindMinistry, StatusScheduled, StatusCancelled))
	assert.True(t, CanTransition(KindMinistry, StatusScheduled, StatusNoShow))
	assert.True(t, CanTransition(KindSafety, StatusScheduled, StatusCompleted))

	// Terminal statuses are absorbing.
	assert.False(t, CanTransition(KindMinistry, StatusCompleted, StatusScheduled))
	assert.False(t, CanTransition(KindMinistry, StatusCancelled, StatusScheduled))
	assert.False(t, CanTransition(KindMinistry, StatusNoShow, StatusCompleted))
	assert.False(t, CanTransition(KindSafety, StatusCompleted, StatusScheduled))

	// Same-status writes are a no-op, not a transition.
	assert.True(t, CanTransition(KindMinistry, StatusCompleted, StatusCompleted))

	// No-show is not part of the safety vocabulary at all.
	assert.False(t, CanTransition(KindSafety, StatusScheduled, StatusNoShow))
}
