package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptedLayouts(t *testing.T) {
	c, err := NewClock("Europe/Kyiv")
	require.NoError(t, err)

	// Kyiv is UTC+3 in summer.
	got, err := c.Normalize("2025-07-01T12:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), got)

	// Space-separated layout is accepted too.
	got, err = c.Normalize("2025-07-01 12:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), got)

	// Kyiv is UTC+2 in winter.
	got, err = c.Normalize("2025-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC), got)
}

func TestNormalizeRejectsEverythingElse(t *testing.T) {
	c, err := NewClock("Europe/Kyiv")
	require.NoError(t, err)

	for _, raw := range []string{
		"",
		"not-a-date",
		"2025/07/01 12:00:00",
		"2025-07-01T12:00",      // missing seconds
		"2025-07-01",            // bare date only allowed for bounds
		"01-07-2025 12:00:00",   // day-first order
		"2025-07-01 12:00:00+03:00", // explicit offsets not accepted
	} {
		_, err := c.Normalize(raw)
		assert.ErrorIs(t, err, ErrMalformedDate, "input %q", raw)
	}
}

func TestNormalizeBoundCompletesBareDates(t *testing.T) {
	c, err := NewClock("Europe/Kyiv")
	require.NoError(t, err)

	start, err := c.NormalizeBound("2025-07-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 21, 0, 0, 0, time.UTC), start)

	end, err := c.NormalizeBound("2025-07-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 20, 59, 59, 0, time.UTC), end)

	// A full timestamp passes through unchanged.
	full, err := c.NormalizeBound("2025-07-01T08:00:00", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 5, 0, 0, 0, time.UTC), full)
}

func TestFormatLocalRoundTrip(t *testing.T) {
	c, err := NewClock("Europe/Kyiv")
	require.NoError(t, err)

	in := "2025-03-08 19:45:00"
	instant, err := c.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, instant.Location())
	assert.Equal(t, in, c.FormatLocal(instant))
}

func TestNewClockUnknownZone(t *testing.T) {
	_, err := NewClock("Mars/Olympus_Mons")
	assert.Error(t, err)
}
