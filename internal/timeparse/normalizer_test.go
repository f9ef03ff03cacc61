package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Pomiro/assistant/internal/errors"
)

// fixedNow pins the clock to 2025-06-15 12:00 in the home timezone.
func fixedNow() *Normalizer {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, homeZone)
	return NewNormalizer().WithNow(func() time.Time { return now })
}

func TestNormalize_NumericFormatsAgree(t *testing.T) {
	n := fixedNow()
	want := time.Date(2025, 7, 1, 10, 30, 0, 0, homeZone)

	tests := []struct {
		name string
		date string
	}{
		{"ISO", "2025-07-01"},
		{"dash", "01-07-2025"},
		{"dot", "01.07.2025"},
		{"slash", "01/07/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.date, "10:30")
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %v, want %v", got, want)
		})
	}
}

func TestNormalize_RelativeDates(t *testing.T) {
	n := fixedNow()

	tests := []struct {
		name     string
		date     string
		clock    string
		wantDate string
	}{
		{"today", "today", "18:00", "2025-06-15"},
		{"today uppercase", "Today", "18:00", "2025-06-15"},
		{"today russian", "сегодня", "18:00", "2025-06-15"},
		{"empty defaults to today", "", "18:00", "2025-06-15"},
		{"tomorrow", "tomorrow", "09:00", "2025-06-16"},
		{"tomorrow russian", "завтра", "09:00", "2025-06-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.date, tt.clock)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
		})
	}
}

func TestNormalize_ClockRoundTrip(t *testing.T) {
	n := fixedNow()

	tests := []string{"00:00", "07:30", "12:00", "23:59"}
	for _, clock := range tests {
		t.Run(clock, func(t *testing.T) {
			got, err := n.Normalize("tomorrow", clock)
			require.NoError(t, err)
			assert.Equal(t, clock, got.Format("15:04"))
		})
	}
}

func TestNormalize_BadClock(t *testing.T) {
	n := fixedNow()

	tests := []struct {
		name  string
		clock string
	}{
		{"hour out of range", "24:00"},
		{"minute out of range", "12:60"},
		{"am/pm shape", "5pm"},
		{"no separator", "1200"},
		{"empty", ""},
		{"free text", "in the evening"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize("tomorrow", tt.clock)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeFormat, apperrors.CodeOf(err))
		})
	}
}

func TestNormalize_BadDate(t *testing.T) {
	n := fixedNow()

	tests := []string{"yesterday", "next friday", "2025/07/01", "01-07-25"}
	for _, date := range tests {
		t.Run(date, func(t *testing.T) {
			_, err := n.Normalize(date, "10:00")
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeFormat, apperrors.CodeOf(err))
		})
	}
}

func TestNormalize_PastCheckOnlyForToday(t *testing.T) {
	n := fixedNow() // now is 12:00

	t.Run("today earlier than now fails", func(t *testing.T) {
		_, err := n.Normalize("today", "11:59")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodePastInstant, apperrors.CodeOf(err))
	})

	t.Run("empty date earlier than now fails", func(t *testing.T) {
		_, err := n.Normalize("", "08:00")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodePastInstant, apperrors.CodeOf(err))
	})

	t.Run("today later than now passes", func(t *testing.T) {
		_, err := n.Normalize("today", "12:01")
		require.NoError(t, err)
	})

	t.Run("tomorrow never fails the past check", func(t *testing.T) {
		got, err := n.Normalize("tomorrow", "00:00")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-16 00:00", got.Format("2006-01-02 15:04"))
	})

	t.Run("explicit past date is accepted", func(t *testing.T) {
		_, err := n.Normalize("2020-01-01", "10:00")
		require.NoError(t, err)
	})
}
