package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

func TestParseTimePoint(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"time.Time passes through", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"int epoch seconds", int(1709600400), time.Unix(1709600400, 0).UTC()},
		{"int64 epoch seconds", int64(1709600400), time.Unix(1709600400, 0).UTC()},
		{"float64 epoch seconds", float64(1709600400), time.Unix(1709600400, 0).UTC()},
		{"string epoch seconds", "1709600400", time.Unix(1709600400, 0).UTC()},
		{"date string", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"RFC3339 string", "2024-03-05T10:30:00Z", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"date-time string", "2024-03-05 10:30:00", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseTimePoint("since", tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseTimePoint_Unparsable(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"garbage string", "not-a-date"},
		{"nil", nil},
		{"bool", true},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseTimePoint("until", tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUnparsableTime)

			var parseErr *apperrors.TimeParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "until", parseErr.Field)
		})
	}
}

func TestNewDateRange_TruncatesToDays(t *testing.T) {
	rng, err := domain.NewDateRange("2024-03-05 23:59:59", "2024-03-07T01:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), rng.Since)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), rng.Until)
}

func TestNewDateRange_NamesOffendingField(t *testing.T) {
	_, err := domain.NewDateRange("garbage", "2024-03-07")
	var parseErr *apperrors.TimeParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "since", parseErr.Field)

	_, err = domain.NewDateRange("2024-03-05", "garbage")
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "until", parseErr.Field)
}

func TestDateRange_Days(t *testing.T) {
	t.Run("inclusive of both boundaries", func(t *testing.T) {
		rng, err := domain.NewDateRange("2024-03-05", "2024-03-07")
		require.NoError(t, err)

		days := rng.Days()
		require.Len(t, days, 3)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), days[0])
		assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), days[1])
		assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), days[2])
	})

	t.Run("single day when since equals until", func(t *testing.T) {
		rng, err := domain.NewDateRange("2024-03-05", "2024-03-05 18:00:00")
		require.NoError(t, err)

		days := rng.Days()
		require.Len(t, days, 1)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), days[0])
	})

	t.Run("empty when since is after until", func(t *testing.T) {
		rng, err := domain.NewDateRange("2024-03-08", "2024-03-05")
		require.NoError(t, err)
		assert.Empty(t, rng.Days())
	})

	t.Run("crosses month boundary without gaps", func(t *testing.T) {
		rng, err := domain.NewDateRange("2024-02-28", "2024-03-02")
		require.NoError(t, err)

		days := rng.Days()
		require.Len(t, days, 4)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), days[1], "2024 is a leap year")
		for i := 1; i < len(days); i++ {
			assert.Equal(t, 24*time.Hour, days[i].Sub(days[i-1]))
		}
	})
}

func TestDateRange_Contains(t *testing.T) {
	rng, err := domain.NewDateRange("2024-03-05", "2024-03-07")
	require.NoError(t, err)

	assert.True(t, rng.Contains(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rng.Contains(time.Date(2024, 3, 7, 23, 59, 59, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2024, 3, 4, 23, 59, 59, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)))
}
