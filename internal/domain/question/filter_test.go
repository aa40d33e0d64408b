package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubDateRange(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
	midnight := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		filter    string
		wantSince time.Time
		wantUntil time.Time
	}{
		{DateAny, time.Time{}, time.Time{}},
		{"", time.Time{}, time.Time{}},
		{DateToday, midnight, midnight.AddDate(0, 0, 1)},
		{DatePast7Days, midnight.AddDate(0, 0, -7), midnight.AddDate(0, 0, 1)},
		{DateThisMonth, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{DateThisYear, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			since, until, err := PubDateRange(tt.filter, now)
			require.NoError(t, err)
			assert.True(t, tt.wantSince.Equal(since), "since = %v", since)
			assert.True(t, tt.wantUntil.Equal(until), "until = %v", until)
		})
	}

	_, _, err := PubDateRange("last_decade", now)
	assert.ErrorIs(t, err, ErrInvalidDateFilter)
}

func TestPubDateRangeDecember(t *testing.T) {
	now := time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC)

	since, until, err := PubDateRange(DateThisMonth, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), since)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), until)
}
