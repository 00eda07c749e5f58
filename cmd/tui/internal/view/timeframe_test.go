package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframe_DateRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	type testCase struct {
		name      string
		timeframe Timeframe
		wantStart string
		wantEnd   string
	}

	tests := []testCase{
		{name: "ThisMonth", timeframe: TimeframeThisMonth, wantStart: "2026-03-01", wantEnd: "2026-03-15"},
		{name: "LastMonth", timeframe: TimeframeLastMonth, wantStart: "2026-02-01", wantEnd: "2026-02-28"},
		{name: "Last30Days", timeframe: TimeframeLast30Days, wantStart: "2026-02-14", wantEnd: "2026-03-15"},
		{name: "Last90Days", timeframe: TimeframeLast90Days, wantStart: "2025-12-16", wantEnd: "2026-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.timeframe.DateRange(now)

			assert.Equal(t, tt.wantStart, FormatDate(start))
			assert.Equal(t, tt.wantEnd, FormatDate(end))
			assert.Equal(t, 23, end.Hour())
		})
	}
}

func TestParseRange(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		start, end, err := parseRange("2026-01-10", "2026-01-20")
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 1, 20, 23, 59, 59, 0, time.UTC), end)
	})

	t.Run("Reversed", func(t *testing.T) {
		_, _, err := parseRange("2026-01-20", "2026-01-10")
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := parseRange("20-01-2026", "2026-01-10")
		assert.Error(t, err)
	})
}
