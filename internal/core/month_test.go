package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, 2025, m.Year())
	assert.Equal(t, time.February, m.Month())
	assert.Equal(t, "2025-02", m.String())

	for _, bad := range []string{"", "2025", "2025-13", "25-01", "2025/01"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, bad)
	}
}

func TestMonthContainsUsesCalendarFields(t *testing.T) {
	tests := []struct {
		month string
		days  int
	}{
		{"2025-02", 28},
		{"2024-02", 29},
		{"2025-04", 30},
		{"2025-01", 31},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			m := MustParseMonth(tt.month)
			assert.Equal(t, tt.days, m.Days())

			last := time.Date(m.Year(), m.Month(), tt.days, 23, 59, 59, 0, time.UTC)
			assert.True(t, m.Contains(m.Start()))
			assert.True(t, m.Contains(last))
			assert.False(t, m.Contains(last.Add(time.Second)))
			assert.False(t, m.Contains(m.Start().Add(-time.Second)))
		})
	}
}

func TestMonthArithmetic(t *testing.T) {
	dec := MustParseMonth("2024-12")
	assert.Equal(t, "2025-01", dec.AddMonths(1).String())
	assert.Equal(t, "2024-01", dec.AddMonths(-11).String())
	assert.True(t, dec.Before(dec.AddMonths(1)))
	assert.True(t, dec.AddMonths(1).After(dec))
	assert.False(t, dec.Before(dec))

	assert.Equal(t, "2025-01", NewMonth(2024, 13).String())
}

func TestMonthRange(t *testing.T) {
	months := MonthRange(MustParseMonth("2024-11"), MustParseMonth("2025-02"))
	labels := make([]string, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.String())
	}
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01", "2025-02"}, labels)

	assert.Nil(t, MonthRange(MustParseMonth("2025-02"), MustParseMonth("2025-01")))
}

func TestMonthJSON(t *testing.T) {
	type payload struct {
		Month Month `json:"month"`
	}

	out, err := json.Marshal(payload{Month: MustParseMonth("2025-03")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2025-03"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"month":"2025-07"}`), &in))
	assert.Equal(t, MustParseMonth("2025-07"), in.Month)

	assert.Error(t, json.Unmarshal([]byte(`{"month":"July"}`), &in))
}
