package gml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO_OffsetHandling(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "utc marker",
			input: "2013-05-01T10:00:00Z",
			want:  time.Date(2013, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "lowercase utc marker",
			input: "2013-05-01T10:00:00z",
			want:  time.Date(2013, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "positive offset",
			input: "2013-05-01T10:00:00+02:00",
			want:  time.Date(2013, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "negative offset",
			input: "2013-05-01T10:00:00-05:00",
			want:  time.Date(2013, 5, 1, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "no offset defaults to utc",
			input: "2013-05-01T10:00:00",
			want:  time.Date(2013, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2013-05-01",
			want:  time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "year and month only",
			input: "2013-05",
			want:  time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISO(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "parsed %v, want %v", got, tt.want)
		})
	}
}

func TestParseISO_Invalid(t *testing.T) {
	_, err := ParseISO("")
	assert.Error(t, err)

	_, err = ParseISO("not-a-time")
	assert.Error(t, err)
}

func TestParseFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"2013-05-01T10:00:00Z",
		"2013-05-01T10:00:00+02:00",
		"2013-05-01",
	}
	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			parsed, err := ParseISO(s)
			require.NoError(t, err)

			reparsed, err := ParseISO(FormatISO(parsed))
			require.NoError(t, err)
			assert.True(t, parsed.Equal(reparsed), "round trip changed the absolute time")
		})
	}
}

func TestFormat_CustomLayoutReplacesTrailingZ(t *testing.T) {
	ts := time.Date(2013, 5, 1, 10, 0, 0, 0, time.UTC)
	got := Format(ts, "2006-01-02T15:04:05Z07:00")
	assert.Equal(t, "2013-05-01T10:00:00+00:00", got)
}

func TestParseTime_PeriodForm(t *testing.T) {
	parsed, err := ParseTime("2013-05-01T00:00:00Z/2013-05-02T00:00:00Z")
	require.NoError(t, err)

	period, ok := parsed.(Period)
	require.True(t, ok)
	assert.Equal(t, time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC), period.Start.UTC())
	assert.Equal(t, time.Date(2013, 5, 2, 0, 0, 0, 0, time.UTC), period.End.UTC())

	instant, err := ParseTime("2013-05-01T12:00:00Z")
	require.NoError(t, err)
	_, ok = instant.(Instant)
	assert.True(t, ok)
}

func TestEndOfRequestedPeriod(t *testing.T) {
	base := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		isoLength int
		want      time.Time
	}{
		{4, time.Date(2013, 12, 31, 23, 59, 59, 999e6, time.UTC)},
		{7, time.Date(2013, 1, 31, 23, 59, 59, 999e6, time.UTC)},
		{10, time.Date(2013, 1, 1, 23, 59, 59, 999e6, time.UTC)},
		{13, time.Date(2013, 1, 1, 0, 59, 59, 999e6, time.UTC)},
		{16, time.Date(2013, 1, 1, 0, 0, 59, 999e6, time.UTC)},
		{19, time.Date(2013, 1, 1, 0, 0, 0, 999e6, time.UTC)},
		{42, base},
	}
	for _, tt := range tests {
		got := EndOfRequestedPeriod(base, tt.isoLength)
		assert.True(t, got.Equal(tt.want), "length %d: got %v, want %v", tt.isoLength, got, tt.want)
	}
}

func TestFormatTime_PeriodUsesSlash(t *testing.T) {
	p := NewPeriod(
		time.Date(2013, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2013, 5, 2, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, "2013-05-01T00:00:00Z/2013-05-02T00:00:00Z", FormatTime(p, ""))
}
