//go:build unit

package timeofday_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseCase struct {
	name    string
	input   string
	want    timeofday.Minutes
	wantErr bool
}

func runParseCases(t *testing.T, cases []parseCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := timeofday.Parse(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("24-hour form", func(t *testing.T) {
		runParseCases(t, []parseCase{
			{name: "midnight", input: "00:00", want: 0},
			{name: "plain morning", input: "09:30", want: 9*60 + 30},
			{name: "single digit hour", input: "9:30", want: 9*60 + 30},
			{name: "afternoon", input: "13:45", want: 13*60 + 45},
			{name: "last minute of the day", input: "23:59", want: 23*60 + 59},
			{name: "surrounding whitespace", input: "  08:00  ", want: 8 * 60},
			{name: "hour out of range", input: "24:00", wantErr: true},
			{name: "minute out of range", input: "10:60", wantErr: true},
		})
	})

	t.Run("12-hour form", func(t *testing.T) {
		runParseCases(t, []parseCase{
			{name: "morning with marker", input: "9:30 AM", want: 9*60 + 30},
			{name: "afternoon with marker", input: "1:45 PM", want: 13*60 + 45},
			{name: "12 AM is midnight", input: "12:00 AM", want: 0},
			{name: "12 PM is noon", input: "12:00 PM", want: 12 * 60},
			{name: "lowercase marker without space", input: "7:15pm", want: 19*60 + 15},
			{name: "hour zero with marker", input: "0:30 AM", wantErr: true},
			{name: "hour thirteen with marker", input: "13:00 PM", wantErr: true},
		})
	})

	t.Run("fallback layouts", func(t *testing.T) {
		runParseCases(t, []parseCase{
			{name: "with seconds", input: "14:30:00", want: 14*60 + 30},
			{name: "garbage", input: "mediodía", wantErr: true},
			{name: "empty", input: "", wantErr: true},
		})
	})

	t.Run("decode error carries the input", func(t *testing.T) {
		_, err := timeofday.Parse("not a time")
		require.Error(t, err)

		var decodeErr *timeofday.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "not a time", decodeErr.Input)
	})
}

func TestFormatRoundTrip(t *testing.T) {
	for _, m := range []timeofday.Minutes{0, 1, 9*60 + 5, 12 * 60, 23*60 + 59} {
		got, err := timeofday.Parse(m.Format())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestAt(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 23, 59, 0, 0, loc)
	at := timeofday.Minutes(9*60 + 30).At(day)

	assert.Equal(t, 2026, at.Year())
	assert.Equal(t, time.March, at.Month())
	assert.Equal(t, 14, at.Day())
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, loc, at.Location())
}
