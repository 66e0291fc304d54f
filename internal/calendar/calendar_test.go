package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.June, 1), d)
	assert.Equal(t, "2024-06-01", d.String())
	assert.Equal(t, time.Saturday, d.Weekday())

	_, err = ParseDate("06/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29"}`), &payload))
	assert.Equal(t, NewDate(2024, time.February, 29), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-02-29"}`, string(out))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-01", d.String())

	require.NoError(t, d.Scan("2023-12-31"))
	assert.Equal(t, "2023-12-31", d.String())

	assert.Error(t, d.Scan(42))
}

func TestDaysUntil(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, loc)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"past", time.Date(2024, 5, 1, 0, 0, 0, 0, loc), -9},
		{"earlier today", time.Date(2024, 5, 10, 8, 0, 0, 0, loc), 0},
		{"later today", time.Date(2024, 5, 10, 23, 0, 0, 0, loc), 0},
		{"tomorrow morning", time.Date(2024, 5, 11, 1, 0, 0, 0, loc), 1},
		{"in a week", time.Date(2024, 5, 17, 0, 0, 0, 0, loc), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(now, tt.end, loc))
		})
	}
}

func TestDaysUntilUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 02:00 UTC on the 11th is still the 10th in New York.
	now := time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 19, 0, 0, 0, ny)
	assert.Equal(t, 0, DaysUntil(now, end, ny))
	assert.Equal(t, -1, DaysUntil(now, end, time.UTC))
}

func TestSameMonthDay(t *testing.T) {
	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameMonthDay(dob, time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)))
	assert.False(t, SameMonthDay(dob, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(9, 30), tod)
	assert.Equal(t, "09:30", tod.String())
	assert.True(t, tod.Valid())

	_, err = ParseTimeOfDay("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	at := tod.On(NewDate(2024, time.June, 1), time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), at)
}

func TestIntervalOverlaps(t *testing.T) {
	nineToTen := Interval{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(10, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"partial overlap", Interval{NewTimeOfDay(9, 30), NewTimeOfDay(10, 30)}, true},
		{"contained", Interval{NewTimeOfDay(9, 15), NewTimeOfDay(9, 45)}, true},
		{"identical", nineToTen, true},
		{"back to back after", Interval{NewTimeOfDay(10, 0), NewTimeOfDay(11, 0)}, false},
		{"back to back before", Interval{NewTimeOfDay(8, 0), NewTimeOfDay(9, 0)}, false},
		{"disjoint", Interval{NewTimeOfDay(12, 0), NewTimeOfDay(13, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nineToTen.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(nineToTen))
		})
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Interval{NewTimeOfDay(9, 0), NewTimeOfDay(9, 1)}.Valid())
	assert.False(t, Interval{NewTimeOfDay(9, 0), NewTimeOfDay(9, 0)}.Valid())
	assert.False(t, Interval{NewTimeOfDay(10, 0), NewTimeOfDay(9, 0)}.Valid())
	assert.True(t, Interval{NewTimeOfDay(23, 0), EndOfDay}.Valid())
	assert.False(t, Interval{NewTimeOfDay(23, 0), EndOfDay + 1}.Valid())
	assert.False(t, Interval{EndOfDay, EndOfDay + 30}.Valid())
}

func TestEndOfDay(t *testing.T) {
	end, err := ParseTimeOfDay("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, end)
	assert.Equal(t, "24:00", end.String())
	assert.False(t, end.Valid(), "midnight only closes an interval")

	_, err = ParseTimeOfDay("24:30")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	at := end.On(NewDate(2024, time.June, 1), time.UTC)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), at)

	var late Interval
	require.NoError(t, json.Unmarshal([]byte(`{"start":"22:30","end":"24:00"}`), &late))
	assert.True(t, late.Valid())
	assert.Equal(t, 90, late.Minutes())
}

func TestIntervalJSON(t *testing.T) {
	in := Interval{Start: NewTimeOfDay(6, 5), End: NewTimeOfDay(7, 0)}
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"06:05","end":"07:00"}`, string(out))

	var back Interval
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, in, back)
	assert.Equal(t, 55, back.Minutes())
}
