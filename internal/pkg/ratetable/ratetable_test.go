package ratetable

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoVersions = `
versions:
  - version: "2026.1"
    effective_from: "2026-01-01"
    contributions:
      - code: sss
        name: Social Security
        rate: "0.05"
        ceiling: "30000"
    tax_brackets:
      - lower: "0"
        upper: "20000"
        base_tax: "0"
        rate: "0"
      - lower: "20000"
        base_tax: "0"
        rate: "0.10"
    attendance:
      standard_start: "09:00"
      grace_cutoff: "09:10"
      lunch_break_minutes: 30
      standard_daily_hours: "7.5"
      work_weekdays: [mon, tue, wed, thu, fri, sat]
  - version: "2025.1"
    effective_from: "2025-01-01"
    contributions:
      - code: sss
        name: Social Security
        rate: "0.045"
    tax_brackets:
      - lower: "0"
        base_tax: "0"
        rate: "0"
`

func TestParse_SelectsVersionByDate(t *testing.T) {
	set, err := Parse([]byte(twoVersions))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025.1", "2026.1"}, set.Versions())

	tests := []struct {
		name    string
		date    time.Time
		version string
	}{
		{"inside first version", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), "2025.1"},
		{"last day before switch", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "2025.1"},
		{"switch day", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026.1"},
		{"switch day with clock time", time.Date(2026, 1, 1, 18, 30, 0, 0, time.UTC), "2026.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := set.ForDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.version, table.Version)
		})
	}
}

func TestParse_DecodesDecimalsAndPolicy(t *testing.T) {
	set, err := Parse([]byte(twoVersions))
	require.NoError(t, err)

	table, err := set.ForDate(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, table.Contributions, 1)
	assert.True(t, table.Contributions[0].Rate.Equal(decimal.RequireFromString("0.05")))
	require.NotNil(t, table.Contributions[0].Ceiling)
	assert.True(t, table.Contributions[0].Ceiling.Equal(decimal.NewFromInt(30000)))

	require.Len(t, table.TaxBrackets, 2)
	assert.Nil(t, table.TaxBrackets[1].Upper)

	p := table.Attendance
	assert.Equal(t, 9*time.Hour, p.StandardStart)
	assert.Equal(t, 9*time.Hour+10*time.Minute, p.GraceCutoff)
	assert.Equal(t, 30, p.LunchBreakMinutes)
	assert.True(t, p.StandardDailyHours.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, p.IsWorkday(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))) // Saturday
}

func TestParse_AttendanceDefaults(t *testing.T) {
	set, err := Parse([]byte(twoVersions))
	require.NoError(t, err)

	table, err := set.ForDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, payroll.DefaultAttendancePolicy().StandardStart, table.Attendance.StandardStart)
	assert.Equal(t, 60, table.Attendance.LunchBreakMinutes)
}

func TestForDate_BeforeFirstVersion(t *testing.T) {
	set, err := Parse([]byte(twoVersions))
	require.NoError(t, err)

	_, err = set.ForDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, payroll.ErrRateTableNotFound)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no versions", `versions: []`},
		{"bad number", `
versions:
  - version: "x"
    effective_from: "2025-01-01"
    contributions:
      - code: sss
        rate: "four percent"
`},
		{"bad date", `
versions:
  - version: "x"
    effective_from: "01/01/2025"
`},
		{"overlapping brackets", `
versions:
  - version: "x"
    effective_from: "2025-01-01"
    tax_brackets:
      - lower: "0"
        upper: "100"
        base_tax: "0"
        rate: "0"
      - lower: "50"
        base_tax: "0"
        rate: "0.1"
`},
		{"unbounded bracket not last", `
versions:
  - version: "x"
    effective_from: "2025-01-01"
    tax_brackets:
      - lower: "0"
        base_tax: "0"
        rate: "0"
      - lower: "50"
        base_tax: "0"
        rate: "0.1"
`},
		{"duplicate effective date", `
versions:
  - version: "a"
    effective_from: "2025-01-01"
  - version: "b"
    effective_from: "2025-01-01"
`},
		{"unknown weekday", `
versions:
  - version: "x"
    effective_from: "2025-01-01"
    attendance:
      work_weekdays: [monday]
`},
		{"grace before start", `
versions:
  - version: "x"
    effective_from: "2025-01-01"
    attendance:
      standard_start: "08:00"
      grace_cutoff: "07:45"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, payroll.ErrInvalidRateTable)
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "configs", "rate_tables.yaml")

	set, err := Load(path)
	require.NoError(t, err)

	table, err := set.ForDate(time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, table.Contributions, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
