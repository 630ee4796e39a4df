package ratetable

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money values are quoted strings in the file so they never pass through float64.
type fileContribution struct {
	Code    string  `yaml:"code"`
	Name    string  `yaml:"name"`
	Rate    string  `yaml:"rate"`
	Ceiling *string `yaml:"ceiling"`
}

type fileBracket struct {
	Lower   string  `yaml:"lower"`
	Upper   *string `yaml:"upper"`
	BaseTax string  `yaml:"base_tax"`
	Rate    string  `yaml:"rate"`
}

type fileAttendance struct {
	StandardStart      string   `yaml:"standard_start"`
	GraceCutoff        string   `yaml:"grace_cutoff"`
	LunchBreakMinutes  *int     `yaml:"lunch_break_minutes"`
	StandardDailyHours string   `yaml:"standard_daily_hours"`
	WorkWeekdays       []string `yaml:"work_weekdays"`
}

type fileVersion struct {
	Version       string             `yaml:"version"`
	EffectiveFrom string             `yaml:"effective_from"`
	Contributions []fileContribution `yaml:"contributions"`
	TaxBrackets   []fileBracket      `yaml:"tax_brackets"`
	Attendance    *fileAttendance    `yaml:"attendance"`
}

type file struct {
	Versions []fileVersion `yaml:"versions"`
}

// Set - All known rate-table versions ordered by EffectiveFrom
type Set struct {
	versions []payroll.RateTable
}

// NewSet validates and orders tables. Duplicate effective dates are rejected.
func NewSet(tables ...payroll.RateTable) (*Set, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no versions defined", payroll.ErrInvalidRateTable)
	}

	versions := make([]payroll.RateTable, len(tables))
	copy(versions, tables)
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].EffectiveFrom.Before(versions[j].EffectiveFrom)
	})

	for i, v := range versions {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("version %q: %w", v.Version, err)
		}
		if i > 0 && v.EffectiveFrom.Equal(versions[i-1].EffectiveFrom) {
			return nil, fmt.Errorf("%w: versions %q and %q share effective_from", payroll.ErrInvalidRateTable, versions[i-1].Version, v.Version)
		}
	}

	return &Set{versions: versions}, nil
}

// ForDate returns the latest version effective on or before date
func (s *Set) ForDate(date time.Time) (payroll.RateTable, error) {
	day := payroll.DateOf(date)
	for i := len(s.versions) - 1; i >= 0; i-- {
		if !s.versions[i].EffectiveFrom.After(day) {
			return s.versions[i], nil
		}
	}
	return payroll.RateTable{}, fmt.Errorf("%w: nothing effective on %s", payroll.ErrRateTableNotFound, day.Format("2006-01-02"))
}

// Versions lists the loaded version labels, oldest first
func (s *Set) Versions() []string {
	out := make([]string, 0, len(s.versions))
	for _, v := range s.versions {
		out = append(out, v.Version)
	}
	return out
}

// Load reads a rate-table YAML file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table file: %w", err)
	}
	return Parse(data)
}

// Parse decodes rate-table YAML
func Parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate table: %w", err)
	}

	tables := make([]payroll.RateTable, 0, len(f.Versions))
	for _, fv := range f.Versions {
		t, err := fv.toDomain()
		if err != nil {
			return nil, fmt.Errorf("version %q: %w", fv.Version, err)
		}
		tables = append(tables, t)
	}
	return NewSet(tables...)
}

func (fv fileVersion) toDomain() (payroll.RateTable, error) {
	if strings.TrimSpace(fv.Version) == "" {
		return payroll.RateTable{}, fmt.Errorf("%w: version is required", payroll.ErrInvalidRateTable)
	}
	from, err := time.Parse("2006-01-02", fv.EffectiveFrom)
	if err != nil {
		return payroll.RateTable{}, fmt.Errorf("%w: effective_from must be YYYY-MM-DD", payroll.ErrInvalidRateTable)
	}

	t := payroll.RateTable{
		Version:       fv.Version,
		EffectiveFrom: from,
		Attendance:    payroll.DefaultAttendancePolicy(),
	}

	for _, c := range fv.Contributions {
		rate, err := parseDecimal("contribution rate", c.Rate)
		if err != nil {
			return payroll.RateTable{}, err
		}
		item := payroll.ContributionRate{Code: c.Code, Name: c.Name, Rate: rate}
		if c.Ceiling != nil {
			ceiling, err := parseDecimal("contribution ceiling", *c.Ceiling)
			if err != nil {
				return payroll.RateTable{}, err
			}
			item.Ceiling = &ceiling
		}
		t.Contributions = append(t.Contributions, item)
	}

	for _, b := range fv.TaxBrackets {
		var br payroll.TaxBracket
		if br.Lower, err = parseDecimal("bracket lower", b.Lower); err != nil {
			return payroll.RateTable{}, err
		}
		if br.BaseTax, err = parseDecimal("bracket base_tax", b.BaseTax); err != nil {
			return payroll.RateTable{}, err
		}
		if br.Rate, err = parseDecimal("bracket rate", b.Rate); err != nil {
			return payroll.RateTable{}, err
		}
		if b.Upper != nil {
			upper, err := parseDecimal("bracket upper", *b.Upper)
			if err != nil {
				return payroll.RateTable{}, err
			}
			br.Upper = &upper
		}
		t.TaxBrackets = append(t.TaxBrackets, br)
	}

	if fv.Attendance != nil {
		if err := fv.Attendance.apply(&t.Attendance); err != nil {
			return payroll.RateTable{}, err
		}
	}

	return t, nil
}

func (fa fileAttendance) apply(p *payroll.AttendancePolicy) error {
	if fa.StandardStart != "" {
		d, err := parseClock(fa.StandardStart)
		if err != nil {
			return err
		}
		p.StandardStart = d
	}
	if fa.GraceCutoff != "" {
		d, err := parseClock(fa.GraceCutoff)
		if err != nil {
			return err
		}
		p.GraceCutoff = d
	}
	if p.GraceCutoff < p.StandardStart {
		return fmt.Errorf("%w: grace_cutoff is before standard_start", payroll.ErrInvalidRateTable)
	}
	if fa.LunchBreakMinutes != nil {
		if *fa.LunchBreakMinutes < 0 {
			return fmt.Errorf("%w: lunch_break_minutes must be non-negative", payroll.ErrInvalidRateTable)
		}
		p.LunchBreakMinutes = *fa.LunchBreakMinutes
	}
	if fa.StandardDailyHours != "" {
		h, err := parseDecimal("standard_daily_hours", fa.StandardDailyHours)
		if err != nil {
			return err
		}
		p.StandardDailyHours = h
	}
	if len(fa.WorkWeekdays) > 0 {
		days := make([]time.Weekday, 0, len(fa.WorkWeekdays))
		for _, name := range fa.WorkWeekdays {
			wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return fmt.Errorf("%w: unknown weekday %q", payroll.ErrInvalidRateTable, name)
			}
			days = append(days, wd)
		}
		p.WorkWeekdays = days
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q must be HH:MM", payroll.ErrInvalidRateTable, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", payroll.ErrInvalidRateTable, field, s)
	}
	return d, nil
}
