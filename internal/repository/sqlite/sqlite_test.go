package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/sqlite"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	companyID  = "company-1"
	positionID = "position-1"
	employeeID = "employee-1"
	periodID   = "period-2025-07-a"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedStore(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.SavePosition(ctx, position.Position{
		ID: positionID, CompanyID: companyID, Name: "Engineer",
		PayCategory: payroll.PayCategorySalaried, OvertimeMultiplier: decimal.RequireFromString("1.25"),
	}))

	salary := decimal.RequireFromString("50000")
	rate := decimal.RequireFromString("284.09")
	require.NoError(t, store.SaveEmployee(ctx, employee.Employee{
		ID: employeeID, CompanyID: companyID, PositionID: positionID,
		EmployeeCode: "EMP-001", FullName: "Dana Reyes",
		HireDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EmploymentType: employee.EmploymentTypePermanent,
		BaseSalary:     &salary, HourlyRate: &rate,
		OvertimeEligible: true, LateDeductible: true,
	}))

	require.NoError(t, store.SavePayPeriod(ctx, payroll.PayPeriod{
		ID: periodID, CompanyID: companyID, Label: "2025-07-A",
		StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	}))
}

func loadRateTables(t *testing.T) *ratetable.Set {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	set, err := ratetable.Load(filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "rate_tables.yaml"))
	require.NoError(t, err)
	return set
}

func newService(t *testing.T, store *sqlite.Store) *payrollService.PayrollServiceImpl {
	t.Helper()
	return payrollService.NewPayrollService(
		store.Payroll(), store.PayPeriods(), store.Employees(), store.Positions(),
		store.Attendances(), store.Overtime(), loadRateTables(t), zap.NewNop(),
		payrollService.Options{Workers: 4, Location: time.UTC},
	)
}

func sampleRecord() payroll.PayrollRecord {
	return payroll.PayrollRecord{
		CompanyID: companyID,
		Status:    payroll.RecordStatusDraft,
		PayrollCalculation: payroll.PayrollCalculation{
			EmployeeID:       employeeID,
			PayPeriodID:      periodID,
			BasicPay:         decimal.RequireFromString("25000"),
			GrossIncome:      decimal.RequireFromString("25000"),
			NetSalary:        decimal.RequireFromString("21000.5"),
			RateTableVersion: "2025.1",
			StatutoryDeductions: []payroll.DeductionItem{
				{Code: "sss", Name: "SSS", Rate: decimal.RequireFromString("0.045"), Base: decimal.RequireFromString("50000"), Amount: decimal.RequireFromString("2250")},
			},
		},
	}
}

func TestStore_UpsertIfAbsent(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	ctx := context.Background()
	repo := store.Payroll()

	res, err := repo.UpsertIfAbsent(ctx, sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, payroll.UpsertInserted, res)

	second := sampleRecord()
	second.NetSalary = decimal.RequireFromString("1")
	res, err = repo.UpsertIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, payroll.UpsertAlreadyPresent, res)

	rec, err := repo.GetByEmployeePeriod(ctx, employeeID, periodID)
	require.NoError(t, err)
	assert.Equal(t, "21000.50", rec.NetSalary.StringFixed(2))
	assert.Equal(t, payroll.RecordStatusDraft, rec.Status)
	require.Len(t, rec.StatutoryDeductions, 1)
	assert.Equal(t, "sss", rec.StatutoryDeductions[0].Code)
	require.NotNil(t, rec.EmployeeName)
	assert.Equal(t, "Dana Reyes", *rec.EmployeeName)
}

func TestStore_UpsertIfAbsent_Concurrent(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	repo := store.Payroll()

	const callers = 16
	results := make([]payroll.UpsertResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.UpsertIfAbsent(context.Background(), sampleRecord())
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	inserted := 0
	for _, r := range results {
		if r == payroll.UpsertInserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)

	list, err := repo.ListByPeriod(context.Background(), periodID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_GetByEmployeePeriod_NotFound(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)

	_, err := store.Payroll().GetByEmployeePeriod(context.Background(), employeeID, periodID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	_, err = store.PayPeriods().GetPeriodByID(context.Background(), "missing")
	assert.ErrorIs(t, err, payroll.ErrPayPeriodNotFound)

	_, err = store.Employees().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = store.Positions().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, position.ErrPositionNotFound)
}

func TestStore_SeedCompanyDefaults(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	ids, err := fixtures.SeedCompanyDefaults(ctx, store, "company-demo", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, ids.PayPeriodIDs, 2)

	positions, err := store.Positions().GetByCompanyID(ctx, "company-demo")
	require.NoError(t, err)
	assert.Len(t, positions, len(fixtures.GetDefaultPositions("company-demo")))
	assert.Equal(t, ids.PositionIDs, positionIDs(positions))

	second, err := store.PayPeriods().GetPeriodByID(ctx, ids.PayPeriodIDs["2025-03-B"])
	require.NoError(t, err)
	assert.Equal(t, "2025-03-B", second.Label)
	assert.Equal(t, 31, second.EndDate.Day())

	none, err := store.Positions().GetByCompanyID(ctx, companyID)
	require.NoError(t, err)
	assert.Empty(t, none)

	err = store.SavePosition(ctx, position.Position{ID: "bad", CompanyID: "company-demo", Name: "Bad", PayCategory: "weekly"})
	assert.ErrorIs(t, err, position.ErrInvalidPayPolicy)
}

func positionIDs(positions []position.Position) map[string]string {
	out := make(map[string]string, len(positions))
	for _, p := range positions {
		out[p.Name] = p.ID
	}
	return out
}

func TestStore_ApplyCompensationChange(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	ctx := context.Background()
	repo := store.Employees()

	salary := decimal.RequireFromString("55000")
	change := employee.CompensationChange{
		ID: "change-1", EmployeeID: employeeID, CompanyID: companyID,
		FromVersion: 0, ToVersion: 1, BaseSalary: &salary,
		OvertimeEligible: true, LateDeductible: false,
		EffectiveDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Reason:        "annual review", ChangedBy: "user-1",
	}

	applied, err := repo.ApplyCompensationChange(ctx, change)
	require.NoError(t, err)
	assert.False(t, applied.CreatedAt.IsZero())

	emp, err := repo.GetByID(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, 1, emp.CompensationVersion)
	require.NotNil(t, emp.BaseSalary)
	assert.True(t, emp.BaseSalary.Equal(salary))
	assert.Nil(t, emp.HourlyRate)
	assert.False(t, emp.LateDeductible)

	stale := change
	stale.ID = "change-2"
	_, err = repo.ApplyCompensationChange(ctx, stale)
	assert.ErrorIs(t, err, employee.ErrCompensationConflict)

	other := change
	other.ID = "change-3"
	other.CompanyID = "company-2"
	_, err = repo.ApplyCompensationChange(ctx, other)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	changes, err := repo.ListCompensationChanges(ctx, employeeID, companyID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "annual review", changes[0].Reason)
	assert.Equal(t, 1, changes[0].ToVersion)
}

func TestStore_AttendanceExcludesNonPresence(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	ctx := context.Background()

	in := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	out := time.Date(2025, 7, 1, 17, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveAttendance(ctx, attendance.Attendance{
		ID: "att-1", EmployeeID: employeeID, CompanyID: companyID,
		Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), ClockIn: &in, ClockOut: &out, Status: "on_time",
	}))
	require.NoError(t, store.SaveAttendance(ctx, attendance.Attendance{
		ID: "att-2", EmployeeID: employeeID, CompanyID: companyID,
		Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), Status: attendance.StatusRejected,
	}))
	require.NoError(t, store.SaveAttendance(ctx, attendance.Attendance{
		ID: "att-3", EmployeeID: employeeID, CompanyID: companyID,
		Date: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), Status: "on_time",
	}))

	rows, err := store.Attendances().GetByEmployeeAndDateRange(ctx, employeeID,
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "att-1", rows[0].ID)
	require.NotNil(t, rows[0].ClockIn)
	assert.True(t, rows[0].ClockIn.Equal(in))
	assert.NotNil(t, rows[0].ClockOut)
}

func TestStore_ListClosedUnprocessed(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	ctx := context.Background()
	periods := store.PayPeriods()

	open, err := periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, periodID, closed[0].ID)

	_, err = store.Payroll().UpsertIfAbsent(ctx, sampleRecord())
	require.NoError(t, err)

	closed, err = periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestStore_ProcessPeriodEndToEnd(t *testing.T) {
	store := newStore(t)
	seedStore(t, store)
	ctx := context.Background()

	for day := 1; day <= 15; day++ {
		date := time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		in := date.Add(8 * time.Hour)
		out := date.Add(17 * time.Hour)
		require.NoError(t, store.SaveAttendance(ctx, attendance.Attendance{
			ID: fmt.Sprintf("att-%02d", day), EmployeeID: employeeID, CompanyID: companyID,
			Date: date, ClockIn: &in, ClockOut: &out, Status: "on_time",
		}))
	}
	approvedStart := time.Date(2025, 7, 3, 17, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveOvertime(ctx, overtime.OvertimeRequest{
		ID: "ot-1", EmployeeID: employeeID, CompanyID: companyID,
		StartAt: approvedStart, EndAt: approvedStart.Add(2 * time.Hour), Status: payroll.OvertimeStatusApproved,
	}))
	pendingStart := time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveOvertime(ctx, overtime.OvertimeRequest{
		ID: "ot-2", EmployeeID: employeeID, CompanyID: companyID,
		StartAt: pendingStart, EndAt: pendingStart.Add(3 * time.Hour), Status: payroll.OvertimeStatusPending,
	}))

	svc := newService(t, store)

	result, err := svc.ProcessPeriod(ctx, periodID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, 0, result.FailedCount)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, payroll.OutcomeInserted, result.Outcomes[0].Status)

	rec, err := svc.GetRecord(ctx, employeeID, periodID)
	require.NoError(t, err)
	assert.Equal(t, "25000", rec.BasicPay.String())
	assert.Equal(t, 0, rec.AbsentDays)
	assert.Equal(t, "2", rec.OvertimeHours.String())
	assert.True(t, rec.NetSalary.Equal(rec.GrossIncome.Sub(rec.TotalDeductions)))
	assert.Equal(t, "2025.1", rec.RateTableVersion)

	again, err := svc.ProcessPeriod(ctx, periodID)
	require.NoError(t, err)
	require.Len(t, again.Outcomes, 1)
	assert.Equal(t, payroll.OutcomeAlreadyProcessed, again.Outcomes[0].Status)

	records, err := svc.ListRecords(ctx, periodID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
