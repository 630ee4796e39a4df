package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seed struct {
	companyID  string
	employeeID string
	periodID   string
}

func setupDatabase(t *testing.T) (*TestDatabaseSetup, seed) {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	t.Cleanup(setup.Close)
	require.NoError(t, setup.TruncateAllTables(ctx))

	s := seed{companyID: uuid.NewString(), employeeID: uuid.NewString(), periodID: uuid.NewString()}
	positionID := uuid.NewString()

	_, err = setup.DB.Exec(ctx, `INSERT INTO positions (id, company_id, name, pay_category, overtime_multiplier) VALUES ($1, $2, 'Engineer', 'salaried', 1.25)`,
		positionID, s.companyID)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `
		INSERT INTO employees (id, company_id, position_id, employee_code, full_name, hire_date, employment_type, base_salary, hourly_rate)
		VALUES ($1, $2, $3, 'EMP-001', 'Dana Reyes', '2024-01-15', 'permanent', 50000, 284.09)`,
		s.employeeID, s.companyID, positionID)
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `INSERT INTO pay_periods (id, company_id, label, start_date, end_date) VALUES ($1, $2, '2025-07-A', '2025-07-01', '2025-07-15')`,
		s.periodID, s.companyID)
	require.NoError(t, err)

	return setup, s
}

func sampleRecord(s seed) payroll.PayrollRecord {
	return payroll.PayrollRecord{
		CompanyID: s.companyID,
		Status:    payroll.RecordStatusDraft,
		PayrollCalculation: payroll.PayrollCalculation{
			EmployeeID:         s.employeeID,
			PayPeriodID:        s.periodID,
			BasicPay:           decimal.RequireFromString("25000.00"),
			AttendanceEarnings: decimal.Zero,
			OvertimePay:        decimal.Zero,
			GrossIncome:        decimal.RequireFromString("25000.00"),
			StatutoryDeductions: []payroll.DeductionItem{
				{Code: "sss", Name: "SSS", Rate: decimal.RequireFromString("0.045"), Base: decimal.RequireFromString("50000"), Amount: decimal.RequireFromString("2250.00")},
			},
			StatutoryTotal:   decimal.RequireFromString("2250.00"),
			TaxableIncome:    decimal.RequireFromString("22750.00"),
			WithholdingTax:   decimal.RequireFromString("2550.00"),
			TotalDeductions:  decimal.RequireFromString("4800.00"),
			NetSalary:        decimal.RequireFromString("20200.00"),
			WorkedHours:      decimal.RequireFromString("77.00"),
			LateHours:        decimal.Zero,
			OvertimeHours:    decimal.Zero,
			RateTableVersion: "2025.1",
		},
	}
}

func TestPayrollRepository_UpsertIfAbsent_Concurrent(t *testing.T) {
	setup, s := setupDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(setup.DB)

	const callers = 8
	results := make([]payroll.UpsertResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.UpsertIfAbsent(ctx, sampleRecord(s))
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

	rec, err := repo.GetByEmployeePeriod(ctx, s.employeeID, s.periodID)
	require.NoError(t, err)
	assert.True(t, rec.NetSalary.Equal(decimal.RequireFromString("20200")))
	assert.Len(t, rec.StatutoryDeductions, 1)
	require.NotNil(t, rec.EmployeeCode)
	assert.Equal(t, "EMP-001", *rec.EmployeeCode)

	list, err := repo.ListByPeriod(ctx, s.periodID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPayrollRepository_GetByEmployeePeriod_NotFound(t *testing.T) {
	setup, s := setupDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)

	_, err := repo.GetByEmployeePeriod(context.Background(), s.employeeID, s.periodID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayPeriodRepository_ListClosedUnprocessed(t *testing.T) {
	setup, s := setupDatabase(t)
	ctx := context.Background()
	periods := postgresql.NewPayPeriodRepository(setup.DB)

	open, err := periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, open)

	closed, err := periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, s.periodID, closed[0].ID)

	_, err = postgresql.NewPayrollRepository(setup.DB).UpsertIfAbsent(ctx, sampleRecord(s))
	require.NoError(t, err)

	closed, err = periods.ListClosedUnprocessed(ctx, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestEmployeeRepository_ApplyCompensationChange(t *testing.T) {
	setup, s := setupDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	salary := decimal.RequireFromString("55000")
	change := employee.CompensationChange{
		ID:            uuid.NewString(),
		EmployeeID:    s.employeeID,
		CompanyID:     s.companyID,
		FromVersion:   0,
		ToVersion:     1,
		BaseSalary:    &salary,
		EffectiveDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Reason:        "annual review",
		ChangedBy:     uuid.NewString(),
		CreatedAt:     time.Now(),
	}

	_, err := repo.ApplyCompensationChange(ctx, change)
	require.NoError(t, err)

	emp, err := repo.GetByID(ctx, s.employeeID)
	require.NoError(t, err)
	assert.Equal(t, 1, emp.CompensationVersion)
	require.NotNil(t, emp.BaseSalary)
	assert.True(t, emp.BaseSalary.Equal(salary))

	stale := change
	stale.ID = uuid.NewString()
	_, err = repo.ApplyCompensationChange(ctx, stale)
	assert.ErrorIs(t, err, employee.ErrCompensationConflict)

	missing := change
	missing.ID = uuid.NewString()
	missing.EmployeeID = uuid.NewString()
	_, err = repo.ApplyCompensationChange(ctx, missing)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	changes, err := repo.ListCompensationChanges(ctx, s.employeeID, s.companyID)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}
