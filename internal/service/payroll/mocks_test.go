package payroll

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/stretchr/testify/mock"
)

type mockPeriodRepo struct{ mock.Mock }

func (m *mockPeriodRepo) GetPeriodByID(ctx context.Context, id string) (payroll.PayPeriod, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(payroll.PayPeriod), args.Error(1)
}

func (m *mockPeriodRepo) ListClosedUnprocessed(ctx context.Context, asOf time.Time) ([]payroll.PayPeriod, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]payroll.PayPeriod), args.Error(1)
}

type mockEmployeeRepo struct{ mock.Mock }

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(employee.Employee), args.Error(1)
}

func (m *mockEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]employee.Employee), args.Error(1)
}

func (m *mockEmployeeRepo) ApplyCompensationChange(ctx context.Context, change employee.CompensationChange) (employee.CompensationChange, error) {
	args := m.Called(ctx, change)
	return args.Get(0).(employee.CompensationChange), args.Error(1)
}

func (m *mockEmployeeRepo) ListCompensationChanges(ctx context.Context, employeeID string, companyID string) ([]employee.CompensationChange, error) {
	args := m.Called(ctx, employeeID, companyID)
	return args.Get(0).([]employee.CompensationChange), args.Error(1)
}

type mockPositionRepo struct{ mock.Mock }

func (m *mockPositionRepo) GetByID(ctx context.Context, id string) (position.Position, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(position.Position), args.Error(1)
}

func (m *mockPositionRepo) GetByCompanyID(ctx context.Context, companyID string) ([]position.Position, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]position.Position), args.Error(1)
}

type mockAttendanceRepo struct{ mock.Mock }

func (m *mockAttendanceRepo) GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	args := m.Called(ctx, employeeID, from, to)
	return args.Get(0).([]attendance.Attendance), args.Error(1)
}

type mockOvertimeRepo struct{ mock.Mock }

func (m *mockOvertimeRepo) GetByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]overtime.OvertimeRequest, error) {
	args := m.Called(ctx, employeeID, from, to)
	return args.Get(0).([]overtime.OvertimeRequest), args.Error(1)
}

// memoryPayrollRepo is an insert-if-absent sink keyed like the real unique index
type memoryPayrollRepo struct {
	mu      sync.Mutex
	records map[[2]string]payroll.PayrollRecord
	failFor map[string]error
	inserts int
}

func newMemoryPayrollRepo() *memoryPayrollRepo {
	return &memoryPayrollRepo{records: make(map[[2]string]payroll.PayrollRecord), failFor: make(map[string]error)}
}

func (r *memoryPayrollRepo) UpsertIfAbsent(ctx context.Context, record payroll.PayrollRecord) (payroll.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[record.EmployeeID]; ok {
		return "", err
	}
	key := [2]string{record.EmployeeID, record.PayPeriodID}
	if _, exists := r.records[key]; exists {
		return payroll.UpsertAlreadyPresent, nil
	}
	r.records[key] = record
	r.inserts++
	return payroll.UpsertInserted, nil
}

func (r *memoryPayrollRepo) GetByEmployeePeriod(ctx context.Context, employeeID string, payPeriodID string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[[2]string{employeeID, payPeriodID}]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *memoryPayrollRepo) ListByPeriod(ctx context.Context, payPeriodID string) ([]payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.PayrollRecord
	for key, rec := range r.records {
		if key[1] == payPeriodID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryPayrollRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type staticRateTables struct {
	table payroll.RateTable
	err   error
}

func (s staticRateTables) ForDate(time.Time) (payroll.RateTable, error) {
	return s.table, s.err
}
