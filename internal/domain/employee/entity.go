package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	CompanyID        string
	PositionID       string
	EmployeeCode     string
	FullName         string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentType   EmploymentType
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	HourlyRate       *decimal.Decimal
	OvertimeEligible bool
	LateDeductible   bool
	// CompensationVersion increments on every applied CompensationChange
	CompensationVersion int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// EmployedDuring reports whether the employment overlaps [start, end]
func (e Employee) EmployedDuring(start, end time.Time) bool {
	if e.EmploymentStatus != EmploymentStatusActive || e.DeletedAt != nil {
		return false
	}
	if e.HireDate.After(end) {
		return false
	}
	if e.ResignationDate != nil && e.ResignationDate.Before(start) {
		return false
	}
	return true
}

// HasCompensation is false when neither a salary nor an hourly rate is configured
func (e Employee) HasCompensation() bool {
	return e.BaseSalary != nil || e.HourlyRate != nil
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// CompensationChange - Explicit, versioned update of pay-relevant fields.
// Applying a change is the only way compensation fields move.
type CompensationChange struct {
	ID               string
	EmployeeID       string
	CompanyID        string
	FromVersion      int
	ToVersion        int
	BaseSalary       *decimal.Decimal
	HourlyRate       *decimal.Decimal
	OvertimeEligible bool
	LateDeductible   bool
	EffectiveDate    time.Time
	Reason           string
	ChangedBy        string
	CreatedAt        time.Time
}
