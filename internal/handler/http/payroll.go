package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Processing
	ProcessPeriod(w http.ResponseWriter, r *http.Request)
	ProcessEmployee(w http.ResponseWriter, r *http.Request)

	// Records
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)

	Preview(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PROCESSING ==========

func (h *payrollHandlerImpl) ProcessPeriod(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")
	if periodID == "" {
		response.BadRequest(w, "Pay period ID is required", nil)
		return
	}

	result, err := h.payrollService.ProcessPeriod(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period processed", payroll.NewProcessingResultResponse(result))
}

func (h *payrollHandlerImpl) ProcessEmployee(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")
	employeeID := chi.URLParam(r, "employeeID")
	if periodID == "" || employeeID == "" {
		response.BadRequest(w, "Pay period ID and employee ID are required", nil)
		return
	}

	outcome, err := h.payrollService.ProcessOne(r.Context(), employeeID, periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := payroll.EmployeeOutcomeResponse{EmployeeID: outcome.EmployeeID, Status: string(outcome.Status)}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}

	if outcome.Status == payroll.OutcomeInserted || outcome.Status == payroll.OutcomeFlagged {
		response.Created(w, "Payroll record created", resp)
		return
	}
	response.SuccessWithMessage(w, "Payroll already processed", resp)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")
	if periodID == "" {
		response.BadRequest(w, "Pay period ID is required", nil)
		return
	}

	records, err := h.payrollService.ListRecords(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: len(records)})
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodID")
	employeeID := chi.URLParam(r, "employeeID")
	if periodID == "" || employeeID == "" {
		response.BadRequest(w, "Pay period ID and employee ID are required", nil)
		return
	}

	record, err := h.payrollService.GetRecord(r.Context(), employeeID, periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// ========== PREVIEW ==========

func (h *payrollHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewCalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
