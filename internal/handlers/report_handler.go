package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/services"
	"fieldops-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
	Payroll *services.PayrollService
}

func NewReportHandler(service *services.ReportService, payroll *services.PayrollService) *ReportHandler {
	return &ReportHandler{Service: service, Payroll: payroll}
}

// InventoryCSV streams the current stock ledger as CSV
func (h *ReportHandler) InventoryCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.GenerateInventoryCSV(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	w.Write(data)
}

// SalarySlip streams one worker's slip as PDF
func (h *ReportHandler) SalarySlip(w http.ResponseWriter, r *http.Request) {
	paymentID, _ := strconv.Atoi(mux.Vars(r)["id"])

	payment, err := h.Payroll.GetPayment(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	period, err := h.Payroll.GetPeriod(r.Context(), payment.PeriodID)
	if err != nil {
		writeError(w, err)
		return
	}
	adjustments, err := h.Payroll.ListAdjustments(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.Payroll.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := h.Service.GenerateSalarySlipPDF(payment, period, adjustments, settings)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="slip_%02d_%d_%d.pdf"`, period.Month, period.Year, payment.WorkerID))
	w.Write(data)
}

// StartExport kicks off a background export job
func (h *ReportHandler) StartExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req struct {
		Kind     string `json:"kind"`
		PeriodID int    `json:"period_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.Service.StartExport(r.Context(), actor, req.Kind, req.PeriodID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusAccepted, job)
}

// ExportStatus returns the job record for polling
func (h *ReportHandler) ExportStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.Service.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, job)
}

// ExportDownload serves the finished archive
func (h *ReportHandler) ExportDownload(w http.ResponseWriter, r *http.Request) {
	job, err := h.Service.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if job.Status != models.ExportJobCompleted {
		utils.Error(w, http.StatusConflict, "export is not ready")
		return
	}

	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "export file unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="export_%s.zip"`, job.ID))
	w.Write(data)
}
