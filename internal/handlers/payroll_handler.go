package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/services"
	"fieldops-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type PayrollHandler struct {
	Service *services.PayrollService
}

func NewPayrollHandler(s *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{Service: s}
}

func (h *PayrollHandler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	period, err := h.Service.CreatePeriod(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, period)
}

func (h *PayrollHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	period, err := h.Service.GetPeriod(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, period)
}

func (h *PayrollHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Service.ListPeriods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, periods)
}

// UpdatePeriodStatus moves a period forward through its lifecycle
func (h *PayrollHandler) UpdatePeriodStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdatePeriodStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	period, err := h.Service.UpdatePeriodStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, period)
}

// CreatePayment computes one worker's pay for a period. The period comes
// from the URL path, never the body.
func (h *PayrollHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	periodID, _ := strconv.Atoi(mux.Vars(r)["id"])
	if periodID <= 0 {
		utils.Error(w, http.StatusBadRequest, "Invalid period id")
		return
	}

	var req models.CreateWorkerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.PeriodID = periodID

	payment, err := h.Service.CreatePayment(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, payment)
}

func (h *PayrollHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	payment, err := h.Service.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *PayrollHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	periodID, _ := strconv.Atoi(mux.Vars(r)["id"])

	payments, err := h.Service.ListPayments(r.Context(), periodID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *PayrollHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	paymentID, _ := strconv.Atoi(mux.Vars(r)["id"])

	adjustments, err := h.Service.ListAdjustments(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, adjustments)
}

func (h *PayrollHandler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	paymentID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.WorkerPaymentID = paymentID

	adj, err := h.Service.AddAdjustment(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, adj)
}

func (h *PayrollHandler) DeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	adjID, _ := strconv.Atoi(mux.Vars(r)["adjustment_id"])

	if err := h.Service.DeleteAdjustment(r.Context(), actor, adjID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePaymentStatus moves a payment along calculated → approved → paid
func (h *PayrollHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.Service.UpdatePaymentStatus(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *PayrollHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

func (h *PayrollHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.UpdatePayrollSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.Service.UpdateSettings(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}
