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

type DrumHandler struct {
	Service *services.DrumService
}

func NewDrumHandler(s *services.DrumService) *DrumHandler {
	return &DrumHandler{Service: s}
}

func (h *DrumHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	drum, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, drum)
}

func (h *DrumHandler) List(w http.ResponseWriter, r *http.Request) {
	drums, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, drums)
}

// RecordUsage appends a cable draw to a drum's usage log
func (h *DrumHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.RecordDrumUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	usage, err := h.Service.RecordUsage(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, usage)
}

func (h *DrumHandler) ListUsage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	usages, err := h.Service.ListUsage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, usages)
}

// UpdateSettings changes the wastage method, override and status
func (h *DrumHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateDrumSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	drum, err := h.Service.UpdateSettings(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, drum)
}

func (h *DrumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
