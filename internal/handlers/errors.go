package handlers

import (
	"errors"
	"net/http"

	"fieldops-backend/internal/services"
	"fieldops-backend/pkg/utils"
)

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.Error(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrTooManyAttempts):
		utils.Error(w, http.StatusTooManyRequests, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
