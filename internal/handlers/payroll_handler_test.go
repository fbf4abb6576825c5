package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/services"
)

func asActor(r *http.Request, actor auth.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, actor.ID)
	ctx = context.WithValue(ctx, middleware.RoleKey, actor.Role)
	return r.WithContext(ctx)
}

func TestCreatePaymentTakesPeriodFromPath(t *testing.T) {
	h := NewPayrollHandler(services.NewPayrollService(nil, nil, nil, nil))
	manager := auth.Actor{ID: 2, Role: auth.RoleModerator}

	// The body names a period but the path does not resolve to one: the
	// request must fail instead of writing into the body's period.
	t.Run("body cannot choose the period", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/payroll/periods/oops/payments",
			strings.NewReader(`{"period_id": 1, "worker_id": 7}`))
		req = mux.SetURLVars(asActor(req, manager), map[string]string{"id": "oops"})

		rr := httptest.NewRecorder()
		h.CreatePayment(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing actor", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/payroll/periods/1/payments",
			strings.NewReader(`{"worker_id": 7}`))
		req = mux.SetURLVars(req, map[string]string{"id": "1"})

		rr := httptest.NewRecorder()
		h.CreatePayment(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUpdatePeriodStatusRejectsBadBody(t *testing.T) {
	h := NewPayrollHandler(services.NewPayrollService(nil, nil, nil, nil))
	boss := auth.Actor{ID: 1, Role: auth.RoleAdmin}

	req := httptest.NewRequest("PATCH", "/api/payroll/periods/1/status",
		strings.NewReader(`{"status":`))
	req = mux.SetURLVars(asActor(req, boss), map[string]string{"id": "1"})

	rr := httptest.NewRecorder()
	h.UpdatePeriodStatus(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
