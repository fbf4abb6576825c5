package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/config"
	"fieldops-backend/internal/handlers"
	"fieldops-backend/internal/health"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/services"
)

// staticUserStore satisfies middleware.UserStore without a database.
type staticUserStore map[int]*models.User

func (s staticUserStore) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, context.Canceled
	}
	return u, nil
}

// newTestRouter assembles the full route table over nil repositories. Gate
// decisions happen before any repository call, so a request that clears the
// gates reaches its handler (and panics into the recovery middleware as a
// 500), while a rejected one comes back 401 or 403 without touching anything.
func newTestRouter(t *testing.T) (http.Handler, func(*models.User) string) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "fieldops-test"

	jwtManager := auth.NewJWTManager(cfg)

	notificationService := services.NewNotificationService(nil)
	userService := services.NewUserService(nil, jwtManager)
	totpService := services.NewTOTPService(nil, nil, jwtManager)
	inventoryService := services.NewInventoryService(nil, notificationService)
	invoiceService := services.NewInvoiceService(nil, inventoryService)
	wasteService := services.NewWasteService(nil, inventoryService)
	drumService := services.NewDrumService(nil, notificationService)
	lineService := services.NewLineService(nil)
	payrollService := services.NewPayrollService(nil, nil, nil, notificationService)
	dashboardService := services.NewDashboardService(nil, nil, nil, nil)
	reportService := services.NewReportService(nil, nil, nil, nil, t.TempDir())

	users := staticUserStore{}
	for id, role := range map[int]string{1: "admin", 2: "moderator", 3: "user"} {
		users[id] = &models.User{ID: id, Email: role + "@test.lk", Role: role, IsActive: true}
	}
	users[4] = &models.User{ID: 4, Email: "suspended@test.lk", Role: "user", IsActive: false}

	router := NewRouter(
		cfg,
		handlers.NewAuthHandler(userService, totpService),
		handlers.NewUserHandler(userService),
		handlers.NewTOTPHandler(totpService, userService),
		handlers.NewInventoryHandler(inventoryService),
		handlers.NewInvoiceHandler(invoiceService),
		handlers.NewWasteHandler(wasteService),
		handlers.NewDrumHandler(drumService),
		handlers.NewLineHandler(lineService),
		handlers.NewPayrollHandler(payrollService),
		handlers.NewNotificationHandler(notificationService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewReportHandler(reportService, payrollService),
		handlers.NewHealthHandler(health.NewHealthChecker(nil, nil)),
		middleware.NewAuthMiddleware(jwtManager, users),
	)

	token := func(u *models.User) string {
		tok, err := jwtManager.GenerateToken(u)
		require.NoError(t, err)
		return tok
	}
	return router, token
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestPayrollReadsOpenToAnyAuthenticatedUser(t *testing.T) {
	router, token := newTestRouter(t)
	worker := token(&models.User{ID: 3, Email: "user@test.lk", Role: "user", IsActive: true})

	reads := []string{
		"/api/payroll/periods",
		"/api/payroll/periods/1",
		"/api/payroll/periods/1/payments",
		"/api/payroll/payments/1",
		"/api/payroll/payments/1/adjustments",
		"/api/payroll/settings",
	}
	for _, path := range reads {
		t.Run(path, func(t *testing.T) {
			rr := doRequest(router, "GET", path, worker)
			assert.NotEqual(t, http.StatusForbidden, rr.Code)
			assert.NotEqual(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestPayrollMutationsStayGated(t *testing.T) {
	router, token := newTestRouter(t)
	worker := token(&models.User{ID: 3, Email: "user@test.lk", Role: "user", IsActive: true})
	moderator := token(&models.User{ID: 2, Email: "moderator@test.lk", Role: "moderator", IsActive: true})

	t.Run("worker blocked from payment create", func(t *testing.T) {
		rr := doRequest(router, "POST", "/api/payroll/periods/1/payments", worker)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
	t.Run("worker blocked from period create", func(t *testing.T) {
		rr := doRequest(router, "POST", "/api/payroll/periods", worker)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
	t.Run("moderator blocked from period create", func(t *testing.T) {
		rr := doRequest(router, "POST", "/api/payroll/periods", moderator)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
	t.Run("moderator blocked from period status change", func(t *testing.T) {
		rr := doRequest(router, "PATCH", "/api/payroll/periods/1/status", moderator)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
	t.Run("moderator blocked from settings update", func(t *testing.T) {
		rr := doRequest(router, "PUT", "/api/payroll/settings", moderator)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestAuthenticateRejections(t *testing.T) {
	router, token := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		rr := doRequest(router, "GET", "/api/payroll/periods", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	t.Run("suspended account", func(t *testing.T) {
		suspended := token(&models.User{ID: 4, Email: "suspended@test.lk", Role: "user", IsActive: true})
		rr := doRequest(router, "GET", "/api/payroll/periods", suspended)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
	t.Run("unknown user", func(t *testing.T) {
		ghost := token(&models.User{ID: 99, Email: "ghost@test.lk", Role: "admin", IsActive: true})
		rr := doRequest(router, "GET", "/api/payroll/periods", ghost)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
