package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/config"
	"fieldops-backend/internal/handlers"
	"fieldops-backend/internal/middleware"
)

func NewRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	totpHandler *handlers.TOTPHandler,
	inventoryHandler *handlers.InventoryHandler,
	invoiceHandler *handlers.InvoiceHandler,
	wasteHandler *handlers.WasteHandler,
	drumHandler *handlers.DrumHandler,
	lineHandler *handlers.LineHandler,
	payrollHandler *handlers.PayrollHandler,
	notificationHandler *handlers.NotificationHandler,
	dashboardHandler *handlers.DashboardHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)

	// Public routes - Authentication
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify-2fa", authHandler.Verify2FA).Methods("POST")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(auth.RoleAdmin)(h).ServeHTTP
	}
	moderator := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.RequireRole(auth.RoleModerator)(h).ServeHTTP
	}

	// Protected API routes - Users
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", admin(userHandler.ListUsers)).Methods("GET")
	usersAPI.HandleFunc("", admin(userHandler.CreateUser)).Methods("POST")
	usersAPI.HandleFunc("/me", userHandler.Me).Methods("GET")
	usersAPI.HandleFunc("/workers", moderator(userHandler.ListWorkers)).Methods("GET")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", admin(userHandler.UpdateUser)).Methods("PUT")
	usersAPI.HandleFunc("/{id}", admin(userHandler.DeleteUser)).Methods("DELETE")
	usersAPI.HandleFunc("/{id}/toggle-active", admin(userHandler.ToggleActive)).Methods("PATCH")

	// Protected API routes - Two-factor auth (self-service)
	twoFactorAPI := r.PathPrefix("/api/2fa").Subrouter()
	twoFactorAPI.Use(authMiddleware.Authenticate)
	twoFactorAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	twoFactorAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	twoFactorAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")
	twoFactorAPI.HandleFunc("/status", totpHandler.Status).Methods("GET")

	// Protected API routes - Inventory
	itemsAPI := r.PathPrefix("/api/items").Subrouter()
	itemsAPI.Use(authMiddleware.Authenticate)
	itemsAPI.HandleFunc("", inventoryHandler.ListItems).Methods("GET")
	itemsAPI.HandleFunc("", moderator(inventoryHandler.CreateItem)).Methods("POST")
	itemsAPI.HandleFunc("/low-stock", inventoryHandler.ListLowStock).Methods("GET")
	itemsAPI.HandleFunc("/{id}", inventoryHandler.GetItem).Methods("GET")
	itemsAPI.HandleFunc("/{id}", moderator(inventoryHandler.UpdateItem)).Methods("PUT")
	itemsAPI.HandleFunc("/{id}", admin(inventoryHandler.DeleteItem)).Methods("DELETE")

	// Protected API routes - Purchase invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.List).Methods("GET")
	invoicesAPI.HandleFunc("", moderator(invoiceHandler.Create)).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.Get).Methods("GET")
	invoicesAPI.HandleFunc("/{id}", admin(invoiceHandler.Delete)).Methods("DELETE")

	// Protected API routes - Wastage
	wasteAPI := r.PathPrefix("/api/waste").Subrouter()
	wasteAPI.Use(authMiddleware.Authenticate)
	wasteAPI.HandleFunc("", wasteHandler.List).Methods("GET")
	wasteAPI.HandleFunc("", moderator(wasteHandler.Report)).Methods("POST")
	wasteAPI.HandleFunc("/{id}", moderator(wasteHandler.Delete)).Methods("DELETE")

	// Protected API routes - Cable drums
	drumsAPI := r.PathPrefix("/api/drums").Subrouter()
	drumsAPI.Use(authMiddleware.Authenticate)
	drumsAPI.HandleFunc("", drumHandler.List).Methods("GET")
	drumsAPI.HandleFunc("/{id}", drumHandler.Get).Methods("GET")
	drumsAPI.HandleFunc("/{id}/usage", drumHandler.ListUsage).Methods("GET")
	drumsAPI.HandleFunc("/{id}/usage", moderator(drumHandler.RecordUsage)).Methods("POST")
	drumsAPI.HandleFunc("/{id}/settings", moderator(drumHandler.UpdateSettings)).Methods("PUT")
	drumsAPI.HandleFunc("/{id}", admin(drumHandler.Delete)).Methods("DELETE")

	// Protected API routes - Line details
	linesAPI := r.PathPrefix("/api/lines").Subrouter()
	linesAPI.Use(authMiddleware.Authenticate)
	linesAPI.HandleFunc("", lineHandler.List).Methods("GET")
	linesAPI.HandleFunc("", moderator(lineHandler.Create)).Methods("POST")
	linesAPI.HandleFunc("/{id}", lineHandler.Get).Methods("GET")
	linesAPI.HandleFunc("/{id}", moderator(lineHandler.Update)).Methods("PUT")
	linesAPI.HandleFunc("/{id}/status", moderator(lineHandler.UpdateStatus)).Methods("PATCH")
	linesAPI.HandleFunc("/{id}", moderator(lineHandler.Delete)).Methods("DELETE")

	// Protected API routes - Payroll
	payrollAPI := r.PathPrefix("/api/payroll").Subrouter()
	payrollAPI.Use(authMiddleware.Authenticate)
	payrollAPI.HandleFunc("/periods", payrollHandler.ListPeriods).Methods("GET")
	payrollAPI.HandleFunc("/periods", admin(payrollHandler.CreatePeriod)).Methods("POST")
	payrollAPI.HandleFunc("/periods/{id}", payrollHandler.GetPeriod).Methods("GET")
	payrollAPI.HandleFunc("/periods/{id}/status", admin(payrollHandler.UpdatePeriodStatus)).Methods("PATCH")
	payrollAPI.HandleFunc("/periods/{id}/payments", payrollHandler.ListPayments).Methods("GET")
	payrollAPI.HandleFunc("/periods/{id}/payments", moderator(payrollHandler.CreatePayment)).Methods("POST")
	payrollAPI.HandleFunc("/payments/{id}", payrollHandler.GetPayment).Methods("GET")
	payrollAPI.HandleFunc("/payments/{id}/adjustments", payrollHandler.ListAdjustments).Methods("GET")
	payrollAPI.HandleFunc("/payments/{id}/adjustments", moderator(payrollHandler.AddAdjustment)).Methods("POST")
	payrollAPI.HandleFunc("/payments/{id}/adjustments/{adjustment_id}", moderator(payrollHandler.DeleteAdjustment)).Methods("DELETE")
	payrollAPI.HandleFunc("/payments/{id}/status", moderator(payrollHandler.UpdatePaymentStatus)).Methods("PATCH")
	payrollAPI.HandleFunc("/settings", payrollHandler.GetSettings).Methods("GET")
	payrollAPI.HandleFunc("/settings", admin(payrollHandler.UpdateSettings)).Methods("PUT")

	// Protected API routes - Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")

	// Protected API routes - Dashboard
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("", dashboardHandler.Summary).Methods("GET")

	// Protected API routes - Reports and exports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/inventory.csv", moderator(reportHandler.InventoryCSV)).Methods("GET")
	reportsAPI.HandleFunc("/salary-slip/{id}", moderator(reportHandler.SalarySlip)).Methods("GET")
	reportsAPI.HandleFunc("/exports", moderator(reportHandler.StartExport)).Methods("POST")
	reportsAPI.HandleFunc("/exports/{id}", moderator(reportHandler.ExportStatus)).Methods("GET")
	reportsAPI.HandleFunc("/exports/{id}/download", moderator(reportHandler.ExportDownload)).Methods("GET")

	return middleware.NewCORS(cfg)(r)
}
