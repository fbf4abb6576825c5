package middleware

import (
	"net/http"

	"fieldops-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS builds the CORS layer from server config. Origins come from config
// only; methods and headers fall back to what the dashboard frontend needs
// when the config leaves them empty.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	methods := cfg.Server.CorsAllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := cfg.Server.CorsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Authorization", "Content-Type"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: true,
		MaxAge:           300, // preflight cache, seconds
	})

	return c.Handler
}
