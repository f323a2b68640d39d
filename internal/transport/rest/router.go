package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/datatrust/preference-management/internal/auth"
	"github.com/datatrust/preference-management/internal/company"
	"github.com/datatrust/preference-management/internal/datatype"
	"github.com/datatrust/preference-management/internal/preference"
	"github.com/datatrust/preference-management/internal/token"
	"github.com/datatrust/preference-management/internal/transport/middleware"
	"github.com/datatrust/preference-management/internal/transport/swagger"
	"github.com/datatrust/preference-management/internal/user"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, companyHandler *company.Handler, dataTypeHandler *datatype.Handler, preferenceHandler *preference.Handler, tokenHandler *token.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", authHandler.Register)
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Public directory routes (no auth required)
		if companyHandler != nil {
			r.Get("/companies", companyHandler.GetCompanies)
			r.Get("/companies/{id}", companyHandler.GetCompany)
		}
		if dataTypeHandler != nil {
			r.Get("/data-types", dataTypeHandler.GetDataTypes)
		}
		if tokenHandler != nil {
			r.Get("/tokens/packages", tokenHandler.GetPackages)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Preference routes
				if preferenceHandler != nil {
					pr.Route("/preferences", func(pfr chi.Router) {
						pfr.Get("/", preferenceHandler.GetGlobalPreferences)
						pfr.Get("/all", preferenceHandler.GetAllPreferences)
						pfr.Get("/resolve", preferenceHandler.ResolvePreference)
						pfr.Post("/estimate", preferenceHandler.EstimateCost)
						pfr.Post("/commit", preferenceHandler.CommitChanges)
					})

					pr.Get("/companies/{id}/preferences", preferenceHandler.GetCompanyPreferences)
					pr.Post("/companies/{id}/preferences/clone", preferenceHandler.ClonePreferences)
				}

				// Token routes
				if tokenHandler != nil {
					pr.Post("/tokens/purchase", tokenHandler.Purchase)
					pr.Get("/tokens/transactions", tokenHandler.GetTransactions)
				}
			})
		}
	})
}
