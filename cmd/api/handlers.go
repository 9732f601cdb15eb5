package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/config"
	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-imoveis/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type services struct {
	Auth          *usecase.AuthService
	Users         *usecase.UserService
	Properties    *usecase.PropertyService
	Tenants       *usecase.TenantService
	Leads         *usecase.LeadService
	Quotations    *usecase.QuotationService
	Expenses      *usecase.ExpenseService
	WorkOrders    *usecase.WorkOrderService
	Documents     *usecase.DocumentService
	Compliance    *usecase.ComplianceService
	Dashboard     *usecase.DashboardService
	Identity      *usecase.IdentityService
	Notifications *usecase.NotificationService
}

type healthDeps struct {
	db       *sql.DB
	redis    handlers.Pinger
	rabbitMQ func() bool
}

func newRouter(ctx context.Context, cfg *config.Config, log *zap.Logger, svc services, deps *healthDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.NewHealthHandler(deps.db, deps.redis, deps.rabbitMQ, version).Handle)
	r.Handle("/metrics", promhttp.Handler())

	leadHandler := handlers.NewLeadHandler(svc.Leads, log)
	captureLimiter := handlers.NewRateLimiter(5, time.Minute)
	go captureLimiter.Cleanup(ctx, 5*time.Minute)
	loginLimiter := handlers.NewRateLimiter(20, time.Minute)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	r.With(loginLimiter.Middleware).Post("/auth/login", handlers.NewAuthHandler(svc.Auth, log).Login)
	r.With(captureLimiter.Middleware).Post("/public/leads", leadHandler.CaptureLead)

	finance := []entity.Role{entity.RoleAdmin, entity.RoleAccountant, entity.RolePropertyManager}
	leasing := []entity.Role{entity.RoleAdmin, entity.RolePropertyManager, entity.RoleLeasingAgent}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(svc.Auth.ParseToken))

		tenantHandler := handlers.NewTenantHandler(svc.Tenants, log)
		propertyHandler := handlers.NewPropertyHandler(svc.Properties, log)

		r.Route("/users", handlers.NewUserHandler(svc.Users, log).Routes)
		r.Route("/properties", propertyHandler.Routes)
		r.Route("/units", propertyHandler.UnitRoutes)
		r.Route("/tenants", tenantHandler.Routes)
		r.Route("/cheques", func(r chi.Router) {
			r.Use(middleware.RequireRole(finance...))
			tenantHandler.ChequeRoutes(r)
		})
		r.Route("/leads", leadHandler.Routes)
		r.Route("/quotations", handlers.NewQuotationHandler(svc.Quotations, log).Routes)
		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.RequireRole(finance...))
			handlers.NewExpenseHandler(svc.Expenses, log).Routes(r)
		})
		r.Route("/work-orders", handlers.NewWorkOrderHandler(svc.WorkOrders, log).Routes)
		if svc.Documents != nil {
			r.Route("/documents", handlers.NewDocumentHandler(svc.Documents, log).Routes)
		}
		r.Route("/compliance", handlers.NewComplianceHandler(svc.Compliance, log).Routes)
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireRole(finance...))
			handlers.NewDashboardHandler(svc.Dashboard, log).Routes(r)
		})
		r.With(middleware.RequireRole(leasing...)).
			Post("/identity/extract", handlers.NewIdentityHandler(svc.Identity, log).Extract)
		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.RequireRole(entity.RoleAdmin))
			handlers.NewNotificationHandler(svc.Notifications, log).Routes(r)
		})
	})

	return r
}
