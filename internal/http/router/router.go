package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/config"
	"github.com/wm-metals/trade-api/internal/database"
	"github.com/wm-metals/trade-api/internal/http/handler"
	"github.com/wm-metals/trade-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	customerHandler     *handler.CustomerHandler
	opportunityHandler  *handler.OpportunityHandler
	dealHandler         *handler.DealHandler
	transactionHandler  *handler.TransactionHandler
	quoteHandler        *handler.QuoteHandler
	taskHandler         *handler.TaskHandler
	notificationHandler *handler.NotificationHandler
	dashboardHandler    *handler.DashboardHandler
	realtimeHandler     *handler.RealtimeHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	customerHandler *handler.CustomerHandler,
	opportunityHandler *handler.OpportunityHandler,
	dealHandler *handler.DealHandler,
	transactionHandler *handler.TransactionHandler,
	quoteHandler *handler.QuoteHandler,
	taskHandler *handler.TaskHandler,
	notificationHandler *handler.NotificationHandler,
	dashboardHandler *handler.DashboardHandler,
	realtimeHandler *handler.RealtimeHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		customerHandler:     customerHandler,
		opportunityHandler:  opportunityHandler,
		dealHandler:         dealHandler,
		transactionHandler:  transactionHandler,
		quoteHandler:        quoteHandler,
		taskHandler:         taskHandler,
		notificationHandler: notificationHandler,
		dashboardHandler:    dashboardHandler,
		realtimeHandler:     realtimeHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Realtime change feed
			r.Get("/realtime", rt.realtimeHandler.Subscribe)

			// Dashboard
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/financial-summary", rt.dashboardHandler.FinancialSummary)
				r.Get("/sales-analytics", rt.dashboardHandler.SalesAnalytics)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.customerHandler.Create)
					r.Put("/{id}", rt.customerHandler.Update)
					r.Delete("/{id}", rt.customerHandler.Delete)
				})
			})

			// Opportunities
			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", rt.opportunityHandler.List)
				r.Get("/{id}", rt.opportunityHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.opportunityHandler.Create)
					r.Put("/{id}", rt.opportunityHandler.Update)
					r.Delete("/{id}", rt.opportunityHandler.Delete)
				})
			})

			// Deals
			r.Route("/deals", func(r chi.Router) {
				r.Get("/", rt.dealHandler.List)
				r.Get("/kanban", rt.dealHandler.Kanban)
				r.Get("/{id}", rt.dealHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.dealHandler.Create)
					r.Put("/{id}", rt.dealHandler.Update)
					r.Post("/{id}/close-won", rt.dealHandler.CloseWon)
					r.Post("/{id}/close-lost", rt.dealHandler.CloseLost)
					r.Delete("/{id}", rt.dealHandler.Delete)
				})
			})

			// Transactions
			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", rt.transactionHandler.List)
				r.Get("/{id}", rt.transactionHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.transactionHandler.Create)
					r.Post("/import", rt.transactionHandler.Import)
					r.Put("/{id}", rt.transactionHandler.Update)
					r.Delete("/{id}", rt.transactionHandler.Delete)
				})
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Get("/{id}/pdf", rt.quoteHandler.PDF)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.quoteHandler.Create)
					r.Put("/{id}/status", rt.quoteHandler.UpdateStatus)
					r.Delete("/{id}", rt.quoteHandler.Delete)
				})
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.List)
				r.Get("/{id}", rt.taskHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.taskHandler.Create)
					r.Put("/{id}", rt.taskHandler.Update)
					r.Delete("/{id}", rt.taskHandler.Delete)
				})
			})

			// Notifications (always scoped to the requesting user)
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Post("/{id}/read", rt.notificationHandler.MarkAsRead)
				r.Post("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Delete("/{id}", rt.notificationHandler.Delete)
			})
		})
	})

	return r
}
