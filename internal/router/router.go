package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alialmasri-information-technology/restaurant-management/internal/config"
	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
	"github.com/alialmasri-information-technology/restaurant-management/internal/handler"
	mw "github.com/alialmasri-information-technology/restaurant-management/internal/middleware"
	"github.com/alialmasri-information-technology/restaurant-management/internal/service"
)

// New creates a Chi router with all application routes wired up.
// Role policy: Admin manages users, catalog, tables and stock; waiters
// create and build orders; cashiers settle and cancel them; everyone
// authenticated can read.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Services
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	inventoryService := service.NewInventoryService(queries, pool, func(db database.DBTX) service.InventoryStore {
		return database.New(db)
	})

	// Handlers
	categoryHandler := handler.NewCategoryHandler(queries)
	itemHandler := handler.NewItemHandler(queries, pool, func(db database.DBTX) handler.ItemStore {
		return database.New(db)
	})
	tableHandler := handler.NewTableHandler(queries, pool, func(db database.DBTX) handler.TableStore {
		return database.New(db)
	})
	orderHandler := handler.NewOrderHandler(orderService, queries)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	userHandler := handler.NewUserHandler(queries)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Catalog and tables: reads open to all authenticated staff,
		// mutations admin-only. Stock endpoints ride along under /items.
		r.Route("/categories", func(r chi.Router) {
			categoryHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				categoryHandler.RegisterAdminRoutes(r)
			})
		})

		r.Route("/items", func(r chi.Router) {
			itemHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				itemHandler.RegisterAdminRoutes(r)
				inventoryHandler.RegisterRoutes(r)
			})
		})

		r.Route("/tables", func(r chi.Router) {
			tableHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				tableHandler.RegisterAdminRoutes(r)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterReadRoutes(r)

			// Waiter flow: open orders, build them, mark them complete
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleWaiter))
				orderHandler.RegisterWaiterRoutes(r)
			})

			// Cashier flow: settle and cancel
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleCashier))
				orderHandler.RegisterCashierRoutes(r)
			})
		})

		// Staff account management, admin-only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			r.Route("/users", userHandler.RegisterRoutes)
		})
	})

	return r
}
