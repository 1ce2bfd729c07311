package app

import (
	"time"

	"shamba-backend/internal/analytics"
	"shamba-backend/internal/auth"
	"shamba-backend/internal/config"
	"shamba-backend/internal/dashboard"
	"shamba-backend/internal/database"
	"shamba-backend/internal/events"
	"shamba-backend/internal/health"
	"shamba-backend/internal/middleware"
	"shamba-backend/internal/notifier"
	"shamba-backend/internal/resources"
	"shamba-backend/internal/scheduler"
	"shamba-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles everything main needs a handle on after wiring.
type App struct {
	Fiber     *fiber.App
	DB        *gorm.DB
	Rdb       *redis.Client
	Hub       *notifier.Hub
	Store     *store.Store
	Scheduler *scheduler.Scheduler
}

// New builds the Fiber app with all middleware, the store, the notifier and
// every route. The store is constructed here once and passed by reference —
// no ambient singletons.
func New(cfg *config.Config) (*App, error) {
	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	fiberApp.Use(middleware.CORS(middleware.CORSConfig{AllowedSuffix: cfg.AllowedSuffix}))

	// Redis is optional: without it sessions are in-process and events stay
	// local to this instance.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	}

	var sessions middleware.SessionStore
	if rdb != nil {
		sessions = &middleware.RedisSessions{Rdb: rdb}
		fiberApp.Use(middleware.RequestStats(rdb))
	} else {
		sessions = middleware.NewMemorySessions()
	}
	fiberApp.Use(middleware.Session(sessions))
	fiberApp.Use(middleware.Tracing())
	fiberApp.Use(middleware.RouteLogger())

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := auth.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}

	hub := notifier.NewHub()
	var publisher notifier.Publisher = hub
	if rdb != nil {
		publisher = notifier.NewBridge(hub, rdb)
	}
	st := store.New(db, publisher)

	analyticsService := analytics.NewService(st, analytics.DefaultCostModel(cfg.UnitCost), nil)
	dashboardService := &dashboard.Service{Store: st, Analytics: analyticsService}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb, Hub: hub, StartedAt: time.Now()}
	fiberApp.Get("/health/json", healthHandlers.JSON)

	authHandlers := &auth.Handlers{
		UserFinder: &auth.GormUserFinder{DB: db},
		Sessions:   sessions,
		Secure:     cfg.Env == "production",
	}
	authGroup := fiberApp.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	api := fiberApp.Group("/api/v1", middleware.RequireAuth())

	resources.Register(api.Group("/farmers"), st.Farmers)
	resources.Register(api.Group("/aggregators"), st.Aggregators)
	resources.Register(api.Group("/crops"), st.Crops)
	resources.Register(api.Group("/orders"), st.Orders)
	resources.Register(api.Group("/contracts"), st.Contracts)
	resources.Register(api.Group("/allocations"), st.Allocations)
	resources.Register(api.Group("/notifications"), st.Notifications)
	api.Patch("/contracts/:id/fulfillment", resources.PatchField(st.Contracts, "fulfillmentPercent"))
	api.Patch("/notifications/:id/read", resources.PatchField(st.Notifications, "read"))

	analyticsHandlers := &analytics.Handlers{Service: analyticsService}
	analyticsGroup := api.Group("/analytics")
	analyticsGroup.Get("/overview", analyticsHandlers.Overview)
	analyticsGroup.Get("/supply-demand", analyticsHandlers.SupplyDemand)
	analyticsGroup.Get("/varieties", analyticsHandlers.Varieties)
	analyticsGroup.Get("/risk-alerts", analyticsHandlers.RiskAlerts)
	analyticsGroup.Get("/aggregator-stats", analyticsHandlers.AggregatorStats)
	analyticsGroup.Get("/contract-stats", analyticsHandlers.ContractStats)
	analyticsGroup.Get("/cost-analysis", analyticsHandlers.CostAnalysis)

	dashboardHandlers := &dashboard.Handlers{Service: dashboardService}
	api.Get("/dashboard", dashboardHandlers.View)

	eventHandlers := &events.Handlers{Hub: hub}
	api.Get("/events/stream", eventHandlers.Stream)

	sched := scheduler.New(st)
	if err := sched.Start(cfg.SweepSpec); err != nil {
		return nil, err
	}

	return &App{Fiber: fiberApp, DB: db, Rdb: rdb, Hub: hub, Store: st, Scheduler: sched}, nil
}
