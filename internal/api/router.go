package api

import (
	"github.com/gin-gonic/gin"
	"github.com/khanhvu/jobradar/internal/api/handler"
	"github.com/khanhvu/jobradar/internal/api/middleware"
	"github.com/khanhvu/jobradar/internal/config"
	"github.com/khanhvu/jobradar/internal/logger"
	"github.com/khanhvu/jobradar/internal/repository"
	"github.com/khanhvu/jobradar/internal/scheduler"
	"gorm.io/gorm"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	DB        *gorm.DB
	Listings  *repository.ListingRepository
	Companies *repository.CompanyRepository
	Runs      *repository.RunRepository
	Scheduler *scheduler.Scheduler // nil disables the admin trigger
	Logger    *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Deps, cfg *config.ServerConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(deps.DB)
	listingHandler := handler.NewListingHandler(deps.Listings, deps.Companies)
	runHandler := handler.NewRunHandler(deps.Runs)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Job listings
		v1.GET("/jobs", listingHandler.ListListings)
		v1.GET("/jobs/:id", listingHandler.GetListing)

		// Companies
		v1.GET("/companies", listingHandler.ListCompanies)

		// Ingestion runs
		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)

		// Stats
		v1.GET("/stats", listingHandler.GetStats)

		// Admin
		if deps.Scheduler != nil {
			adminHandler := handler.NewAdminHandler(deps.Scheduler)
			v1.POST("/admin/scrape", adminHandler.TriggerScrape)
		}
	}

	return r
}
