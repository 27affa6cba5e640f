package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/api/swagger"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/handler"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/middleware"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/repository"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/service"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/solver"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/cache"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/config"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/database"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/logger"
	corsmiddleware "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/middleware/cors"
	reqidmiddleware "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/middleware/requestid"
)

// @title Adaptive Exam Timetabling API
// @version 0.1.0
// @description Timetable grid, conflict detection and solver job tracking
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	sessions := service.NewSessionService()
	views := service.NewViewService()
	layout := service.NewLayoutService(service.NewSlotBuckets(cfg.Timetable), logr)

	// The roster collaborator is optional: without it the student-clash
	// category is skipped, not failed.
	var roster *service.RosterService
	if cfg.Roster.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect roster database", "error", err)
		}
		defer db.Close() //nolint:errcheck

		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("roster cache unavailable, falling back to direct lookups", "error", err)
			redisClient = nil
		}

		roster = service.NewRosterService(repository.NewRosterRepository(db), redisClient, metrics, logr, cfg.Roster.CacheTTL)
	}

	var detector *service.ConflictService
	if roster != nil {
		detector = service.NewConflictService(roster, logr)
	} else {
		detector = service.NewConflictService(nil, logr)
	}

	solverClient := solver.NewClient(cfg.Solver, logr)
	jobs := service.NewJobService(solverClient, sessions, detector, metrics, nil, logr, service.JobServiceConfig{
		PollInterval:    cfg.Solver.PollInterval,
		MaxPollFailures: cfg.Solver.MaxPollFailures,
	})
	defer jobs.Stop()

	timetable := service.NewTimetableService(sessions, layout, views, metrics, logr)

	jobHandler := handler.NewJobHandler(jobs)
	timetableHandler := handler.NewTimetableHandler(timetable)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/jobs", jobHandler.Submit)
		api.GET("/jobs/active", jobHandler.Active)
		api.POST("/jobs/active/cancel", jobHandler.Cancel)

		api.GET("/timetable/grid", timetableHandler.Grid)
		api.GET("/timetable/conflicts", timetableHandler.Conflicts)
		api.GET("/timetable/views/rooms", timetableHandler.Rooms)
		api.GET("/timetable/views/faculty", timetableHandler.Faculty)
		api.GET("/timetable/heatmap", timetableHandler.Heatmap)

		if cfg.Export.Enabled {
			exportHandler := handler.NewExportHandler(service.NewExportService(timetable))
			api.GET("/timetable/export", exportHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
