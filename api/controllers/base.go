package controllers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"WorldCup/api/cache"
	"WorldCup/api/config"
	"WorldCup/api/fortune"
	"WorldCup/api/media"
	"WorldCup/api/metrics"
	"WorldCup/api/middlewares"
	"WorldCup/api/models"
	"WorldCup/api/results"
	"WorldCup/api/seed"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Server struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Cache   cache.Store
	Results *results.Store
	Media   media.Resolver
	Fortune *fortune.Calculator
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger

	AdminKey       string
	AllowedOrigins []string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// ===============================
// SERVER INITIALIZATION
// ===============================

func openDB(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	}
}

// Initialize wires the database, stores and router from cfg.
func (server *Server) Initialize(cfg config.Config) error {
	logger := cfg.NewLogger()
	server.Log = logger

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("cannot connect to %s: %w", cfg.DBDriver, err)
	}
	server.DB = db

	if err := server.DB.AutoMigrate(&models.Game{}, &models.Contestant{}); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	if err := seed.Load(server.DB, logger); err != nil {
		logger.WithError(err).Warn("could not seed sample games")
	}

	// Redis is optional; results fall back to process memory.
	if rdb, err := cache.NewRedisFromEnv(); err != nil {
		logger.WithError(err).Warn("could not connect to redis, using in-memory store")
		server.Cache = cache.NewMemory()
	} else {
		server.Cache = rdb
	}
	server.Results = results.NewStore(server.Cache, cfg.ResultTTL, logger)

	if cfg.MediaBucket != "" {
		s3, err := media.NewS3(context.Background(), cfg.MediaBucket, cfg.MediaPrefix, cfg.AWSRegion, 0)
		if err != nil {
			return err
		}
		server.Media = s3
	} else {
		server.Media = media.Static{BaseURL: cfg.MediaBaseURL}
	}

	var opts []fortune.Option
	if cfg.IdiomsFile != "" {
		ds, err := fortune.LoadDataset(cfg.IdiomsFile)
		if err != nil {
			return err
		}
		opts = append(opts, fortune.WithDataset(ds))
	}
	server.Fortune = fortune.NewCalculator(opts...)

	server.AdminKey = cfg.AdminKey
	server.AllowedOrigins = cfg.AllowedOrigins
	if server.AdminKey == "" {
		logger.Warn("ADMIN_KEY not set, game writes are disabled")
	}

	server.InitRouter()
	return nil
}

// InitRouter fills unset collaborators with in-process defaults and
// registers middleware and routes.
func (server *Server) InitRouter() {
	if server.Log == nil {
		server.Log = logrus.StandardLogger()
	}
	if server.Cache == nil {
		server.Cache = cache.NewMemory()
	}
	if server.Results == nil {
		server.Results = results.NewStore(server.Cache, 0, server.Log)
	}
	if server.Media == nil {
		server.Media = media.Static{}
	}
	if server.Fortune == nil {
		server.Fortune = fortune.NewCalculator()
	}
	if server.Metrics == nil {
		server.Metrics = metrics.New()
	}
	if server.rng == nil {
		server.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	server.Router = gin.Default()
	server.Router.Use(server.Metrics.Middleware())
	server.Router.Use(middlewares.CORSMiddleware(server.AllowedOrigins))
	server.Router.Use(middlewares.RateLimitMiddleware())
	server.initializeRoutes()
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (server *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan struct{})
	defer close(stop)
	middlewares.StartVisitorJanitor(stop)
	if mem, ok := server.Cache.(*cache.Memory); ok {
		mem.StartJanitor(time.Minute, stop)
	}

	errCh := make(chan error, 1)
	go func() {
		server.Log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (server *Server) drawIdiom(grade fortune.Grade) (string, bool) {
	server.rngMu.Lock()
	defer server.rngMu.Unlock()
	return server.Fortune.DrawIdiom(grade, server.rng)
}
