package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-registry/internal/config"
	"github.com/iliyamo/parking-registry/internal/database"
	"github.com/iliyamo/parking-registry/internal/handler"
	"github.com/iliyamo/parking-registry/internal/logger"
	"github.com/iliyamo/parking-registry/internal/middleware"
	"github.com/iliyamo/parking-registry/internal/queue"
	"github.com/iliyamo/parking-registry/internal/repository"
	"github.com/iliyamo/parking-registry/internal/router"
	"github.com/iliyamo/parking-registry/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		clients  repository.ClientStore
		parkings repository.ParkingStore
		sessions repository.SessionStore
		pinger   handler.Pinger
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := repository.NewMemoryStore()
		clients, parkings, sessions = mem.Clients(), mem.Parkings(), mem
		log.Warn("using in-memory store; data is lost on exit")
	default:
		db, err := database.Open(ctx, cfg.DatabaseConfig())
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
		st := repository.NewSQLStore(db)
		clients, parkings, sessions, pinger = st.Clients, st.Parkings, st, db
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable; cache disabled, rate limit is per process")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		p := service.NewAMQPPublisher(cfg.AMQPURL, log)
		defer p.Close()
		publisher = p
	}
	if cfg.ConsumeEvents {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, Dir: cfg.EventLogDir, Log: log}
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event consumer stopped")
			}
		}()
	}

	manager := service.NewSessionManager(sessions, log, service.WithPublisher(publisher))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, log))

	router.RegisterRoutes(e, pinger)
	router.RegisterClients(e, handler.NewClientHandler(clients, log), middleware.NewRedisCache(cfg.Cache, rdb, log))
	router.RegisterParkings(e, handler.NewParkingHandler(parkings, log), cfg.AdminJWTSecret)
	router.RegisterSessions(e, handler.NewSessionHandler(manager, log))
	router.RegisterAdmin(e, &handler.AdminHandler{
		User:         cfg.AdminUser,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.AdminJWTSecret,
		TTL:          cfg.AdminTokenTTL,
		Log:          log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
