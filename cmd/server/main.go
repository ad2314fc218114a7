package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/config"
	"github.com/iliyamo/apparte-kost/internal/database"
	"github.com/iliyamo/apparte-kost/internal/handler"
	"github.com/iliyamo/apparte-kost/internal/logger"
	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/queue"
	"github.com/iliyamo/apparte-kost/internal/repository"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/router"
	"github.com/iliyamo/apparte-kost/internal/service"
	"github.com/iliyamo/apparte-kost/internal/storage"
	"github.com/iliyamo/apparte-kost/internal/utils"
	"github.com/iliyamo/apparte-kost/internal/whatsapp"
)

func main() {
	cfg := config.Load() // Load environment config
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		logrus.WithError(err).Fatal("build logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Password: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Apply(ctx, db); err != nil {
			log.WithError(err).Fatal("apply schema")
		}
	}

	files, err := storage.Open(ctx, cfg.BlobBucketURL, cfg.PublicAssetURL)
	if err != nil {
		log.WithError(err).Fatal("open upload bucket")
	}
	defer files.Close()

	var notifier service.Notifier
	switch cfg.NotifyTransport {
	case "queue":
		pub := queue.NewPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		notifier = pub
	case "direct":
		notifier = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)
	case "log":
		notifier = service.LogNotifier{Log: log}
	default:
		log.Fatalf("unknown NOTIFY_TRANSPORT %q", cfg.NotifyTransport)
	}
	dispatcher := service.NewDispatcher(notifier, cfg.NotifyTransport, log)

	stores := service.Stores{
		Users:     repository.NewUserRepo(db),
		Admins:    repository.NewAdminRepo(db),
		Identity:  repository.NewIdentityRepo(db),
		Listings:  repository.NewBoardingHouseRepo(db),
		Panoramas: repository.NewPanoramaRepo(db),
		Bookings:  repository.NewBookingRepo(db),
		Reviews:   repository.NewReviewRepo(db),
		Bookmarks: repository.NewBookmarkRepo(db),
	}
	opts := service.Options{BcryptCost: cfg.BcryptCost, AppName: cfg.AppName, Log: log}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTLMin)

	auth := service.NewAuthService(stores, tokens, opts)
	account := service.NewAccountService(stores, files, opts)
	listings := service.NewListingService(stores, files, dispatcher, opts)
	bookings := service.NewBookingService(stores, opts)
	reviews := service.NewReviewService(stores, opts)

	deps := router.Deps{
		Tokens:       tokens,
		DB:           db,
		Account:      handler.NewAccountHandler(auth, account, log),
		Boarding:     handler.NewBoardingHandler(listings, bookings, reviews, log),
		WebAuth:      handler.NewWebAuthHandler(auth, listings, log),
		WebBoarding:  handler.NewWebBoardingHandler(listings, log),
		Transactions: handler.NewTransactionHandler(bookings, log),
	}
	// local buckets have no public endpoint of their own
	if strings.HasPrefix(cfg.BlobBucketURL, "file://") {
		deps.Assets = handler.NewAssetHandler(files, log)
	}

	rl := config.LoadRateLimitConfig()
	if rl.Enabled {
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			log.WithError(err).Warn("rate limiting disabled")
		} else {
			defer rdb.Close()
			deps.RateLimit = middleware.NewTokenBucket(rl, rdb, log)
		}
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(log))
	router.Register(e, deps)

	addr := ":" + cfg.Port
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "notify": cfg.NotifyTransport}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	// let in-flight notifications reach the queue before the channel closes
	dispatcher.Wait()
	log.Info("server stopped")
}
