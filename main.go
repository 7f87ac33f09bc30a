package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geniustrading/config"
	"geniustrading/controllers"
	"geniustrading/controllers/admins"
	"geniustrading/controllers/auth"
	"geniustrading/controllers/users"
	"geniustrading/database"
	"geniustrading/jobs"
	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/routes"
	"geniustrading/services"
	"geniustrading/sessions"
	"geniustrading/storage"
	"geniustrading/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.For("main")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.Env)
	log := logger.For("main")

	ctx := context.Background()

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	rdb, err := utils.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	var sessionStore sessions.Store = sessions.NewDBStore(store)
	if rdb != nil {
		defer rdb.Close()
		sessionStore = sessions.NewRedisStore(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions kept in redis")
	}

	signer := utils.NewTokenSigner(cfg.Session.Secret, cfg.Session.Audience, cfg.Session.Issuer)
	mgr := sessions.NewManager(sessionStore, signer, sessions.Options{
		TTL:        cfg.Session.TTL,
		TouchAfter: cfg.Session.TouchAfter,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.CookieSecure,
	})

	authSvc := services.NewAuth(store, cfg.BcryptCost)
	ledger := services.NewLedger(store, cfg.LedgerStrict)
	investments := services.NewInvestments(store, cfg.LedgerStrict)
	kyc := services.NewKyc(store)
	registry := services.NewRegistry(store)

	if err := services.EnsureAdmin(ctx, store, authSvc, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin account")
	}
	if cfg.SeedSampleData {
		if err := services.SeedSampleData(ctx, store); err != nil {
			log.Fatal().Err(err).Msg("failed to seed sample data")
		}
	}

	// Interfaces stay nil unless a bucket is configured.
	var (
		uploader  users.DocumentStore
		presigner admins.Presigner
	)
	if cfg.S3.Enabled() {
		docs, err := utils.NewDocumentStore(ctx, utils.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init document storage")
		}
		uploader, presigner = docs, docs
	} else {
		log.Warn().Msg("S3 not configured, KYC document upload disabled")
	}

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddSessionCleanup("@hourly", store); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session cleanup")
	}
	scheduler.Start()

	router := routes.InitRouter(routes.Deps{
		Authenticator: middleware.NewAuthenticator(mgr, store),
		Auth:          auth.NewHandler(authSvc, mgr, middleware.NewLoginGuard(rdb, cfg.LoginMaxFails)),
		Users:         users.NewHandler(ledger, investments, kyc, uploader),
		Admins: admins.NewHandler(admins.Deps{
			Auth:        authSvc,
			Accounts:    services.NewAccounts(store),
			Ledger:      ledger,
			Investments: investments,
			Kyc:         kyc,
			Registry:    registry,
			Documents:   presigner,
		}),
		Info:           controllers.NewInfoController(registry),
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})

	tracker := middleware.NewActivityTracker(0, 0, cfg.TrustedProxies)

	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery -> Metrics -> Suspicious Activity
	handler := middleware.RequestLog(logger.For("http"))(
		middleware.SecurityHeaders(middleware.SecurityOptions{Env: cfg.Env, HSTS: cfg.Env == "production"})(
			middleware.RequestID(
				middleware.MaxBody(cfg.MaxBodyBytes)(
					middleware.Timeout(cfg.RequestTimeout)(
						middleware.Recovery(logger.For("http"))(
							tracker.Metrics(
								tracker.Guard(router),
							),
						),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited")
}

// openStorage picks the in-memory store for DB_DRIVER=memory and a migrated
// SQL database otherwise.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.DB.Driver == "memory" {
		log := logger.For("main")
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return storage.NewMemory(), nil
	}
	db, err := database.Connect(cfg.DB, cfg.Env)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return storage.NewGorm(db), nil
}
