package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/openlancer/lancer/internal/application/auth"
	"github.com/openlancer/lancer/internal/application/escrow"
	"github.com/openlancer/lancer/internal/application/jobs"
	"github.com/openlancer/lancer/internal/config"
	infraauth "github.com/openlancer/lancer/internal/infrastructure/auth"
	httprouter "github.com/openlancer/lancer/internal/infrastructure/http"
	"github.com/openlancer/lancer/internal/infrastructure/http/handlers"
	"github.com/openlancer/lancer/internal/infrastructure/http/middleware"
	"github.com/openlancer/lancer/internal/infrastructure/persistence/db"
	"github.com/openlancer/lancer/internal/infrastructure/persistence/postgres"
	"github.com/openlancer/lancer/internal/infrastructure/security"
	"github.com/openlancer/lancer/internal/infrastructure/wallet"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	queries := db.New(pool)
	userRepo := postgres.NewUserRepository(queries, pool)
	tokenStore := postgres.NewTokenStore(queries, pool)
	jobRepo := postgres.NewJobRepository(queries, pool)

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	privateKey, err := infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	scopes := auth.NewScopeResolver(cfg.Admin.Wallets)
	verifier := wallet.NewVerifier()

	registerUC := auth.NewRegister(userRepo, hasher, issuer, tokenStore, scopes, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, tokenStore, scopes, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	verifyWalletUC := auth.NewVerifyWallet(verifier, userRepo, issuer, tokenStore, scopes, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	refreshUC := auth.NewRefresh(userRepo, issuer, tokenStore, scopes, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	logoutUC := auth.NewLogout(tokenStore)
	createJobUC := jobs.NewCreate(jobRepo)
	escrowActionUC := escrow.NewAction(jobRepo)

	csrfGuard := middleware.NewCSRFGuard(cfg.CSRF.AllowedOrigins, cfg.Cookie.Secure)
	cookies := handlers.CookieSettings{Secure: cfg.Cookie.Secure, Domain: cfg.Cookie.Domain}

	authHandler := handlers.NewAuthHandler(registerUC, loginUC, verifyWalletUC, refreshUC, logoutUC, csrfGuard, cookies, log)
	jobHandler := handlers.NewJobHandler(createJobUC, escrowActionUC, jobRepo, log)
	healthHandler := handlers.NewHealthHandler(pool)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.CSRF.AllowedOrigins, nil, nil)
	requireJWT := middleware.NewAuthValidator(issuer).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		JobHandler:    jobHandler,
		HealthHandler: healthHandler,
		CSRF:          csrfGuard,
		RequireJWT:    requireJWT,
		Log:           log,
		Secure:        secureMiddleware,
		IPRateLimit:   ipLimit,
		CORS:          corsMiddleware,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
