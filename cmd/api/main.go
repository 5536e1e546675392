package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/catalog"
	"server/internal/domain"
	httpapi "server/internal/http"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/infra/credentials"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/orchestrator"
	"server/internal/providers"
	"server/internal/providers/localgen"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	countryLookup, closeGeoIP, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	if closeGeoIP != nil {
		defer closeGeoIP()
	}

	// Every statement goes through the audited runner.
	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	// Stored integration tokens win over environment keys.
	creds := credentials.NewStore(sqlRunner)
	registry := buildRegistry(ctx, cfg, creds, logger)

	orch := orchestrator.New(orchestrator.Options{
		Catalog:     catalog.Default(),
		Tasks:       repo.NewTaskRepository(sqlRunner),
		Credits:     repo.NewCreditLedger(sqlRunner),
		Quota:       repo.NewQuotaChecker(sqlRunner, logger),
		Providers:   registry,
		CallbackURL: cfg.CallbackURL(),
		Logger:      logger,
	})

	app := handlers.NewApp(orch, logger)

	var lookup middleware.CountryLookup
	if countryLookup != nil {
		lookup = middleware.CountryLookup(countryLookup)
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildRegistry(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger zerolog.Logger) providers.Registry {
	timeout := cfg.ProviderSubmitTimeout
	key := func(p domain.Platform, fallback string) string {
		return creds.Override(ctx, p, fallback)
	}

	return providers.Registry{
		domain.PlatformFal:       providers.NewFal(key(domain.PlatformFal, cfg.FalAPIKey), timeout, logger),
		domain.PlatformReplicate: providers.NewReplicate(key(domain.PlatformReplicate, cfg.ReplicateAPIKey), timeout, logger),
		domain.PlatformLuma:      providers.NewLuma(key(domain.PlatformLuma, cfg.LumaAPIKey), timeout, logger),
		domain.PlatformRunway:    providers.NewRunway(key(domain.PlatformRunway, cfg.RunwayAPIKey), timeout, logger),
		domain.PlatformArk:       providers.NewArk(key(domain.PlatformArk, cfg.ArkAPIKey), timeout, logger),
		domain.PlatformWavespeed: providers.NewWavespeed(key(domain.PlatformWavespeed, cfg.WavespeedAPIKey), timeout, logger),
		domain.PlatformKie:       providers.NewKie(key(domain.PlatformKie, cfg.KieAPIKey), timeout, logger),
		domain.PlatformKusa:      providers.NewKusa(key(domain.PlatformKusa, cfg.KusaAPIKey), timeout, logger),
		domain.PlatformLocal:     providers.NewLocal(localgen.NewRunner(timeout, logger), 0, logger),
	}
}
