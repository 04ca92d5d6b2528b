package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"podcastgen/internal/app"
	httpapi "podcastgen/internal/http/httpapi"
	"podcastgen/internal/infra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	container, err := app.New(cfg, &logger, app.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}
	defer container.Close()

	keys := container.Keys()
	logger.Info().
		Bool("minimax", keys.MiniMax).
		Bool("minimax_music", keys.MiniMaxMusic).
		Bool("elevenlabs", keys.ElevenLabs).
		Str("output_dir", container.Store.BasePath()).
		Str("format", container.Exporter.Format()).
		Msg("upstreams configured")

	router := httpapi.NewRouter(container.Handlers(), httpapi.RouterOptions{
		Logger:          &logger,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Locator:         container.Locator,
		OutputDir:       container.Store.BasePath(),
		PublicPath:      cfg.PublicOutputPath,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
