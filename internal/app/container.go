package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"podcastgen/internal/audio"
	"podcastgen/internal/domain"
	"podcastgen/internal/http/handlers"
	"podcastgen/internal/infra"
	"podcastgen/internal/infra/geoip"
	"podcastgen/internal/pipeline"
	"podcastgen/internal/providers/music"
	"podcastgen/internal/providers/research"
	"podcastgen/internal/providers/script"
	"podcastgen/internal/providers/voice"
	"podcastgen/internal/storage"
)

// Container owns every long-lived dependency of the process.
type Container struct {
	Config       *infra.Config
	Logger       *infra.Logger
	HTTP         *infra.HTTPClient
	Store        *storage.FileStore
	Chime        *audio.ChimeSource
	Transcoder   *audio.Transcoder
	Exporter     *audio.Exporter
	Orchestrator *pipeline.Orchestrator
	Locator      geoip.Locator

	resolver *geoip.Resolver
}

// Options adjusts how the container is built.
type Options struct {
	// OnState observes each job state transition.
	OnState func(job domain.Job)
}

// New builds the container from configuration. Missing upstream credentials
// are not an error; the matching stage degrades instead.
func New(cfg *infra.Config, logger *infra.Logger, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = infra.NopLogger()
	}

	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		if abs, err := filepath.Abs(outputDir); err == nil {
			outputDir = abs
		}
	}
	store, err := storage.NewFileStore(outputDir, cfg.PublicOutputPath)
	if err != nil {
		return nil, fmt.Errorf("app: configure storage: %w", err)
	}

	shared := infra.NewHTTPClient(infra.HTTPClientOptions{
		Timeout:        cfg.UpstreamTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	client := shared.Client()

	researcher := research.NewProvider(research.Options{
		HTTPClient:       client,
		WikipediaBaseURL: cfg.WikipediaBaseURL,
		UserAgent:        cfg.UserAgent,
		Logger:           logger,
	})
	scripter := script.NewMiniMaxGenerator(script.MiniMaxOptions{
		APIKey:     cfg.MiniMaxAPIKey,
		Model:      cfg.MiniMaxModel,
		BaseURL:    cfg.MiniMaxBaseURL,
		HTTPClient: client,
		Logger:     logger,
	})
	synth := voice.NewElevenLabsSynthesizer(voice.ElevenLabsOptions{
		APIKey:     cfg.ElevenLabsAPIKey,
		BaseURL:    cfg.ElevenLabsBaseURL,
		Model:      cfg.ElevenLabsModel,
		VoiceA:     cfg.VoiceAlex,
		VoiceB:     cfg.VoiceSam,
		HTTPClient: client,
		Store:      store,
		Logger:     logger,
	})
	jingles := music.NewMiniMaxJingleGenerator(music.MiniMaxOptions{
		APIKey:       cfg.MiniMaxAPIKey,
		GroupID:      cfg.MiniMaxGroupID,
		BaseURL:      cfg.MiniMaxBaseURL,
		Model:        cfg.MiniMaxMusicModel,
		PollInterval: cfg.JinglePollInterval,
		MaxAttempts:  cfg.JingleMaxAttempts,
		HTTPClient:   client,
		Store:        store,
		Logger:       logger,
	})

	chime := audio.NewChimeSource(cfg.ChimePath, logger)
	transcoder := audio.NewTranscoder(cfg.FFmpegPath)
	if cfg.OutputFormat == infra.OutputFormatMP3 {
		if _, ok := transcoder.Available(); !ok {
			logger.Warn().Msg("ffmpeg not found, masters will be written as wav")
		}
	}
	exporter := audio.NewExporter(store, cfg.OutputFormat, transcoder, logger)

	orchestrator, err := pipeline.NewOrchestrator(pipeline.Options{
		Researcher: researcher,
		Scripter:   scripter,
		Voice:      synth,
		Jingles:    jingles,
		Assembler:  audio.NewEngine(chime, logger),
		Exporter:   exporter,
		Store:      store,
		Logger:     logger,
		OnState:    opts.OnState,
	})
	if err != nil {
		shared.Close()
		return nil, err
	}

	c := &Container{
		Config:       cfg,
		Logger:       logger,
		HTTP:         shared,
		Store:        store,
		Chime:        chime,
		Transcoder:   transcoder,
		Exporter:     exporter,
		Orchestrator: orchestrator,
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		c.resolver = resolver
		c.Locator = resolver
	}
	return c, nil
}

// Keys reports which upstream credentials are configured.
func (c *Container) Keys() handlers.KeyStatus {
	return handlers.KeyStatus{
		MiniMax:      c.Config.HasScriptCredentials(),
		MiniMaxMusic: c.Config.HasMusicCredentials(),
		ElevenLabs:   c.Config.HasVoiceCredentials(),
	}
}

// Handlers builds the HTTP handler set.
func (c *Container) Handlers() *handlers.App {
	return handlers.NewApp(c.Orchestrator, c.Store, c.Keys(), c.Logger)
}

// Close releases pooled connections and the geoip database.
func (c *Container) Close() error {
	c.HTTP.Close()
	if c.resolver != nil {
		return c.resolver.Close()
	}
	return nil
}
