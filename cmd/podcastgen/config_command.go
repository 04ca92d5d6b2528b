package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podcastgen/internal/audio"
	"podcastgen/internal/infra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show which upstreams and audio tools are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderConfig(ctx.config, audio.NewTranscoder(ctx.config.FFmpegPath)))
			return nil
		},
	}
}

func renderConfig(cfg *infra.Config, transcoder *audio.Transcoder) string {
	ffmpeg := "not found"
	if path, ok := transcoder.Available(); ok {
		ffmpeg = path
	}
	rows := [][]string{
		{"script (MiniMax)", status(cfg.HasScriptCredentials()), cfg.MiniMaxModel},
		{"jingle (MiniMax music)", status(cfg.HasMusicCredentials()), cfg.MiniMaxMusicModel},
		{"voice (ElevenLabs)", status(cfg.HasVoiceCredentials()), cfg.ElevenLabsModel},
		{"research (Wikipedia)", "ready", cfg.WikipediaBaseURL},
		{"output", cfg.OutputFormat, cfg.OutputDir},
		{"ffmpeg", ffmpeg, ""},
		{"chime", cfg.ChimePath, ""},
	}
	return renderTable([]string{"Component", "Status", "Detail"}, rows, 0)
}

func status(configured bool) string {
	if configured {
		return "configured"
	}
	return "fallback"
}
