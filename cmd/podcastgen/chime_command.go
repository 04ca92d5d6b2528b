package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"podcastgen/internal/audio"
)

func newChimeCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chime",
		Short: "Render the transition chime to a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(out)
			if target == "" {
				return fmt.Errorf("--out is required")
			}
			logger := ctx.logger
			source := audio.NewChimeSource(ctx.config.ChimePath, &logger)
			seg := source.Chime()

			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			if err := audio.EncodeWAV(f, seg); err != nil {
				f.Close()
				return fmt.Errorf("encode chime: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chime (%d ms) to %s\n", source.Origin(), seg.DurationMS(), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "bell.wav", "Destination WAV file")
	return cmd
}
