package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"podcastgen/internal/infra"
)

type commandContext struct {
	verbose bool
	config  *infra.Config
	logger  infra.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "podcastgen",
		Short:         "Generate two-host podcast episodes from a topic or article",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			ctx.config = cfg
			ctx.logger = infra.NewCLILogger(ctx.verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newChimeCommand(ctx))

	return rootCmd
}
