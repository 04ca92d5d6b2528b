package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podcastgen/internal/app"
	"podcastgen/internal/domain"
	"podcastgen/internal/pipeline"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var req pipeline.Request
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one podcast job and print the script",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.URL) == "" {
				return fmt.Errorf("provide --topic or --url")
			}
			logger := ctx.logger
			container, err := app.New(ctx.config, &logger, app.Options{
				OnState: func(job domain.Job) {
					logger.Info().Str("job_id", job.ID).Str("state", string(job.State)).Msg("job progress")
				},
			})
			if err != nil {
				return err
			}
			defer container.Close()

			res, err := container.Orchestrator.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s: %s (%s)\n", res.JobID, res.Topic, res.Tone)
			fmt.Fprintln(out, renderScript(res.Script))
			if res.Master == nil {
				fmt.Fprintln(out, "No audio produced.")
				return nil
			}
			path, err := container.Store.Path(res.Master.StorageKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Master: %s (%s, %s, %d clips, jingle=%t)\n",
				path, res.Master.Format, res.Master.Duration.Round(100*time.Millisecond), res.ClipCount, res.HasJingle)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Topic, "topic", "", "Episode topic")
	cmd.Flags().StringVar(&req.URL, "url", "", "Article URL to research instead of Wikipedia")
	cmd.Flags().StringVar(&req.Tone, "tone", string(domain.DefaultTone), "Delivery tone: casual, academic or comedic")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func renderScript(lines []domain.DialogueLine) string {
	rows := make([][]string, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, []string{strconv.Itoa(i + 1), string(line.Speaker), line.Text})
	}
	return renderTable([]string{"#", "Speaker", "Line"}, rows, 3)
}
