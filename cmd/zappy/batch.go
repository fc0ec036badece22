package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/zappy/internal/orchestrator"
)

func newBatchCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Run the pipeline for each topic in a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := readTopics(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, runErr := a.orchestrator.StartBatch(cmd.Context(), topics, cfg.RoleConfigs(), cfg.Content)
			if err := printReport(cmd.OutOrStdout(), report, asJSON); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("batch interrupted: %w", runErr)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d topics failed", report.Failed, report.Failed+report.Succeeded)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the batch report as JSON")
	return cmd
}

// readTopics reads one topic per line from path, or from stdin when path is "-".
// Blank lines are kept; the batch runner skips and counts them.
func readTopics(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening topics: %w", err)
		}
		defer f.Close()
		r = f
	}

	var topics []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		topics = append(topics, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topics: %w", err)
	}
	return topics, nil
}

func printReport(w io.Writer, report orchestrator.BatchReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, res := range report.Results {
		status := "ok"
		if res.Failed() {
			status = "failed: " + res.Error
		}
		fmt.Fprintf(w, "%-40s %6d tokens  %s\n", res.Topic, res.TotalTokens, status)
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d skipped\n", report.Succeeded, report.Failed, report.Skipped)
	return nil
}
