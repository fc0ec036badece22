package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/zappy/internal/events"
	"github.com/aristath/zappy/internal/orchestrator"
	"github.com/aristath/zappy/internal/tui"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		useTUI bool
		asJSON bool
		noHist bool
	)

	cmd := &cobra.Command{
		Use:   "run <topic>",
		Short: "Run the pipeline for one topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return errors.New("topic must not be blank")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()

			var extra []orchestrator.Option
			var bus *events.EventBus
			if useTUI {
				bus = events.NewEventBus()
				defer bus.Close()
				extra = append(extra, orchestrator.WithObserver(orchestrator.BusObserver(bus)))
			}
			if noHist {
				extra = append(extra, orchestrator.WithHistory(nil))
			}

			a, err := newApp(ctx, cfg, logger, extra...)
			if err != nil {
				return err
			}
			defer a.Close()

			var res orchestrator.RunResult
			if useTUI {
				res, err = runWithTUI(cmd, bus, func() orchestrator.RunResult {
					return a.orchestrator.Start(ctx, topic, cfg.RoleConfigs(), cfg.Content)
				})
				if err != nil {
					return err
				}
			} else {
				res = a.orchestrator.Start(ctx, topic, cfg.RoleConfigs(), cfg.Content)
			}

			if err := printResult(cmd.OutOrStdout(), res, asJSON); err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("run failed: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "show live progress in a terminal UI")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full run result as JSON")
	cmd.Flags().BoolVar(&noHist, "no-history", false, "do not save the run to history")
	return cmd
}

// runWithTUI runs start while a Bubble Tea program renders bus events. The
// program stays up after the run until the user quits or the context ends.
func runWithTUI(cmd *cobra.Command, bus *events.EventBus, start func() orchestrator.RunResult) (orchestrator.RunResult, error) {
	p := tea.NewProgram(tui.New(bus), tea.WithAltScreen())

	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	res := start()

	select {
	case err := <-errChan:
		if err != nil {
			return res, fmt.Errorf("tui: %w", err)
		}
	case <-cmd.Context().Done():
		p.Quit()
		<-errChan
	}
	return res, nil
}

func printResult(w io.Writer, res orchestrator.RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Failed() {
		return nil
	}
	fmt.Fprintln(w, res.FinalArtifact)
	if res.AudioURL != "" {
		fmt.Fprintf(w, "\nAudio: %s\n", res.AudioURL)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	return nil
}
