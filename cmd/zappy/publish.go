package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/zappy/internal/publish"
)

func newPublishCmd(flags *globalFlags) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a saved blog to a CMS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			p, err := publish.ByName(cfg.Publish, target, nil)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := p.Publish(cmd.Context(), rec.Title, rec.Content); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %q to %s\n", rec.Title, p.Name())
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "publish target: "+strings.Join(publish.Targets, ", "))
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
