package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/zappy/internal/persistence"
)

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved blog history",
	}
	cmd.AddCommand(
		newHistoryListCmd(flags),
		newHistoryShowCmd(flags),
		newHistoryDeleteCmd(flags),
	)
	return cmd
}

// withStore loads config, opens the history store and passes it to fn.
func withStore(cmd *cobra.Command, flags *globalFlags, fn func(persistence.Store) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved blogs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(store persistence.Store) error {
				records, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No saved blogs.")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tKEYWORD\tTOKENS\tTITLE")
				for _, rec := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
						rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Keyword, rec.Tokens, rec.Title)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries (0 for all)")
	return cmd
}

func newHistoryShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(store persistence.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rec.Content)
				return nil
			})
		},
	}
}

func newHistoryDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(store persistence.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
