package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"buckettool/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear stored findings",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored findings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.historyStore().List()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.historyStore()
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			pterm.Success.Printfln("history cleared (%s)", store.Path())
			return nil
		},
	}

	cmd.AddCommand(list, clearCmd)
	return cmd
}

// historyStore opens the history file even when recording is disabled.
func (a *app) historyStore() *history.Store {
	return history.NewStore(a.cfg.History.Path)
}
