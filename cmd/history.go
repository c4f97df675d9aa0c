package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytgrab/internal/config"
	"ytgrab/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded downloads, most recent first",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded downloads",
	Args:  cobra.NoArgs,
	RunE:  historyClearRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	debugf("history database: %s", path)

	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

func historyRun(cmd *cobra.Command, args []string) error {
	if flagHistoryLimit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", flagHistoryLimit)
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		return nil
	}

	for _, line := range history.FormatForDisplay(entries) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func historyClearRun(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries.\n", n)
	return nil
}
