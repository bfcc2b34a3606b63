package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/community-console/internal/domain"
	"github.com/kurihiro0119/community-console/internal/storage"
)

var batchLimit int

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Inspect stored submission runs",
}

var batchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent submission runs",
	Args:  cobra.NoArgs,
	RunE:  runBatchesList,
}

var batchesShowCmd = &cobra.Command{
	Use:   "show [runId]",
	Short: "Show every target of a submission run",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchesShow,
}

func init() {
	batchesListCmd.Flags().IntVar(&batchLimit, "limit", storage.DefaultListLimit, "maximum number of runs")

	batchesCmd.AddCommand(batchesListCmd)
	batchesCmd.AddCommand(batchesShowCmd)
}

func runBatchesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	runs, err := store.ListBatchRuns(context.Background(), batchLimit)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(runs)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Kind", "Created", "Targets", "Succeeded", "Failed", "Outcome"})
	for _, run := range runs {
		s := run.Summary()
		table.Append([]string{
			run.ID,
			string(run.Kind),
			run.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Succeeded),
			fmt.Sprintf("%d", s.Failed),
			run.Outcome(),
		})
	}
	table.Render()
	return nil
}

func runBatchesShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	run, err := store.GetBatchRun(context.Background(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(run)
	}
	fmt.Printf("\nRun: %s (%s)\n", run.ID, run.Kind)
	fmt.Printf("Created: %s\n\n", run.CreatedAt.Local().Format(time.DateTime))
	printBatchRun(run)
	return nil
}

func printBatchRun(run *domain.BatchRun) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Community", "Members", "Status", "Message"})
	for i, t := range run.Targets {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			t.DisplayName,
			fmt.Sprintf("%d", t.TotalMembers),
			statusLabel(t.Status),
			t.Message,
		})
	}
	table.Render()

	s := run.Summary()
	fmt.Printf("%d succeeded, %d failed of %d (%s)\n", s.Succeeded, s.Failed, s.Total, run.Outcome())
}
