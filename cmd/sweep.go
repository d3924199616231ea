package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anoixa/picshare/internal/lifecycle"
	"github.com/spf13/cobra"
)

// sweepCmd 手动执行一次过期相册清理
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one album expiry sweep and print the report",
	Long: `Mark albums past their expiry, then purge albums whose grace period has ended.

Examples:
  # Show what would be marked and purged
  picshare sweep --dry-run

  # Purge now, print the report as JSON
  picshare sweep --json`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		asJSON, _ := cmd.Flags().GetBool("json")

		if err := runSweep(dryRun, asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().Bool("dry-run", false, "Count what would change without writing anything")
	sweepCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func runSweep(dryRun, asJSON bool) error {
	cfg, logger := bootstrap()
	defer func() { _ = logger.Sync() }()

	container := newContainer(cfg, logger)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := container.NewSweeper(dryRun).Sweep(ctx)
	if err != nil {
		return err
	}
	if report.Aborted {
		logger.Warn("sweep did not finish, remaining albums will be picked up next run")
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report)
	return nil
}

// printReport 打印清理统计
func printReport(r *lifecycle.Report) {
	fmt.Println()
	fmt.Println("========================================")
	if r.DryRun {
		fmt.Println("       Sweep Report (dry run)")
	} else {
		fmt.Println("       Sweep Report")
	}
	fmt.Println("========================================")
	fmt.Printf("Albums marked expired: %d\n", r.Marked)
	fmt.Printf("Purge candidates:      %d\n", r.Candidates)
	fmt.Printf("Objects requested:     %d\n", r.BlobsRequested)
	fmt.Printf("Objects deleted:       %d\n", r.BlobsDeleted)
	fmt.Printf("Delete batches:        %d (failed: %d)\n", r.BlobBatches, r.BlobBatchesFailed)
	fmt.Printf("Albums deleted:        %d\n", r.AlbumsDeleted)
	fmt.Printf("Albums skipped:        %d\n", r.AlbumsSkipped)
	fmt.Printf("Albums failed:         %d\n", r.AlbumsFailed)
	fmt.Printf("Duration:              %s\n", r.Duration)
	if r.Aborted {
		fmt.Println("Status:                aborted")
	}
	fmt.Println("========================================")
}
