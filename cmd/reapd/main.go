package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/younsl/reapd/internal/config"
	"github.com/younsl/reapd/internal/models"
	"github.com/younsl/reapd/internal/version"
	"github.com/younsl/reapd/pkg/aws"
	"github.com/younsl/reapd/pkg/formatter"
	"github.com/younsl/reapd/pkg/reaper"
	"github.com/younsl/reapd/pkg/utils"
)

var (
	regions     []string
	configFile  string
	dryRun      bool
	showVersion bool
)

// startScanSpinner creates and starts a spinner for the given region
func startScanSpinner(region string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Scanning EC2 instances in %s ...", region)
	s.Start()
	return s
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "reapd",
		Short: "Lifecycle cleanup for provisioned EC2 instances",
		Long: `reapd stops idle EC2 instances provisioned by the automation
pipeline and terminates instances that stayed stopped past the grace
period. Decision state lives entirely in EC2 tags and CloudWatch
metrics; each invocation is an independent batch.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				info := version.Get()
				fmt.Printf("reapd version %s (commit: %s, built: %s, %s)\n",
					info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
				return nil
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			if len(regions) == 0 {
				regions = []string{utils.GetDefaultRegion()}
			}

			var validRegions []string
			for _, region := range regions {
				if utils.IsValidRegion(region) {
					validRegions = append(validRegions, region)
				} else {
					fmt.Printf("Warning: Skipping invalid region '%s'\n", region)
				}
			}
			if len(validRegions) == 0 {
				return fmt.Errorf("no valid regions specified")
			}

			return runCleanup(cmd.Context(), cfg, validRegions)
		},
	}

	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report decisions without stopping or terminating anything")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (defaults + REAPD_* env otherwise)")

	defaultRegions := []string{utils.GetDefaultRegion()}
	rootCmd.Flags().StringSliceVarP(&regions, "regions", "r", nil,
		fmt.Sprintf("AWS regions to clean up (comma separated, default: %s)", strings.Join(defaultRegions, ", ")))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// runCleanup processes each region sequentially and prints the combined
// summary. A failure in any region aborts the whole invocation; the
// next scheduled run re-evaluates everything safely.
func runCleanup(ctx context.Context, cfg *config.Config, regions []string) error {
	fmt.Println("Starting instance cleanup ...")
	scanStartTime := time.Now()

	total := models.RunSummary{}
	var allDecisions []models.Decision

	for _, region := range regions {
		s := startScanSpinner(region)

		summary, decisions, err := runRegion(ctx, cfg, region)
		if err != nil {
			s.Stop()
			return fmt.Errorf("cleanup failed in region %s: %w", region, err)
		}

		s.FinalMSG = fmt.Sprintf("✓ [%d instances examined] %s - Stopped: %d, Terminated: %d\n",
			summary.Examined, region, summary.StoppedCount, summary.TerminatedCount)
		s.Stop()

		total.Add(summary)
		allDecisions = append(allDecisions, decisions...)
	}

	scanDuration := time.Since(scanStartTime)

	formatter.PrintDecisionsTable(allDecisions, scanStartTime, scanDuration, dryRun)
	formatter.PrintRunSummary(total, dryRun)
	return nil
}

// runRegion wires the collaborators for one region and runs a pass.
func runRegion(ctx context.Context, cfg *config.Config, region string) (models.RunSummary, []models.Decision, error) {
	ec2Client, err := aws.NewEC2Client(region, cfg.TagKey, cfg.TagValue)
	if err != nil {
		return models.RunSummary{}, nil, err
	}

	cwClient, err := aws.NewCloudWatchClient(region, cfg.MetricPeriodSeconds)
	if err != nil {
		return models.RunSummary{}, nil, err
	}

	r := reaper.New(cfg, ec2Client, cwClient, ec2Client)
	r.DryRun = dryRun

	return r.Run(ctx)
}
