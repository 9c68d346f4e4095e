package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cloud-manager/core/reconcile"
	"cloud-manager/core/status"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by diff and sync
	jsonOutput bool
	noCreate   bool
)

// diffCmd reports differences without mutating anything.
var diffCmd = &cobra.Command{
	Use:   "diff [type...]",
	Short: "Report differences between the catalog and live resources",
	Long: `Classify every resource of the given types (roles, groups, buckets, tables;
all when omitted) as added, unmanaged or modified and report the result.

The exit code reflects the outcome: 0 when in sync, 2 when differences were
found and 1 on failure (configurable under exit.*).`,
	ValidArgs: resourceTypes,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.OutOrStdout(), args, false)
	},
}

// syncCmd creates and updates resources to match the catalog.
var syncCmd = &cobra.Command{
	Use:   "sync [type...]",
	Short: "Create and update live resources to match the catalog",
	Long: `Classify every resource of the given types, then create missing resources
and apply differences to modified ones. Unmanaged resources are reported and
left untouched; nothing is ever deleted.

A failure on one resource is logged and does not stop the others.`,
	ValidArgs: resourceTypes,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.OutOrStdout(), args, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{diffCmd, syncCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Write the reports to stdout as JSON")
		RootCmd.AddCommand(c)
	}
	syncCmd.Flags().BoolVar(&noCreate, "no-create", false, "Report missing resources instead of creating them")
}

func run(ctx context.Context, out io.Writer, args []string, doSync bool) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	types, err := selectTypes(args, resourceTypes)
	if err != nil {
		return err
	}
	if noCreate {
		rt.cfg.Sync.Create = false
	}

	deps := reconcile.Deps{Logger: rt.logger, Status: status.Global}
	if doSync {
		j, err := rt.openJournal(ctx)
		if err != nil {
			return err
		}
		if j != nil {
			deps.Journal = j
		}
	}

	targets, err := rt.targets(ctx, types, deps)
	if err != nil {
		return err
	}

	var (
		result  *multierror.Error
		reports []*reconcile.Report
		drifted []string
	)
	for _, t := range targets {
		var report *reconcile.Report
		if doSync {
			report, err = t.Sync(ctx)
		} else {
			report, err = t.Diff(ctx)
		}
		if report != nil {
			reports = append(reports, report)
			if report.HasDrift() {
				drifted = append(drifted, report.ResourceType)
			}
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	if jsonOutput {
		if err := writeReports(out, reports); err != nil {
			return err
		}
	}

	rt.logger.Info("Run finished",
		zap.Int("resource_types", len(targets)),
		zap.Strings("drifted", drifted),
		zap.String("status", status.Global.Level().String()),
	)
	return result.ErrorOrNil()
}

func writeReports(out io.Writer, reports []*reconcile.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	return nil
}
