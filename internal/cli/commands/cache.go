package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
		Long: `Inspect or clear the result cache.

Results are cached per file, keyed by the file's content and the active
rule configuration, so unchanged files are not parsed again.`,
	}

	cmd.AddCommand(newCacheClearCommand())
	cmd.AddCommand(newCacheRunsCommand())
	return cmd
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd, "")
			store, err := openStore(cmdCtx.Cfg.Cache.Path, cmdCtx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.ClearResults(cmd.Context())
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Removed %d cached results", n))
			return nil
		},
	}
}

func newCacheRunsCommand() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent check runs",
		Args:  cobra.NoArgs,
		Example: `  # Show the last 20 runs
  sqla2lint cache runs

  # Show the last 5 runs as JSON
  sqla2lint cache runs --limit 5 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd, format)
			r := cmdCtx.Renderer

			store, err := openStore(cmdCtx.Cfg.Cache.Path, cmdCtx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			infos := make([]output.RunInfo, 0, len(runs))
			for _, run := range runs {
				info := output.RunInfo{
					ID:        run.ID,
					Status:    string(run.Status),
					StartedAt: run.StartedAt.Format(time.RFC3339),
					Files:     run.Files,
					Issues:    run.Issues,
					Error:     run.Error,
				}
				if run.CompletedAt != nil {
					info.CompletedAt = run.CompletedAt.Format(time.RFC3339)
				}
				infos = append(infos, info)
			}

			if ok, err := r.Structured(infos); ok {
				return err
			}
			if len(infos) == 0 {
				r.Println("No runs recorded")
				return nil
			}

			r.Header(1, "Recent Runs")
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.ID,
					info.Status,
					info.StartedAt,
					strconv.Itoa(info.Files),
					strconv.Itoa(info.Issues),
				})
			}
			r.Table([]string{"ID", "Status", "Started", "Files", "Issues"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml")
	return cmd
}
