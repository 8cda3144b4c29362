package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"advisingdash/internal/advising"
	"advisingdash/internal/app"
	"advisingdash/internal/config"
	"advisingdash/internal/services"
)

const workbookName = "report.xlsx"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a dashboard's charts and workbook to a directory",
	Long: `report analyses one appointment or workshop export and writes every chart
plus an Excel workbook into the output directory.

  advisingdash report --kind advising --input appointments.csv --out out/
  advisingdash report --kind advising --input a.xlsx --advisor "Jane Doe" --out out/
  advisingdash report --kind workshop --input workshop.csv --out out/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := reportOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		files, err := runReport(cmd.Context(), cfg, opts, newLogger(cfg))
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("kind", string(services.KindAdvising), "dashboard kind: advising or workshop")
	reportCmd.Flags().String("input", "", "CSV or Excel export to analyse (required)")
	reportCmd.Flags().String("out", ".", "output directory")
	reportCmd.Flags().StringSlice("advisor", nil, "only include these advisors (advising only)")
	reportCmd.Flags().StringSlice("type", nil, "only include these appointment types (advising only)")
	_ = reportCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(reportCmd)
}

type reportOptions struct {
	Kind     services.Kind
	Input    string
	Out      string
	Advisors []string
	Types    []string
}

func reportOptionsFromFlags(cmd *cobra.Command) (reportOptions, error) {
	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := services.ParseKind(kindFlag)
	if err != nil {
		return reportOptions{}, err
	}
	opts := reportOptions{Kind: kind}
	opts.Input, _ = cmd.Flags().GetString("input")
	opts.Out, _ = cmd.Flags().GetString("out")
	opts.Advisors, _ = cmd.Flags().GetStringSlice("advisor")
	opts.Types, _ = cmd.Flags().GetStringSlice("type")
	return opts, nil
}

// reportJob abstracts over the two dashboards once a file is uploaded.
type reportJob struct {
	charts    []string
	extension string
	chart     func(ctx context.Context, name string) (*services.Chart, error)
	workbook  func(ctx context.Context, w io.Writer) error
}

// runReport writes every chart and the workbook for opts.Input into
// opts.Out and returns the written paths, charts first.
func runReport(ctx context.Context, cfg *config.Config, opts reportOptions, logger *slog.Logger) ([]string, error) {
	svc, err := app.NewServices(cfg, nil, nil, logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	job, err := uploadForReport(ctx, svc, opts, f)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make([]string, len(job.charts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range job.charts {
		g.Go(func() error {
			chart, err := job.chart(gctx, name)
			if err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
			path := filepath.Join(opts.Out, name+"."+job.extension)
			if err := os.WriteFile(path, chart.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wbPath := filepath.Join(opts.Out, workbookName)
	if err := writeFile(wbPath, func(w io.Writer) error { return job.workbook(ctx, w) }); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	logger.Info("Report written",
		slog.String("kind", string(opts.Kind)),
		slog.String("input", opts.Input),
		slog.String("out", opts.Out),
		slog.Int("charts", len(paths)))

	return append(paths, wbPath), nil
}

func uploadForReport(ctx context.Context, svc *app.ServiceContainer, opts reportOptions, r io.Reader) (*reportJob, error) {
	filename := filepath.Base(opts.Input)

	switch opts.Kind {
	case services.KindAdvising:
		res, err := svc.Advising.Upload(ctx, filename, r)
		if err != nil {
			return nil, err
		}
		id := res.Dataset.ID
		filter := advising.Filter{Advisors: opts.Advisors, Types: opts.Types}
		return &reportJob{
			charts:    services.AdvisingCharts,
			extension: svc.Advising.ChartExtension(),
			chart: func(ctx context.Context, name string) (*services.Chart, error) {
				return svc.Advising.Chart(ctx, id, filter, name)
			},
			workbook: func(ctx context.Context, w io.Writer) error {
				return svc.Advising.Workbook(ctx, id, filter, w)
			},
		}, nil

	case services.KindWorkshop:
		if len(opts.Advisors) > 0 || len(opts.Types) > 0 {
			return nil, errors.New("--advisor and --type only apply to advising reports")
		}
		res, err := svc.Workshop.Upload(ctx, filename, r)
		if err != nil {
			return nil, err
		}
		id := res.Dataset.ID
		return &reportJob{
			charts:    services.WorkshopCharts,
			extension: svc.Workshop.ChartExtension(),
			chart: func(ctx context.Context, name string) (*services.Chart, error) {
				return svc.Workshop.Chart(ctx, id, name)
			},
			workbook: func(ctx context.Context, w io.Writer) error {
				return svc.Workshop.Workbook(ctx, id, w)
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", services.ErrUnknownKind, opts.Kind)
}

// writeFile creates path and removes it again if write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
