package services

import (
	"context"
	"fmt"
	"io"

	"gonum.org/v1/plot"

	"advisingdash/internal/charts"
	"advisingdash/internal/dataset"
	"advisingdash/internal/exporter"
	"advisingdash/internal/workshop"
)

// Workshop chart names.
const (
	ChartFunnel         = "funnel"
	ChartStages         = "stages"
	ChartMajors         = "majors"
	ChartRescheduleLead = "reschedule-lead"
)

// Workshop table names.
const (
	TableStageVsApplied = "stage-vs-applied"
	TableMajors         = "majors"
	TableStages         = "stages"
)

// WorkshopCharts lists the workshop charts in page order.
var WorkshopCharts = []string{ChartFunnel, ChartStages, ChartMajors, ChartRescheduleLead}

// WorkshopTables lists the workshop CSV tables.
var WorkshopTables = []string{TableStageVsApplied, TableMajors, TableStages}

// WorkshopView is a dataset with its analysis.
type WorkshopView struct {
	Dataset Dataset          `json:"dataset"`
	Report  *workshop.Report `json:"report"`
}

// WorkshopService runs the essay workshop dashboard.
type WorkshopService struct {
	deps Deps
	opts workshop.Options
}

// NewWorkshopService creates the workshop service.
func NewWorkshopService(deps Deps, opts workshop.Options) *WorkshopService {
	return &WorkshopService{
		deps: deps.withDefaults("workshop_service"),
		opts: opts,
	}
}

// Upload parses and stores a workshop sign-up export.
func (s *WorkshopService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return s.deps.ingest(ctx, KindWorkshop, filename, r, func(t *dataset.Table) error {
		_, err := workshop.Load(t)
		return err
	})
}

// List returns the stored workshop exports.
func (s *WorkshopService) List() []Dataset {
	return s.deps.Store.List(KindWorkshop)
}

// View analyzes a stored export. The raw preview is dropped unless preview
// is set.
func (s *WorkshopService) View(ctx context.Context, id string, preview bool) (*WorkshopView, error) {
	ctx, span := s.deps.Tracer.Start(ctx, "workshop.view")
	defer span.End()

	ds, report, err := s.analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	if !preview {
		report.Preview = nil
	}
	return &WorkshopView{Dataset: ds, Report: report}, nil
}

// Chart renders one named chart.
func (s *WorkshopService) Chart(ctx context.Context, id, name string) (*Chart, error) {
	if !contains(WorkshopCharts, name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
	_, report, err := s.analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.deps.render(ctx, KindWorkshop, name, func() (*plot.Plot, error) {
		return WorkshopChart(report, name)
	})
}

// ChartExtension is the file extension of rendered charts.
func (s *WorkshopService) ChartExtension() string {
	return s.deps.Renderer.Extension()
}

// Workbook writes the analysis as an XLSX report.
func (s *WorkshopService) Workbook(ctx context.Context, id string, w io.Writer) error {
	_, report, err := s.analyze(ctx, id)
	if err != nil {
		return err
	}
	return WriteWorkshopWorkbook(w, report)
}

// TableCSV writes one named table as CSV.
func (s *WorkshopService) TableCSV(ctx context.Context, id, table string, w io.Writer) error {
	if !contains(WorkshopTables, table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	_, report, err := s.analyze(ctx, id)
	if err != nil {
		return err
	}

	switch table {
	case TableStageVsApplied:
		return exporter.WriteCrosstabCSV(w, report.StageVsApplied, true)
	case TableMajors:
		return exporter.WriteCountsCSV(w, "Major", "Count", report.Majors, true)
	default:
		return exporter.WriteCountsCSV(w, "Writing Stage", "Count", report.Stages, true)
	}
}

func (s *WorkshopService) analyze(ctx context.Context, id string) (Dataset, *workshop.Report, error) {
	ds, err := s.deps.lookup(ctx, KindWorkshop, id)
	if err != nil {
		return Dataset{}, nil, err
	}
	log, err := workshop.Load(ds.Table)
	if err != nil {
		return Dataset{}, nil, fmt.Errorf("load dataset %s: %w", id, err)
	}
	return ds, workshop.Analyze(log, s.opts), nil
}

// WorkshopChart builds the named chart from a report.
func WorkshopChart(r *workshop.Report, name string) (*plot.Plot, error) {
	switch name {
	case ChartFunnel:
		return charts.Bar("Workshop Funnel", "Writing Stage", "Submissions", r.Funnel)
	case ChartStages:
		return charts.HorizontalBar("Writing Stages", "Submissions", "", r.Stages)
	case ChartMajors:
		return charts.Pie("Majors", r.Majors)
	case ChartRescheduleLead:
		return charts.Bar("Days Between Scheduling and Rescheduling", "Days", "Submissions", r.RescheduleLead)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
}

// WriteWorkshopWorkbook writes every workshop table to one XLSX document.
func WriteWorkshopWorkbook(w io.Writer, r *workshop.Report) error {
	return writeWorkbook(w, func(wb *exporter.Workbook) error {
		if err := wb.AddMetrics("Summary", []exporter.Metric{
			{Name: "Total Submissions", Value: r.Summary.TotalSubmissions},
			{Name: "Unique Majors", Value: r.Summary.UniqueMajors},
			{Name: "Rescheduled", Value: r.Summary.Rescheduled},
			{Name: "Applied Before: Yes", Value: r.Summary.AppliedYes},
			{Name: "Applied Before: No", Value: r.Summary.AppliedNo},
		}); err != nil {
			return err
		}

		if err := addCountSheets(wb, []countSheet{
			{"Funnel", "Writing Stage", "Submissions", r.Funnel},
			{"Stages", "Writing Stage", "Submissions", r.Stages},
			{"Majors", "Major", "Submissions", r.Majors},
			{"Reschedule Lead", "Days", "Submissions", r.RescheduleLead},
		}); err != nil {
			return err
		}

		return wb.AddCrosstab("Stage vs Applied", r.StageVsApplied, false)
	})
}
