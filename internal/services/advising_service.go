package services

import (
	"context"
	"fmt"
	"io"

	"gonum.org/v1/plot"

	"advisingdash/internal/advising"
	"advisingdash/internal/categorize"
	"advisingdash/internal/charts"
	"advisingdash/internal/dataset"
	"advisingdash/internal/exporter"
	"advisingdash/internal/stats"
)

// Advising chart names.
const (
	ChartWeekday         = "weekday"
	ChartMonthly         = "monthly"
	ChartRepeatTimeline  = "repeat-timeline"
	ChartNewVsReturning  = "new-vs-returning"
	ChartRepeatFrequency = "repeat-frequency"
	ChartTopWords        = "top-words"
	ChartWordCloud       = "wordcloud"
)

// Advising table names.
const (
	TableAdvisorMonthly  = "advisor-monthly"
	TableAdvisorCategory = "advisor-category"
	TableRepeatStatus    = "repeat-status"
	TableTopWords        = "top-words"
)

// AdvisingCharts lists the advising charts in page order.
var AdvisingCharts = []string{
	ChartWeekday, ChartMonthly, ChartRepeatTimeline, ChartNewVsReturning,
	ChartRepeatFrequency, ChartTopWords, ChartWordCloud,
}

// AdvisingTables lists the advising CSV tables.
var AdvisingTables = []string{TableAdvisorMonthly, TableAdvisorCategory, TableRepeatStatus, TableTopWords}

// AdvisingView is a dataset with its analysis.
type AdvisingView struct {
	Dataset Dataset          `json:"dataset"`
	Report  *advising.Report `json:"report"`
}

// AdvisingService runs the appointment dashboard.
type AdvisingService struct {
	deps        Deps
	categorizer *categorize.Categorizer
	opts        advising.AnalyzeOptions
}

// NewAdvisingService creates the advising service. A nil categorizer uses
// the built-in categories.
func NewAdvisingService(deps Deps, categorizer *categorize.Categorizer, opts advising.AnalyzeOptions) *AdvisingService {
	if categorizer == nil {
		categorizer = categorize.Default()
	}
	return &AdvisingService{
		deps:        deps.withDefaults("advising_service"),
		categorizer: categorizer,
		opts:        opts,
	}
}

// Upload parses and stores an appointment export.
func (s *AdvisingService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return s.deps.ingest(ctx, KindAdvising, filename, r, func(t *dataset.Table) error {
		_, err := advising.Load(t, s.categorizer)
		return err
	})
}

// List returns the stored appointment exports.
func (s *AdvisingService) List() []Dataset {
	return s.deps.Store.List(KindAdvising)
}

// View analyzes a stored export. The raw preview is dropped unless preview
// is set.
func (s *AdvisingService) View(ctx context.Context, id string, filter advising.Filter, preview bool) (*AdvisingView, error) {
	ctx, span := s.deps.Tracer.Start(ctx, "advising.view")
	defer span.End()

	ds, report, err := s.analyze(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	if !preview {
		report.Preview = nil
	}
	return &AdvisingView{Dataset: ds, Report: report}, nil
}

// Chart renders one named chart of the filtered analysis.
func (s *AdvisingService) Chart(ctx context.Context, id string, filter advising.Filter, name string) (*Chart, error) {
	if !contains(AdvisingCharts, name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
	_, report, err := s.analyze(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return s.deps.render(ctx, KindAdvising, name, func() (*plot.Plot, error) {
		return AdvisingChart(report, name)
	})
}

// ChartExtension is the file extension of rendered charts.
func (s *AdvisingService) ChartExtension() string {
	return s.deps.Renderer.Extension()
}

// Workbook writes the filtered analysis as an XLSX report.
func (s *AdvisingService) Workbook(ctx context.Context, id string, filter advising.Filter, w io.Writer) error {
	_, report, err := s.analyze(ctx, id, filter)
	if err != nil {
		return err
	}
	return WriteAdvisingWorkbook(w, report)
}

// TableCSV writes one named table of the filtered analysis as CSV.
func (s *AdvisingService) TableCSV(ctx context.Context, id string, filter advising.Filter, table string, w io.Writer) error {
	if !contains(AdvisingTables, table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	_, report, err := s.analyze(ctx, id, filter)
	if err != nil {
		return err
	}

	switch table {
	case TableAdvisorMonthly:
		return exporter.WriteCrosstabCSV(w, report.AdvisorMonthly, true)
	case TableAdvisorCategory:
		return exporter.WriteCrosstabCSV(w, report.AdvisorCategory, true)
	case TableRepeatStatus:
		return exporter.WriteCrosstabCSV(w, report.RepeatStatus, true)
	default:
		return exporter.WriteCountsCSV(w, "Word", "Frequency", report.TopWords, true)
	}
}

func (s *AdvisingService) analyze(ctx context.Context, id string, filter advising.Filter) (Dataset, *advising.Report, error) {
	if err := s.deps.Validator.Struct(filter); err != nil {
		return Dataset{}, nil, err
	}
	ds, err := s.deps.lookup(ctx, KindAdvising, id)
	if err != nil {
		return Dataset{}, nil, err
	}
	log, err := advising.Load(ds.Table, s.categorizer)
	if err != nil {
		return Dataset{}, nil, fmt.Errorf("load dataset %s: %w", id, err)
	}
	return ds, advising.Analyze(log, filter, s.opts), nil
}

// AdvisingChart builds the named chart from a report.
func AdvisingChart(r *advising.Report, name string) (*plot.Plot, error) {
	switch name {
	case ChartWeekday:
		return charts.Bar("Appointments by Day of Week", "Day", "Appointments", r.Weekday)
	case ChartMonthly:
		return charts.Bar("Appointments per Month", "Month", "Appointments", r.Monthly)
	case ChartRepeatTimeline:
		return charts.Line("Repeat Students Over Time", "Month", "Repeat Students", r.RepeatTimeline)
	case ChartNewVsReturning:
		return charts.GroupedBar("First-Time vs Repeat Students by Advisor", r.RepeatStatus)
	case ChartRepeatFrequency:
		return charts.Bar("Appointments per Student", "Appointments", "Students", r.RepeatFrequency)
	case ChartTopWords:
		return charts.HorizontalBar("Most Common Words in Topics", "Frequency", "", r.TopWords)
	case ChartWordCloud:
		return charts.WordCloud("Topic Word Cloud", r.CloudWords)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
}

// WriteAdvisingWorkbook writes every advising table to one XLSX document.
func WriteAdvisingWorkbook(w io.Writer, r *advising.Report) error {
	return writeWorkbook(w, func(wb *exporter.Workbook) error {
		metrics := []exporter.Metric{
			{Name: "Total Appointments", Value: r.Summary.TotalAppointments},
			{Name: "Unique Students", Value: r.Summary.UniqueStudents},
			{Name: "Repeat Students", Value: r.Summary.RepeatStudents},
		}
		if r.HasGaps {
			metrics = append(metrics,
				exporter.Metric{Name: "Average Days Between First and Last Visit", Value: r.Gaps.Average},
				exporter.Metric{Name: "Shortest Gap (days)", Value: r.Gaps.Shortest},
				exporter.Metric{Name: "Longest Gap (days)", Value: r.Gaps.Longest},
			)
		}
		if err := wb.AddMetrics("Summary", metrics); err != nil {
			return err
		}

		sheets := []countSheet{
			{"Weekday", "Day", "Appointments", r.Weekday},
			{"Monthly", "Month", "Appointments", r.Monthly},
			{"Repeat Timeline", "Month", "Repeat Students", r.RepeatTimeline},
			{"Repeat Frequency", "Appointments", "Students", r.RepeatFrequency},
		}
		if r.HasTopics {
			sheets = append(sheets, countSheet{"Top Words", "Word", "Frequency", r.TopWords})
		}
		if err := addCountSheets(wb, sheets); err != nil {
			return err
		}

		if err := wb.AddCrosstab("Advisor by Month", r.AdvisorMonthly, true); err != nil {
			return err
		}
		if err := wb.AddCrosstab("Repeat Status", r.RepeatStatus, false); err != nil {
			return err
		}
		return wb.AddCrosstab("Topic Categories", r.AdvisorCategory, false)
	})
}

type countSheet struct {
	sheet, label, value string
	counts              stats.Counts
}

func addCountSheets(wb *exporter.Workbook, sheets []countSheet) error {
	for _, c := range sheets {
		if err := wb.AddCounts(c.sheet, c.label, c.value, c.counts); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
