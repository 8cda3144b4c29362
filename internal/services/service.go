package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gonum.org/v1/plot"

	"advisingdash/internal/charts"
	"advisingdash/internal/config"
	"advisingdash/internal/dataset"
	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/exporter"
	"advisingdash/internal/infrastructure"
	"advisingdash/internal/validation"
)

// Deps are the collaborators shared by the dashboard services.
type Deps struct {
	Store          *Store
	Renderer       *charts.Renderer
	Validator      *validation.Validator
	Metrics        *infrastructure.DashboardMetrics
	Tracer         trace.Tracer
	Logger         *slog.Logger
	MaxUploadBytes int64
}

func (d Deps) withDefaults(component string) Deps {
	if d.Tracer == nil {
		d.Tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Validator == nil {
		d.Validator = validation.New(d.MaxUploadBytes)
	}
	if d.Renderer == nil {
		d.Renderer = charts.NewRenderer(config.ChartConfig{})
	}
	d.Logger = d.Logger.With(slog.String("component", component))
	return d
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	Dataset Dataset `json:"dataset"`
	// Duplicate is set when an identical file was already stored.
	Duplicate bool `json:"duplicate"`
}

// Chart is a rendered figure.
type Chart struct {
	Name        string
	ContentType string
	Data        []byte
}

// ingest reads, validates, parses and stores an upload. check validates the
// parsed table for the dashboard kind.
func (d Deps) ingest(ctx context.Context, kind Kind, filename string, r io.Reader, check func(*dataset.Table) error) (res *UploadResult, err error) {
	ctx, span := d.Tracer.Start(ctx, string(kind)+".upload",
		trace.WithAttributes(attribute.String("filename", filename)))
	defer span.End()

	rows := 0
	defer func() {
		outcome := "stored"
		switch {
		case err != nil:
			outcome = "rejected"
			infrastructure.RecordError(ctx, err)
		case res.Duplicate:
			outcome = "duplicate"
		}
		d.Metrics.RecordUpload(ctx, string(kind), outcome, rows)
	}()

	data, err := readLimited(r, d.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	if err := d.Validator.Upload(validation.Upload{
		Kind:     string(kind),
		Filename: filename,
		Size:     int64(len(data)),
	}); err != nil {
		return nil, err
	}

	table, err := dataset.Read(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := check(table); err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}

	ds, existing := d.Store.Put(ctx, kind, filename, table, dataset.Fingerprint(data))
	if !existing {
		rows = table.Len()
	}

	d.Logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", filename),
		slog.Int("rows", table.Len()),
		slog.Bool("duplicate", existing))

	return &UploadResult{Dataset: ds, Duplicate: existing}, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if len(data) == 0 {
			return nil, ErrEmptyUpload
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, limit)
	}
	return data, nil
}

// lookup fetches id and checks it belongs to kind.
func (d Deps) lookup(ctx context.Context, kind Kind, id string) (Dataset, error) {
	ds, err := d.Store.Get(ctx, id)
	if err != nil {
		return Dataset{}, err
	}
	if ds.Kind != kind {
		return Dataset{}, fmt.Errorf("%w: %s is a %s dataset", ErrWrongKind, id, ds.Kind)
	}
	return ds, nil
}

func (d Deps) render(ctx context.Context, kind Kind, name string, build func() (*plot.Plot, error)) (*Chart, error) {
	ctx, span := d.Tracer.Start(ctx, string(kind)+".chart",
		trace.WithAttributes(attribute.String("chart", name)))
	defer span.End()

	start := time.Now()
	p, err := build()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	data, err := d.Renderer.Render(p)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("render %s chart: %w", name, err)
	}
	d.Metrics.RecordChartRender(ctx, string(kind), name, time.Since(start))

	return &Chart{Name: name, ContentType: d.Renderer.ContentType(), Data: data}, nil
}

func writeWorkbook(w io.Writer, fill func(*exporter.Workbook) error) error {
	wb, err := exporter.NewWorkbook()
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := fill(wb); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if _, err := wb.WriteTo(w); err != nil {
		return apierrors.NewStorageError("could not write workbook", err)
	}
	return nil
}
