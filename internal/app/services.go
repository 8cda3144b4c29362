package app

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"advisingdash/internal/advising"
	"advisingdash/internal/categorize"
	"advisingdash/internal/charts"
	"advisingdash/internal/config"
	"advisingdash/internal/infrastructure"
	"advisingdash/internal/services"
	"advisingdash/internal/textstats"
	"advisingdash/internal/validation"
	"advisingdash/internal/workshop"
)

// ServiceContainer holds the dashboard services.
type ServiceContainer struct {
	Store    *services.Store
	Advising *services.AdvisingService
	Workshop *services.WorkshopService
}

// NewServices builds the store and both dashboard services from cfg.
// metrics may be nil and tracer may be nil.
func NewServices(cfg *config.Config, metrics *infrastructure.DashboardMetrics, tracer trace.Tracer, logger *slog.Logger) (*ServiceContainer, error) {
	categorizer, err := loadCategorizer(cfg.Analysis.CategoriesFile)
	if err != nil {
		return nil, err
	}

	store := services.NewStore(services.StoreOptions{
		MaxDatasets:   cfg.Upload.MaxDatasets,
		TTL:           cfg.Upload.DatasetTTL,
		JanitorPeriod: cfg.Upload.JanitorPeriod,
	}, metrics, logger)

	deps := services.Deps{
		Store:          store,
		Renderer:       charts.NewRenderer(cfg.Charts),
		Validator:      validation.New(cfg.Upload.MaxBytes),
		Metrics:        metrics,
		Tracer:         tracer,
		Logger:         logger,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}

	return &ServiceContainer{
		Store:    store,
		Advising: services.NewAdvisingService(deps, categorizer, AdvisingOptions(cfg.Analysis)),
		Workshop: services.NewWorkshopService(deps, workshop.Options{PreviewRows: cfg.Analysis.PreviewRows}),
	}, nil
}

// AdvisingOptions converts the analysis settings.
func AdvisingOptions(cfg config.AnalysisConfig) advising.AnalyzeOptions {
	return advising.AnalyzeOptions{
		TopWords:      cfg.TopWords,
		CloudWords:    cfg.CloudWords,
		MinWordLength: cfg.MinWordLength,
		PreviewRows:   cfg.PreviewRows,
		Stopwords:     textstats.DefaultStopwords().With(cfg.ExtraStopwords...),
	}
}

func loadCategorizer(path string) (*categorize.Categorizer, error) {
	if path == "" {
		return categorize.Default(), nil
	}
	c, err := categorize.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return c, nil
}
