package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/ai"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/tracker/jira"
	"github.com/custodia-labs/storysmith/internal/connectors/filesystem"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/core/services"
	"github.com/custodia-labs/storysmith/internal/logger"
	"github.com/custodia-labs/storysmith/internal/postprocessors/chunker"
	"github.com/custodia-labs/storysmith/internal/scrapers"
	"github.com/custodia-labs/storysmith/internal/scrapers/pdf"
	"github.com/custodia-labs/storysmith/internal/scrapers/xlsx"
)

// app holds the wired services for one command invocation.
type app struct {
	settings  *domain.AppSettings
	ingest    driving.IngestService
	retrieval driving.RetrievalService
	story     driving.StoryService
	closers   []func() error
}

// newApp builds the services. Tests replace it.
var newApp = buildApp

// loadApp resolves settings and wires the application.
func loadApp(ctx context.Context) (*app, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return newApp(ctx, settings)
}

func buildApp(_ context.Context, settings *domain.AppSettings) (*app, error) {
	a := &app{settings: settings}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w. Run 'storysmith config' to check settings", err)
	}
	a.closers = append(a.closers, embedder.Close)

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%w. Run 'storysmith config' to check settings", err)
	}
	a.closers = append(a.closers, llm.Close)

	store, err := storage.Open(settings.Store)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	dir, err := homeDir()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open prompt store: %w", err)
	}

	collection := settings.Store.Collection
	retrieval := services.NewRetrievalService(embedder, store, collection)

	a.ingest = services.NewIngestService(
		filesystem.New(),
		newScraperRegistry(settings.Ingest),
		chunker.New(chunker.WithChunkSize(settings.Ingest.ChunkSize), chunker.WithOverlap(settings.Ingest.Overlap)),
		embedder,
		store,
		collection,
		settings.Ingest,
	)
	a.retrieval = retrieval
	a.story = services.NewStoryService(
		retrieval,
		services.NewPromptComposer(prompts),
		llm,
		jira.New(jira.FromSettings(settings.Tracker)),
		settings.LLM,
	)
	return a, nil
}

func newScraperRegistry(settings domain.IngestSettings) driven.ScraperRegistry {
	pdfScraper := pdf.New(pdf.WithStrategy(settings.PDFStrategy), pdf.WithLanguage(settings.OCRLanguage))
	if err := pdfScraper.CheckAvailable(); err != nil {
		logger.Warn("PDF extraction unavailable: %v\n%s", err, pdf.InstallInstructions())
	}
	return scrapers.NewRegistry(pdfScraper, xlsx.New())
}

// Close releases every resource in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
