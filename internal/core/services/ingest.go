package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs Scraper -> Chunker -> Embedder -> VectorStore for a corpus.
// Failures are contained to the file or element they affect.
type IngestService struct {
	source     driven.CorpusSource
	scrapers   driven.ScraperRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
	defaults   domain.IngestSettings
}

// NewIngestService creates an ingestion service writing to collection.
// An empty collection uses domain.DefaultCollection.
func NewIngestService(
	source driven.CorpusSource,
	scrapers driven.ScraperRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	collection string,
	defaults domain.IngestSettings,
) *IngestService {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &IngestService{
		source:     source,
		scrapers:   scrapers,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		collection: collection,
		defaults:   defaults,
	}
}

// Ingest processes every file under req.CorpusDir matching req.Patterns.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestReport, error) {
	start := time.Now()
	req = s.withDefaults(req)
	logger.Section("Ingest")
	logger.Info("Corpus: %s, patterns: %v, workers: %d", req.CorpusDir, req.Patterns, req.Workers)

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	files, err := s.source.List(ctx, req.CorpusDir, req.Patterns)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}
	logger.Info("Found %d file(s)", len(files))

	reports := make([]*driving.FileReport, len(files))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.Workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := s.processFile(gctx, f.Path, f.Name)
			reports[i] = r

			if req.OnProgress != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				req.OnProgress(n, len(files), r)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	report := &driving.IngestReport{FilesFound: len(files)}
	for _, r := range reports {
		if r == nil {
			continue
		}
		report.Files = append(report.Files, r)
		report.ElementsSkipped += r.ElementsSkipped
		report.ElementsFailed += r.ElementsFailed
		report.ChunksWritten += r.ChunksWritten
		report.Duplicates += r.Duplicates
		switch {
		case r.Skipped:
			report.FilesSkipped++
		case r.Err != nil:
			report.FilesFailed++
		default:
			report.FilesProcessed++
		}
	}

	// Count with the parent context so a cancelled run still reports what landed.
	if count, err := s.store.Count(context.WithoutCancel(ctx), s.collection); err == nil {
		report.CollectionCount = count
	} else {
		logger.Warn("Could not count collection %s: %v", s.collection, err)
	}
	report.Duration = time.Since(start)

	logger.Info("Ingested %d file(s): %d chunk(s) written, %d duplicate(s), %d skipped, %d failed",
		report.FilesProcessed, report.ChunksWritten, report.Duplicates, report.FilesSkipped, report.FilesFailed)

	if waitErr != nil {
		return report, waitErr
	}
	return report, nil
}

// IngestFile runs the pipeline for one file. name is the record source name.
func (s *IngestService) IngestFile(ctx context.Context, path, name string) (*driving.FileReport, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s.processFile(ctx, path, name), nil
}

// Watch ingests matching files as they appear or change, until ctx is done.
func (s *IngestService) Watch(ctx context.Context, req driving.IngestRequest, onFile func(*driving.FileReport)) error {
	req = s.withDefaults(req)
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	files, errs, err := s.source.Watch(ctx, req.CorpusDir, req.Patterns)
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}
	logger.Info("Watching %s for %v", req.CorpusDir, req.Patterns)

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-files:
			if !ok {
				return nil
			}
			r := s.processFile(ctx, f.Path, f.Name)
			if onFile != nil {
				onFile(r)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

func (s *IngestService) withDefaults(req driving.IngestRequest) driving.IngestRequest {
	if req.CorpusDir == "" {
		req.CorpusDir = s.defaults.CorpusDir
	}
	if len(req.Patterns) == 0 {
		req.Patterns = s.defaults.Patterns
	}
	if len(req.Patterns) == 0 {
		req.Patterns = domain.DefaultAppSettings().Ingest.Patterns
	}
	if req.Workers < 1 {
		req.Workers = s.defaults.Workers
	}
	if req.Workers < 1 {
		req.Workers = 1
	}
	return req
}

func (s *IngestService) ensureCollection(ctx context.Context) error {
	_, err := s.store.EnsureCollection(ctx, s.collection, s.embedder.ModelName(), s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("prepare collection %s: %w", s.collection, err)
	}
	return nil
}

// processFile never returns an error: everything lands in the report.
func (s *IngestService) processFile(ctx context.Context, path, name string) *driving.FileReport {
	report := &driving.FileReport{Name: name}

	elements, err := s.scrapers.Scrape(ctx, path)
	if err != nil {
		report.Err = err
		if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrExtraction) {
			report.Skipped = true
		}
		logger.Warn("Skipping %s: %v", name, err)
		return report
	}
	if len(elements) == 0 {
		report.Skipped = true
		logger.Warn("Skipping %s: no elements extracted", name)
		return report
	}
	report.Elements = len(elements)
	logger.Debug("%s: %d element(s)", name, len(elements))

	var errs []error
	for _, el := range elements {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if el.IsEmpty() {
			report.ElementsSkipped++
			logger.Warn("%s: skipping element %s: %v", name, el.ID, domain.ErrEmptyContent)
			continue
		}

		written, dups, err := s.writeElement(ctx, name, el)
		report.ChunksWritten += written
		report.Duplicates += dups
		if err != nil {
			// Earlier writes stay in place; there is no rollback across records.
			report.ElementsFailed++
			errs = append(errs, fmt.Errorf("element %s: %w", el.ID, err))
			logger.Error("%s: element %s: %v", name, el.ID, err)
		}
	}
	report.Err = errors.Join(errs...)
	return report
}

func (s *IngestService) writeElement(ctx context.Context, source string, el domain.Element) (int, int, error) {
	var chunks []domain.Chunk
	for _, span := range s.chunker.Split(el.Content()) {
		if strings.TrimSpace(span.Text) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Source:    source,
			ElementID: el.ID,
			Index:     span.Index,
			Content:   span.Text,
			Metadata:  chunkMetadata(source, el),
		})
	}
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, 0, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	var written, dups int
	for i, c := range chunks {
		err := s.store.Write(ctx, s.collection, domain.Record{
			ID:        c.ID(),
			Embedding: vectors[i],
			Document:  c.Content,
			Metadata:  c.Metadata,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateID):
			dups++
			logger.Debug("Already ingested: %s", c.ID())
		case err != nil:
			return written, dups, fmt.Errorf("write %s: %w", c.ID(), err)
		default:
			written++
		}
	}
	return written, dups, nil
}

func chunkMetadata(source string, el domain.Element) map[string]string {
	meta := map[string]string{
		domain.MetaSource:      source,
		domain.MetaContentType: el.ContentType(),
		domain.MetaElementID:   el.ID,
	}
	if el.Page > 0 {
		meta[domain.MetaPage] = strconv.Itoa(el.Page)
	}
	if el.Sheet != "" {
		meta[domain.MetaSheet] = el.Sheet
	}
	return meta
}
