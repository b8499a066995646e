package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	embedmock "github.com/custodia-labs/storysmith/internal/adapters/driven/embedding/mock"
	llmmock "github.com/custodia-labs/storysmith/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storysmith/internal/adapters/driven/tracker/jira"
	"github.com/custodia-labs/storysmith/internal/connectors/filesystem"
	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/services"
	"github.com/custodia-labs/storysmith/internal/postprocessors/chunker"
	"github.com/custodia-labs/storysmith/internal/scrapers"
	"github.com/custodia-labs/storysmith/internal/scrapers/xlsx"
)

// setupTestServices wires the CLI to in-memory stores and mock AI providers.
// The vector store is shared across commands within one test.
func setupTestServices(t *testing.T) *memory.ConfigStore {
	t.Helper()

	config := memory.NewConfigStore()
	vectors := memory.NewVectorStore()
	embedder := embedmock.NewEmbeddingService("", 32)
	llm := llmmock.NewLLMService("")

	origSettings, origApp := settingsService, newApp
	settingsService = services.NewSettingsService(config, t.TempDir()).WithEnv(func(string) string { return "" })
	newApp = func(_ context.Context, settings *domain.AppSettings) (*app, error) {
		retrieval := services.NewRetrievalService(embedder, vectors, settings.Store.Collection)
		return &app{
			settings: settings,
			ingest: services.NewIngestService(
				filesystem.New(),
				scrapers.NewRegistry(xlsx.New()),
				chunker.New(),
				embedder,
				vectors,
				settings.Store.Collection,
				settings.Ingest,
			),
			retrieval: retrieval,
			story: services.NewStoryService(retrieval, services.NewPromptComposer(nil), llm,
				jira.New(jira.FromSettings(settings.Tracker)), settings.LLM),
		}, nil
	}

	t.Cleanup(func() {
		settingsService, newApp = origSettings, origApp
		resetFlags()
	})
	return config
}

func resetFlags() {
	askTopK, askCreateJira, askProject, askLabels, askJSON = domain.DefaultTopK, false, "", nil, false
	queryTopK, queryJSON = domain.DefaultTopK, false
	ingestWatch, ingestWorkers, ingestPatterns = false, 0, nil
	configPing = false
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeWorkbook creates an xlsx file with a single populated sheet.
func writeWorkbook(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, val))
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
