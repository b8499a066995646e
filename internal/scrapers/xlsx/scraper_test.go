package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestScrape_OneTablePerSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Requirements": {
			{"ID", "Requirement", "Priority"},
			{"R1", "Users can reset passwords", "High"},
			{"R2", "Export to CSV & PDF", "Low"},
		},
		"Empty": {},
		"Risks": {
			{"Risk", "Owner"},
			{"Vendor delay", "PMO"},
		},
	}, []string{"Requirements", "Empty", "Risks"})

	elements, err := New().Scrape(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, elements, 2)

	req := elements[0]
	assert.Equal(t, domain.ElementTable, req.Kind)
	assert.Equal(t, "Requirements", req.Sheet)
	assert.Equal(t, 1, req.Page)
	assert.Contains(t, req.HTML, "<tr><td>R1</td><td>Users can reset passwords</td><td>High</td></tr>")
	assert.Contains(t, req.HTML, "Export to CSV &amp; PDF")
	assert.Equal(t, "ID\tRequirement\tPriority\nR1\tUsers can reset passwords\tHigh\nR2\tExport to CSV & PDF\tLow", req.Text)

	assert.Equal(t, "Risks", elements[1].Sheet)
	assert.Equal(t, 3, elements[1].Page)
}

func TestScrape_NotASpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))

	_, err := New().Scrape(context.Background(), path)

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".xlsx"}, New().Extensions())
}
