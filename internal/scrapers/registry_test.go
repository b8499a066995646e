package scrapers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

type stubScraper struct {
	exts     []string
	elements []domain.Element
	err      error
}

func (s *stubScraper) Extensions() []string { return s.exts }

func (s *stubScraper) Scrape(_ context.Context, _ string) ([]domain.Element, error) {
	out := make([]domain.Element, len(s.elements))
	copy(out, s.elements)
	return out, s.err
}

func TestRegistry_Dispatch(t *testing.T) {
	pdf := &stubScraper{exts: []string{".pdf"}, elements: []domain.Element{domain.NewTextElement("from pdf")}}
	reg := NewRegistry(pdf)

	assert.True(t, reg.Supports("/corpus/Report.PDF"))
	assert.False(t, reg.Supports("/corpus/notes.docx"))

	elements, err := reg.Scrape(context.Background(), "/corpus/Report.PDF")
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "from pdf", elements[0].Text)
	assert.NotEmpty(t, elements[0].ID)
}

func TestRegistry_Unsupported(t *testing.T) {
	reg := NewRegistry()

	elements, err := reg.Scrape(context.Background(), "notes.docx")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Empty(t, elements)
}

func TestRegistry_PropagatesError(t *testing.T) {
	reg := NewRegistry(&stubScraper{exts: []string{".xlsx"}, err: errors.New("corrupt")})

	_, err := reg.Scrape(context.Background(), "book.xlsx")

	assert.EqualError(t, err, "corrupt")
}

func TestAssignIDs_Deterministic(t *testing.T) {
	build := func() []domain.Element {
		return []domain.Element{
			domain.NewTextElement("same"),
			domain.NewTextElement("same"),
			domain.NewTableElement("<table></table>", "t"),
		}
	}

	a, b := build(), build()
	AssignIDs("report.pdf", a)
	AssignIDs("report.pdf", b)

	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
	assert.NotEqual(t, a[0].ID, a[1].ID, "position is part of the id")

	other := build()
	AssignIDs("other.pdf", other)
	assert.NotEqual(t, a[0].ID, other[0].ID, "ids are scoped to the source")

	preset := []domain.Element{{ID: "keep", Kind: domain.ElementText, Text: "x"}}
	AssignIDs("report.pdf", preset)
	assert.Equal(t, "keep", preset[0].ID)
}

func TestRenderTable(t *testing.T) {
	html, plain := RenderTable([][]string{
		{"Name", "Role"},
		{},
		{"Ada <admin>"},
	})

	assert.Equal(t, "<table><tr><td>Name</td><td>Role</td></tr><tr><td>Ada &lt;admin&gt;</td><td></td></tr></table>", html)
	assert.Equal(t, "Name\tRole\nAda <admin>\t", plain)

	html, plain = RenderTable([][]string{{" ", ""}})
	assert.Empty(t, html)
	assert.Empty(t, plain)
}
