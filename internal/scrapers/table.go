package scrapers

import (
	"html"
	"strings"
)

// RenderTable renders rows as an HTML table and as tab-separated text.
// Short rows are padded to the widest row. Rows with no content are dropped.
func RenderTable(rows [][]string) (htmlTable, plain string) {
	rows = trimEmptyRows(rows)
	if len(rows) == 0 {
		return "", ""
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var h, p strings.Builder
	h.WriteString("<table>")
	for i, row := range rows {
		h.WriteString("<tr>")
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			h.WriteString("<td>")
			h.WriteString(html.EscapeString(cell))
			h.WriteString("</td>")

			if c > 0 {
				p.WriteByte('\t')
			}
			p.WriteString(cell)
		}
		h.WriteString("</tr>")
		if i < len(rows)-1 {
			p.WriteByte('\n')
		}
	}
	h.WriteString("</table>")

	return h.String(), p.String()
}

func trimEmptyRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
