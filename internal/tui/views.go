package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sheetbridge"))
	if m.snap.Loading {
		b.WriteString("  " + m.spin.View() + dimStyle.Render("working..."))
	}
	b.WriteString("\n\n")

	if m.snap.ErrorMessage != "" {
		b.WriteString(bannerStyle.Render("✗ "+m.snap.ErrorMessage) + "\n\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render("✓ "+m.status) + "\n\n")
	}

	if !m.snap.Authenticated {
		b.WriteString("Not signed in.\n\n")
		b.WriteString(dimStyle.Render("l: sign in with Google  •  q: quit"))
		return b.String()
	}

	switch m.pane {
	case paneSpreadsheets:
		m.renderSpreadsheets(&b)
	case paneSheets:
		m.renderSheets(&b)
	}

	if m.snap.Preview != nil {
		b.WriteString("\n")
		m.renderPreview(&b)
	}

	b.WriteString("\n" + dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderSpreadsheets(b *strings.Builder) {
	b.WriteString(headerStyle.Render("Spreadsheets") + "\n")
	if len(m.snap.Spreadsheets) == 0 {
		b.WriteString(dimStyle.Render("  (none found)") + "\n")
		return
	}
	for i, sp := range m.snap.Spreadsheets {
		line := fmt.Sprintf("  %s (%d sheets)", sp.Title, len(sp.Sheets))
		if i == m.listCursor {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) renderSheets(b *strings.Builder) {
	sel, ok := m.snap.Selected()
	if !ok {
		b.WriteString(dimStyle.Render("No spreadsheet selected.") + "\n")
		return
	}

	b.WriteString(headerStyle.Render("Sheets in "+sel.Title) + "\n")
	if len(sel.Sheets) == 0 {
		b.WriteString(dimStyle.Render("  (this spreadsheet has no sheets)") + "\n")
		return
	}
	for i, sh := range sel.Sheets {
		line := "  " + sh.Title
		if sh.Title == m.snap.SelectedSheet {
			line += dimStyle.Render("  [previewed]")
		}
		if i == m.sheetCursor {
			line = selectedStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
}

// renderPreview draws headers plus rows, padding short rows so a row
// missing trailing cells still lines up under every header.
func (m Model) renderPreview(b *strings.Builder) {
	p := m.snap.Preview
	b.WriteString(headerStyle.Render("Preview: "+p.SheetName) + "\n")

	if len(p.Headers) == 0 && len(p.Data) == 0 {
		b.WriteString(dimStyle.Render("  (sheet is empty)") + "\n")
		return
	}

	widths := make([]int, len(p.Headers))
	for i, h := range p.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for r := range p.Data {
		for c := range p.Headers {
			if l := lipgloss.Width(p.Cell(r, c)); l > widths[c] {
				widths[c] = l
			}
		}
	}

	var row []string
	for i, h := range p.Headers {
		row = append(row, pad(h, widths[i]))
	}
	b.WriteString("  " + headerStyle.Render(strings.Join(row, "  ")) + "\n")

	for r := range p.Data {
		row = row[:0]
		for c := range p.Headers {
			row = append(row, pad(p.Cell(r, c), widths[c]))
		}
		b.WriteString("  " + strings.Join(row, "  ") + "\n")
	}
}

func (m Model) helpLine() string {
	if m.pane == paneSheets {
		return "enter: preview sheet  •  esc: back  •  s: send preview  •  r: refresh  •  x: sign out  •  q: quit"
	}
	return "enter: open spreadsheet  •  s: send preview  •  r: refresh  •  x: sign out  •  q: quit"
}

// pad fills to display width, not byte length, so multi-byte and
// double-width cells keep the columns aligned.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
