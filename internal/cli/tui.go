package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/geom"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// BoxListModel - Interactive geometry browser
// =============================================================================

// BoxListModel is the bubbletea model for browsing resolved boxes. Enter
// toggles a detail panel for the box under the cursor.
type BoxListModel struct {
	Geometry diagram.Geometry
	Cursor   int
	Offset   int
	Height   int
	Detail   bool
}

// NewBoxListModel creates a model over the boxes of g.
func NewBoxListModel(g diagram.Geometry) BoxListModel {
	return BoxListModel{Geometry: g, Height: 15}
}

func (m BoxListModel) Init() tea.Cmd {
	return nil
}

func (m BoxListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Geometry.Boxes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Geometry.Boxes)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m BoxListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(geometryTitle(m.Geometry)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Geometry.Boxes))
	b.WriteString(boxTable(m.Geometry.Boxes[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Geometry.Boxes))))

	if m.Detail && m.Cursor < len(m.Geometry.Boxes) {
		b.WriteString("\n\n")
		b.WriteString(boxDetail(m.Geometry, m.Geometry.Boxes[m.Cursor]))
	}
	return b.String()
}

// =============================================================================
// Rendering helpers
// =============================================================================

func geometryTitle(g diagram.Geometry) string {
	name := g.Name
	if name == "" {
		name = "diagram"
	}
	return fmt.Sprintf("%s  %s", name, frameSize(g.Frame))
}

// boxTable renders boxes with the row at cursor highlighted. A negative
// cursor highlights nothing.
func boxTable(boxes []diagram.Box, cursor int) *table.Table {
	rows := make([][]string, len(boxes))
	for i, box := range boxes {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows[i] = []string{
			marker,
			strings.Repeat("  ", box.Depth) + string(box.ID),
			boxKind(box),
			formatRect(box.Outer),
			formatPoint(box.Offset),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Box", "Kind", "Outer", "Offset").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return listHeaderStyle
			case row == cursor:
				return listSelectedStyle
			case col >= 3:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})
}

// boxDetail lists every resolved field of box and the bindings it owns.
func boxDetail(g diagram.Geometry, box diagram.Box) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(styleKey.Render(key) + " " + StyleValue.Render(value) + "\n")
	}

	line("id", string(box.ID))
	if box.Label != "" {
		line("label", box.Label)
	}
	if box.Parent != "" {
		line("parent", string(box.Parent))
	}
	line("type", boxKind(box))
	line("outer", formatRect(box.Outer))
	line("content", formatRect(box.Content))
	line("padding", fmt.Sprintf("%g %g %g %g", box.Padding[geom.Top], box.Padding[geom.Right], box.Padding[geom.Bottom], box.Padding[geom.Left]))
	line("render", formatPoint(box.Render))
	if box.Flipped {
		line("flipped", "yes")
	}
	if box.Grid != nil {
		line("rows", formatEdges(box.Grid.Rows))
		line("cols", formatEdges(box.Grid.Cols))
		line("axis row", fmt.Sprint(box.Grid.AxisRow))
	}
	for _, bd := range g.Bindings {
		if bd.Owner == box.ID {
			line("binds", fmt.Sprintf("%s on %s", bd.Target, bd.Axis))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func boxKind(box diagram.Box) string {
	if box.Kind != "" && box.Kind != box.Type {
		return box.Type + "/" + box.Kind
	}
	return box.Type
}

func formatRect(r geom.Rect) string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.W, r.H)
}

func formatPoint(p geom.Point) string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}

func formatEdges(edges []float64) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("%g", e)
	}
	return strings.Join(parts, " ")
}
