package render

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorDim    = lipgloss.Color("240")
)

// styles are bound to the renderer of the output writer, so color is only
// emitted when that writer is a terminal.
type styles struct {
	heading lipgloss.Style
	name    lipgloss.Style
	link    lipgloss.Style
	dim     lipgloss.Style
	updated lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(colorCyan),
		name:    r.NewStyle().Bold(true),
		link:    r.NewStyle().Foreground(colorBlue),
		dim:     r.NewStyle().Foreground(colorDim),
		updated: r.NewStyle().Foreground(colorYellow),
		added:   r.NewStyle().Foreground(colorGreen),
		removed: r.NewStyle().Foreground(colorRed),
	}
}

func (s styles) prefix(p string) string {
	switch p {
	case prefixUpdated:
		return s.updated.Render(p)
	case prefixAdded:
		return s.added.Render(p)
	case prefixRemoved:
		return s.removed.Render(p)
	default:
		return s.name.Render(p)
	}
}
