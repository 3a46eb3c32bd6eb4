package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error lipgloss.Style
	Lost, Found                          lipgloss.Style
	Selected, Help                       lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	SymOK, SymFail, SymCursor string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Lost:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Found:       lipgloss.NewStyle().Foreground(lipgloss.Color("30")).Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
		SymOK:       "✔",
		SymFail:     "✖",
		SymCursor:   ">",
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classic()
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")) // bright magenta
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Lost = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
		t.Found = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
		t.BorderColor = lipgloss.Color("13")
		current = t
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Title: plain.Bold(true), Muted: plain, Accent: plain, Success: plain, Error: plain,
			Lost: plain, Found: plain, Selected: plain.Reverse(true), Help: plain,
			Border: lipgloss.Border{
				Top: "-", Bottom: "-", Left: "|", Right: "|",
				TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
			},
			BorderColor: lipgloss.NoColor{},
			SymOK:       "ok",
			SymFail:     "x",
			SymCursor:   ">",
		}
	default: // classic
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }
