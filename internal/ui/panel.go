package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/campusfinder/internal/model"
)

// Panel draws a framed box using the current theme.
func Panel(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Badge is the coloured LOST/FOUND marker.
func Badge(kind model.Kind) string {
	t := Current()
	switch kind {
	case model.Lost:
		return t.Lost.Render("[LOST]")
	case model.Found:
		return t.Found.Render("[FOUND]")
	}
	return t.Muted.Render("[" + string(kind) + "]")
}

// Truncate cuts s to max runes, ending with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// Card renders one item as a few lines. owner adds the delete hint.
func Card(it model.Item, owner bool) []string {
	t := Current()
	status := it.Status
	if status == "" {
		status = string(it.Type)
	}
	head := fmt.Sprintf("%s %s %s",
		Badge(model.Kind(status)),
		t.Title.Render(Truncate(it.ItemName, 60)),
		t.Muted.Render("· "+it.Category),
	)
	date := it.Date
	if date == "" {
		date = "Unknown"
	}
	lines := []string{
		head,
		"  " + t.Muted.Render("#"+it.ID.String()+" · "+it.Location+" · "+date),
	}
	if it.Description != "" {
		lines = append(lines, "  "+Truncate(it.Description, 76))
	}
	if it.ContactInfo != "" {
		lines = append(lines, "  "+t.Accent.Render("contact: "+it.ContactInfo))
	}
	if owner {
		lines = append(lines, "  "+t.Muted.Render("(yours)"))
	}
	return lines
}
