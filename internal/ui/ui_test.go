package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/campusfinder/internal/model"
)

func TestCard(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	it := model.Item{
		ID: "1", ItemName: "Wallet", Category: "Documents", Location: "Library",
		Date: "2025-01-01", Description: "black leather", Type: model.Lost, Status: "LOST",
	}
	got := strings.Join(Card(it, false), "\n")
	assert.Contains(t, got, "[LOST]")
	assert.Contains(t, got, "Wallet")
	assert.Contains(t, got, "#1 · Library · 2025-01-01")
	assert.NotContains(t, got, "contact:")
	assert.NotContains(t, got, "(yours)")

	it.ContactInfo = "a@campus.edu"
	it.Date = ""
	got = strings.Join(Card(it, true), "\n")
	assert.Contains(t, got, "contact: a@campus.edu")
	assert.Contains(t, got, "Unknown")
	assert.Contains(t, got, "(yours)")
}

func TestPanelFramesEveryLine(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	out := Panel([]string{"one", "three"})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "+"))
	for _, ln := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(ln))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
}

func TestOutputHelpers(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "reported")
	Fail(&buf, "login required")
	Hint(&buf, "Run: campusfinder auth login")
	assert.Equal(t, "ok reported\nx login required\nRun: campusfinder auth login\n", buf.String())
}
