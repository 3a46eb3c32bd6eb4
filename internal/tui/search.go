package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

type searchResultMsg struct {
	filter model.Filter
	items  []model.Item
	err    error
}

const (
	focusQuery = iota
	focusCategory
	focusResults
	searchFocusCount
)

// searchPage keeps only the current filter; results are re-fetched on
// every submit and partitioned locally.
type searchPage struct {
	deps     *Deps
	query    textinput.Model
	category int
	focus    int
	pane     itemsPane
	spin     spinner.Model
	loading  bool
}

func newSearch(deps *Deps) *searchPage {
	q := newInput("Search by name...", 120)
	q.Focus()
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &searchPage{
		deps:  deps,
		query: q,
		pane:  newItemsPane(deps, "Lost Items", "Found Items"),
		spin:  s,
	}
}

// Init runs the initial unfiltered search.
func (p *searchPage) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, p.submit())
}

func (p *searchPage) Capturing() bool { return p.focus == focusQuery || p.pane.Confirming() }

// Filter is what the next submit sends.
func (p *searchPage) Filter() model.Filter {
	return model.Filter{
		ItemName: strings.TrimSpace(p.query.Value()),
		Category: model.SearchCategories[p.category],
	}
}

func (p *searchPage) submit() tea.Cmd {
	if p.loading {
		return nil
	}
	p.loading = true
	f := p.Filter()
	deps := p.deps
	return tea.Batch(p.spin.Tick, func() tea.Msg {
		items, err := deps.Client.Search(context.Background(), f)
		return searchResultMsg{filter: f, items: items, err: err}
	})
}

func (p *searchPage) setFocus(i int) tea.Cmd {
	p.focus = (i + searchFocusCount) % searchFocusCount
	if p.focus == focusQuery {
		return p.query.Focus()
	}
	p.query.Blur()
	return nil
}

func (p *searchPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		p.loading = false
		if msg.err != nil {
			p.deps.Log.Error("search failed",
				zap.String("item_name", msg.filter.ItemName),
				zap.String("category", msg.filter.Category),
				zap.Error(msg.err))
			return p, notify("Search failed. Please try again.", true)
		}
		lost, found := model.Partition(msg.items)
		return p, p.pane.SetItems(lost, found)

	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tea.WindowSizeMsg:
		p.pane.SetSize(msg.Width-4, max(6, msg.Height-18))
		return p, nil

	case tea.KeyMsg:
		if p.pane.Confirming() {
			break
		}
		switch {
		case key.Matches(msg, nextField) && msg.String() == "tab":
			return p, p.setFocus(p.focus + 1)
		case key.Matches(msg, prevField) && msg.String() == "shift+tab":
			return p, p.setFocus(p.focus - 1)
		case key.Matches(msg, enterKey) && p.focus != focusResults:
			return p, p.submit()
		}
		switch p.focus {
		case focusQuery:
			var cmd tea.Cmd
			p.query, cmd = p.query.Update(msg)
			return p, cmd
		case focusCategory:
			n := len(model.SearchCategories)
			switch {
			case key.Matches(msg, optionLeft):
				p.category = (p.category - 1 + n) % n
			case key.Matches(msg, optionRight):
				p.category = (p.category + 1) % n
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.pane, cmd = p.pane.Update(msg)
	return p, cmd
}

func (p *searchPage) View() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(t.Title.Render("Search Items") + "\n")
	b.WriteString(t.Muted.Render("Find what you lost or see what's been found.") + "\n\n")

	label := func(name string, f int) string {
		if p.focus == f {
			return t.Accent.Render(name)
		}
		return name
	}
	b.WriteString(label("Name", focusQuery) + "\n" + p.query.View() + "\n")
	cat := model.SearchCategories[p.category]
	if cat == "" {
		cat = "All Categories"
	}
	b.WriteString(label("Category", focusCategory) + "  ‹ " + cat + " ›\n\n")

	if p.loading {
		b.WriteString(p.spin.View() + " Loading...")
		return b.String()
	}
	b.WriteString(p.pane.View())
	b.WriteString("\n\n" + t.Help.Render("tab focus · enter search · ↑/↓ move · d delete"))
	return b.String()
}
