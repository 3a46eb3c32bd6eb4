package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

// recentLimit is how many items of each kind the dashboard shows.
const recentLimit = 3

var (
	lostShortcut   = key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "I lost something"))
	foundShortcut  = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "I found something"))
	searchShortcut = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search items"))
	reloadKey      = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
)

type recentMsg struct {
	lost, found []model.Item
	err         error
}

type dashboard struct {
	deps    *Deps
	pane    itemsPane
	spin    spinner.Model
	loading bool
	loadErr bool
}

func newDashboard(deps *Deps) *dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &dashboard{
		deps:    deps,
		pane:    newItemsPane(deps, "Recently Lost", "Recently Found"),
		spin:    s,
		loading: true,
	}
}

func (d *dashboard) Init() tea.Cmd {
	return tea.Batch(d.spin.Tick, fetchRecent(d.deps))
}

func (d *dashboard) Capturing() bool { return d.pane.Confirming() }

func (d *dashboard) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case recentMsg:
		d.loading = false
		d.loadErr = msg.err != nil
		return d, d.pane.SetItems(head(msg.lost, recentLimit), head(msg.found, recentLimit))

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spin, cmd = d.spin.Update(msg)
		return d, cmd

	case tea.WindowSizeMsg:
		d.pane.SetSize(msg.Width-4, max(6, msg.Height-20))
		return d, nil

	case tea.KeyMsg:
		if !d.pane.Confirming() {
			switch {
			case key.Matches(msg, lostShortcut):
				return d, navigate(route.ReportLost)
			case key.Matches(msg, foundShortcut):
				return d, navigate(route.ReportFound)
			case key.Matches(msg, searchShortcut):
				return d, navigate(route.Search)
			case key.Matches(msg, reloadKey):
				if d.loading {
					return d, nil
				}
				d.loading = true
				return d, tea.Batch(d.spin.Tick, fetchRecent(d.deps))
			}
		}
	}
	var cmd tea.Cmd
	d.pane, cmd = d.pane.Update(msg)
	return d, cmd
}

func (d *dashboard) View() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(t.Title.Render("Lost something on Campus?") + "\n")
	b.WriteString(t.Muted.Render("CampusFinder is the university's central lost & found search.") + "\n")
	b.WriteString(t.Accent.Render("[l] I Lost Something   [f] I Found Something   [s] Search Items   [r] Reload") + "\n\n")
	switch {
	case d.loading:
		b.WriteString(d.spin.View() + " Loading recent items...")
	default:
		if d.loadErr {
			b.WriteString(t.Error.Render("Some recent items could not be loaded.") + "\n\n")
		}
		b.WriteString(d.pane.View())
	}
	return b.String()
}

// fetchRecent loads both lists at once. A failure of one list does not hide
// the other.
func fetchRecent(deps *Deps) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			g           errgroup.Group
			lost, found []model.Item
			lostErr     error
			foundErr    error
		)
		g.Go(func() error {
			lost, lostErr = deps.Client.ListLost(ctx)
			return lostErr
		})
		g.Go(func() error {
			found, foundErr = deps.Client.ListFound(ctx)
			return foundErr
		})
		_ = g.Wait() // both errors are kept below
		if lostErr != nil {
			deps.Log.Error("load recent lost items", zap.Error(lostErr))
		}
		if foundErr != nil {
			deps.Log.Error("load recent found items", zap.Error(foundErr))
		}
		return recentMsg{lost: lost, found: found, err: errors.Join(lostErr, foundErr)}
	}
}

func head(items []model.Item, n int) []model.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}
