package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.ItemName }

// itemDelegate renders an item as two lines and marks the ones the current
// user may delete.
type itemDelegate struct {
	deps *Deps
}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	name := ui.Truncate(it.ItemName, 40)
	if model.IsOwner(d.deps.Sessions.Get(), it.Item) {
		name += " " + t.Muted.Render("(yours)")
	}
	head := fmt.Sprintf("%s %s %s", ui.Badge(it.Type), name, t.Muted.Render("· "+it.Category))
	date := it.Date
	if date == "" {
		date = "Unknown"
	}
	sub := "#" + it.ID.String() + " · " + it.Location + " · " + date

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor) + " "
	}
	fmt.Fprintf(w, "%s%s\n  %s", prefix, head, t.Muted.Render(sub))
}

type deleteResultMsg struct {
	id  model.ID
	err error
}

// itemsPane shows a Lost and a Found list side by side as tabs, with
// owner-gated delete.
type itemsPane struct {
	deps   *Deps
	lists  [2]list.Model
	active int

	confirm  *model.Item
	deleting bool
}

const (
	tabLost  = 0
	tabFound = 1
)

func newItemsPane(deps *Deps, lostTitle, foundTitle string) itemsPane {
	p := itemsPane{deps: deps}
	for i, title := range []string{lostTitle, foundTitle} {
		l := list.New(nil, itemDelegate{deps: deps}, 76, 12)
		l.Title = title
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		l.SetShowStatusBar(true)
		l.SetShowPagination(true)
		l.SetStatusBarItemName("item", "items")
		l.DisableQuitKeybindings()
		l.Styles.Title = ui.Current().Title
		l.Styles.PaginationStyle = ui.Current().Help
		p.lists[i] = l
	}
	return p
}

func (p *itemsPane) SetItems(lost, found []model.Item) tea.Cmd {
	return tea.Batch(
		p.lists[tabLost].SetItems(toListItems(lost)),
		p.lists[tabFound].SetItems(toListItems(found)),
	)
}

func (p *itemsPane) SetSize(w, h int) {
	for i := range p.lists {
		p.lists[i].SetSize(w, h)
	}
}

// Len is the number of items in each tab.
func (p itemsPane) Len() (lost, found int) {
	return len(p.lists[tabLost].Items()), len(p.lists[tabFound].Items())
}

// Selected is the highlighted item of the active tab.
func (p itemsPane) Selected() (model.Item, bool) {
	li, ok := p.lists[p.active].SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.Item, true
}

// Confirming reports whether a y/n delete prompt is open.
func (p itemsPane) Confirming() bool { return p.confirm != nil }

func (p itemsPane) Update(msg tea.Msg) (itemsPane, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		p.deleting = false
		if msg.err != nil {
			p.deps.Log.Error("delete item", zap.String("item_id", msg.id.String()), zap.Error(msg.err))
			return p, notify("Error deleting item", true)
		}
		p.remove(msg.id)
		return p, notify("Item deleted", false)

	case tea.KeyMsg:
		if p.confirm != nil {
			switch {
			case key.Matches(msg, yesKey):
				id := p.confirm.ID
				p.confirm = nil
				p.deleting = true
				return p, deleteItem(p.deps, id)
			case key.Matches(msg, noKey):
				p.confirm = nil
			}
			return p, nil
		}
		switch {
		case key.Matches(msg, optionLeft):
			p.active = tabLost
			return p, nil
		case key.Matches(msg, optionRight):
			p.active = tabFound
			return p, nil
		case key.Matches(msg, deleteKey):
			if it, ok := p.Selected(); ok && !p.deleting && model.IsOwner(p.deps.Sessions.Get(), it) {
				p.confirm = &it
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.lists[p.active], cmd = p.lists[p.active].Update(msg)
	return p, cmd
}

func (p *itemsPane) remove(id model.ID) {
	for i := range p.lists {
		for idx, it := range p.lists[i].Items() {
			if li, ok := it.(listItem); ok && li.ID == id {
				p.lists[i].RemoveItem(idx)
				break
			}
		}
	}
}

func (p itemsPane) View() string {
	t := ui.Current()
	lost, found := p.Len()
	tabs := []string{
		fmt.Sprintf("Lost Items (%d)", lost),
		fmt.Sprintf("Found Items (%d)", found),
	}
	for i := range tabs {
		if i == p.active {
			tabs[i] = t.Selected.Render(" " + tabs[i] + " ")
		} else {
			tabs[i] = t.Muted.Render(" " + tabs[i] + " ")
		}
	}
	var b strings.Builder
	b.WriteString(strings.Join(tabs, "  ") + "  " + t.Help.Render("←/→ switch"))
	b.WriteString("\n\n")
	if n := len(p.lists[p.active].Items()); n == 0 {
		b.WriteString(t.Muted.Render("No items found."))
	} else {
		b.WriteString(p.lists[p.active].View())
	}
	if it, ok := p.Selected(); ok {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(ui.Card(it, model.IsOwner(p.deps.Sessions.Get(), it)), "\n"))
	}
	switch {
	case p.confirm != nil:
		b.WriteString("\n\n" + t.Error.Render(fmt.Sprintf("Delete %q? (y/n)", p.confirm.ItemName)))
	case p.deleting:
		b.WriteString("\n\n" + t.Muted.Render("Deleting..."))
	}
	return b.String()
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{Item: it})
	}
	return out
}

func deleteItem(deps *Deps, id model.ID) tea.Cmd {
	return func() tea.Msg {
		err := deps.Client.DeleteItem(context.Background(), id)
		return deleteResultMsg{id: id, err: err}
	}
}
