package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

// Form fields in display order.
const (
	fieldName = iota
	fieldCategory
	fieldDate
	fieldLocation
	fieldDescription
	fieldContact
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Item Name", "Category", "Date (YYYY-MM-DD)", "Location", "Description", "Contact Info (optional)",
}

type reportResultMsg struct {
	item *model.Item
	err  error
}

type reportPage struct {
	deps     *Deps
	kind     model.Kind
	inputs   [fieldCount]textinput.Model // fieldCategory is unused
	category int
	focus    int
	spin     spinner.Model
	loading  bool
}

func newReport(deps *Deps, kind model.Kind) *reportPage {
	p := &reportPage{deps: deps, kind: kind}
	place := [fieldCount]string{
		"e.g. Blue backpack", "", "2025-01-31", "e.g. Library, 2nd floor",
		"Color, brand, anything distinctive", "Email or phone",
	}
	for i := range p.inputs {
		p.inputs[i] = newInput(place[i], 200)
	}
	p.inputs[fieldDescription].CharLimit = 1000
	def := model.NewReport(kind).Category
	for i, c := range model.ReportCategories {
		if c == def {
			p.category = i
		}
	}
	p.inputs[fieldName].Focus()
	p.spin = spinner.New()
	p.spin.Spinner = spinner.Dot
	return p
}

func (p *reportPage) Init() tea.Cmd { return textinput.Blink }

func (p *reportPage) Capturing() bool { return true }

// Report is the payload the form would submit now.
func (p *reportPage) Report() model.Report {
	r := model.NewReport(p.kind)
	r.ItemName = strings.TrimSpace(p.inputs[fieldName].Value())
	r.Category = model.ReportCategories[p.category]
	r.Date = strings.TrimSpace(p.inputs[fieldDate].Value())
	r.Location = strings.TrimSpace(p.inputs[fieldLocation].Value())
	r.Description = strings.TrimSpace(p.inputs[fieldDescription].Value())
	r.ContactInfo = strings.TrimSpace(p.inputs[fieldContact].Value())
	return r
}

func (p *reportPage) setFocus(i int) tea.Cmd {
	if p.focus != fieldCategory {
		p.inputs[p.focus].Blur()
	}
	p.focus = (i + fieldCount) % fieldCount
	if p.focus == fieldCategory {
		return nil
	}
	return p.inputs[p.focus].Focus()
}

func (p *reportPage) submit() tea.Cmd {
	if p.loading {
		return nil
	}
	r := p.Report()
	if err := r.Validate(); err != nil {
		return notify(err.Error(), true)
	}
	p.loading = true
	deps, kind := p.deps, p.kind
	return tea.Batch(p.spin.Tick, func() tea.Msg {
		it, err := deps.Client.Report(context.Background(), kind, r)
		return reportResultMsg{item: it, err: err}
	})
}

func (p *reportPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case reportResultMsg:
		p.loading = false
		if msg.err != nil {
			p.deps.Log.Error("report item", zap.String("kind", string(p.kind)), zap.Error(msg.err))
			if p.kind == model.Found {
				return p, notify("Failed to submit report.", true)
			}
			return p, notify("Failed to report item.", true)
		}
		if msg.item != nil {
			p.deps.Log.Info("item reported", zap.String("item_id", msg.item.ID.String()))
		}
		text := "Item reported successfully!"
		if p.kind == model.Found {
			text = "Great job! Item reported as found."
		}
		return p, tea.Batch(navigate(route.Home), notify(text, false))

	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.loading {
			return p, nil
		}
		switch {
		case key.Matches(msg, submitKey):
			return p, p.submit()
		case key.Matches(msg, enterKey):
			if p.focus == fieldCount-1 {
				return p, p.submit()
			}
			return p, p.setFocus(p.focus + 1)
		case key.Matches(msg, nextField):
			return p, p.setFocus(p.focus + 1)
		case key.Matches(msg, prevField):
			return p, p.setFocus(p.focus - 1)
		}
		if p.focus == fieldCategory {
			n := len(model.ReportCategories)
			switch {
			case key.Matches(msg, optionLeft):
				p.category = (p.category - 1 + n) % n
			case key.Matches(msg, optionRight):
				p.category = (p.category + 1) % n
			}
			return p, nil
		}
	}

	if p.focus == fieldCategory {
		return p, nil
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

func (p *reportPage) View() string {
	t := ui.Current()
	var b strings.Builder
	if p.kind == model.Found {
		b.WriteString(t.Title.Render("Report a Found Item") + "\n")
		b.WriteString(t.Muted.Render("Thanks for helping! Tell us what you found and where.") + "\n\n")
	} else {
		b.WriteString(t.Title.Render("Report a Lost Item") + "\n")
		b.WriteString(t.Muted.Render("Describe what you lost so others can help.") + "\n\n")
	}
	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == p.focus {
			label = t.Accent.Render(label)
		}
		b.WriteString(label + "\n")
		if i == fieldCategory {
			b.WriteString(fmt.Sprintf("  ‹ %s ›\n", model.ReportCategories[p.category]))
			continue
		}
		b.WriteString(p.inputs[i].View() + "\n")
	}
	b.WriteString("\n")
	if p.loading {
		b.WriteString(p.spin.View() + " Submitting...")
	} else {
		b.WriteString(t.Help.Render("tab/↑↓ move · ←/→ category · enter next · ctrl+s submit"))
	}
	return b.String()
}
