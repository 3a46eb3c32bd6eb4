package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
)

// Global bindings use function keys so they never collide with typing.
type keyMap struct {
	Home        key.Binding
	Search      key.Binding
	ReportLost  key.Binding
	ReportFound key.Binding
	Login       key.Binding
	Signup      key.Binding
	Logout      key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Home:        key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "dashboard")),
		Search:      key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "search")),
		ReportLost:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "report lost")),
		ReportFound: key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "report found")),
		Login:       key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "login")),
		Signup:      key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "sign up")),
		Logout:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "logout")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Search, k.ReportLost, k.ReportFound, k.Logout, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Home, k.Search, k.ReportLost, k.ReportFound},
		{k.Login, k.Signup, k.Logout, k.Quit},
	}
}

// Page-local bindings.
var (
	nextField   = key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field"))
	prevField   = key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field"))
	submitKey   = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit"))
	enterKey    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm"))
	optionLeft  = key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous"))
	optionRight = key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next"))
	deleteKey   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	yesKey      = key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes"))
	noKey       = key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no"))
)

// cursorMode is swapped to static in tests so inputs do not schedule blinks.
var cursorMode = cursor.CursorBlink

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 48
	ti.Cursor.SetMode(cursorMode)
	return ti
}
