package tui

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

type authResultMsg struct {
	session *model.Session
	err     error
}

// authForm backs both the login and the sign up page.
type authForm struct {
	deps    *Deps
	signup  bool
	next    route.Path
	labels  []string
	inputs  []textinput.Model
	focus   int
	loading bool
}

func newLogin(deps *Deps, next route.Path) *authForm {
	if next == "" {
		next = route.Home
	}
	f := &authForm{deps: deps, next: next, labels: []string{"Username", "Password"}}
	f.inputs = []textinput.Model{newInput("username", 64), newPassword()}
	f.inputs[0].Focus()
	return f
}

func newSignup(deps *Deps) *authForm {
	f := &authForm{deps: deps, signup: true, next: route.Home, labels: []string{"Username", "Email", "Password"}}
	f.inputs = []textinput.Model{newInput("username", 64), newInput("you@campus.edu", 128), newPassword()}
	f.inputs[0].Focus()
	return f
}

func newPassword() textinput.Model {
	ti := newInput("password", 128)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

func (f *authForm) Init() tea.Cmd { return textinput.Blink }

func (f *authForm) Capturing() bool { return true }

func (f *authForm) value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

func (f *authForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *authForm) submit() tea.Cmd {
	if f.loading {
		return nil
	}
	for i := range f.inputs {
		if f.value(i) == "" {
			return notify(f.labels[i]+" is required.", true)
		}
	}
	f.loading = true
	deps := f.deps
	if f.signup {
		req := model.Signup{Username: f.value(0), Email: f.value(1), Password: f.inputs[2].Value()}
		return func() tea.Msg {
			s, err := deps.Client.Signup(context.Background(), req)
			return authResultMsg{session: s, err: err}
		}
	}
	creds := model.Credentials{Username: f.value(0), Password: f.inputs[1].Value()}
	return func() tea.Msg {
		s, err := deps.Client.Login(context.Background(), creds)
		return authResultMsg{session: s, err: err}
	}
}

func (f *authForm) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		f.loading = false
		if msg.err != nil {
			return f, f.failed(msg.err)
		}
		if msg.session == nil {
			return f, tea.Batch(navigate(route.Login), notify("Account created. Please log in.", false))
		}
		if err := f.deps.Sessions.Set(*msg.session); err != nil {
			f.deps.Log.Error("persist session", zap.Error(err))
			return f, notify("Logged in, but the session could not be saved.", true)
		}
		welcome := "Welcome back, " + msg.session.Username + "!"
		if f.signup {
			welcome = "Welcome, " + msg.session.Username + "!"
		}
		return f, tea.Batch(navigate(f.next), notify(welcome, false))

	case tea.KeyMsg:
		if f.loading {
			return f, nil
		}
		switch {
		case key.Matches(msg, submitKey):
			return f, f.submit()
		case key.Matches(msg, enterKey):
			if f.focus == len(f.inputs)-1 {
				return f, f.submit()
			}
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, nextField):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(msg, prevField):
			return f, f.setFocus(f.focus - 1)
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *authForm) failed(err error) tea.Cmd {
	action := "login"
	if f.signup {
		action = "signup"
	}
	f.deps.Log.Warn(action+" failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
	switch {
	case api.IsStatus(err, http.StatusUnauthorized):
		return notify("Invalid username or password.", true)
	case api.IsStatus(err, http.StatusConflict):
		return notify("That username is already taken.", true)
	case api.IsTransport(err):
		return notify("Cannot reach the server. Please try again.", true)
	case f.signup:
		return notify("Sign up failed.", true)
	}
	return notify("Login failed.", true)
}

func (f *authForm) View() string {
	t := ui.Current()
	var b strings.Builder
	if f.signup {
		b.WriteString(t.Title.Render("Create an account") + "\n\n")
	} else {
		b.WriteString(t.Title.Render("Log in") + "\n")
		if f.next != route.Home {
			b.WriteString(t.Muted.Render("Log in to continue to "+string(f.next)) + "\n")
		}
		b.WriteString("\n")
	}
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			label = t.Accent.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n")
	}
	b.WriteString("\n")
	if f.loading {
		b.WriteString(t.Muted.Render("Please wait..."))
	} else if f.signup {
		b.WriteString(t.Help.Render("enter next · ctrl+s sign up · F5 log in instead"))
	} else {
		b.WriteString(t.Help.Render("enter next · ctrl+s log in · F6 create an account"))
	}
	return b.String()
}
