// Package tui is the interactive terminal front end.
//
// App owns navigation: every page change goes through the route guard
// before the target page is built, and session changes re-check the page
// on screen.
package tui

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/session"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

// Deps is what the pages share.
type Deps struct {
	Client   *api.Client
	Sessions *session.Store
	Log      *zap.Logger
}

// page is one routed screen.
type page interface {
	Init() tea.Cmd
	Update(tea.Msg) (page, tea.Cmd)
	View() string
	// Capturing reports whether plain keys go to a text input.
	Capturing() bool
}

type navigateMsg struct{ path route.Path }

type sessionChangedMsg struct{ session *model.Session }

type noticeMsg struct {
	text string
	err  bool
}

type logoutMsg struct{ err error }

func navigate(p route.Path) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: p} }
}

func notify(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, err: isErr} }
}

// subscription turns session store callbacks into Bubble Tea messages.
type subscription struct {
	events chan *model.Session
	stop   func()

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func subscribe(store *session.Store) *subscription {
	s := &subscription{events: make(chan *model.Session, 1)}
	s.stop = store.Subscribe(s.push)
	return s
}

// push keeps only the newest event when the app is slow to read.
func (s *subscription) push(sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- sess:
	default:
		select {
		case <-s.events:
		default:
		}
		s.events <- sess
	}
}

func (s *subscription) wait() tea.Cmd {
	return func() tea.Msg {
		sess, ok := <-s.events
		if !ok {
			return nil
		}
		return sessionChangedMsg{session: sess}
	}
}

func (s *subscription) close() {
	s.once.Do(func() {
		s.stop()
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}

type App struct {
	deps  *Deps
	guard *route.Guard
	keys  keyMap
	help  help.Model
	sub   *subscription

	path     route.Path
	returnTo route.Path
	page     page

	notice    string
	noticeErr bool

	width, height int
}

// New builds the app on start, or on the login page when start is guarded
// and nobody is logged in.
func New(deps *Deps, start route.Path) App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	a := App{
		deps:  deps,
		guard: route.NewGuard(deps.Sessions),
		keys:  defaultKeys(),
		help:  help.New(),
		sub:   subscribe(deps.Sessions),
	}
	a.enter(start)
	return a
}

// Path is the page on screen.
func (a App) Path() route.Path { return a.path }

// Close detaches the app from the session store.
func (a App) Close() { a.sub.close() }

func (a App) Init() tea.Cmd {
	return tea.Batch(a.sub.wait(), a.page.Init())
}

// enter resolves p through the guard and builds the landing page.
func (a *App) enter(p route.Path) {
	d := a.guard.Resolve(p)
	if d.Redirected {
		a.deps.Log.Info("redirecting to login", zap.String("requested", string(d.Requested)))
		a.returnTo = d.Requested
	} else if d.Target != route.Login && d.Target != route.Signup {
		a.returnTo = ""
	}
	a.path = d.Target
	a.page = a.build(d.Target)
	if a.width > 0 {
		a.page, _ = a.page.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
}

func (a *App) build(p route.Path) page {
	switch p {
	case route.Search:
		return newSearch(a.deps)
	case route.ReportLost:
		return newReport(a.deps, model.Lost)
	case route.ReportFound:
		return newReport(a.deps, model.Found)
	case route.Login:
		return newLogin(a.deps, a.returnTo)
	case route.Signup:
		return newSignup(a.deps)
	}
	return newDashboard(a.deps)
}

// redirect replaces a page the guard no longer allows.
func (a *App) redirect() tea.Cmd {
	a.enter(a.path)
	a.notice, a.noticeErr = "Please log in to continue.", false
	return a.page.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.guard.Allows(a.path) {
		return a.update(msg)
	}
	// The session went away before its event reached us. Input meant for
	// the guarded page is dropped.
	first := a.redirect()
	if k, ok := msg.(tea.KeyMsg); ok && !key.Matches(k, a.keys.Quit) {
		return a, first
	}
	m, cmd := a.update(msg)
	return m, tea.Batch(first, cmd)
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width

	case navigateMsg:
		a.enter(msg.path)
		return a, a.page.Init()

	case sessionChangedMsg:
		next := a.sub.wait()
		d := a.guard.Recheck(a.path)
		if !d.Redirected {
			return a, next
		}
		return a, tea.Batch(next, a.redirect())

	case noticeMsg:
		a.notice, a.noticeErr = msg.text, msg.err
		return a, nil

	case logoutMsg:
		if msg.err != nil {
			return a, notify("Logout failed. Your local session was cleared.", true)
		}
		return a, notify("You have been logged out.", false)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		// A notice blocks input until a key dismisses it.
		if a.notice != "" {
			a.notice = ""
			return a, nil
		}
		switch {
		case msg.String() == "q" && !a.page.Capturing():
			return a, tea.Quit
		case key.Matches(msg, a.keys.Home):
			return a, navigate(route.Home)
		case key.Matches(msg, a.keys.Search):
			return a, navigate(route.Search)
		case key.Matches(msg, a.keys.ReportLost):
			return a, navigate(route.ReportLost)
		case key.Matches(msg, a.keys.ReportFound):
			return a, navigate(route.ReportFound)
		case key.Matches(msg, a.keys.Login):
			return a, navigate(route.Login)
		case key.Matches(msg, a.keys.Signup):
			return a, navigate(route.Signup)
		case key.Matches(msg, a.keys.Logout):
			if a.deps.Sessions.Get() == nil {
				return a, nil
			}
			return a, logout(a.deps)
		}
	}

	var cmd tea.Cmd
	a.page, cmd = a.page.Update(msg)
	return a, cmd
}

// logout tells the server, then forgets the local identity whatever the
// server said.
func logout(deps *Deps) tea.Cmd {
	return func() tea.Msg {
		err := deps.Client.Logout(context.Background())
		if err != nil {
			deps.Log.Warn("server logout failed", zap.Error(err))
		}
		if cerr := deps.Sessions.Clear(); cerr != nil {
			deps.Log.Error("clear session", zap.Error(cerr))
			err = errors.Join(err, cerr)
		}
		return logoutMsg{err: err}
	}
}

var navTitles = []struct {
	path  route.Path
	title string
}{
	{route.Home, "Home"},
	{route.Search, "Search"},
	{route.ReportLost, "Report Lost"},
	{route.ReportFound, "Report Found"},
}

func (a App) navBar() string {
	t := ui.Current()
	parts := []string{t.Title.Render("CampusFinder")}
	for _, n := range navTitles {
		if n.path == a.path {
			parts = append(parts, t.Selected.Render(" "+n.title+" "))
		} else {
			parts = append(parts, t.Muted.Render(" "+n.title+" "))
		}
	}
	if s := a.deps.Sessions.Get(); s != nil {
		parts = append(parts, t.Accent.Render("Hello, "+s.Username))
	} else {
		parts = append(parts, t.Muted.Render("Not logged in · F5 login · F6 sign up"))
	}
	return strings.Join(parts, " ")
}

func (a App) View() string {
	if !a.guard.Allows(a.path) {
		a.enter(a.path)
	}
	t := ui.Current()
	lines := []string{a.navBar(), "", a.page.View()}
	if a.notice != "" {
		style := t.Success
		sym := t.SymOK
		if a.noticeErr {
			style, sym = t.Error, t.SymFail
		}
		lines = append(lines, "", style.Render(sym+" "+a.notice))
	}
	lines = append(lines, "", a.help.View(a.keys))
	return ui.Panel(lines)
}

// Run shows the app until the user quits or ctx is cancelled.
func Run(ctx context.Context, deps *Deps, start route.Path) error {
	app := New(deps, start)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
