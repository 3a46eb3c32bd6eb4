// Package route names the pages of the app and decides which of them the
// current session may enter.
package route

import (
	"fmt"
	"strings"

	"github.com/idilsaglam/campusfinder/internal/model"
)

type Path string

const (
	Home        Path = "/"
	Search      Path = "/search"
	ReportLost  Path = "/report-lost"
	ReportFound Path = "/report-found"
	Login       Path = "/login"
	Signup      Path = "/signup"
)

// All lists every known path in navigation order.
var All = []Path{Home, Search, ReportLost, ReportFound, Login, Signup}

// Access is the guard state of a page.
type Access int

const (
	Open Access = iota
	Guarded
)

func (a Access) String() string {
	if a == Guarded {
		return "guarded"
	}
	return "open"
}

// AccessOf reports whether p needs a session.
func AccessOf(p Path) Access {
	switch p {
	case ReportLost, ReportFound:
		return Guarded
	}
	return Open
}

// Parse accepts a known path, with or without the leading slash.
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	for _, p := range All {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// SessionReader is the read side of the session store.
type SessionReader interface {
	Get() *model.Session
}

// Decision is where a navigation actually lands.
type Decision struct {
	Requested  Path
	Target     Path
	Redirected bool
}

type Guard struct {
	sessions SessionReader
}

func NewGuard(sessions SessionReader) *Guard {
	return &Guard{sessions: sessions}
}

// Allows reports whether p may be shown right now.
func (g *Guard) Allows(p Path) bool {
	return AccessOf(p) == Open || g.sessions.Get() != nil
}

// Resolve decides where entering p lands. Callers must build the target page
// only after resolving, so guarded content is never rendered to anonymous users.
func (g *Guard) Resolve(p Path) Decision {
	if g.Allows(p) {
		return Decision{Requested: p, Target: p}
	}
	return Decision{Requested: p, Target: Login, Redirected: true}
}

// Recheck re-evaluates the page currently shown after a session change.
func (g *Guard) Recheck(current Path) Decision {
	return g.Resolve(current)
}
