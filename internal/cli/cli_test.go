package cli

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/testutil"
)

type result struct {
	code           int
	stdout, stderr string
}

type harness struct {
	t    *testing.T
	home string
	srv  *testutil.FakeServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CAMPUSFINDER_HOME", home)
	t.Setenv("CAMPUSFINDER_SERVER", "")
	return &harness{t: t, home: home, srv: testutil.NewFakeServer(t)}
}

func (h *harness) run(stdin string, args ...string) result {
	h.t.Helper()
	return h.runIn(strings.NewReader(stdin), args...)
}

func (h *harness) runIn(stdin io.Reader, args ...string) result {
	h.t.Helper()
	var out, errb bytes.Buffer
	full := append([]string{"--theme", "mono", "--server", h.srv.URL()}, args...)
	code := Run(full, Options{Stdout: &out, Stderr: &errb, Stdin: stdin})
	return result{code: code, stdout: out.String(), stderr: errb.String()}
}

func (h *harness) login() model.Session {
	h.t.Helper()
	s := h.srv.AddUser("alice", "secret")
	r := h.run("secret\n", "auth", "login", "--username", "alice")
	require.Equal(h.t, ExitOK, r.code, r.stderr)
	return s
}

var reportArgs = []string{
	"--name", "Blue backpack", "--date", "2025-01-31",
	"--location", "Library", "--description", "Has a laptop inside",
}

func TestReportRequiresLogin(t *testing.T) {
	h := newHarness(t)

	r := h.run("", append([]string{"report", "lost"}, reportArgs...)...)
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "x login required")
	assert.Contains(t, r.stderr, "campusfinder auth login")
	assert.Empty(t, h.srv.Requests())
}

func TestLoginThenReport(t *testing.T) {
	h := newHarness(t)
	alice := h.login()
	assert.FileExists(t, filepath.Join(h.home, "user.json"))

	r := h.run("", append([]string{"report", "lost"}, reportArgs...)...)
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, "ok Item reported successfully! (#1)\n", r.stdout)

	posts := h.srv.RequestsTo(http.MethodPost, "/items/lost")
	require.Len(t, posts, 1)
	assert.Equal(t, alice.ID.String(), posts[0].Header.Get(api.HeaderUserID))
	assert.Equal(t, map[string]any{
		"itemName":    "Blue backpack",
		"category":    "Electronics",
		"description": "Has a laptop inside",
		"location":    "Library",
		"date":        "2025-01-31",
		"contactInfo": "",
		"status":      "LOST",
	}, posts[0].JSON(t))
}

func TestReportFound(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", append([]string{"report", "found", "--category", "Documents", "--contact", "a@campus.edu"}, reportArgs...)...)
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Great job! Item reported as found.")

	posts := h.srv.RequestsTo(http.MethodPost, "/items/found")
	require.Len(t, posts, 1)
	body := posts[0].JSON(t)
	assert.Equal(t, "FOUND", body["status"])
	assert.Equal(t, "Documents", body["category"])
	assert.Equal(t, "a@campus.edu", body["contactInfo"])
}

func TestReportValidation(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "report", "lost", "--name", "Keys", "--location", "Gym", "--description", "ring")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "required field missing: date")

	r = h.run("", "report", "lost", "--name", "Keys", "--location", "Gym", "--description", "ring", "--date", "31/01/2025")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "YYYY-MM-DD")
	assert.Empty(t, h.srv.RequestsTo(http.MethodPost, "/items/lost"))
}

func TestLsGroupsBothKinds(t *testing.T) {
	h := newHarness(t)
	h.srv.AddItem(model.Item{ItemName: "Wallet", Category: "Documents", Location: "Library", Type: model.Lost})
	h.srv.AddItem(model.Item{ItemName: "Charger", Category: "Electronics", Location: "Cafeteria", Type: model.Found})

	r := h.run("", "ls")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Lost Items (1)")
	assert.Contains(t, r.stdout, "Wallet")
	assert.Contains(t, r.stdout, "Found Items (1)")
	assert.Contains(t, r.stdout, "Charger")
	assert.Less(t, strings.Index(r.stdout, "Wallet"), strings.Index(r.stdout, "Charger"))

	lists := h.srv.RequestsTo(http.MethodGet, "/items")
	require.Len(t, lists, 2)
	types := []string{lists[0].Query.Get("type"), lists[1].Query.Get("type")}
	assert.ElementsMatch(t, []string{"lost", "found"}, types)
	for _, req := range lists {
		assert.Empty(t, req.Header.Values(api.HeaderUserID))
	}
}

func TestLsByType(t *testing.T) {
	h := newHarness(t)
	h.srv.AddItem(model.Item{ItemName: "Charger", Category: "Electronics", Type: model.Found})

	r := h.run("", "ls", "--type", "found")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Found Items (1)")
	assert.NotContains(t, r.stdout, "Lost Items")

	r = h.run("", "ls", "--type", "lost")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Lost Items (0)")
	assert.Contains(t, r.stdout, "No items found.")

	r = h.run("", "ls", "--type", "stolen")
	assert.Equal(t, ExitUsage, r.code)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	h.srv.AddItem(model.Item{ItemName: "Wallet", Category: "Documents", Type: model.Lost})
	h.srv.AddItem(model.Item{ItemName: "Wall clock", Category: "Others", Type: model.Found})
	h.srv.AddItem(model.Item{ItemName: "Bottle", Category: "Bottle", Type: model.Found})

	r := h.run("", "search", "--name", "wall")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Lost Items (1)")
	assert.Contains(t, r.stdout, "Found Items (1)")
	assert.NotContains(t, r.stdout, "Bottle")

	reqs := h.srv.RequestsTo(http.MethodGet, "/items/search")
	require.Len(t, reqs, 1)
	assert.Equal(t, "wall", reqs[0].Query.Get("itemName"))
	assert.True(t, reqs[0].Query.Has("category"))
	assert.Empty(t, reqs[0].Query.Get("category"))
}

func TestRm(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "rm", "1")
	assert.Equal(t, ExitUsage, r.code)
	assert.Empty(t, h.srv.Requests())

	alice := h.login()
	other := h.srv.AddItem(model.Item{ItemName: "Umbrella", Type: model.Lost, UserID: "99"})
	mine := h.srv.AddItem(model.Item{ItemName: "Wallet", Type: model.Lost, UserID: alice.ID})

	r = h.run("", "rm", other.ID.String())
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "not found or not yours")

	r = h.run("", "rm", "#"+mine.ID.String())
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, "ok Item deleted\n", r.stdout)
	assert.Len(t, h.srv.Items(), 1)

	r = h.run("", "rm")
	assert.Equal(t, ExitUsage, r.code)
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("alice", "secret")

	r := h.run("", "auth", "login", "-u", "alice", "-p", "nope")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "invalid username or password")
	assert.NoFileExists(t, filepath.Join(h.home, "user.json"))

	r = h.run("", "auth", "login", "-u", "alice")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "password is required")
}

// tty looks like a terminal file to readPassword.
type tty struct {
	*strings.Reader
	fd uintptr
}

func (t tty) Fd() uintptr { return t.fd }

func TestLoginReadsPasswordWithoutEcho(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("alice", "secret")

	var asked []uintptr
	isTerminal = func(fd uintptr) bool { return fd == 7 }
	readNoEcho = func(fd uintptr) ([]byte, error) {
		asked = append(asked, fd)
		return []byte("secret"), nil
	}
	t.Cleanup(func() {
		isTerminal = term.IsTerminal
		readNoEcho = term.ReadPassword
	})

	r := h.runIn(tty{Reader: strings.NewReader("wrong\n"), fd: 7}, "auth", "login", "--username", "alice")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, []uintptr{7}, asked)
	assert.Contains(t, r.stderr, "Password: ")
	assert.NotContains(t, r.stderr, "secret")
	assert.Contains(t, r.stdout, "Logged in as alice")

	// Not a terminal: the line is read as before.
	r = h.runIn(tty{Reader: strings.NewReader("wrong\n"), fd: 3}, "auth", "login", "--username", "alice")
	assert.Equal(t, ExitError, r.code)
	assert.Equal(t, []uintptr{7}, asked)
}

func TestLogoutAndStatus(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "auth", "status")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "alice (id 1)")

	r = h.run("", "auth", "whoami")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, "alice (id 1)\n", r.stdout)

	r = h.run("", "auth", "logout")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, "ok Logged out\n", r.stdout)
	assert.Len(t, h.srv.RequestsTo(http.MethodPost, "/auth/logout"), 1)
	assert.NoFileExists(t, filepath.Join(h.home, "user.json"))

	r = h.run("", "auth", "status")
	assert.Contains(t, r.stdout, "not logged in")

	r = h.run("", "auth", "whoami")
	assert.Equal(t, ExitError, r.code)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.FailWith(http.MethodPost, "/auth/logout", http.StatusInternalServerError)

	r := h.run("", "auth", "logout")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.NoFileExists(t, filepath.Join(h.home, "user.json"))
}

func TestSignup(t *testing.T) {
	h := newHarness(t)

	r := h.run("hunter2\n", "auth", "signup", "-u", "bob", "-e", "bob@campus.edu")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Logged in as bob")
	assert.FileExists(t, filepath.Join(h.home, "user.json"))

	r = h.run("", "auth", "signup", "-u", "bob", "-e", "bob@campus.edu", "-p", "x")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "already taken")
}

func TestSignupWithoutIdentity(t *testing.T) {
	h := newHarness(t)
	h.srv.SignupWithoutIdentity = true

	r := h.run("", "auth", "signup", "-u", "bob", "-e", "bob@campus.edu", "-p", "hunter2")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Account created")
	assert.Contains(t, r.stdout, "auth login --username bob")
	assert.NoFileExists(t, filepath.Join(h.home, "user.json"))
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, ExitUsage, h.run("", "frobnicate").code)
	assert.Equal(t, ExitUsage, h.run("", "ls", "--bogus").code)
	assert.Equal(t, ExitUsage, h.run("", "--server", "ftp://example.com", "ls").code)
	assert.Equal(t, ExitUsage, h.run("", "--page", "nowhere").code)
}

func TestServerUnreachable(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "--server", "http://127.0.0.1:1/api", "ls")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "list items")
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.home, "config.yaml")

	r := h.run("", "config", "init")
	require.Equal(t, ExitOK, r.code, r.stderr)
	require.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), h.srv.URL())

	r = h.run("", "config", "init")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "already exists")

	r = h.run("", "config", "show")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "base_url: "+h.srv.URL())
	assert.Contains(t, r.stdout, "theme: mono")
}
