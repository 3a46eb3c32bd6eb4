// Package testutil provides an in-memory Lost & Found server for tests.
// It mirrors the server's REST surface under /api and records every request.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/campusfinder/internal/model"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into a generic map.
func (r Request) JSON(t testing.TB) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		t.Fatalf("request body is not a json object: %v (%q)", err, r.Body)
	}
	return m
}

type user struct {
	id       int
	username string
	email    string
	password string
}

type failure struct {
	status int
	body   string
}

type FakeServer struct {
	srv *httptest.Server

	// SignupWithoutIdentity makes /auth/signup answer with a bare message.
	SignupWithoutIdentity bool

	mu       sync.Mutex
	items    []model.Item
	users    map[string]*user
	nextItem int
	nextUser int
	requests []Request
	failures map[string]failure
}

// NewFakeServer starts a server that is closed when the test ends.
func NewFakeServer(t testing.TB) *FakeServer {
	f := &FakeServer{
		users:    make(map[string]*user),
		failures: make(map[string]failure),
		nextItem: 1,
		nextUser: 1,
	}
	r := mux.NewRouter()
	r.Use(f.record, f.injectFailures)
	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/items", f.listItems).Methods(http.MethodGet)
	a.HandleFunc("/items/search", f.search).Methods(http.MethodGet)
	a.HandleFunc("/items/{kind:lost|found}", f.report).Methods(http.MethodPost)
	a.HandleFunc("/items/{id}", f.deleteItem).Methods(http.MethodDelete)
	a.HandleFunc("/auth/login", f.login).Methods(http.MethodPost)
	a.HandleFunc("/auth/signup", f.signup).Methods(http.MethodPost)
	a.HandleFunc("/auth/logout", f.logout).Methods(http.MethodPost)
	a.HandleFunc("/auth/me", f.me).Methods(http.MethodGet)

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

// URL is the API base, e.g. http://127.0.0.1:1234/api.
func (f *FakeServer) URL() string { return f.srv.URL + "/api" }

// AddUser registers an account and returns its session.
func (f *FakeServer) AddUser(username, password string) model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.addUserLocked(username, username+"@campus.edu", password)
	return u.session()
}

// AddItem stores it as-is, assigning an id if it has none.
func (f *FakeServer) AddItem(it model.Item) model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it.ID == "" {
		it.ID = model.ID(strconv.Itoa(f.nextItem))
		f.nextItem++
	}
	if it.Status == "" {
		it.Status = string(it.Type)
	}
	f.items = append([]model.Item{it}, f.items...)
	return it
}

func (f *FakeServer) Items() []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Item(nil), f.items...)
}

func (f *FakeServer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// RequestsTo filters recorded calls by method and path (without /api).
func (f *FakeServer) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// FailWith makes every call to method+path (without /api) answer status.
func (f *FakeServer) FailWith(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: `{"error": "injected failure"}`}
}

func (f *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeServer) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail, ok := f.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		f.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			io.WriteString(w, fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeServer) listItems(w http.ResponseWriter, r *http.Request) {
	typ := strings.ToUpper(r.URL.Query().Get("type"))
	f.mu.Lock()
	out := []model.Item{}
	for _, it := range f.items {
		if typ == "" || string(it.Type) == typ {
			out = append(out, it)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeServer) search(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("itemName"))
	category := r.URL.Query().Get("category")
	f.mu.Lock()
	out := []model.Item{}
	for _, it := range f.items {
		if name != "" && !strings.Contains(strings.ToLower(it.ItemName), name) {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeServer) report(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized. User ID required."})
		return
	}
	var it model.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(it.ItemName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Item name is required"})
		return
	}
	kind := model.Lost
	if mux.Vars(r)["kind"] == "found" {
		kind = model.Found
	}
	it.Type = kind
	it.Status = string(kind)
	it.UserID = model.ID(userID)
	it.ID = ""
	writeJSON(w, http.StatusCreated, f.AddItem(it))
}

func (f *FakeServer) deleteItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID.String() == id && it.UserID.String() == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
			return
		}
	}
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "Item not found or you do not have permission to delete it"})
}

func (f *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, "Error: "+err.Error())
		return
	}
	f.mu.Lock()
	u, ok := f.users[creds.Username]
	f.mu.Unlock()
	if !ok || u.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "cf_session", Value: strconv.Itoa(u.id), Path: "/"})
	writeJSON(w, http.StatusOK, u.session())
}

func (f *FakeServer) signup(w http.ResponseWriter, r *http.Request) {
	var s model.Signup
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil || s.Username == "" || s.Password == "" || s.Email == "" {
		writeJSON(w, http.StatusBadRequest, "Missing field(s)")
		return
	}
	f.mu.Lock()
	if _, exists := f.users[s.Username]; exists {
		f.mu.Unlock()
		writeJSON(w, http.StatusConflict, "Username already taken")
		return
	}
	u := f.addUserLocked(s.Username, s.Email, s.Password)
	f.mu.Unlock()
	if f.SignupWithoutIdentity {
		writeJSON(w, http.StatusCreated, "User created successfully")
		return
	}
	writeJSON(w, http.StatusCreated, u.session())
}

func (f *FakeServer) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "cf_session", Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// me trusts the X-User-Id header or the login cookie, as the real server does.
func (f *FakeServer) me(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		if c, err := r.Cookie("cf_session"); err == nil {
			id = c.Value
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strconv.Itoa(u.id) == id {
			writeJSON(w, http.StatusOK, u.session())
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, "Not logged in")
}

func (f *FakeServer) addUserLocked(username, email, password string) *user {
	u := &user{id: f.nextUser, username: username, email: email, password: password}
	f.nextUser++
	f.users[username] = u
	return u
}

func (u *user) session() model.Session {
	return model.Session{ID: model.ID(strconv.Itoa(u.id)), Username: u.username}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
