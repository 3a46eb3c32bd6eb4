// Package session holds the process-wide identity of the logged-in user.
//
// The Store is the only place the session changes. Everything else reads a
// snapshot with Get or subscribes to changes. The identity is persisted in a
// jsonstore so it survives restarts. Unreadable persisted data reads as
// "nobody is logged in".
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/store/jsonstore"
)

// Key is the jsonstore key holding the identity.
const Key = "user"

// Listener is called after every Set, Clear or external change.
// It receives a snapshot; nil means anonymous.
type Listener func(*model.Session)

type Store struct {
	kv  *jsonstore.Store
	log *zap.Logger

	mu        sync.RWMutex
	current   *model.Session
	listeners map[int]Listener
	nextID    int
}

// Open rebuilds the store from durable storage. It never fails: bad data
// is logged and treated as anonymous.
func Open(kv *jsonstore.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		kv:        kv,
		log:       log,
		listeners: make(map[int]Listener),
	}
	s.current = s.read()
	return s
}

func (s *Store) read() *model.Session {
	var sess model.Session
	found, err := s.kv.Load(Key, &sess)
	if err != nil {
		s.log.Warn("ignoring unreadable session", zap.String("path", s.kv.Path(Key)), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	if sess.ID == "" {
		s.log.Warn("ignoring session without id", zap.String("path", s.kv.Path(Key)))
		return nil
	}
	return &sess
}

// Get returns a copy of the current session, or nil.
func (s *Store) Get() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// Set persists sess and makes it current. On a write error nothing changes.
func (s *Store) Set(sess model.Session) error {
	if err := s.kv.Set(Key, sess); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.log.Info("session set", zap.String("user_id", sess.ID.String()), zap.String("username", sess.Username))
	s.notify(&sess)
	return nil
}

// Clear forgets the identity. The store is anonymous afterwards even if the
// file could not be removed; that error is still returned.
func (s *Store) Clear() error {
	err := s.kv.Delete(Key)
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.log.Info("session cleared")
	s.notify(nil)
	return err
}

// Reload re-reads durable storage and notifies only if the identity changed.
func (s *Store) Reload() {
	next := s.read()
	s.mu.Lock()
	changed := !equal(s.current, next)
	if changed {
		s.current = next
	}
	s.mu.Unlock()
	if changed {
		s.log.Info("session changed on disk")
		s.notify(next)
	}
}

// Subscribe registers fn and returns its unsubscribe func.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Path is the file the identity lives in.
func (s *Store) Path() string { return s.kv.Path(Key) }

func (s *Store) notify(sess *model.Session) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(clone(sess))
	}
}

func clone(sess *model.Session) *model.Session {
	if sess == nil {
		return nil
	}
	c := *sess
	return &c
}

func equal(a, b *model.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
