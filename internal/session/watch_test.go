package session

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/store/jsonstore"
)

func TestWatcherSeesExternalLogout(t *testing.T) {
	dir := t.TempDir()
	kv := jsonstore.New(dir)
	s := Open(kv, zap.NewNop())
	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))

	var cleared atomic.Bool
	defer s.Subscribe(func(sess *model.Session) {
		if sess == nil {
			cleared.Store(true)
		}
	})()

	w, err := NewWatcher(s)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// Another process removes the file.
	require.NoError(t, os.Remove(kv.Path(Key)))

	assert.Eventually(t, cleared.Load, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, s.Get())
}

func TestWatcherSeesExternalLogin(t *testing.T) {
	dir := t.TempDir()
	kv := jsonstore.New(dir)
	s := Open(kv, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(s)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))

	other := jsonstore.New(dir)
	require.NoError(t, other.Set(Key, model.Session{ID: "9", Username: "b"}))

	assert.Eventually(t, func() bool {
		got := s.Get()
		return got != nil && got.ID == "9"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	w.Stop()
	w.Stop()
}
