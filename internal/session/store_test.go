package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/store/jsonstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStore(t *testing.T) (*Store, *jsonstore.Store) {
	t.Helper()
	kv := jsonstore.New(t.TempDir())
	return Open(kv, zap.NewNop()), kv
}

func TestSetSurvivesReload(t *testing.T) {
	s, kv := newStore(t)
	assert.Nil(t, s.Get())

	want := model.Session{ID: "7", Username: "a"}
	require.NoError(t, s.Set(want))
	require.NotNil(t, s.Get())
	assert.Equal(t, want, *s.Get())

	reopened := Open(kv, zap.NewNop())
	require.NotNil(t, reopened.Get())
	assert.Equal(t, want, *reopened.Get())
}

func TestSetReplacesWholesale(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))
	require.NoError(t, s.Set(model.Session{ID: "9"}))

	assert.Equal(t, model.Session{ID: "9"}, *s.Get())
}

func TestGetReturnsSnapshot(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))

	snap := s.Get()
	snap.Username = "mallory"
	assert.Equal(t, "a", s.Get().Username)
}

func TestClear(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, s.Clear(), "clearing an anonymous store is fine")
	assert.Nil(t, s.Get())

	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))
	require.NoError(t, s.Clear())
	assert.Nil(t, s.Get())
	assert.Nil(t, Open(kv, zap.NewNop()).Get())
}

func TestMalformedStorageIsAnonymous(t *testing.T) {
	cases := map[string]string{
		"not json":     "{oops",
		"wrong shape":  `["7"]`,
		"missing id":   `{"username":"a"}`,
		"bad id value": `{"id":{"n":7}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			kv := jsonstore.New(dir)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(content), 0o600))

			core, logs := observer.New(zapcore.WarnLevel)
			var s *Store
			require.NotPanics(t, func() { s = Open(kv, zap.New(core)) })
			assert.Nil(t, s.Get())
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestNumericIDFromStorage(t *testing.T) {
	dir := t.TempDir()
	kv := jsonstore.New(dir)
	require.NoError(t, os.WriteFile(kv.Path(Key), []byte(`{"id":7,"username":"a"}`), 0o600))

	s := Open(kv, nil)
	require.NotNil(t, s.Get())
	assert.Equal(t, model.ID("7"), s.Get().ID)
}

func TestSubscribe(t *testing.T) {
	s, _ := newStore(t)

	var seen []*model.Session
	unsubscribe := s.Subscribe(func(sess *model.Session) { seen = append(seen, sess) })

	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))
	require.NoError(t, s.Clear())
	require.Len(t, seen, 2)
	assert.Equal(t, model.ID("7"), seen[0].ID)
	assert.Nil(t, seen[1])

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Set(model.Session{ID: "8"}))
	assert.Len(t, seen, 2)
}

func TestReloadNotifiesOnlyOnChange(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, s.Set(model.Session{ID: "7", Username: "a"}))

	calls := 0
	defer s.Subscribe(func(*model.Session) { calls++ })()

	s.Reload()
	assert.Equal(t, 0, calls)

	require.NoError(t, kv.Delete(Key))
	s.Reload()
	assert.Equal(t, 1, calls)
	assert.Nil(t, s.Get())
}
