package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s := New(dir)

	_, found, err := s.Get("user")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set("user", map[string]any{"id": 7, "username": "a"}))

	info, err := os.Stat(s.Path("user"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var got struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	found, err = s.Load("user", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "a", got.Username)

	require.NoError(t, s.Delete("user"))
	require.NoError(t, s.Delete("user"), "deleting a missing key is fine")
	_, found, err = s.Get("user")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMalformed(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(s.Path("user"), []byte("{not json"), 0o600))

	_, found, err := s.Get("user")
	assert.True(t, found)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	s := New("/tmp/cf")

	k, ok := s.Key("/tmp/cf/user.json")
	assert.True(t, ok)
	assert.Equal(t, "user", k)

	_, ok = s.Key("/tmp/cf/user.json.swp")
	assert.False(t, ok)
	_, ok = s.Key("/elsewhere/user.json")
	assert.False(t, ok)
}
