package script

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndOpen(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	f, err := s.Save("#!/bin/bash\necho hi\n")
	require.NoError(t, err)
	assert.Equal(t, s.Dir(), filepath.Dir(f.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(f.Path), "hfdl-"))
	assert.Equal(t, ".sh", filepath.Ext(f.Path))

	info, err := os.Stat(f.Path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o400, "owner must be able to read the script")

	rc, err := s.Open(f.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\necho hi\n", string(data))
}

func TestStore_OpenUnknown(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	_, err := s.Open("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CleanupRemovesFiles(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	a, err := s.Save("a")
	require.NoError(t, err)
	b, err := s.Save("b")
	require.NoError(t, err)

	// one file already deleted by someone else
	require.NoError(t, os.Remove(a.Path))

	require.NoError(t, s.Cleanup())

	_, err = os.Stat(b.Path)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, s.List())

	// second cleanup is a no-op
	assert.NoError(t, s.Cleanup())
}

func TestStore_Remove(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	f, err := s.Save("x")
	require.NoError(t, err)

	require.NoError(t, s.Remove(f.ID))
	_, ok := s.Get(f.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Remove(f.ID), ErrNotFound)
}

func TestStore_ConcurrentSave(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save("x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, s.List(), 20)
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
