package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")
	now := time.Unix(1700000000, 0)

	l, err := Acquire(path, time.Hour, now)
	require.NoError(t, err)

	_, err = Acquire(path, time.Hour, now.Add(30*time.Minute))
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, l.Release())
	l2, err := Acquire(path, time.Hour, now)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestAcquire_ReclaimsStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")
	now := time.Unix(1700000000, 0)

	_, err := Acquire(path, 2*time.Hour, now)
	require.NoError(t, err)

	l, err := Acquire(path, 2*time.Hour, now.Add(3*time.Hour))
	require.NoError(t, err, "stale lock should be reclaimed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1700010800\n", string(data))
	require.NoError(t, l.Release())
}

func TestAcquire_FreshUnwrittenLockIsHeld(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "garbage": "not a time"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.lock")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			_, err := Acquire(path, time.Hour, time.Now())
			require.ErrorIs(t, err, ErrLocked)
			assert.FileExists(t, path)
		})
	}
}

func TestAcquire_ReclaimsOldGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")
	require.NoError(t, os.WriteFile(path, []byte("not a time"), 0644))
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	l, err := Acquire(path, time.Hour, time.Now())
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestRelease_Missing(t *testing.T) {
	l := &Lock{path: filepath.Join(t.TempDir(), "gone.lock")}
	assert.NoError(t, l.Release())
}
