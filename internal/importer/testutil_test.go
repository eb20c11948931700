package importer_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/importer/mocks"
	"github.com/vmunix/postersync/internal/state"
	"go.uber.org/mock/gomock"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startedAt is the fixed run start time used by fixtures.
var startedAt = time.Unix(1700000500, 0)

type fixture struct {
	server   *mocks.MockMediaServer
	ids      *state.ValidIDStore
	registry *state.Registry
	dirs     importer.Dirs
	imp      *importer.Importer
}

func newFixture(t *testing.T, cfg importer.Config) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	paths := state.Paths{Dir: filepath.Join(root, "data")}

	ids, err := state.OpenValidIDStore(paths.ValidIDs())
	require.NoError(t, err)
	registry, err := state.OpenRegistry(paths.Libraries(), ids)
	require.NoError(t, err)

	cfg.Dirs = importer.Dirs{
		Movies:      filepath.Join(root, "movies"),
		Shows:       filepath.Join(root, "shows"),
		Seasons:     filepath.Join(root, "seasons"),
		Collections: filepath.Join(root, "collections"),
	}

	server := mocks.NewMockMediaServer(ctrl)
	imp := importer.New(server, ids, registry, cfg, testLogger())
	importer.SetClock(imp, func() time.Time { return startedAt })

	return &fixture{server: server, ids: ids, registry: registry, dirs: cfg.Dirs, imp: imp}
}

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}
