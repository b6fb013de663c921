package database

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrator_RunEmbedded(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	applied, err := m.RunEmbedded()
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bills").Scan(&count))
	assert.Equal(t, 0, count)

	// second run is a no-op
	applied, err = m.RunEmbedded()
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	versions, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.True(t, versions[1])
}

func TestMigrator_Run_OrdersByVersion(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"002_add_column.sql": {Data: []byte("ALTER TABLE things ADD COLUMN label TEXT;")},
		"001_things.sql":     {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"README.md":          {Data: []byte("ignored")},
	}

	applied, err := m.Run(fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	_, err = db.Exec("INSERT INTO things (label) VALUES ('x')")
	assert.NoError(t, err)
}

func TestMigrator_Run_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	_, err := m.Run(fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE (")},
	})
	require.Error(t, err)

	versions, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.False(t, versions[1])
}

func TestMigrator_RunDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_notes.sql"),
		[]byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);"), 0644))

	m := NewMigrator(openTestDB(t), zap.NewNop())
	applied, err := m.RunDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestMigrator_InvalidFilename(t *testing.T) {
	m := NewMigrator(openTestDB(t), zap.NewNop())
	_, err := m.Run(fstest.MapFS{"create.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)
}
