package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/credence/internal/domain"
)

func TestBuildSelect_PendingDocuments(t *testing.T) {
	query, args, err := buildSelect(domain.DocumentFilter{
		Statuses:             []domain.DocumentStatus{domain.DocumentStatusRaw},
		IncludeMissingStatus: true,
		ExcludeDuplicates:    true,
		Limit:                25,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "FROM documents")
	assert.Contains(t, query, "(status IN ($1) OR status IS NULL)")
	assert.Contains(t, query, "duplicate_of IS NULL")
	assert.Contains(t, query, "ORDER BY created_at ASC, id ASC")
	assert.True(t, strings.HasSuffix(query, "LIMIT 25"))
	assert.Equal(t, []any{"raw"}, args)
}

func TestBuildSelect_Candidates(t *testing.T) {
	query, args, err := buildSelect(domain.DocumentFilter{
		Statuses:             []domain.DocumentStatus{domain.DocumentStatusReady},
		IncludeMissingStatus: true,
		ExcludeIDs:           []string{"self"},
		NewestFirst:          true,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "id NOT IN ($2)")
	assert.Contains(t, query, `ORDER BY "timestamp" DESC NULLS LAST, created_at DESC`)
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{"ready", "self"}, args)
}

func TestBuildSelect_DedupLookup(t *testing.T) {
	query, args, err := buildSelect(domain.DocumentFilter{
		ContentHash: "abc",
		Statuses:    []domain.DocumentStatus{domain.DocumentStatusReady},
	})
	require.NoError(t, err)

	assert.Contains(t, query, "content_hash = $1")
	assert.Contains(t, query, "status IN ($2)")
	assert.NotContains(t, query, "IS NULL")
	assert.Equal(t, []any{"abc", "ready"}, args)
}

func TestBuildSelect_ByIDs(t *testing.T) {
	query, args, err := buildSelect(domain.DocumentFilter{IDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Contains(t, query, "id IN ($1,$2)")
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestIsReadyHashConflict(t *testing.T) {
	conflict := &pgconn.PgError{Code: uniqueViolation, ConstraintName: readyHashConstraint}
	assert.True(t, isReadyHashConflict(fmt.Errorf("wrapped: %w", conflict)))

	assert.False(t, isReadyHashConflict(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "documents_pkey"}))
	assert.False(t, isReadyHashConflict(errors.New("connection reset")))
}

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "001_a.sql"), filepath.Join(dir, "002_b.sql")}, files)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsExist(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	sql, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(sql), readyHashConstraint)
}
