package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	script := `-- users
CREATE TABLE a (x TEXT DEFAULT 'a;b'); -- trailing
CREATE INDEX i ON a (x);

SELECT 1`

	stmts := splitSQL(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT 'a;b');", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a (x);", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestLatestSchemaEmbedded(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		data, err := migrationFS.ReadFile("migration/" + driver + "/" + LatestSchemaFileName)
		require.NoError(t, err, driver)
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS users")
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS messages")
	}
	assert.Len(t, splitSQL(mustRead(t, "migration/postgres/LATEST.sql")), 3)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := migrationFS.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
