package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/a.db?"+dsnPragmas, buildDSN("/tmp/a.db"))
	assert.Equal(t, "file:/tmp/a.db?"+dsnPragmas, buildDSN("file:/tmp/a.db"))
	assert.Equal(t, "file::memory:?cache=shared", buildDSN("file::memory:?cache=shared"))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
