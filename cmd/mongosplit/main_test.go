package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildSource verifies config layering: file, then environment, then
// flag overrides, with empty overrides ignored.
func TestBuildSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mongosplit.yaml")
	body := "hosts: file:27017\ndatabase: filedb\ncollection: filecoll\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("MONGOSPLIT_DATABASE", "envdb")

	src, err := buildSource(path, map[string]string{
		"collection": "flagcoll",
		"hosts":      "", // empty flag must not clobber the file value
	})
	require.NoError(t, err)

	assert.Equal(t, "file:27017", src.String("hosts", ""))
	assert.Equal(t, "envdb", src.String("database", ""))
	assert.Equal(t, "flagcoll", src.String("collection", ""))
}

func TestBuildSourceNoFile(t *testing.T) {
	src, err := buildSource("", map[string]string{"database": "d"})
	require.NoError(t, err)
	assert.Equal(t, "d", src.String("database", ""))
}

func TestBuildSourceBadPath(t *testing.T) {
	_, err := buildSource(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
