package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportText(t *testing.T) {
	db := filepath.Join(t.TempDir(), "repo.db")

	out, err := execute(t, NewImportCommand(&RootOptions{Format: "text"}), fixturePath, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Imported 3 node(s) into sqlite store")

	// Fixture nodes without an id get a fresh one each load.
	out, err = execute(t, NewImportCommand(&RootOptions{Format: "text"}), fixturePath, "--db", db)
	require.Error(t, err, "paths are unique per store")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeStore)
}

func TestImportJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "repo.badger")

	out, err := execute(t, NewImportCommand(&RootOptions{Format: "json"}), fixturePath, "--store", "badger", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ImportResult{Store: "badger", Database: db, Nodes: 3, Total: 3}, resp.Data)
}

func TestImportErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "repo.db")

	_, err := execute(t, NewImportCommand(&RootOptions{Format: "text"}), fixturePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db" not set`)

	_, err = execute(t, NewImportCommand(&RootOptions{Format: "text"}), fixturePath, "--store", "memory", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "durable store")

	_, err = execute(t, NewImportCommand(&RootOptions{Format: "text"}), "/nonexistent/nodes.yaml", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeFixture)
}
