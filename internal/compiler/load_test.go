package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	defs, err := LoadDir(filepath.Join("testdata", "operands"))
	require.NoError(t, err)

	require.Len(t, defs.Operands, 2)
	assert.Equal(t, "title", defs.Operands[0].Name)
	assert.Equal(t, "LENGTH([s].[title])", defs.Operands[1].Operand.String())
	require.Len(t, defs.Constraints, 1)
	assert.Equal(t, "LENGTH([s].[title]) < 6", defs.Constraints[0].Comparison.String())
}

func TestBuildDir_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("operand: {"), 0644))

	_, err := BuildDir(dir)
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StageLoad, be.Stage)
}

func TestBuildDir_Conflict(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte(`x: 1`+"\n"+`x: 2`+"\n"), 0644))

	_, err := BuildDir(dir)
	require.Error(t, err)

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StageBuild, be.Stage)
}
