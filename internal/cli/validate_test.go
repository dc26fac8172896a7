package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidOperands(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), operandsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All operands valid (6 operand(s), 2 constraint(s), 2 order(s))")
}

func TestValidateValidOperandsJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), operandsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 6, resp.Data.Operands)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}

func TestValidateNoDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.cue"), []byte("package x\n\nother: 1\n"), 0644))

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no operands, constraints or orders found")
}

func TestValidateReportsEveryError(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "line ")
	assert.Contains(t, out, ErrCodeOperandVariant)
	assert.Contains(t, out, ErrCodeOperator)
	assert.Contains(t, out, ErrCodeOrdering)
}

func TestValidateReportsEveryErrorJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), invalidDir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Errors, 3)
	assert.Equal(t, 1, resp.Data.Operands, "the valid operand still compiles")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOperandVariant, resp.Error.Code)
}

func TestValidateSelectors(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), operandsDir, "--selectors", "s")
	require.NoError(t, err)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), operandsDir, "--selectors", "t,u")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeSelector)
	assert.Contains(t, out, `operand.title: selector "s" is not one of [t u]`)
	assert.Contains(t, out, "order.byScore[0]")
	assert.Contains(t, out, "constraint.helloish")
}
