package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
operands: operands
fixture: nodes.yaml
assertions:
  - type: result
    operand: title
    path: /a
    kind: scalar
    values: ["x"]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "operands"), scenario.Operands)
	assert.Equal(t, filepath.Join(dir, "nodes.yaml"), scenario.Fixture)
	assert.Equal(t, DefaultSelector, scenario.Selector)
	assert.Equal(t, "memory", scenario.Store)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, []string{"x"}, scenario.Assertions[0].Values)
}

func TestLoadScenario_AbsolutePathsKept(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "ops")
	path := writeScenario(t, `
name: abs
description: "absolute paths"
operands: `+abs+`
fixture: `+abs+`/nodes.yaml
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, scenario.Operands)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "typo"
operands: ops
fixture: nodes.yaml
assertion: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	base := "name: n\ndescription: d\noperands: ops\nfixture: f.yaml\n"

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "description: d\noperands: o\nfixture: f\n", "name is required"},
		{"missing description", "name: n\noperands: o\nfixture: f\n", "description is required"},
		{"missing operands", "name: n\ndescription: d\nfixture: f\n", "operands directory is required"},
		{"missing fixture", "name: n\ndescription: d\noperands: o\n", "fixture is required"},
		{"bad store", base + "store: postgres\n", "unknown store"},
		{"missing type", base + "assertions:\n  - operand: x\n", "type is required"},
		{"unknown type", base + "assertions:\n  - type: trace_count\n", "unknown assertion type"},
		{"result without operand", base + "assertions:\n  - type: result\n    path: /a\n    kind: null\n", "requires operand"},
		{"result without path", base + "assertions:\n  - type: result\n    operand: x\n    kind: scalar\n", "requires path"},
		{"result bad kind", base + "assertions:\n  - type: result\n    operand: x\n    path: /a\n    kind: list\n", "kind must be"},
		{"matches without constraint", base + "assertions:\n  - type: matches\n", "requires constraint"},
		{"order without paths", base + "assertions:\n  - type: order\n    order: byTitle\n", "requires paths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
