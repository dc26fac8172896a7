package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zebra": "z",
		"apple": int64(1),
		"mango": true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":1,"mango":true,"zebra":"z"}`, string(got))
}

func TestMarshalCanonicalValues(t *testing.T) {
	got, err := MarshalCanonical([]Value{Long(5), String("a<b")})
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"Long","value":"5"},{"type":"String","value":"a<b"}]`, string(got))
}

func TestMarshalCanonicalDoubleAsString(t *testing.T) {
	got, err := MarshalCanonical(Double(0.25))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Double","value":"0.25"}`, string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	// A literal backslash followed by "u2028" stays escaped
	got, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.ErrorContains(t, err, `object["x"]`)
}

func TestCompareUTF16(t *testing.T) {
	// U+FF61 sorts after U+1F600 in UTF-8 but before it in UTF-16
	assert.Equal(t, -1, compareUTF16("\U0001F600", "\uff61"))
	assert.Equal(t, 0, compareUTF16("a", "a"))
	assert.Equal(t, -1, compareUTF16("a", "aa"))
}

func TestFingerprintStable(t *testing.T) {
	a, err := Fingerprint(DomainOperand, map[string]any{"kind": "length", "property": "title"})
	require.NoError(t, err)
	b, err := Fingerprint(DomainOperand, map[string]any{"property": "title", "kind": "length"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := Fingerprint(DomainResult, map[string]any{"kind": "length", "property": "title"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "domain separation changes the hash")
}
