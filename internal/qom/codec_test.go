package qom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalOperand(t *testing.T) {
	data, err := MarshalOperand(mustLength(mustPV("s", "title")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"length","operand":{"kind":"property_value","selector":"s","property":"title"}}`, string(data))
}

func TestUnmarshalOperand_AllKinds(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`{"kind":"property_value","property":"title"}`, "[title]"},
		{`{"kind":"length","operand":{"kind":"property_value","selector":"s","property":"tags"}}`, "LENGTH([s].[tags])"},
		{`{"kind":"node_name","selector":"s"}`, "NAME([s])"},
		{`{"kind":"node_local_name"}`, "LOCALNAME()"},
		{`{"kind":"full_text_search_score","selector":"s"}`, "SCORE([s])"},
		{`{"kind":"lower_case","operand":{"kind":"node_name"}}`, "LOWER(NAME())"},
		{`{"kind":"upper_case","operand":{"kind":"length","operand":{"kind":"property_value","property":"x"}}}`, "UPPER(LENGTH([x]))"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			op, err := UnmarshalOperand([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, op.String())

			// Encoding again yields the same tree
			data, err := MarshalOperand(op)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))
		})
	}
}

func TestUnmarshalOperand_Errors(t *testing.T) {
	tests := []struct {
		name         string
		json         string
		invalidArg   bool
		errorContain string
	}{
		{"malformed", `{"kind":`, false, "decode operand"},
		{"unknown kind", `{"kind":"concat"}`, false, "unknown operand kind"},
		{"empty property", `{"kind":"property_value","property":""}`, true, "property name is required"},
		{"length without operand", `{"kind":"length"}`, true, "operand is required"},
		{"length over name", `{"kind":"length","operand":{"kind":"node_name"}}`, true, "must be a property value"},
		{"upper without operand", `{"kind":"upper_case"}`, true, "operand is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := UnmarshalOperand([]byte(tt.json))
			assert.Nil(t, op)
			require.Error(t, err)
			assert.Equal(t, tt.invalidArg, IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tt.errorContain)
		})
	}
}

func TestMarshalOperand_ZeroValue(t *testing.T) {
	_, err := MarshalOperand(&Length{})
	assert.True(t, IsInvalidArgument(err))

	_, err = MarshalOperand(nil)
	assert.True(t, IsInvalidArgument(err))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(mustLength(mustPV("s", "title")))
	require.NoError(t, err)
	b, err := Fingerprint(mustLength(mustPV("s", "title")))
	require.NoError(t, err)
	c, err := Fingerprint(mustLength(mustPV("s", "tags")))
	require.NoError(t, err)

	assert.Equal(t, a, b, "structurally equal trees share a fingerprint")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)

	_, err = Fingerprint(&LowerCase{})
	assert.Error(t, err)
}
