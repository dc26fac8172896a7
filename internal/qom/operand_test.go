package qom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicOperand_Sealed(t *testing.T) {
	var _ DynamicOperand = &PropertyValue{}
	var _ DynamicOperand = &Length{}
	var _ DynamicOperand = &NodeName{}
	var _ DynamicOperand = &NodeLocalName{}
	var _ DynamicOperand = &FullTextSearchScore{}
	var _ DynamicOperand = &LowerCase{}
	var _ DynamicOperand = &UpperCase{}
}

func TestNewPropertyValue(t *testing.T) {
	pv, err := NewPropertyValue("s", "title")
	require.NoError(t, err)
	assert.Equal(t, "s", pv.SelectorName())
	assert.Equal(t, "title", pv.PropertyName())
	assert.Equal(t, KindPropertyValue, pv.Kind())

	pv, err = NewPropertyValue("", "title")
	require.NoError(t, err)
	assert.Empty(t, pv.SelectorName(), "selector is optional")
}

func TestNewPropertyValue_InvalidArgument(t *testing.T) {
	for _, name := range []string{"", "   "} {
		pv, err := NewPropertyValue("s", name)
		assert.Nil(t, pv)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
		assert.Contains(t, err.Error(), "property name is required")
	}
}

func TestNewLength(t *testing.T) {
	pv := mustPV("s", "title")
	l, err := NewLength(pv)
	require.NoError(t, err)
	assert.Same(t, pv, l.PropertyValue())
	assert.Equal(t, KindLength, l.Kind())
}

func TestNewLength_InvalidArgument(t *testing.T) {
	l, err := NewLength(nil)
	assert.Nil(t, l)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "length", qe.Op)
}

func TestNewCaseOperands_InvalidArgument(t *testing.T) {
	_, err := NewLowerCase(nil)
	assert.True(t, IsInvalidArgument(err))

	var typedNil *PropertyValue
	_, err = NewUpperCase(typedNil)
	assert.True(t, IsInvalidArgument(err), "typed nil pointer is rejected too")
}

func TestOperandKinds(t *testing.T) {
	lower, err := NewLowerCase(NewNodeName("s"))
	require.NoError(t, err)
	upper, err := NewUpperCase(NewNodeName("s"))
	require.NoError(t, err)

	tests := []struct {
		op   DynamicOperand
		kind OperandKind
	}{
		{mustPV("", "x"), KindPropertyValue},
		{mustLength(mustPV("", "x")), KindLength},
		{NewNodeName(""), KindNodeName},
		{NewNodeLocalName(""), KindNodeLocalName},
		{NewFullTextSearchScore(""), KindFullTextSearchScore},
		{lower, KindLowerCase},
		{upper, KindUpperCase},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.op.Kind())
		})
	}
}

func TestOperandString(t *testing.T) {
	lower, err := NewLowerCase(NewNodeName("s"))
	require.NoError(t, err)
	upper, err := NewUpperCase(mustLength(mustPV("", "title")))
	require.NoError(t, err)

	tests := []struct {
		op   DynamicOperand
		want string
	}{
		{mustPV("s", "title"), "[s].[title]"},
		{mustPV("", "title"), "[title]"},
		{mustLength(mustPV("s", "title")), "LENGTH([s].[title])"},
		{NewNodeName(""), "NAME()"},
		{NewNodeLocalName("s"), "LOCALNAME([s])"},
		{NewFullTextSearchScore("s"), "SCORE([s])"},
		{lower, "LOWER(NAME([s]))"},
		{upper, "UPPER(LENGTH([title]))"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Code: ErrCodeInvalidArgument, Op: "length", Message: "property value is required"}
	assert.Equal(t, "INVALID_ARGUMENT: length: property value is required", err.Error())

	err = &Error{Code: ErrCodeUnknownSelector, Message: "row binds no selector"}
	assert.Equal(t, "UNKNOWN_SELECTOR: row binds no selector", err.Error())
}
