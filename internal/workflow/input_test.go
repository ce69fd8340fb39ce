package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQtyCoercion(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`2`, 2, true},
		{`"2"`, 2, true},
		{`" 7 "`, 7, true},
		{`null`, 1, true}, // omitted -> single unit
		{`0`, 0, true},    // coerces; workflow rejects < 1 separately
		{`-3`, -3, true},
		{`"two"`, 0, false},
		{`2.5`, 0, false},
		{`true`, 0, false},
		{`[1]`, 0, false},
	}
	for _, tc := range cases {
		var q Qty
		require.NoError(t, q.UnmarshalJSON([]byte(tc.raw)))
		n, ok := q.Int()
		assert.Equal(t, tc.ok, ok, "raw %s", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, n, "raw %s", tc.raw)
		}
	}

	// Absent entirely.
	var q Qty
	n, ok := q.Int()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestItemInputDecoding(t *testing.T) {
	var in ItemInput
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pizza","qty":"4"}`), &in))
	n, ok := in.Qty.Int()
	require.True(t, ok)
	assert.Equal(t, 4, n)
	assert.Nil(t, in.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"coke","name":"Cola","price":40,"qty":2}`), &in))
	require.NotNil(t, in.Price)
	assert.Equal(t, 40.0, *in.Price)
}
