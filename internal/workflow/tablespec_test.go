package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableNo(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"T1", 1, false},
		{"t12", 12, false},
		{" T3 ", 3, false},
		{"T", 0, true},
		{"7", 0, true},
		{"Tx", 0, true},
		{"T-1", 0, true},
		{"table1", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		n, err := parseTableNo(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidSpec, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, n, "input %q", tc.in)
	}
}

func TestResolveSpecExpressions(t *testing.T) {
	nextFrom := func() (int, error) { return 4, nil }

	cases := []struct {
		expr string
		want []string
	}{
		{"5", []string{"T5", "T6", "T7", "T8", "T9"}}, // count continues after T4
		{"T3", []string{"T3"}},
		{"T1-T3", []string{"T1", "T2", "T3"}},
		{"T1,T3,T5", []string{"T1", "T3", "T5"}},
		{" T2 , T4 ", []string{"T2", "T4"}},
	}
	for _, tc := range cases {
		got, err := resolveSpec(GenerateSpec{Expr: tc.expr}, nextFrom)
		require.NoError(t, err, "expr %q", tc.expr)
		assert.Equal(t, tc.want, got, "expr %q", tc.expr)
	}
}

func TestResolveSpecInvalid(t *testing.T) {
	nextFrom := func() (int, error) { return 0, nil }

	for _, expr := range []string{"", "0", "-2", "T5-T1", "T1-banana", "T1,,T3", "lunch"} {
		_, err := resolveSpec(GenerateSpec{Expr: expr}, nextFrom)
		assert.ErrorIs(t, err, ErrInvalidSpec, "expr %q", expr)
	}

	// Empty spec with no shape at all.
	_, err := resolveSpec(GenerateSpec{}, nextFrom)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestResolveSpecExplicitShapes(t *testing.T) {
	nextFrom := func() (int, error) { return 0, nil }

	got, err := resolveSpec(GenerateSpec{Tables: []string{"T9", "t2"}}, nextFrom)
	require.NoError(t, err)
	assert.Equal(t, []string{"T9", "T2"}, got)

	got, err = resolveSpec(GenerateSpec{Count: 2}, nextFrom)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, got)

	_, err = resolveSpec(GenerateSpec{Tables: []string{"nine"}}, nextFrom)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}
