package spice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1", 1, true},
		{"2.5", 2.5, true},
		{".5", 0.5, true},
		{"1e-6", 1e-6, true},
		{"1.5u", 1.5e-6, true},
		{"10MEG", 10e6, true},
		{"10M", 10e-3, true},
		{"3k", 3e3, true},
		{"2n", 2e-9, true},
		{"4p", 4e-12, true},
		{"1t", 1e12, true},
		{"1uF", 1e-6, true},
		{"5V", 5, true},
		{"-2", -2, true},
		{"abc", 0, false},
		{"1+2", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, math.Abs(tt.want)*1e-12+1e-30)
			}
		})
	}
}

func TestEvaluator_Eval(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	global := Params{}
	global.Set("WN", 1e-6)
	global.Set("scale", 2)
	local := Params{}
	local.Set("scale", 3)

	tests := []struct {
		expr string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"-4/2", -2},
		{"2 - -1", 3},
		{"'wn*scale'", 3e-6},
		{"{wn * 2}", 2e-6},
		{"1u + 500n", 1.5e-6},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Eval(tt.expr, local, global)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-18)
		})
	}
}

func TestEvaluator_Errors(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	_, err = e.Eval("x*2")
	assert.ErrorIs(t, err, ErrUnknownParameter)

	_, err = e.Eval("1/0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = e.Eval("(1+")
	assert.Error(t, err)
}
