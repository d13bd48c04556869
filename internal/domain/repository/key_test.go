package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "KELP", "KELP"},
		{"whole float", float64(7), "7"},
		{"fractional float", 7.5, "7.5"},
		{"negative float", float64(-3), "-3"},
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestNum(t *testing.T) {
	f, ok := Num("3.5")
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	f, ok = Num(float64(2))
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	_, ok = Num("abc")
	assert.False(t, ok)
	_, ok = Num(nil)
	assert.False(t, ok)
	_, ok = Num(math.NaN())
	assert.False(t, ok)
	_, ok = Num(math.Inf(1))
	assert.False(t, ok)
	_, ok = Num("NaN")
	assert.False(t, ok)
}

func TestNumOrNaN(t *testing.T) {
	assert.Equal(t, 10.0, NumOrNaN("10"))
	assert.True(t, math.IsNaN(NumOrNaN("not a number")))
}
