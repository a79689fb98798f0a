package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     any
		wantKey   string
		wantValid bool
	}{
		{name: "nil", value: nil, wantKey: "", wantValid: false},
		{name: "empty string", value: "", wantKey: "", wantValid: false},
		{name: "string", value: "abc", wantKey: "abc", wantValid: true},
		{name: "bytes", value: []byte("42"), wantKey: "42", wantValid: true},
		{name: "empty bytes", value: []byte{}, wantKey: "", wantValid: false},
		{name: "int64", value: int64(42), wantKey: "42", wantValid: true},
		{name: "int", value: 7, wantKey: "7", wantValid: true},
		{name: "zero is absent", value: int64(0), wantKey: "", wantValid: false},
		{name: "unsigned zero is absent", value: uint8(0), wantKey: "", wantValid: false},
		{name: "float zero is absent", value: 0.0, wantKey: "", wantValid: false},
		{name: "NaN is absent", value: math.NaN(), wantKey: "", wantValid: false},
		{name: "negative", value: int64(-3), wantKey: "-3", wantValid: true},
		{name: "zero text is a key", value: "0", wantKey: "0", wantValid: true},
		{name: "integral float", value: 42.0, wantKey: "42", wantValid: true},
		{name: "fractional float", value: 1.5, wantKey: "1.5", wantValid: true},
		{name: "true", value: true, wantKey: "true", wantValid: true},
		{name: "false is absent", value: false, wantKey: "", wantValid: false},
		{name: "uint", value: uint32(9), wantKey: "9", wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, ok := KeyOf(tt.value)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValid, ok)
		})
	}
}

func TestRow_Clone(t *testing.T) {
	t.Parallel()

	r := Row{"id": 1, "name": "a"}
	c := r.Clone()
	c["name"] = "b"

	assert.Equal(t, "a", r["name"])
	assert.Equal(t, "b", c["name"])
	assert.Nil(t, Row(nil).Clone())
}

func TestRow_Columns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, Row{"c": 1, "a": 2, "b": 3}.Columns())
	assert.Equal(t, []string{"x", "y"}, Record{"y": 1, "x": 2}.Columns())
}
