package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{".5", 50, true},
		{"0.004", 0, false},
		{"0.005", 1, true},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.out, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestParseAmountNormalizesSign(t *testing.T) {
	m, err := ParseAmount("-40.50")
	require.NoError(t, err)
	assert.Equal(t, int64(4050), m.Cents)

	_, err = ParseAmount("-0")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "12.34", Money{Cents: 1234}.String())
	assert.Equal(t, "-0.05", Money{Cents: -5}.String())
	assert.Equal(t, "0.00", Money{}.String())
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"10,5","b":3.25,"c":"0.00"}`), &v))
	assert.Equal(t, int64(1050), v.A.Cents)
	assert.Equal(t, int64(325), v.B.Cents)
	assert.Equal(t, int64(0), v.C.Cents)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"10.50","b":"3.25","c":"0.00"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"ten"}`), &v))
}

func TestMoneyValidate(t *testing.T) {
	assert.NoError(t, Money{Cents: 1}.Validate())
	assert.Error(t, Money{Cents: 0}.Validate())
	assert.Equal(t, Money{Cents: 3}, MinMoney(Money{Cents: 3}, Money{Cents: 7}))
}
