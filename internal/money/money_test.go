package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2_HalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"53.9865": "53.99",
		"0.005":   "0.01",
		"-0.005":  "-0.01",
		"1.004":   "1",
		"10":      "10",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s → %s, got %s", in, want, got)
	}
}

func TestParseString_Lenient(t *testing.T) {
	cases := map[string]string{
		"12.5":    "12.5",
		" 7 ":     "7",
		"12.5abc": "12.5",
		".5":      "0.5",
		"1e3":     "1000",
		"-3":      "-3",
		"abc":     "0",
		"":        "0",
		"NaN":     "0",
	}
	for in, want := range cases {
		got := ParseString(in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%q → %s, got %s", in, want, got)
	}
}

func TestParse_Types(t *testing.T) {
	assert.True(t, decimal.NewFromFloat(1.5).Equal(Parse(1.5)))
	assert.True(t, decimal.NewFromInt(3).Equal(Parse(3)))
	assert.True(t, decimal.RequireFromString("2.25").Equal(Parse("2.25")))
	assert.True(t, decimal.RequireFromString("4.1").Equal(Parse(json.Number("4.1"))))
	assert.True(t, Parse(nil).IsZero())
	assert.True(t, Parse(true).IsZero())
	assert.True(t, Parse(map[string]any{}).IsZero())
}

func TestParseRaw(t *testing.T) {
	assert.Equal(t, "19.99", ParseRaw(json.RawMessage(`19.99`)).String())
	assert.Equal(t, "19.99", ParseRaw(json.RawMessage(`"19.99"`)).String())
	assert.True(t, ParseRaw(json.RawMessage(`null`)).IsZero())
	assert.True(t, ParseRaw(nil).IsZero())
	assert.True(t, ParseRaw(json.RawMessage(`"x"`)).IsZero())
	assert.True(t, ParseRaw(json.RawMessage(`{"a":1}`)).IsZero())
	assert.True(t, ParseRaw(json.RawMessage(`false`)).IsZero())
}

func TestPorcentajeYFactor(t *testing.T) {
	base := decimal.NewFromInt(250)
	assert.Equal(t, "25", Porcentaje(base, decimal.NewFromInt(10)).String())
	assert.Equal(t, "0.9", FactorDescuento(decimal.NewFromInt(10)).String())
}

func TestClamp(t *testing.T) {
	lo, hi := decimal.Zero, decimal.NewFromInt(100)
	assert.True(t, Clamp(decimal.NewFromInt(-1), lo, hi).Equal(lo))
	assert.True(t, Clamp(decimal.NewFromInt(101), lo, hi).Equal(hi))
	assert.True(t, Clamp(decimal.NewFromInt(50), lo, hi).Equal(decimal.NewFromInt(50)))
}
