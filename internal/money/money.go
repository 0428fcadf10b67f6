// Package money holds the decimal helpers shared by the ticket engine and the
// services: two-decimal rounding and lenient parsing of prices coming from
// the remote API, which may send numbers, numeric strings or garbage.
package money

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cien = decimal.NewFromInt(100)

	// leading numeric prefix, same acceptance as a lenient float parse:
	// "12.5abc" → 12.5, ".5" → 0.5, "1e3" → 1000
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Porcentaje returns pct percent of base (unrounded).
func Porcentaje(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(cien)
}

// FactorDescuento returns (1 - pct/100).
func FactorDescuento(pct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(pct.Div(cien))
}

// ParseString parses the leading numeric prefix of s. Anything that does not
// start with a number yields zero.
func ParseString(s string) decimal.Decimal {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Parse converts an arbitrary JSON-decoded value into a decimal, falling back
// to zero for nil, booleans, objects and unparsable strings.
func Parse(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case json.Number:
		return ParseString(x.String())
	case string:
		return ParseString(x)
	default:
		return decimal.Zero
	}
}

// ParseRaw is Parse for a raw JSON value. Numbers keep their exact textual
// representation so that "19.99" never goes through float64.
func ParseRaw(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero
		}
		return ParseString(str)
	}
	if s[0] == '-' || (s[0] >= '0' && s[0] <= '9') {
		return ParseString(s)
	}
	return decimal.Zero
}

// Clamp limits d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
