package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal coerces a loosely typed JSON or store value into a number.
// Anything that is not a finite number (absent, garbage strings, NaN,
// infinities, objects) becomes zero.
func toDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case int32:
		return decimal.NewFromInt(int64(t))
	case bool:
		if t {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case json.Number:
		return fromString(string(t))
	case string:
		return fromString(t)
	case decimal.Decimal:
		return t
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// minExponent bounds the scale of parsed decimals. Anything finer than a
// float64 can hold is taken from the float parse instead.
const minExponent = -400

// fromString parses s as a float first so that out-of-range exponents such
// as 1e999999999 are rejected before decimal expands them.
func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Exponent() < minExponent {
		return fromFloat(f)
	}
	return d
}

// toFloat is toDecimal narrowed to a finite float64.
func toFloat(v any) float64 {
	f := toDecimal(v).InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toText coerces a JSON value into a string the way a loosely typed caller
// would: falsy values become "", numbers keep their shortest form and
// composite values are re-encoded as JSON.
func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		if toDecimal(t).IsZero() {
			return ""
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
