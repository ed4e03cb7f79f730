// Package mathutil provides the fixed-point decimal arithmetic shared by the
// loan and lease calculators.
package mathutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/shopspring/decimal"
)

// guardDigits are the extra decimal places computed before a quotient is
// rounded back to the context precision.
const guardDigits = 4

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(constants.PercentageMultiplier)
)

// Context carries the working precision, in significant digits, used for all
// intermediate arithmetic. It is a value: callers construct one and pass it
// to the calculators, there is no process-wide setting.
type Context struct {
	Precision int32
}

// NewContext returns a Context with the given precision. Anything below the
// default 28 significant digits is raised to it.
func NewContext(precision int32) Context {
	if precision < constants.DefaultPrecision {
		precision = constants.DefaultPrecision
	}
	return Context{Precision: precision}
}

// DefaultContext returns a Context at the default precision.
func DefaultContext() Context {
	return NewContext(constants.DefaultPrecision)
}

// Round rounds d to the context precision using round-half-even, as a
// standard decimal context does for intermediate results.
func (c Context) Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	places := c.precision() - leadingDigit(d)
	if -d.Exponent() <= places {
		return d
	}
	return d.RoundBank(places)
}

// Mul multiplies and rounds to the context precision.
func (c Context) Mul(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a.Mul(b))
}

// Div divides a by b at the context precision. b must be non-zero.
func (c Context) Div(a, b decimal.Decimal) decimal.Decimal {
	if a.IsZero() {
		return decimal.Zero
	}
	places := c.precision() - (leadingDigit(a) - leadingDigit(b)) + guardDigits
	if places < 0 {
		places = 0
	}
	return c.Round(a.DivRound(b, places))
}

// PowInt raises base to an integer exponent by repeated squaring, rounding
// every step to the context precision. A negative exponent yields the
// reciprocal, so base must be non-zero in that case.
func (c Context) PowInt(base decimal.Decimal, exp int) decimal.Decimal {
	if exp < 0 {
		return c.Div(one, c.PowInt(base, -exp))
	}
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = c.Mul(result, base)
		}
		exp >>= 1
		if exp > 0 {
			base = c.Mul(base, base)
		}
	}
	return result
}

// FromPercent converts a percentage into a fraction (4.5 -> 0.045).
func (c Context) FromPercent(pct decimal.Decimal) decimal.Decimal {
	return c.Div(pct, hundred)
}

func (c Context) precision() int32 {
	if c.Precision < constants.DefaultPrecision {
		return constants.DefaultPrecision
	}
	return c.Precision
}

// leadingDigit returns the power of ten just above the most significant digit
// of d, i.e. the number of integer digits for values >= 1.
func leadingDigit(d decimal.Decimal) int32 {
	if d.IsZero() {
		return 0
	}
	return int32(d.NumDigits()) + d.Exponent()
}

// QuantizeCents rounds a value to two decimals, i.e. to represent real
// currency. Ties round away from zero (0.125 -> 0.13).
func QuantizeCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(constants.CentPlaces)
}

// Quantize rounds to the given number of places, ties away from zero.
func Quantize(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// ToDecimal converts a number or numeric string into an exact decimal.
// Floats are taken through their shortest round-trip string form so no binary
// expansion leaks into the result (0.1 becomes exactly 0.1).
func ToDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, calcerr.InvalidNumeric(value)
		}
		return *v, nil
	case string:
		return parseLiteral(v)
	case json.Number:
		return parseLiteral(v.String())
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return parseLiteral(strconv.FormatUint(uint64(v), 10))
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return parseLiteral(strconv.FormatUint(v, 10))
	case float32:
		return fromFloat(float64(v), 32)
	case float64:
		return fromFloat(v, 64)
	default:
		return decimal.Zero, calcerr.InvalidNumeric(value)
	}
}

// MustDecimal is ToDecimal for literals known to be valid; it panics otherwise.
func MustDecimal(value interface{}) decimal.Decimal {
	d, err := ToDecimal(value)
	if err != nil {
		panic(err)
	}
	return d
}

func parseLiteral(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, calcerr.InvalidNumeric(s)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, calcerr.InvalidNumeric(s)
	}
	if err := CheckExponent(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckExponent rejects a value whose base-10 exponent lies outside
// ±MaxDecimalExponent. Rounding or comparing such a value rescales it into
// an integer with that many digits.
func CheckExponent(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > constants.MaxDecimalExponent || exp < -constants.MaxDecimalExponent {
		return fmt.Errorf("%w: exponent %d outside ±%d", calcerr.ErrInvalidNumericInput, exp, constants.MaxDecimalExponent)
	}
	return nil
}

func fromFloat(f float64, bitSize int) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, calcerr.InvalidNumeric(f)
	}
	return parseLiteral(strconv.FormatFloat(f, 'f', -1, bitSize))
}

// Max returns the larger of two decimals.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds values exactly.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
