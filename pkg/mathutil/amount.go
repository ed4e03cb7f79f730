package mathutil

import (
	"bytes"
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/shopspring/decimal"
)

// Amount is an emitted currency figure. It is always quantized to cents and
// marshals as a JSON number with exactly two decimals (16240.00).
type Amount struct {
	d decimal.Decimal
}

// NewAmount quantizes d to cents.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: QuantizeCents(d)}
}

// AmountOf parses a literal into an Amount. It panics on malformed input and
// is intended for constants and tests.
func AmountOf(value interface{}) Amount {
	return NewAmount(MustDecimal(value))
}

// Amounts quantizes every value in order.
func Amounts(values []decimal.Decimal) []Amount {
	out := make([]Amount, len(values))
	for i, v := range values {
		out[i] = NewAmount(v)
	}
	return out
}

// Decimal returns the quantized value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Equal reports whether two amounts hold the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) String() string {
	return a.d.StringFixed(constants.CentPlaces)
}

// MarshalJSON emits the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := unmarshalNumber(data)
	if err != nil {
		return err
	}
	*a = NewAmount(d)
	return nil
}

// Rate is an emitted non-currency figure (a rate, factor or percentage)
// carried at its natural scale.
type Rate struct {
	d decimal.Decimal
}

// NewRate wraps d without rounding.
func NewRate(d decimal.Decimal) Rate {
	return Rate{d: d}
}

// RateOf parses a literal into a Rate; it panics on malformed input.
func RateOf(value interface{}) Rate {
	return NewRate(MustDecimal(value))
}

// Decimal returns the wrapped value.
func (r Rate) Decimal() decimal.Decimal {
	return r.d
}

// Equal reports whether two rates hold the same value.
func (r Rate) Equal(o Rate) bool {
	return r.d.Equal(o.d)
}

func (r Rate) String() string {
	return r.d.String()
}

// MarshalJSON emits the rate as a bare JSON number.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted numeric string.
func (r *Rate) UnmarshalJSON(data []byte) error {
	d, err := unmarshalNumber(data)
	if err != nil {
		return err
	}
	*r = NewRate(d)
	return nil
}

func unmarshalNumber(data []byte) (decimal.Decimal, error) {
	literal := bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := ToDecimal(string(literal))
	if err != nil {
		return decimal.Zero, fmt.Errorf("decoding %s: %w", data, err)
	}
	return d, nil
}
