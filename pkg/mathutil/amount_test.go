package mathutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/shopspring/decimal"
)

func TestAmountAlwaysQuantized(t *testing.T) {
	tests := []struct {
		name     string
		amount   Amount
		expected string
	}{
		{"Whole dollars", NewAmount(d("16240")), "16240.00"},
		{"Half cent rounds up", NewAmount(d("0.125")), "0.13"},
		{"Zero value", Amount{}, "0.00"},
	}

	for _, tt := range tests {
		if got := tt.amount.String(); got != tt.expected {
			t.Errorf("%s: String() = %s, expected %s", tt.name, got, tt.expected)
		}
	}

	if !NewAmount(d("0.125")).Decimal().Equal(d("0.13")) {
		t.Error("Decimal() should return the quantized value")
	}
}

func TestAmountJSON(t *testing.T) {
	payload := struct {
		Value Amount   `json:"value"`
		List  []Amount `json:"list"`
	}{
		Value: AmountOf("521.9"),
		List:  Amounts([]decimal.Decimal{d("1"), d("2.005")}),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if expected := `{"value":521.90,"list":[1.00,2.01]}`; string(raw) != expected {
		t.Errorf("Marshal() = %s, expected %s", raw, expected)
	}

	var decoded struct {
		Value Amount `json:"value"`
		Str   Amount `json:"str"`
	}
	if err := json.Unmarshal([]byte(`{"value":521.90,"str":"3.456"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Value.Equal(AmountOf("521.9")) {
		t.Errorf("value = %s, expected 521.90", decoded.Value)
	}
	if decoded.Str.String() != "3.46" {
		t.Errorf("str = %s, expected 3.46", decoded.Str)
	}

	if err := json.Unmarshal([]byte(`{"value":"abc"}`), &decoded); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestAmountRejectsExtremeExponent(t *testing.T) {
	var a Amount
	for _, input := range []string{`1e10000000`, `"1e-10000000"`} {
		if err := json.Unmarshal([]byte(input), &a); !errors.Is(err, calcerr.ErrInvalidNumericInput) {
			t.Errorf("Unmarshal(%s) error = %v, expected ErrInvalidNumericInput", input, err)
		}
	}
}

func TestRateJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]Rate{"mf": RateOf("0.00190"), "rr": RateOf("0.5458")})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if expected := `{"mf":0.0019,"rr":0.5458}`; string(raw) != expected {
		t.Errorf("Marshal() = %s, expected %s", raw, expected)
	}

	var r Rate
	if err := json.Unmarshal([]byte(`0.0825`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !r.Equal(RateOf("0.0825")) || r.String() != "0.0825" {
		t.Errorf("rate = %s, expected 0.0825", r)
	}
}
