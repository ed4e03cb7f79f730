// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

// D parses a decimal literal and panics on malformed input.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecodeJSON decodes a JSON object keeping numbers as json.Number, so
// two-place amounts like 16240.00 can be compared textually.
func DecodeJSON(tb testing.TB, data []byte) map[string]interface{} {
	tb.Helper()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		tb.Fatalf("failed to decode JSON %q: %v", string(data), err)
	}
	return payload
}

// Totals returns the totals object of a loan or lease bundle.
func Totals(tb testing.TB, data []byte) map[string]json.Number {
	tb.Helper()
	payload := DecodeJSON(tb, data)
	raw, ok := payload["totals"].(map[string]interface{})
	if !ok {
		tb.Fatalf("response has no totals object: %s", string(data))
	}
	totals := make(map[string]json.Number, len(raw))
	for key, value := range raw {
		number, ok := value.(json.Number)
		if !ok {
			tb.Fatalf("totals.%s is %T, expected a number", key, value)
		}
		totals[key] = number
	}
	return totals
}
