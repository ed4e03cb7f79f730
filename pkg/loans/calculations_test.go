package loans

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/vehicle-finance/pkg/calcerr"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustRequest(t *testing.T, vehicle, down interface{}, term int, apr, tax interface{}) Request {
	t.Helper()
	req, err := NewRequest(vehicle, down, term, apr, tax)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	return req
}

func mustSchedule(t *testing.T, req Request) *Result {
	t.Helper()
	result, err := BuildSchedule(mathutil.DefaultContext(), req)
	if err != nil {
		t.Fatalf("BuildSchedule() error = %v", err)
	}
	if len(result.Schedule) != req.TermMonths {
		t.Fatalf("expected %d periods, got %d", req.TermMonths, len(result.Schedule))
	}
	return result
}

// expectAmounts compares named amounts against their expected string forms.
func expectAmounts(t *testing.T, got map[string]mathutil.Amount, expected map[string]string) {
	t.Helper()
	for name, want := range expected {
		if got[name].String() != want {
			t.Errorf("%s = %s, expected %s", name, got[name], want)
		}
	}
}

func TestCalculateMonthlyPayment(t *testing.T) {
	mc := mathutil.DefaultContext()

	tests := []struct {
		name       string
		financed   string
		aprPercent string
		termMonths int
		expected   string
	}{
		{"5-year car loan at 6%", "27000", "6.0", 60, "521.99"},
		{"6-year loan at 7.9%", "25000", "7.9", 72, "437.11"},
		{"Zero interest splits evenly", "10000", "0", 3, "3333.33"},
		{"Zero interest exact split", "12000", "0", 60, "200.00"},
		{"Nothing financed", "0", "5", 12, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := MonthlyRate(mc, d(tt.aprPercent))
			result := CalculateMonthlyPayment(mc, d(tt.financed), rate, tt.termMonths)
			if !result.Equal(d(tt.expected)) {
				t.Errorf("CalculateMonthlyPayment() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestMonthlyRate(t *testing.T) {
	mc := mathutil.DefaultContext()

	tests := []struct {
		apr      string
		expected string
	}{
		{"6", "0.005"},
		{"4.5", "0.00375"},
		{"0", "0"},
		// 5.9/1200 does not terminate; it is carried to 28 significant digits.
		{"5.9", "0.004916666666666666666666666667"},
	}

	for _, tt := range tests {
		if got := MonthlyRate(mc, d(tt.apr)).String(); got != tt.expected {
			t.Errorf("MonthlyRate(%s) = %s, expected %s", tt.apr, got, tt.expected)
		}
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	mc := mathutil.DefaultContext()

	tests := []struct {
		name     string
		balance  string
		rate     string
		expected string
	}{
		{"First month at 6%", "27000", "0.005", "135.00"},
		{"Rounds half up", "25", "0.005", "0.13"},
		{"Zero rate", "27000", "0", "0.00"},
		{"Zero balance", "0", "0.005", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(mc, d(tt.balance), d(tt.rate))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("CalculateInterestPayment() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestNewRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := mustRequest(t, 30000, nil, 60, 6.0, nil)
		if !req.DownPaymentCash.IsZero() {
			t.Errorf("down payment = %s, expected 0", req.DownPaymentCash)
		}
		if !req.TaxRate.Equal(d("0.0825")) {
			t.Errorf("tax rate = %s, expected 0.0825", req.TaxRate)
		}
		if !req.APRPercent.Equal(d("6")) {
			t.Errorf("apr = %s, expected 6", req.APRPercent)
		}
	})

	t.Run("floats have no binary residue", func(t *testing.T) {
		req := mustRequest(t, 0.1, 0.2, 12, 4.1, 0.0825)
		for got, want := range map[string]string{
			req.VehicleAmount.String():   "0.1",
			req.DownPaymentCash.String(): "0.2",
			req.APRPercent.String():      "4.1",
		} {
			if got != want {
				t.Errorf("got %s, expected %s", got, want)
			}
		}
	})

	t.Run("malformed literal", func(t *testing.T) {
		_, err := NewRequest("thirty thousand", nil, 60, "6", nil)
		if !errors.Is(err, calcerr.ErrInvalidNumericInput) {
			t.Fatalf("error = %v, expected ErrInvalidNumericInput", err)
		}
		if !strings.Contains(err.Error(), "vehicle_amount") {
			t.Errorf("error %q does not name vehicle_amount", err)
		}
	})

	t.Run("malformed tax rate", func(t *testing.T) {
		if _, err := NewRequest("30000", nil, 60, "6", "8.25%"); !errors.Is(err, calcerr.ErrInvalidNumericInput) {
			t.Errorf("error = %v, expected ErrInvalidNumericInput", err)
		}
	})

	t.Run("extreme exponent", func(t *testing.T) {
		if _, err := NewRequest("1e10000000", nil, 60, "6", nil); !errors.Is(err, calcerr.ErrInvalidNumericInput) {
			t.Errorf("error = %v, expected ErrInvalidNumericInput", err)
		}
	})
}

func TestAmountFinanced(t *testing.T) {
	if got := mustRequest(t, "30000", "3000", 60, "6", nil).AmountFinanced(); !got.Equal(d("27000")) {
		t.Errorf("AmountFinanced() = %s, expected 27000", got)
	}
	if got := mustRequest(t, "5000", "6000", 60, "6", nil).AmountFinanced(); !got.IsZero() {
		t.Errorf("down payment above price should floor financed at zero, got %s", got)
	}
}

func TestBuildScheduleInvalidTerm(t *testing.T) {
	for _, term := range []int{0, -1, -60} {
		req := mustRequest(t, "30000", "3000", term, "6", nil)
		result, err := BuildSchedule(mathutil.DefaultContext(), req)
		if result != nil {
			t.Errorf("term %d: expected no partial bundle on failure", term)
		}
		if !errors.Is(err, calcerr.ErrInvalidTerm) {
			t.Errorf("term %d: error = %v, expected ErrInvalidTerm", term, err)
		}
	}
}

func TestBuildScheduleStandardLoan(t *testing.T) {
	result := mustSchedule(t, mustRequest(t, 30000, 3000, 60, 6.0, 0.0825))

	totals := result.Totals
	expectAmounts(t, map[string]mathutil.Amount{
		"amount_financed":          totals.AmountFinanced,
		"monthly_payment_base":     totals.MonthlyPaymentBase,
		"monthly_tax":              totals.MonthlyTax,
		"monthly_payment_total":    totals.MonthlyPaymentTotal,
		"total_interest":           totals.TotalInterest,
		"total_tax_paid":           totals.TotalTaxPaid,
		"total_paid_including_tax": totals.TotalPaidIncludingTax,
		"customer_due_at_signing":  totals.CustomerDueAtSigning,
		"principal_repaid":         totals.PrincipalRepaid,
		"apr_percent":              totals.APRPercent,
	}, map[string]string{
		"amount_financed":          "27000.00",
		"monthly_payment_base":     "521.99",
		"monthly_tax":              "43.06",
		"monthly_payment_total":    "565.05",
		"total_interest":           "4319.10",
		"total_tax_paid":           "2583.60",
		"total_paid_including_tax": "33902.70",
		"customer_due_at_signing":  "3000.00",
		"principal_repaid":         "27000.00",
		"apr_percent":              "6.00",
	})
	if totals.TaxRate.String() != "0.0825" {
		t.Errorf("tax_rate = %s, expected 0.0825", totals.TaxRate)
	}
	if totals.TermMonths != 60 {
		t.Errorf("term_months = %d, expected 60", totals.TermMonths)
	}

	first := result.Schedule[0]
	if first.Period != 1 {
		t.Errorf("first period = %d, expected 1", first.Period)
	}
	expectAmounts(t, map[string]mathutil.Amount{
		"interest":    first.Interest,
		"principal":   first.Principal,
		"balance_end": first.BalanceEnd,
	}, map[string]string{
		"interest":    "135.00",
		"principal":   "386.99",
		"balance_end": "26613.01",
	})

	// The overshoot guard trims the final base payment.
	last := result.Schedule[59]
	if last.Period != 60 {
		t.Errorf("last period = %d, expected 60", last.Period)
	}
	expectAmounts(t, map[string]mathutil.Amount{
		"payment_base":  last.PaymentBase,
		"interest":      last.Interest,
		"principal":     last.Principal,
		"payment_total": last.PaymentTotal,
		"balance_end":   last.BalanceEnd,
	}, map[string]string{
		"payment_base":  "521.69",
		"interest":      "2.60",
		"principal":     "519.09",
		"payment_total": "564.75",
		"balance_end":   "0.00",
	})

	if result.Meta.Mode != Mode {
		t.Errorf("meta.mode = %q, expected %q", result.Meta.Mode, Mode)
	}
	if len(result.Meta.Notes) != 2 {
		t.Errorf("expected 2 notes, got %d", len(result.Meta.Notes))
	}
}

func TestBuildScheduleUndershootRetiredInFinalPeriod(t *testing.T) {
	// The rounded base payment leaves 0.16 behind after 71 periods at
	// nominal payment; the final period absorbs it.
	result := mustSchedule(t, mustRequest(t, "25000", nil, 72, "7.9", nil))

	last := result.Schedule[71]
	expectAmounts(t, map[string]mathutil.Amount{
		"payment_base":             last.PaymentBase,
		"principal":                last.Principal,
		"payment_total":            last.PaymentTotal,
		"balance_end":              last.BalanceEnd,
		"total_interest":           result.Totals.TotalInterest,
		"total_paid_including_tax": result.Totals.TotalPaidIncludingTax,
	}, map[string]string{
		"payment_base":             "437.27",
		"principal":                "434.41",
		"payment_total":            "473.33",
		"balance_end":              "0.00",
		"total_interest":           "6472.08",
		"total_paid_including_tax": "34068.40",
	})
}

func TestBuildScheduleZeroRate(t *testing.T) {
	result := mustSchedule(t, mustRequest(t, "10000", nil, 3, "0", nil))

	for i, p := range result.Schedule {
		if p.Interest.String() != "0.00" {
			t.Errorf("period %d: interest = %s, expected 0.00", p.Period, p.Interest)
		}
		if i < len(result.Schedule)-1 && !p.Principal.Equal(result.Totals.MonthlyPaymentBase) {
			t.Errorf("period %d: principal %s != payment base %s", p.Period, p.Principal, result.Totals.MonthlyPaymentBase)
		}
	}

	last := result.Schedule[2]
	expectAmounts(t, map[string]mathutil.Amount{
		"principal":                last.Principal,
		"balance_end":              last.BalanceEnd,
		"total_paid_including_tax": result.Totals.TotalPaidIncludingTax,
		"total_interest":           result.Totals.TotalInterest,
	}, map[string]string{
		"principal":                "3333.34",
		"balance_end":              "0.00",
		"total_paid_including_tax": "10825.00",
		"total_interest":           "0.00",
	})
}

func TestBuildScheduleNothingFinanced(t *testing.T) {
	result := mustSchedule(t, mustRequest(t, "5000", "6000", 12, "5", nil))

	if got := result.Totals.AmountFinanced.String(); got != "0.00" {
		t.Errorf("amount_financed = %s, expected 0.00", got)
	}
	if got := result.Totals.CustomerDueAtSigning.String(); got != "6000.00" {
		t.Errorf("customer_due_at_signing = %s, expected 6000.00", got)
	}
	for _, p := range result.Schedule {
		if p.PaymentTotal.String() != "0.00" || p.BalanceEnd.String() != "0.00" {
			t.Errorf("period %d: payment %s balance %s, expected zeros", p.Period, p.PaymentTotal, p.BalanceEnd)
		}
	}
}

func TestBuildScheduleChartData(t *testing.T) {
	result := mustSchedule(t, mustRequest(t, "30000", "3000", 60, "6", nil))

	cj := result.ChartJS
	if len(cj.Labels) != 60 {
		t.Fatalf("expected 60 labels, got %d", len(cj.Labels))
	}
	if cj.Labels[0] != "1" || cj.Labels[59] != "60" {
		t.Errorf("labels run %q..%q, expected \"1\"..\"60\"", cj.Labels[0], cj.Labels[59])
	}

	if len(cj.Datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(cj.Datasets))
	}
	for i, label := range []string{LabelPrincipal, LabelInterest, LabelTax} {
		ds := cj.Datasets[i]
		if ds.Label != label || ds.Type != "bar" || ds.Stack != Stack {
			t.Errorf("dataset %d = {%s %s %s}, expected {%s bar %s}", i, ds.Label, ds.Type, ds.Stack, label, Stack)
		}
		if len(ds.Data) != 60 {
			t.Errorf("dataset %s has %d points, expected 60", label, len(ds.Data))
		}
	}
	for i, p := range result.Schedule {
		if !cj.Datasets[0].Data[i].Equal(p.Principal) ||
			!cj.Datasets[1].Data[i].Equal(p.Interest) ||
			!cj.Datasets[2].Data[i].Equal(p.Tax) {
			t.Errorf("period %d: chart data does not match schedule", p.Period)
		}
	}
}

func TestBuildScheduleDeterministicJSON(t *testing.T) {
	req := mustRequest(t, "41234.56", "1500", 48, "5.9", "0.0625")

	a, err := json.Marshal(mustSchedule(t, req))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	b, err := json.Marshal(mustSchedule(t, req))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if string(a) != string(b) {
		t.Error("identical requests produced different JSON")
	}
	for _, fragment := range []string{`"amount_financed":39734.56`, `"tax_rate":0.0625`} {
		if !strings.Contains(string(a), fragment) {
			t.Errorf("JSON missing %s", fragment)
		}
	}
}

func TestGenerateScheduleLogsFinalAdjustment(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gen := NewAmortizationScheduleGenerator(zap.New(core), mathutil.DefaultContext())

	if _, err := gen.GenerateSchedule(mustRequest(t, "30000", "3000", 60, "6", nil)); err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	adjusted := logs.FilterMessageSnippet("adjusting base payment").All()
	if len(adjusted) != 1 {
		t.Fatalf("expected 1 adjustment log, got %d", len(adjusted))
	}
	if !strings.Contains(adjusted[0].Message, "period 60") {
		t.Errorf("adjustment message %q does not name period 60", adjusted[0].Message)
	}
	if op := adjusted[0].ContextMap()["op"]; op != "loans.GenerateSchedule" {
		t.Errorf("op = %v, expected loans.GenerateSchedule", op)
	}
}
