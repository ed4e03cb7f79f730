// Package output renders calculator results for the command line.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/format"
	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/loans"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Field is one labelled summary value.
type Field struct {
	Label string
	Value string
}

// Row is one schedule period. Values line up with Table.Columns after the
// leading period column.
type Row struct {
	Period int
	Values []mathutil.Amount
}

// Table is the flattened, format-independent view of a result.
type Table struct {
	Title   string
	Summary []Field
	Columns []string
	Rows    []Row
	Notes   []string
}

// LoanTable flattens a loan bundle.
func LoanTable(result *loans.Result) Table {
	t := result.Totals
	table := Table{
		Title: "Loan",
		Summary: []Field{
			{"Vehicle amount", format.Currency(t.VehicleAmount.Decimal())},
			{"Down payment", format.Currency(t.DownPaymentCash.Decimal())},
			{"Amount financed", format.Currency(t.AmountFinanced.Decimal())},
			{"APR", t.APRPercent.String() + "%"},
			{"Term", strconv.Itoa(t.TermMonths) + " months"},
			{"Tax rate", format.Percent(t.TaxRate.Decimal())},
			{"Monthly payment", format.Currency(t.MonthlyPaymentBase.Decimal())},
			{"Monthly tax", format.Currency(t.MonthlyTax.Decimal())},
			{"Monthly total", format.Currency(t.MonthlyPaymentTotal.Decimal())},
			{"Total interest", format.Currency(t.TotalInterest.Decimal())},
			{"Total tax", format.Currency(t.TotalTaxPaid.Decimal())},
			{"Total paid", format.Currency(t.TotalPaidIncludingTax.Decimal())},
			{"Due at signing", format.Currency(t.CustomerDueAtSigning.Decimal())},
		},
		Columns: []string{"period", "payment_base", "interest", "principal", "tax", "payment_total", "balance_end"},
		Notes:   result.Meta.Notes,
	}
	for _, p := range result.Schedule {
		table.Rows = append(table.Rows, Row{
			Period: p.Period,
			Values: []mathutil.Amount{p.PaymentBase, p.Interest, p.Principal, p.Tax, p.PaymentTotal, p.BalanceEnd},
		})
	}
	return table
}

// LeaseTable flattens a lease bundle.
func LeaseTable(result *leases.Result) Table {
	t := result.Totals
	table := Table{
		Title: "Lease",
		Summary: []Field{
			{"Vehicle amount", format.Currency(t.VehicleAmount.Decimal())},
			{"Term", strconv.Itoa(t.TermMonths) + " months"},
			{"Residual rate", format.Percent(t.ResidualRate.Decimal())},
			{"Residual value", format.Currency(t.ResidualValue.Decimal())},
			{"Money factor", t.MoneyFactor.String()},
			{"Estimated APR", t.APRPercentEst.String() + "%"},
			{"Acquisition fee", format.Currency(t.AcquisitionFeeFinanced.Decimal())},
			{"Monthly depreciation", format.Currency(t.MonthlyDepreciation.Decimal())},
			{"Monthly finance", format.Currency(t.MonthlyFinance.Decimal())},
			{"Monthly total", format.Currency(t.MonthlyPaymentTotal.Decimal())},
			{"Total depreciation", format.Currency(t.TotalDepreciation.Decimal())},
			{"Total finance", format.Currency(t.TotalFinance.Decimal())},
			{"Total paid", format.Currency(t.TotalPaid.Decimal())},
		},
		Columns: []string{"period", "depreciation", "finance", "payment_total", "residual_value_end"},
		Notes:   result.Meta.Notes,
	}
	for _, p := range result.Schedule {
		table.Rows = append(table.Rows, Row{
			Period: p.Period,
			Values: []mathutil.Amount{p.Depreciation, p.Finance, p.PaymentTotal, p.ResidualValueEnd},
		})
	}
	return table
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, table Table) error {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "--- %s summary ---\n", table.Title)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range table.Summary {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", field.Label, field.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = p.Fprintf(w, "\n--- %s schedule (%d periods) ---\n", table.Title, len(table.Rows))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, column := range table.Columns {
		if i > 0 {
			_, _ = fmt.Fprint(tw, "\t")
		}
		_, _ = fmt.Fprint(tw, column)
	}
	_, _ = fmt.Fprint(tw, "\t\n")
	for _, row := range table.Rows {
		_, _ = p.Fprintf(tw, "%d", row.Period)
		for _, value := range row.Values {
			_, _ = fmt.Fprintf(tw, "\t%s", format.Currency(value.Decimal()))
		}
		_, _ = fmt.Fprint(tw, "\t\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, note := range table.Notes {
		_, _ = fmt.Fprintf(w, "note: %s\n", note)
	}
	return nil
}

// CsvFormat writes the schedule in comma-separated value format. Amounts are
// written with exactly two decimal places and no separators.
func CsvFormat(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, strconv.Itoa(row.Period))
		for _, value := range row.Values {
			record = append(record, value.String())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the full result as indented JSON.
func JSONFormat(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// YAMLFormat writes the full result as YAML. The JSON encoding is the source
// of truth so key names and two-place amounts match the JSON output.
func YAMLFormat(w io.Writer, result interface{}) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("converting result to yaml: %w", err)
	}
	clearStyle(&node)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return err
	}
	return encoder.Close()
}

// clearStyle drops the flow and quoting styles inherited from JSON.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

// Write renders a loan or lease result in the named output format.
func Write(w io.Writer, outputFormat string, result interface{}) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, result)
	}

	var table Table
	switch r := result.(type) {
	case *loans.Result:
		table = LoanTable(r)
	case *leases.Result:
		table = LeaseTable(r)
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, table)
	case constants.OutputFormatCSV:
		return CsvFormat(w, table)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}
