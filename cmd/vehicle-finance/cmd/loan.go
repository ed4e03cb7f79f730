package cmd

import (
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/loans"
	"github.com/iwvelando/vehicle-finance/pkg/output"
	"github.com/iwvelando/vehicle-finance/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type loanFlags struct {
	vehicleAmount string
	downPayment   string
	termMonths    int
	aprPercent    string
	taxRate       string
}

func newLoanCommand(root *rootOptions) *cobra.Command {
	flags := &loanFlags{}

	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Compute a loan amortization schedule",
		Example: `  vehicle-finance loan --vehicle-amount 30000 --down-payment 3000 --term 60 --apr 6
  vehicle-finance loan --vehicle-amount 25000 --term 72 --apr 7.9 --tax-rate 0 --output-format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.load()
			if err != nil {
				return err
			}
			defer rt.close()

			req, err := flags.request(rt.defaults.TaxRate)
			if err != nil {
				return err
			}
			if err := validation.ValidateLoanRequest(req); err != nil {
				return err
			}
			for _, warning := range validation.LoanWarnings(req) {
				rt.logger.Warn("input warning: "+warning, zap.String("op", "cmd.loan"))
			}

			result, err := loans.NewAmortizationScheduleGenerator(rt.logger, rt.conf.MathContext()).GenerateSchedule(req)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), rt.outputFormat, result)
		},
	}

	cmd.Flags().StringVar(&flags.vehicleAmount, "vehicle-amount", "", "vehicle price")
	cmd.Flags().StringVar(&flags.downPayment, "down-payment", "0", "cash down payment")
	cmd.Flags().IntVar(&flags.termMonths, "term", 0, "term in months")
	cmd.Flags().StringVar(&flags.aprPercent, "apr", "", "annual percentage rate as a percent (5.9 for 5.9%)")
	cmd.Flags().StringVar(&flags.taxRate, "tax-rate", "", "sales tax as a fraction applied to each payment (default from config, 0.0825)")
	_ = cmd.MarkFlagRequired("vehicle-amount")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("apr")

	return cmd
}

func (f *loanFlags) request(defaultTaxRate decimal.Decimal) (loans.Request, error) {
	var taxRate interface{} = defaultTaxRate
	if f.taxRate != "" {
		taxRate = f.taxRate
	}
	req, err := loans.NewRequest(f.vehicleAmount, f.downPayment, f.termMonths, f.aprPercent, taxRate)
	if err != nil {
		return loans.Request{}, fmt.Errorf("invalid loan flags: %w", err)
	}
	return req, nil
}
