package cmd

import (
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/output"
	"github.com/iwvelando/vehicle-finance/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type leaseFlags struct {
	vehicleAmount  string
	termMonths     int
	moneyFactor    string
	acquisitionFee string
}

func newLeaseCommand(root *rootOptions) *cobra.Command {
	flags := &leaseFlags{}

	cmd := &cobra.Command{
		Use:   "lease",
		Short: "Compute a lease payment schedule",
		Example: `  vehicle-finance lease --vehicle-amount 28000 --term 36
  vehicle-finance lease --vehicle-amount 35000 --term 45 --money-factor 0.00125 --acquisition-fee 995`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.load()
			if err != nil {
				return err
			}
			defer rt.close()

			var moneyFactor, fee interface{} = rt.defaults.MoneyFactor, rt.defaults.AcquisitionFee
			if flags.moneyFactor != "" {
				moneyFactor = flags.moneyFactor
			}
			if flags.acquisitionFee != "" {
				fee = flags.acquisitionFee
			}
			req, err := leases.NewRequest(flags.vehicleAmount, flags.termMonths, moneyFactor, fee)
			if err != nil {
				return fmt.Errorf("invalid lease flags: %w", err)
			}
			if err := validation.ValidateLeaseRequest(req); err != nil {
				return err
			}
			for _, warning := range validation.LeaseWarnings(req) {
				rt.logger.Warn("input warning: "+warning, zap.String("op", "cmd.lease"))
			}

			result, err := leases.NewCalculator(rt.logger, rt.conf.MathContext()).BuildSchedule(req)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), rt.outputFormat, result)
		},
	}

	cmd.Flags().StringVar(&flags.vehicleAmount, "vehicle-amount", "", "vehicle price (capitalized cost before fees)")
	cmd.Flags().IntVar(&flags.termMonths, "term", 0, "term in months")
	cmd.Flags().StringVar(&flags.moneyFactor, "money-factor", "", "lease money factor (default from config, 0.00190)")
	cmd.Flags().StringVar(&flags.acquisitionFee, "acquisition-fee", "", "acquisition fee rolled into the lease (default from config, 695.00)")
	_ = cmd.MarkFlagRequired("vehicle-amount")
	_ = cmd.MarkFlagRequired("term")

	return cmd
}
