package cmd

import (
	"errors"
	"fmt"

	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/credit"
	"github.com/iwvelando/vehicle-finance/pkg/leases"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/spf13/cobra"
)

func newAPRCommand() *cobra.Command {
	var (
		creditScore int
		moneyFactor string
	)

	cmd := &cobra.Command{
		Use:   "apr",
		Short: "Estimate an APR from a credit score or a lease money factor",
		Example: `  vehicle-finance apr --credit-score 720
  vehicle-finance apr --money-factor 0.0019`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scoreSet := cmd.Flags().Changed("credit-score")
			mfSet := cmd.Flags().Changed("money-factor")
			if scoreSet == mfSet {
				return errors.New("exactly one of --credit-score or --money-factor is required")
			}

			if scoreSet {
				clamped := credit.ClampScore(creditScore)
				apr := credit.APREstimateFromScore(creditScore)
				if clamped != creditScore {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "credit score %d clamped to %d-%d\n",
						creditScore, constants.MinCreditScore, constants.MaxCreditScore)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "estimated APR for credit score %d: %s%%\n", clamped, apr.String())
				return nil
			}

			mf, err := mathutil.ToDecimal(moneyFactor)
			if err != nil {
				return fmt.Errorf("--money-factor: %w", err)
			}
			if mf.IsNegative() {
				return fmt.Errorf("--money-factor must be >= 0, got %s", mf)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "estimated APR for money factor %s: %s%%\n",
				mf.String(), leases.EstimateAPR(mf).StringFixed(constants.CentPlaces))
			return nil
		},
	}

	cmd.Flags().IntVar(&creditScore, "credit-score", 0, "FICO credit score (300-850)")
	cmd.Flags().StringVar(&moneyFactor, "money-factor", "", "lease money factor to convert")

	return cmd
}
