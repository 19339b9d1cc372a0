package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"debttrack/internal/projection"
)

func simulateCmd(opts *rootOptions) *cobra.Command {
	var balance, rate, payment float64
	var schedule bool
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate paying a balance with a fixed monthly payment",
		Example: `  debtctl simulate --balance 5000 --rate 18.99 --payment 250
  debtctl simulate --balance 1000 --rate 12 --payment 100 --schedule`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := projection.Simulate(balance, rate, payment)
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printProjection(cmd.OutOrStdout(), p, schedule)
		},
	}
	cmd.Flags().Float64Var(&balance, "balance", 0, "current balance")
	cmd.Flags().Float64Var(&rate, "rate", 0, "annual interest rate in percent")
	cmd.Flags().Float64Var(&payment, "payment", 0, "monthly payment")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "print the month-by-month schedule")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("payment")
	return cmd
}

func requiredPaymentCmd(opts *rootOptions) *cobra.Command {
	var balance, rate float64
	var months int
	cmd := &cobra.Command{
		Use:     "required-payment",
		Short:   "Compute the monthly payment that clears a balance in a number of months",
		Example: `  debtctl required-payment --balance 5000 --rate 18.99 --months 24`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := projection.SolveRequiredPayment(balance, rate, months)
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, r)
			}
			if r.Error != "" {
				return errors.New(r.Error)
			}
			p := projection.Simulate(balance, rate, r.MonthlyPayment)
			fmt.Fprintf(out, "monthly payment: %s over %d months\n", money(r.MonthlyPayment), r.TargetMonths)
			return printProjection(out, p, false)
		},
	}
	cmd.Flags().Float64Var(&balance, "balance", 0, "current balance")
	cmd.Flags().Float64Var(&rate, "rate", 0, "annual interest rate in percent")
	cmd.Flags().IntVar(&months, "months", 0, "target number of months")
	_ = cmd.MarkFlagRequired("balance")
	_ = cmd.MarkFlagRequired("months")
	return cmd
}
