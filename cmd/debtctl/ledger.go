package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"debttrack/internal/services"
	"debttrack/internal/storage"
)

// withAnalytics opens the ledger, runs fn, and closes the ledger.
func withAnalytics(opts *rootOptions, fn func(*services.AnalyticsService) error) error {
	repo, err := storage.NewSQLiteRepository(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			slog.Error("failed to close ledger", "error", err)
		}
	}()
	svc := services.NewAnalyticsService(repo, services.AnalyticsConfig{
		LookbackMonths: opts.cfg.LookbackMonths,
		HistoryMonths:  opts.cfg.InterestHistoryMonths,
	})
	return fn(svc)
}

func scenariosCmd(opts *rootOptions) *cobra.Command {
	var userID, accountID int64
	var lookback int
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Compare payoff scenarios for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAnalytics(opts, func(svc *services.AnalyticsService) error {
				scenarios, err := svc.Scenarios(cmd.Context(), userID, accountID, lookback)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), scenarios)
				}
				return printScenarios(cmd.OutOrStdout(), scenarios)
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "owner user id")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	cmd.Flags().IntVar(&lookback, "lookback", 0, "months of payments used for the trend (default: $DEFAULT_LOOKBACK_MONTHS)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func analyticsCmd(opts *rootOptions) *cobra.Command {
	var userID, accountID int64
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print account analytics, or portfolio analytics without --account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAnalytics(opts, func(svc *services.AnalyticsService) error {
				out := cmd.OutOrStdout()
				if accountID == 0 {
					overall, err := svc.Portfolio(cmd.Context(), userID)
					if err != nil {
						return err
					}
					if opts.asJSON {
						return printJSON(out, overall)
					}
					fmt.Fprintf(out, "accounts:      %d (%d active)\n", overall.AccountCount, overall.ActiveAccounts)
					fmt.Fprintf(out, "total balance: %s\n", money(overall.TotalBalance))
					fmt.Fprintf(out, "debt-free:     %s\n", describeOutlook(overall.ProjectedDebtFreeDate))
					return nil
				}

				a, err := svc.AccountAnalytics(cmd.Context(), userID, accountID)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(out, a)
				}
				fmt.Fprintf(out, "account:        %s\n", a.Name)
				fmt.Fprintf(out, "balance:        %s (started at %s)\n", money(a.CurrentBalance), money(a.InitialBalance))
				fmt.Fprintf(out, "progress:       %.2f%%\n", a.ProgressPercentage)
				fmt.Fprintf(out, "interest paid:  %s\n", money(a.TotalInterest))
				fmt.Fprintf(out, "payoff:         %s\n", describeOutlook(a.ProjectedPayoff))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "owner user id")
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (omit for the whole portfolio)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
