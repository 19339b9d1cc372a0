package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"debttrack/internal/cli"
	"debttrack/internal/config"
	"debttrack/internal/log"
)

// options shared by every subcommand
type rootOptions struct {
	dbPath   string
	logLevel string
	asJSON   bool
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "debtctl",
		Short: "Operator tool for the debttrack ledger",
		Long: `debtctl runs payoff simulations and analytics from the command line.

The simulate and required-payment commands are pure calculations; the
scenarios, analytics and migrate commands work on the SQLite ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			opts.cfg = config.Load()
			if !cmd.Flags().Changed("db") {
				opts.dbPath = opts.cfg.SQLiteDBPath
			}
			level := opts.logLevel
			if level == "" {
				level = opts.cfg.LogLevel
			}
			cli.SetupLogger(level, log.ComponentCLI)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error; default: $LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")

	root.AddCommand(
		simulateCmd(opts),
		requiredPaymentCmd(opts),
		scenariosCmd(opts),
		analyticsCmd(opts),
		migrateCmd(opts),
		tokenCmd(opts),
	)
	return root
}

func main() {
	ctx, stop := cli.SignalContext()
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

