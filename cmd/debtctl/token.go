package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apphttp "debttrack/internal/http"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	var userID int64
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with $JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if userID <= 0 {
				return errors.New("--user must be a positive id")
			}
			token, err := apphttp.NewTokenManager(opts.cfg.JWTSecret, opts.cfg.JWTIssuer).Issue(userID, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
