package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"factcheck/factcheck-backend/internal/auth"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token signed with security.jwt_secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Security.JWTSecret == "" {
			return errors.New("security.jwt_secret is not configured")
		}
		token, err := auth.IssueToken([]byte(cfg.Security.JWTSecret), tokenSubject, auth.RoleAdmin, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
