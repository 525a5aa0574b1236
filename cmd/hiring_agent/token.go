package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/server"
)

func newTokenCmd(_ *rootOptions) *cobra.Command {
	var subject, scope string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the REST API",
		Long:  "Issue a bearer token signed with JWT_SECRET. The token expires after JWT_EXPIRATION_HOURS (default 24).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			token, err := server.NewJWTService(jwtCfg).GenerateToken(subject, scope)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Name of the calling service or user (required)")
	cmd.Flags().StringVar(&scope, "scope", "api", "Token scope")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
