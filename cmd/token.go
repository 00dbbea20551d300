// cmd/token.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucook/accessflow/middleware"
)

const (
	emailFlagName = "email"
	ttlFlagName   = "ttl"
)

// TokenCMD mints a bearer token for local testing and scripted callers.
func TokenCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue a signed bearer token for a user email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			email, err := cmd.Flags().GetString(emailFlagName)
			if err != nil {
				return err
			}
			if email == "" {
				return fmt.Errorf("--%s is required", emailFlagName)
			}
			ttl, err := cmd.Flags().GetDuration(ttlFlagName)
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String(emailFlagName, "", "email claim of the token")
	cmd.Flags().Duration(ttlFlagName, 12*time.Hour, "token lifetime")
	return cmd
}
