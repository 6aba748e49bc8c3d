package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		acct types.Account
		ttl  time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the HTTP API",
		Long: `Issue signs a token with auth.jwt_secret for the given account. The
api key and account id default to the configured tenant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if acct.APIKey == "" {
				acct.APIKey = a.cfg.v.GetString(cfgKeyTenantAPIKey)
			}
			if acct.AccountID == "" {
				acct.AccountID = a.cfg.v.GetString(cfgKeyTenantAccountID)
			}
			if acct.APIKey == "" {
				return ErrTenantRequired
			}
			if acct.Tier < types.TierNone || acct.Tier > types.TierPro {
				return types.Invalid("tier", "must be between %d and %d", types.TierNone, types.TierPro)
			}
			authority, err := a.cfg.authority()
			if err != nil {
				return fmt.Errorf("auth: %w", err)
			}
			token, err := authority.Issue(acct, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&acct.APIKey, "api-key", "", "tenant api key (default: tenant.api_key)")
	issue.Flags().StringVar(&acct.AccountID, "account-id", "", "account id (default: tenant.account_id)")
	issue.Flags().IntVar(&acct.Tier, "tier", types.TierBasic, "account tier: 0 none, 1 basic, 2 pro")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}
	cmd.AddCommand(issue)
	return cmd
}
