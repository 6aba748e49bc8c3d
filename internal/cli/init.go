package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize vellum storage",
		Long:  "Create the configuration and data directories, then apply the store migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.cfg.storeConfig(a.dataDir)
			if err != nil {
				return err
			}
			b, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Close(); err != nil {
				return sysError(fmt.Errorf("close store: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Vellum initialized successfully")
			fmt.Fprintln(out, "  config: ", a.cfg.dir)
			fmt.Fprintln(out, "  backend:", cfg.Backend)
			if cfg.Backend == types.BackendSQLite {
				fmt.Fprintln(out, "  data:   ", cfg.DataDir)
			}
			return nil
		},
	}
}
