package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Export every tenant's records to JSONL files",
		Long: `Export writes collections.jsonl, schemas.jsonl and objects.jsonl to dir.
Each file is replaced atomically, so dir can be kept under version control.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transfer(cmd, func(b *store.Backend) (store.TransferStats, error) {
				return b.Export(cmd.Context(), args[0])
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import records from JSONL files written by export",
		Long: `Import loads the files in one transaction. Malformed lines are skipped;
a handle that collides with an existing record aborts the whole import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transfer(cmd, func(b *store.Backend) (store.TransferStats, error) {
				return b.Import(cmd.Context(), args[0])
			})
		},
	}
}

func (a *app) transfer(cmd *cobra.Command, fn func(b *store.Backend) (store.TransferStats, error)) error {
	b, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	stats, err := fn(b)
	if err != nil {
		return err
	}
	return a.print(cmd, stats)
}
