package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage store schema migrations",
		Long: `Apply or roll back the embedded schema migrations against the configured
backend. Other commands apply pending migrations automatically.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(func(m *store.Migrator) error {
					if err := m.Up(); err != nil {
						return sysError(err)
					}
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("steps %q is not a number", args[0])
					}
					steps = n
				}
				return a.withMigrator(func(m *store.Migrator) error {
					if err := m.Down(steps); err != nil {
						return err
					}
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(func(m *store.Migrator) error {
					return a.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a migration version without running it",
			Long:  "Force clears the dirty flag left by a failed migration. It does not change the schema.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("version %q is not a number", args[0])
				}
				return a.withMigrator(func(m *store.Migrator) error {
					if err := m.Force(v); err != nil {
						return sysError(fmt.Errorf("force version: %w", err))
					}
					return a.printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

func (a *app) withMigrator(fn func(m *store.Migrator) error) error {
	cfg, err := a.cfg.storeConfig(a.dataDir)
	if err != nil {
		return err
	}
	m, err := store.NewMigrator(cfg)
	if err != nil {
		return sysError(err)
	}
	defer m.Close()
	return fn(m)
}

func (a *app) printVersion(cmd *cobra.Command, m *store.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return sysError(fmt.Errorf("read version: %w", err))
	}
	return a.print(cmd, struct {
		Version uint `json:"version"`
		Dirty   bool `json:"dirty"`
	}{v, dirty})
}
