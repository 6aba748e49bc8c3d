// Package cli implements the vellum command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/internal/paths"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Output formats for the --output flag.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// app holds the global flag values and the configuration loaded by the
// root command's PersistentPreRunE.
type app struct {
	configDir string
	dataDir   string
	output    string

	cfg *config
}

// NewRootCmd creates the top-level "vellum" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "vellum",
		Short: "A schema-driven object store",
		Long: `Vellum stores JSON documents shaped by schemas that are defined at runtime.
Collections group schemas; objects are addressed by collection and schema handle.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != outputJSON && a.output != outputYAML {
				return fmt.Errorf("--output must be %s or %s", outputJSON, outputYAML)
			}
			if cmd.CommandPath() == "vellum version" {
				return nil
			}
			dir, err := paths.ResolveConfigDir(a.configDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve config dir: %w", err))
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return sysError(err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "output format: json or yaml")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
		newTokenCmd(a),
		newCollectionCmd(a),
		newSchemaCmd(a),
		newObjectCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "vellum:", err)
	return ExitCode(err)
}

// exitError marks an error with the process exit code it must produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a system failure (exit code 2).
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// ExitCode maps err to a process exit code. Store faults and errors marked
// with sysError are system errors; everything else, including cobra's
// usage errors, is a user error.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, types.ErrStoreFault) {
		return exitSysError
	}
	return exitUserError
}
