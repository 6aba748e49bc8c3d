package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/objects"
	"github.com/mesh-intelligence/vellum/internal/registry"
	"github.com/mesh-intelligence/vellum/internal/store"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

// openStore opens the configured backend, applying pending migrations.
// The caller must Close it.
func (a *app) openStore(ctx context.Context) (*store.Backend, error) {
	cfg, err := a.cfg.storeConfig(a.dataDir)
	if err != nil {
		return nil, err
	}
	b, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}
	return b, nil
}

// session is an open store with the services and tenant of one data
// command.
type session struct {
	backend  *store.Backend
	registry *registry.Registry
	objects  *objects.Service
	tenant   types.TenantContext
}

// withSession opens a session, runs fn and closes the store.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	tc, err := a.cfg.tenant()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	log := zap.NewNop()
	return fn(ctx, &session{
		backend:  b,
		registry: registry.New(b, log),
		objects:  objects.New(b, log),
		tenant:   tc,
	})
}

// print writes v to the command's output in the selected format. YAML is
// produced from the JSON encoding so both formats show the same shape.
func (a *app) print(cmd *cobra.Command, v any) error {
	return writeOutput(cmd.OutOrStdout(), a.output, v)
}

func writeOutput(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	if format != outputYAML {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	out, err := jsonToYAML(data)
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = w.Write(out)
	return err
}

// readDocument reads a JSON or YAML document from path, or from stdin
// when path is "-", and returns it as JSON.
func readDocument(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return yamlToJSON(data)
}

// pageFlags binds --limit and --cursor on a list command.
type pageFlags struct {
	limit  int
	cursor string
}

func (p *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", 0, "page size (default: pagination.page_size)")
	cmd.Flags().StringVar(&p.cursor, "cursor", "", "next_cursor of the previous page")
}

func (p *pageFlags) request() types.PageRequest {
	return types.PageRequest{Limit: p.limit, Cursor: p.cursor}
}

// pageOutput is the printed form of a list page.
type pageOutput[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func printable[T any](p types.Page[T]) pageOutput[T] {
	return pageOutput[T]{Items: p.Items, NextCursor: p.NextCursor}
}
