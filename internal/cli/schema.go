package cli

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"schemas"},
		Short:   "Manage schemas",
		Long: `Schemas are authored as YAML or JSON documents:

  handle: post
  name: Post
  description: Blog post
  def:
    - key: title
      type: string
      name: Title
    - key: status
      type: single_select
      name: Status
      options: [draft, published]`,
	}
	cmd.AddCommand(
		newSchemaWriteCmd(a, "create", "Create a schema from a file"),
		newSchemaWriteCmd(a, "update <id>", "Replace a schema from a file"),
		newSchemaListCmd(a),
		newSchemaGetCmd(a),
		newSchemaDeleteCmd(a),
	)
	return cmd
}

// newSchemaWriteCmd builds create and update, which differ only in
// whether an id argument is taken.
func newSchemaWriteCmd(a *app, use, short string) *cobra.Command {
	var (
		file       string
		collection string
	)
	update := use != "create"
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readDocument(cmd, file)
			if err != nil {
				return err
			}
			in, err := decodeSchema(body)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				if collection != "" {
					c, err := s.registry.GetCollectionByHandle(ctx, s.tenant, collection)
					if err != nil {
						return err
					}
					in.CollectionID = c.CollectionID
				}
				var out *types.Schema
				if update {
					out, err = s.registry.UpdateByID(ctx, s.tenant, args[0], in)
				} else {
					out, err = s.registry.Create(ctx, s.tenant, in)
				}
				if err != nil {
					return err
				}
				return a.print(cmd, out)
			})
		},
	}
	if update {
		cmd.Args = cobra.ExactArgs(1)
	} else {
		cmd.Args = cobra.NoArgs
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `schema document, YAML or JSON ("-" for stdin)`)
	cmd.Flags().StringVar(&collection, "collection", "", "owning collection handle (overrides collection_id in the file)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// decodeSchema rejects documents with keys the Schema type does not know,
// so that a misspelled def attribute is not dropped silently.
func decodeSchema(body []byte) (types.Schema, error) {
	var s types.Schema
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return types.Schema{}, types.Invalid("", "schema document: %v", err)
	}
	return s, nil
}

func newSchemaListCmd(a *app) *cobra.Command {
	var page pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				p, err := s.registry.List(ctx, s.tenant, page.request())
				if err != nil {
					return err
				}
				return a.print(cmd, printable(p))
			})
		},
	}
	page.bind(cmd)
	return cmd
}

func newSchemaGetCmd(a *app) *cobra.Command {
	var byHandle bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a schema with its collection inlined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					sc  *types.SchemaWithCollection
					err error
				)
				if byHandle {
					sc, err = s.registry.GetByHandle(ctx, s.tenant, args[0])
				} else {
					sc, err = s.registry.GetByID(ctx, s.tenant, args[0])
				}
				if err != nil {
					return err
				}
				return a.print(cmd, sc)
			})
		},
	}
	cmd.Flags().BoolVar(&byHandle, "by-handle", false, "treat the argument as a handle")
	return cmd
}

func newSchemaDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a schema",
		Long:  "Delete removes the schema. Its objects stay in the store but can no longer be reached through its handle.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				sc, err := s.registry.DeleteByID(ctx, s.tenant, args[0])
				if err != nil {
					return err
				}
				return a.print(cmd, sc)
			})
		},
	}
}
