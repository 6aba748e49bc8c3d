package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

func newCollectionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"collections"},
		Short:   "Manage collections",
	}
	cmd.AddCommand(
		newCollectionCreateCmd(a),
		newCollectionListCmd(a),
		newCollectionGetCmd(a),
		newCollectionUpdateCmd(a),
	)
	return cmd
}

func bindCollectionFlags(cmd *cobra.Command, c *types.Collection) {
	cmd.Flags().StringVar(&c.Handle, "handle", "", "collection handle")
	cmd.Flags().StringVar(&c.Name, "name", "", "display name")
	cmd.Flags().StringVar(&c.Description, "description", "", "description")
}

func newCollectionCreateCmd(a *app) *cobra.Command {
	var in types.Collection
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a collection",
		Example: `  vellum collection create --handle blog --name Blog`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				c, err := s.registry.CreateCollection(ctx, s.tenant, in)
				if err != nil {
					return err
				}
				return a.print(cmd, c)
			})
		},
	}
	bindCollectionFlags(cmd, &in)
	return cmd
}

func newCollectionListCmd(a *app) *cobra.Command {
	var page pageFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				p, err := s.registry.ListCollections(ctx, s.tenant, page.request())
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

func newCollectionGetCmd(a *app) *cobra.Command {
	var byHandle bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a collection by id, or by handle with --by-handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					c   *types.Collection
					err error
				)
				if byHandle {
					c, err = s.registry.GetCollectionByHandle(ctx, s.tenant, args[0])
				} else {
					c, err = s.registry.GetCollectionByID(ctx, s.tenant, args[0])
				}
				if err != nil {
					return err
				}
				return a.print(cmd, c)
			})
		},
	}
	cmd.Flags().BoolVar(&byHandle, "by-handle", false, "treat the argument as a handle")
	return cmd
}

func newCollectionUpdateCmd(a *app) *cobra.Command {
	var in types.Collection
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a collection",
		Long:  "Update replaces the collection record. Fields whose flags are not given keep their current values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				cur, err := s.registry.GetCollectionByID(ctx, s.tenant, args[0])
				if err != nil {
					return err
				}
				next := *cur
				flags := cmd.Flags()
				if flags.Changed("handle") {
					next.Handle = in.Handle
				}
				if flags.Changed("name") {
					next.Name = in.Name
				}
				if flags.Changed("description") {
					next.Description = in.Description
				}
				c, err := s.registry.UpdateCollection(ctx, s.tenant, args[0], next)
				if err != nil {
					return err
				}
				return a.print(cmd, c)
			})
		},
	}
	bindCollectionFlags(cmd, &in)
	return cmd
}
