package cli

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

func newObjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"objects"},
		Short:   "Manage objects",
		Long: `Objects are addressed by collection handle and schema handle. Payloads
carry a required _handle and one value per schema field. --file takes JSON
or YAML; --data takes inline JSON:

  vellum object create blog post --data '{"_handle":"first-post","title":"Hello"}'`,
	}
	cmd.AddCommand(
		newObjectCreateCmd(a),
		newObjectListCmd(a),
		newObjectGetCmd(a),
		newObjectUpdateCmd(a),
		newObjectDeleteCmd(a),
		newObjectFormCmd(a),
	)
	return cmd
}

func metaArgs(args []string) types.ObjectMeta {
	return types.ObjectMeta{CollectionHandle: args[0], SchemaHandle: args[1]}
}

// payloadFlags binds the two ways of passing an object payload.
type payloadFlags struct {
	file string
	data string
}

func (p *payloadFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.file, "file", "f", "", `payload document, YAML or JSON ("-" for stdin)`)
	cmd.Flags().StringVar(&p.data, "data", "", "inline JSON payload")
	cmd.MarkFlagsMutuallyExclusive("file", "data")
}

func (p *payloadFlags) input(cmd *cobra.Command) (types.ObjectInput, error) {
	var (
		body []byte
		err  error
	)
	switch {
	case p.file != "":
		body, err = readDocument(cmd, p.file)
	case p.data != "":
		body = []byte(p.data)
		if !json.Valid(body) {
			return types.ObjectInput{}, types.Invalid("", "--data must be a JSON document")
		}
	default:
		return types.ObjectInput{}, errors.New("one of --file or --data is required")
	}
	if err != nil {
		return types.ObjectInput{}, err
	}
	return types.ParseObjectInput(body)
}

func newObjectCreateCmd(a *app) *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:   "create <collection> <schema>",
		Short: "Create an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := payload.input(cmd)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				o, err := s.objects.Create(ctx, s.tenant, metaArgs(args), in)
				if err != nil {
					return err
				}
				return a.print(cmd, o)
			})
		},
	}
	payload.bind(cmd)
	return cmd
}

func newObjectListCmd(a *app) *cobra.Command {
	var page pageFlags
	cmd := &cobra.Command{
		Use:   "list <collection> <schema>",
		Short: "List the objects of a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				p, err := s.objects.GetList(ctx, s.tenant, metaArgs(args), page.request())
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

func newObjectGetCmd(a *app) *cobra.Command {
	var byHandle bool
	cmd := &cobra.Command{
		Use:   "get <collection> <schema> <id>",
		Short: "Get an object with its schema and collection inlined",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					env *types.ObjectEnvelope
					err error
				)
				if byHandle {
					env, err = s.objects.GetByHandle(ctx, s.tenant, metaArgs(args), args[2])
				} else {
					env, err = s.objects.GetByID(ctx, s.tenant, metaArgs(args), args[2])
				}
				if err != nil {
					return err
				}
				return a.print(cmd, env)
			})
		},
	}
	cmd.Flags().BoolVar(&byHandle, "by-handle", false, "treat the last argument as an object handle")
	return cmd
}

func newObjectUpdateCmd(a *app) *cobra.Command {
	var payload payloadFlags
	cmd := &cobra.Command{
		Use:   "update <collection> <schema> <id>",
		Short: "Replace an object's payload",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := payload.input(cmd)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				env, err := s.objects.UpdateByID(ctx, s.tenant, metaArgs(args), args[2], in)
				if err != nil {
					return err
				}
				return a.print(cmd, env)
			})
		},
	}
	payload.bind(cmd)
	return cmd
}

func newObjectDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <schema> <id>",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				env, err := s.objects.DeleteByID(ctx, s.tenant, metaArgs(args), args[2])
				if err != nil {
					return err
				}
				return a.print(cmd, env)
			})
		},
	}
}

func newObjectFormCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "form <collection> <schema>",
		Short: "Print the edit form of a schema, prefilled from an object with --id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				form, err := s.objects.Form(ctx, s.tenant, metaArgs(args), id)
				if err != nil {
					return err
				}
				return a.print(cmd, form)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "object id whose values prefill the form")
	return cmd
}
