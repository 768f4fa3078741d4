package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/registry"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// relCmd groups the relationship subcommands. Relationships are inferred
// from foreign keys; only their kind can be changed directly.
func relCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rel",
		Aliases: []string{"relationship", "relationships"},
		Short:   "List relationships and change their kind",
	}
	cmd.AddCommand(relLsCmd(), relSetCmd())
	return cmd
}

func relLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List relationships",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				g := s.designer.Graph()
				if len(g.Relationships) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatNote("no relationships; mark a column with fk=Table.Column"))
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RelationshipList(g))
				return nil
			})
		},
	}
}

func relSetCmd() *cobra.Command {
	var typ, direction string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change a relationship's type or direction",
		Long: `Change a relationship's type or direction. Omitted flags keep the
current value. Types: one-to-one, one-to-many, many-to-one, many-to-many.`,
		Example: `  erd rel set rel_3 --type one-to-one
  erd rel set rel_3 --direction bidirectional`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				g := s.designer.Graph()
				r := g.Relationship(args[0])
				if r == nil {
					ids := make([]string, len(g.Relationships))
					for i, rel := range g.Relationships {
						ids[i] = rel.ID
					}
					err := alerr.New(alerr.ErrRelationshipNotFound, "relationship not found").With("relationship", args[0])
					if hint := alerr.DidYouMean(args[0], ids); hint != "" {
						err.WithHelp(hint)
					} else {
						err.WithHelp("run `erd rel ls` to list relationships")
					}
					return err
				}

				c, dir := r.Cardinality, r.Direction
				if cmd.Flags().Changed("type") {
					parsed, err := diagram.ParseCardinality(typ)
					if err != nil {
						return err
					}
					c = parsed
				}
				if cmd.Flags().Changed("direction") {
					parsed, err := diagram.ParseDirection(direction)
					if err != nil {
						return err
					}
					dir = parsed
				}
				if err := s.designer.SetRelationshipKind(r.ID, c, dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now %s, %s", g.Describe(*r), c, dir)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Relationship type")
	cmd.Flags().StringVar(&direction, "direction", "", "unidirectional or bidirectional")
	return cmd
}

// printInferred lists the relationships leaving tableID and warns about
// foreign keys that do not resolve to a column.
func printInferred(cmd *cobra.Command, s *session, tableID string) {
	out := cmd.OutOrStdout()
	g := s.designer.Graph()
	t := g.Table(tableID)
	if t == nil {
		return
	}
	for _, r := range g.Relationships {
		if r.FromTableID == tableID {
			fmt.Fprintf(out, "  %s %s\n", cli.Cardinality(r.Cardinality), g.Describe(r))
		}
	}
	for _, c := range t.ForeignKeys() {
		if err := unresolved(s.cfg.Resolver(), c.ForeignKeyReference, g.Tables); err != nil {
			msg := fmt.Sprintf("%s.%s: %s", t.Name, c.Name, err.GetMessage())
			fmt.Fprintln(out, cli.FormatWarning(msg, err.Helps()...))
		}
	}
}

// unresolved explains why ref does not resolve under r, or returns nil.
func unresolved(r erdpad.Resolver, ref string, tables []diagram.Table) *alerr.Error {
	if _, ok := r.Resolve(ref, tables); ok {
		return nil
	}
	if err := registry.Explain(ref, tables); err != nil {
		return err
	}
	// Resolves by name but the diagram uses id references.
	return alerr.New(alerr.ErrInvalidReference, "reference does not name a table and column id").
		With("ref", ref).
		WithHelp("write the reference as <tableId>.<columnId>")
}
