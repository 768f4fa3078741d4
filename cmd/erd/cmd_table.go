package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/ui"
)

// tableCmd groups the table subcommands.
func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "table",
		Aliases: []string{"tables"},
		Short:   "Add, rename, move, remove and list tables",
	}
	cmd.AddCommand(
		tableAddCmd(),
		tableRenameCmd(),
		tableRmCmd(),
		tableMoveCmd(),
		tableLsCmd(),
	)
	return cmd
}

func tableAddCmd() *cobra.Command {
	var (
		at      pointValue
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a table",
		Long: `Add a table. Without --column the table gets an int primary key "Id".
Columns are written as Name:type[:pk][:fk=Table.Column][:auto][:guid].
Relationships are inferred from fk columns when the table is saved.`,
		Example: `  erd table add Customers --at 400,100 --column Id:int:pk:auto --column Name
  erd table add Orders --column Id:int:pk --column CustomerId:int:fk=Customers.Id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]columnSpec, len(columns))
			for i, c := range columns {
				spec, err := parseColumnSpec(c)
				if err != nil {
					return err
				}
				specs[i] = spec
			}

			return withSession(cmd, false, func(s *session) error {
				d := s.designer
				draft := d.AddTable()
				id := draft.ID()
				draft.SetName(args[0])

				if len(specs) > 0 {
					seed := draft.Table().Columns[0].ID
					for _, spec := range specs {
						col := draft.AddColumn()
						if err := draft.UpdateColumn(col.ID, spec.apply); err != nil {
							return err
						}
					}
					draft.DeleteColumn(seed)
				}
				if err := d.SaveDraft(); err != nil {
					return err
				}
				if at.set {
					d.MoveTable(id, at.p.X, at.p.Y)
				}

				t, _ := d.Table(id)
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added table %s (%s)", t.Name, t.ID)))
				printInferred(cmd, s, id)
				return nil
			})
		},
	}

	cmd.Flags().Var(&at, "at", "Canvas position as x,y")
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Column as Name:type[:pk][:fk=Table.Column][:auto][:guid] (repeatable)")
	return cmd
}

func tableRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <table> <new-name>",
		Short: "Rename a table",
		Long:  `Rename a table. References written as "OldName.Column" in other tables are not rewritten.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				t, err := findTable(s.designer, args[0])
				if err != nil {
					return err
				}
				draft, err := s.designer.EditTable(t.ID)
				if err != nil {
					return err
				}
				draft.SetName(args[1])
				if err := s.designer.SaveDraft(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %s to %s", t.Name, args[1])))
				return nil
			})
		},
	}
}

func tableRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <table>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a table and its relationships",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				t, err := findTable(s.designer, args[0])
				if err != nil {
					return err
				}

				if !yes {
					touching := 0
					for _, r := range s.designer.Relationships() {
						if r.Touches(t.ID) {
							touching++
						}
					}
					msg := fmt.Sprintf("Remove table %s and %d relationship(s)?", t.Name, touching)
					if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), msg, false) {
						fmt.Fprintln(cmd.OutOrStdout(), MsgCancelled)
						return nil
					}
				}

				s.designer.DeleteTable(t.ID)
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed table "+t.Name))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without asking")
	return cmd
}

func tableMoveCmd() *cobra.Command {
	var at pointValue

	cmd := &cobra.Command{
		Use:     "move <table> --at x,y",
		Short:   "Move a table on the canvas",
		Example: `  erd table move Orders --at 100,300`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !at.set {
				return alerr.New(alerr.ErrDocumentInvalid, "missing position").WithHelp("pass --at x,y")
			}
			return withSession(cmd, true, func(s *session) error {
				t, err := findTable(s.designer, args[0])
				if err != nil {
					return err
				}
				s.designer.MoveTable(t.ID, at.p.X, at.p.Y)
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Moved %s to %s", t.Name, at.String())))
				return nil
			})
		},
	}

	cmd.Flags().Var(&at, "at", "Canvas position as x,y")
	return cmd
}

func tableLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tables",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				g := s.designer.Graph()
				if len(g.Tables) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatNote("the diagram has no tables"))
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.TableList(g))
				return nil
			})
		},
	}
}
