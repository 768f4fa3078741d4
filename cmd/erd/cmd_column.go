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

// columnCmd groups the column subcommands. Each one edits the table through
// a draft and saves it, so relationships are re-inferred.
func columnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "Add, change and remove columns",
	}
	cmd.AddCommand(columnAddCmd(), columnSetCmd(), columnRmCmd())
	return cmd
}

// editTable opens a draft on the table named by ref, runs fn and saves.
func editTable(s *session, ref string, fn func(t erdpad.Table, draft *erdpad.Draft) error) (erdpad.Table, error) {
	t, err := findTable(s.designer, ref)
	if err != nil {
		return t, err
	}
	draft, err := s.designer.EditTable(t.ID)
	if err != nil {
		return t, err
	}
	if err := fn(t, draft); err != nil {
		s.designer.CancelDraft()
		return t, err
	}
	if err := s.designer.SaveDraft(); err != nil {
		return t, err
	}
	saved, _ := s.designer.Table(t.ID)
	return saved, nil
}

func columnAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <table> <Name[:type[:flags]]>...",
		Short: "Add columns to a table",
		Example: `  erd column add Orders Total:decimal(18,2)
  erd column add Orders CustomerId:int:fk=Customers.Id`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]columnSpec, 0, len(args)-1)
			for _, a := range args[1:] {
				spec, err := parseColumnSpec(a)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			return withSession(cmd, true, func(s *session) error {
				t, err := editTable(s, args[0], func(_ erdpad.Table, draft *erdpad.Draft) error {
					for _, spec := range specs {
						col := draft.AddColumn()
						if err := draft.UpdateColumn(col.ID, spec.apply); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d column(s) to %s", len(specs), t.Name)))
				printInferred(cmd, s, t.ID)
				return nil
			})
		},
	}
}

func columnSetCmd() *cobra.Command {
	var (
		name, typ, ref     string
		pk, fk, auto, guid bool
	)

	cmd := &cobra.Command{
		Use:   "set <table> <column>",
		Short: "Change a column",
		Long: `Change a column. Only the flags given are applied.
Setting --fk-ref marks the column as a foreign key; --fk=false clears it.`,
		Example: `  erd column set Orders CustomerId --fk-ref Clients.Id
  erd column set Orders Id --type bigint --auto`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var dataType diagram.DataType
			if flags.Changed("type") {
				d, err := diagram.ParseDataType(typ)
				if err != nil {
					return err
				}
				dataType = d
			}
			if flags.Changed("fk-ref") && ref != "" {
				if err := registry.ValidateReference(ref); err != nil {
					return err
				}
			}

			return withSession(cmd, true, func(s *session) error {
				t, err := editTable(s, args[0], func(t erdpad.Table, draft *erdpad.Draft) error {
					col, err := findColumn(t, args[1])
					if err != nil {
						return err
					}
					return draft.UpdateColumn(col.ID, func(c *diagram.Column) {
						if flags.Changed("name") {
							c.Name = name
						}
						if flags.Changed("type") {
							c.DataType = dataType
						}
						if flags.Changed("pk") {
							c.IsPrimaryKey = pk
						}
						if flags.Changed("fk-ref") {
							c.ForeignKeyReference = ref
							c.IsForeignKey = ref != ""
						}
						if flags.Changed("fk") {
							c.IsForeignKey = fk
							if !fk {
								c.ForeignKeyReference = ""
							}
						}
						if flags.Changed("auto") {
							c.IsAutoIncrement = auto
						}
						if flags.Changed("guid") {
							c.IsGuidGenerated = guid
						}
					})
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s.%s", t.Name, args[1])))
				printInferred(cmd, s, t.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New column name")
	cmd.Flags().StringVar(&typ, "type", "", "Column type, e.g. int or varchar(255)")
	cmd.Flags().BoolVar(&pk, "pk", false, "Primary key")
	cmd.Flags().BoolVar(&fk, "fk", false, "Foreign key")
	cmd.Flags().StringVar(&ref, "fk-ref", "", "Foreign-key reference as Table.Column")
	cmd.Flags().BoolVar(&auto, "auto", false, "Auto increment")
	cmd.Flags().BoolVar(&guid, "guid", false, "GUID generated")
	return cmd
}

func columnRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <table> <column>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a column",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				t, err := editTable(s, args[0], func(t erdpad.Table, draft *erdpad.Draft) error {
					col, err := findColumn(t, args[1])
					if err != nil {
						return err
					}
					if !draft.DeleteColumn(col.ID) {
						return alerr.New(alerr.ErrDocumentInvalid, "a table must keep at least one column").
							WithTable(t.Name).
							WithColumn(col.Name)
					}
					return nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %s.%s", t.Name, args[1])))
				return nil
			})
		},
	}
}
