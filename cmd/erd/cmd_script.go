package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cli"
)

// scriptCmd applies a JavaScript diagram script to the diagram.
func scriptCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "script <file.js>",
		Short: "Apply a JavaScript diagram script",
		Long: `Apply a JavaScript diagram script. Each table(name) call adds a new table.
Foreign keys may point at tables declared later in the script. See
types/erd.d.ts (written by erd init) for the full API.`,
		Example: `  // shop.js
  table("Customers", { x: 400, y: 100 })
    .column("Id", types.int, { pk: true, autoIncrement: true })
    .column("Name", types.varchar50)

  table("Orders")
    .column("Id", types.int, { pk: true })
    .column("CustomerId", types.int, { fk: "Customers.Id" })

  $ erd script shop.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return alerr.Wrap(alerr.ErrDocumentRead, err, "failed to open script").WithFile(args[0])
			}
			defer f.Close()

			return withSession(cmd, false, func(s *session) error {
				s.dryRun = dryRun
				ids, err := s.designer.RunScriptReader(args[0], f)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, id := range ids {
					if t, ok := s.designer.Table(id); ok {
						fmt.Fprintf(out, "  %s %s\n", cli.Dim(id), t.Name)
						printInferred(cmd, s, id)
					}
				}
				msg := fmt.Sprintf("Applied %d table(s) from %s", len(ids), args[0])
				if dryRun {
					fmt.Fprintln(out, cli.FormatNote(msg+" (dry run, nothing written)"))
					return nil
				}
				fmt.Fprintln(out, cli.FormatSuccess(msg))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the script without writing the diagram")
	return cmd
}
