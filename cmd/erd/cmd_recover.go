package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drift"
	"github.com/hlop3z/erdpad/internal/ui"
)

// recoverCmd restores the diagram file from its autosave. It works on files
// that no longer parse, so it reads the cache directly instead of opening a
// session.
func recoverCmd() *cobra.Command {
	var list, clearAll, yes bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Restore the diagram from its autosave",
		Example: `  erd recover            # show what would change, then restore
  erd recover --list     # list every autosave
  erd recover --clear    # delete all autosaves`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			c, err := cache.Open(cfg.CacheDir)
			if err != nil {
				return err
			}
			defer c.Close()

			if list {
				return listAutosaves(cmd, c)
			}

			if clearAll {
				if !yes && !confirm(cmd, "Delete all autosaves?") {
					fmt.Fprintln(out, MsgCancelled)
					return nil
				}
				if err := c.Clear(); err != nil {
					return err
				}
				if err := c.Vacuum(); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess("Autosaves cleared"))
				return nil
			}

			file := cfg.DiagramPath()
			entry, err := c.Load(cache.Key(file))
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintln(out, cli.FormatNote("no autosave for "+file))
				return nil
			}

			current := diagram.Empty()
			if data, err := os.ReadFile(file); err == nil {
				if g, err := codec.Import(data); err == nil {
					current = g
				} else {
					fmt.Fprintln(out, cli.FormatWarning(file+" is not a valid diagram and will be replaced"))
				}
			}

			result, err := drift.Diff(current, entry.Graph)
			if err != nil {
				return err
			}
			if !result.Changed {
				fmt.Fprintln(out, MsgNoChanges)
				return nil
			}
			fmt.Fprintf(out, "Autosave from %s\n\n", entry.SavedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprint(out, drift.FormatResult(result))

			if !yes && !confirm(cmd, "Restore "+file+" from the autosave?") {
				fmt.Fprintln(out, MsgCancelled)
				return nil
			}

			doc, err := codec.Serialize(entry.Graph)
			if err != nil {
				return err
			}
			if err := writeDiagram(file, string(doc)); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Restored "+cli.FilePath(file)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List autosaves")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all autosaves")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func listAutosaves(cmd *cobra.Command, c *cache.Cache) error {
	out := cmd.OutOrStdout()
	entries, err := c.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, cli.FormatNote("no autosaves"))
		return nil
	}

	t := cli.NewStyledTable("FILE", "TABLES", "RELATIONSHIPS", "SAVED", "HASH")
	for _, e := range entries {
		t.AddRow(
			cli.FilePath(e.File),
			fmt.Sprint(e.Tables),
			fmt.Sprint(e.Relationships),
			e.SavedAt.Local().Format("2006-01-02 15:04:05"),
			cli.Dim(shortHash(e.Root)),
		)
	}
	fmt.Fprint(out, t.String())

	if stats, err := c.GetStats(); err == nil {
		fmt.Fprintln(out, cli.Dim(fmt.Sprintf("%d autosave(s), %d bytes in %s", stats.Autosaves, stats.DatabaseSize, c.Path())))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func confirm(cmd *cobra.Command, msg string) bool {
	return ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), msg, false)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "erd %s\n", version)
		},
	}
}
