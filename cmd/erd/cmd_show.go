package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/drift"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [table]",
		Short: "Show the diagram or one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				if len(args) == 0 {
					fmt.Fprint(cmd.OutOrStdout(), cli.DescribeGraph(s.designer.Graph()))
					return nil
				}
				t, err := findTable(s.designer, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.DescribeTable(t))
				printInferred(cmd, s, t.ID)
				return nil
			})
		},
	}
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, write func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), FilePerm); err != nil {
		return alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to write output").WithFile(path)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Wrote "+cli.FilePath(path)))
	return nil
}

func renderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "render",
		Short:   "Draw the diagram as SVG",
		Example: `  erd render -o diagram.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				return writeOutput(cmd, output, s.designer.WriteSVG)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the diagram document as JSON or YAML",
		Example: `  erd export --format yaml -o diagram.yaml
  erd export > copy.uml.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ExportFormats, format) {
				return alerr.Newf(alerr.ErrConfigInvalid, "unknown export format %q", format).
					WithHelp("use " + strings.Join(ExportFormats, " or "))
			}
			return withSession(cmd, true, func(s *session) error {
				return writeOutput(cmd, output, func(w io.Writer) error {
					if format == "json" {
						return s.designer.SaveDiagram(w)
					}
					data, err := codec.ExportYAML(s.designer.Graph())
					if err != nil {
						return err
					}
					_, err = w.Write(data)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: "+strings.Join(ExportFormats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func checkCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the diagram file",
		Long: `Validate the diagram file. A malformed document is an error. Foreign keys
that resolve to no column, relationships with missing ends, and column types
outside the vocabulary are reported as warnings; --strict makes them errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, true, func(s *session) error {
				out := cmd.OutOrStdout()
				g := s.designer.Graph()
				warnings := 0

				for i := range g.Tables {
					t := &g.Tables[i]
					for _, c := range t.Columns {
						if !c.DataType.Valid() {
							warnings++
							fmt.Fprintln(out, cli.FormatWarning(
								fmt.Sprintf("%s.%s: unknown column type %q", t.Name, c.Name, c.DataType)))
						}
					}
					for _, c := range t.ForeignKeys() {
						if err := unresolved(s.cfg.Resolver(), c.ForeignKeyReference, g.Tables); err != nil {
							warnings++
							fmt.Fprintln(out, cli.FormatWarning(
								fmt.Sprintf("%s.%s: %s", t.Name, c.Name, err.GetMessage()), err.Helps()...))
						}
					}
				}
				for _, r := range g.Relationships {
					if _, _, _, _, ok := g.Endpoints(r); !ok {
						warnings++
						fmt.Fprintln(out, cli.FormatWarning(
							fmt.Sprintf("relationship %s has a missing end: %s", r.ID, g.Describe(r))))
					}
				}

				if warnings == 0 {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s is valid (%d tables, %d relationships)",
						s.file, len(g.Tables), len(g.Relationships))))
					return nil
				}
				if strict {
					return alerr.Newf(alerr.ErrDocumentInvalid, "%d problem(s) found", warnings).WithFile(s.file)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}

func diffCmd() *cobra.Command {
	var autosave bool

	cmd := &cobra.Command{
		Use:   "diff [other]",
		Short: "Compare the diagram with another file or its autosave",
		Long: `Compare the diagram with another diagram file, shown as changes from the
other file to this one. With --autosave, show the changes the autosave holds
that the file does not.`,
		Example: `  erd diff backup.uml.json
  erd diff --autosave`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if autosave == (len(args) == 1) {
				return alerr.New(alerr.ErrConfigInvalid, "diff needs a file or --autosave, not both")
			}
			return withSession(cmd, true, func(s *session) error {
				current := s.designer.Graph()
				var result *drift.Result

				if autosave {
					if s.cache == nil {
						return alerr.New(alerr.ErrCacheInit, "autosave is disabled").
							WithHelp("set autosave: true in " + configFile)
					}
					entry, err := s.cache.Load(cache.Key(s.file))
					if err != nil {
						return err
					}
					if entry == nil {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatNote("no autosave for "+s.file))
						return nil
					}
					result, err = drift.Diff(current, entry.Graph)
					if err != nil {
						return err
					}
				} else {
					data, err := os.ReadFile(args[0])
					if err != nil {
						return alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read diagram").WithFile(args[0])
					}
					other, err := codec.Import(data)
					if err != nil {
						return withFile(err, args[0])
					}
					result, err = drift.Diff(other, current)
					if err != nil {
						return err
					}
				}
				fmt.Fprint(cmd.OutOrStdout(), drift.FormatResult(result))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&autosave, "autosave", false, "Compare with the autosave instead of a file")
	return cmd
}
