package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/cli"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/ui"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// initCmd writes erd.yaml, an empty diagram and script type definitions.
func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Write erd.yaml and create the diagram file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			name := DefaultDiagramFile
			if len(args) == 1 {
				name = args[0]
			}
			file := erdpad.DiagramFileName(name)

			if _, err := os.Stat(configFile); err == nil && !force {
				fmt.Fprintln(out, cli.Dim("Kept existing "+configFile))
			} else {
				content := fmt.Sprintf(defaultConfigYAML, file)
				if err := os.WriteFile(configFile, []byte(content), FilePerm); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
				fmt.Fprintf(out, "Created %s\n", cli.FilePath(configFile))
			}

			if _, err := os.Stat(file); os.IsNotExist(err) {
				if err := writeEmptyDiagram(file); err != nil {
					return err
				}
				fmt.Fprintf(out, "Created %s\n", cli.FilePath(file))
			}

			typesPath := filepath.Join("types", "erd.d.ts")
			if err := os.MkdirAll("types", DirPerm); err != nil {
				return fmt.Errorf("failed to create types directory: %w", err)
			}
			if err := os.WriteFile(typesPath, []byte(scriptTypeDefinitions()), FilePerm); err != nil {
				return fmt.Errorf("failed to write type definitions: %w", err)
			}
			fmt.Fprintf(out, "Created %s (for script autocomplete)\n", cli.FilePath(typesPath))

			fmt.Fprintln(out, cli.FormatSuccess("Project initialized"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing erd.yaml")
	return cmd
}

// newCmd creates an empty diagram file.
func newCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty diagram file",
		Example: `  erd new shop          # creates shop.uml.json
  erd new docs/shop     # creates docs/shop.uml.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := erdpad.DiagramFileName(args[0])

			if _, err := os.Stat(file); err == nil && !yes {
				msg := fmt.Sprintf("%s exists. Replace it with an empty diagram?", file)
				if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), msg, false) {
					fmt.Fprintln(cmd.OutOrStdout(), MsgCancelled)
					return nil
				}
			}

			if err := writeEmptyDiagram(file); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Created "+file))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing file without asking")
	return cmd
}

func writeEmptyDiagram(file string) error {
	var b strings.Builder
	d := erdpad.New("", nil)
	if err := d.SaveDiagram(&b); err != nil {
		return err
	}
	return writeDiagram(file, b.String())
}

// scriptTypeDefinitions describes the script globals for editors.
func scriptTypeDefinitions() string {
	types := make([]string, len(diagram.Vocabulary))
	for i, d := range diagram.Vocabulary {
		types[i] = fmt.Sprintf("%q", string(d))
	}

	return `// Generated by erd init. Declarations for diagram scripts.

type ColumnType =
  | ` + strings.Join(types, "\n  | ") + `;

interface ColumnOptions {
  pk?: boolean;
  fk?: string; // "Table.Column"
  autoIncrement?: boolean;
  guid?: boolean;
}

interface TableBuilder {
  readonly name: string;
  column(name: string, type?: ColumnType, options?: ColumnOptions): TableBuilder;
  at(x: number, y: number): TableBuilder;
}

declare function table(name: string, position?: { x?: number; y?: number }): TableBuilder;

declare const types: { readonly [key: string]: ColumnType } & { list(): ColumnType[] };

declare function log(...args: unknown[]): void;
`
}
