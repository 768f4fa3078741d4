// Package main provides the erd command line, a host for the diagram
// designer. Every command works on one diagram file.
//
// Usage:
//
//	erd init                          # Write erd.yaml and an empty diagram
//	erd new shop                      # Create shop.uml.json
//	erd table add Customers --at 400,100
//	erd column add Orders "CustomerId:int:fk=Customers.Id"
//	erd rel set <rel-id> --type one-to-many
//	erd show                          # Print tables and relationships
//	erd render -o shop.svg            # Draw the diagram as SVG
//	erd edit                          # Interactive terminal canvas
//	erd serve                         # HTTP host with live events
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	configFile  string
	diagramFile string
	logLevel    string
	idStrategy  string
)

// customHelp displays a styled help message for the root command.
func customHelp(cmd *cobra.Command) {
	categories := []CommandCategory{
		{
			Title: "Setup",
			Commands: []CommandInfo{
				{"init", "Write erd.yaml and create the diagram file"},
				{"new", "Create an empty diagram file"},
			},
		},
		{
			Title: "Editing",
			Commands: []CommandInfo{
				{"table", "Add, rename, move, remove and list tables"},
				{"column", "Add, change and remove columns"},
				{"rel", "List relationships and set their kind"},
				{"script", "Apply a JavaScript diagram script"},
				{"edit", "Open the interactive terminal canvas"},
			},
		},
		{
			Title: "Inspection",
			Commands: []CommandInfo{
				{"show", "Print tables and relationships"},
				{"check", "Validate the file and report unresolved references"},
				{"diff", "Compare the diagram with another file or the autosave"},
			},
		},
		{
			Title: "Output",
			Commands: []CommandInfo{
				{"render", "Draw the diagram as SVG"},
				{"export", "Write the document as JSON or YAML"},
			},
		},
		{
			Title: "Hosting",
			Commands: []CommandInfo{
				{"serve", "Serve the diagram over HTTP with live events"},
				{"recover", "Restore the diagram from its autosave"},
			},
		},
	}

	flags := []FlagInfo{
		{"-f, --file", "Diagram file (default: diagram.uml.json)"},
		{"-c, --config", "Path to config file (default: erd.yaml)"},
		{"    --log-level", "debug, info, warn or error"},
		{"    --id-strategy", "counter or uuid"},
		{"-h, --help", "Show help information"},
		{"-v, --version", "Show version information"},
	}

	renderCategoryHelp(cmd.OutOrStdout(), MainTitle, MainSummary, categories, flags)
}

// newRootCmd builds the command tree. Flags are bound to package globals and
// reset to their defaults on every call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "erd",
		Short:         "Entity-relationship diagram designer",
		Long:          `erd edits entity-relationship diagrams stored as .uml.json documents. Relationships are inferred from foreign-key columns.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			cmd.Println(cmd.UsageString())
			return
		}
		customHelp(cmd)
	})

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", DefaultConfigFile, "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&diagramFile, "file", "f", "", "Diagram file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&idStrategy, "id-strategy", "", "Id strategy: counter, uuid")

	rootCmd.AddCommand(
		initCmd(),
		newCmd(),
		tableCmd(),
		columnCmd(),
		relCmd(),
		showCmd(),
		renderCmd(),
		checkCmd(),
		diffCmd(),
		exportCmd(),
		scriptCmd(),
		editCmd(),
		serveCmd(),
		recoverCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
