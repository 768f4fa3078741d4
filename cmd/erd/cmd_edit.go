package main

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/cache"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/store"
	"github.com/hlop3z/erdpad/internal/ui"
)

// editCmd opens the terminal canvas. Changes are autosaved to the cache as
// they happen; the file is written only when the user saves.
func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive terminal canvas",
		Long: `Open the interactive terminal canvas. Drag tables with the mouse, press a
to add a table, e or Enter to edit the selected one, d to delete it, s to
save and q to quit. Unsaved changes stay in the autosave; restore them with
erd recover.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return alerr.New(alerr.ErrConfigInvalid, "erd edit needs a terminal").
					WithHelp("use erd table and erd column to edit non-interactively")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			file := cfg.DiagramPath()

			initial, err := readDiagram(file, false)
			if err != nil {
				return err
			}

			st := store.New(
				store.WithIDGenerator(idgen.FromStrategy(idgen.Strategy(cfg.IDStrategy))),
				store.WithResolver(cfg.Resolver()),
				store.WithLogger(logger),
			)
			st.Load(codec.Deserialize([]byte(initial), logger))

			if cfg.AutosaveEnabled() {
				c, err := cache.Open(cfg.CacheDir)
				if err != nil {
					logger.Warn("autosave disabled", "error", err)
				} else {
					defer c.Close()
					unsubscribe := st.Subscribe(func(g diagram.Graph) {
						if err := c.Save(cache.Key(file), g); err != nil {
							logger.Warn("autosave failed", "file", file, "error", err)
						}
					})
					defer unsubscribe()
				}
			}

			editor := ui.NewEditor(st, ui.EditorOptions{
				Title:  filepath.Base(file),
				Layout: cfg.LayoutMetrics(),
				Logger: logger,
				Save: func() error {
					doc, err := codec.Serialize(st.Graph())
					if err != nil {
						return err
					}
					return writeDiagram(file, string(doc))
				},
			})
			return editor.Run()
		},
	}
}
