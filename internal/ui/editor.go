package ui

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/store"
)

// EditorOptions configures an Editor.
type EditorOptions struct {
	// Title is shown in the header bar, usually the diagram file name.
	Title string
	// Layout sets the box metrics. The zero value means render.DefaultLayout.
	Layout render.Layout
	// Save writes the diagram. A nil Save makes the save key report an error.
	Save func() error
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Editor is the full-screen diagram editor: a header, the canvas, and a
// status bar, with pages for the table form and the delete confirmation.
type Editor struct {
	app    *tview.Application
	pages  *tview.Pages
	root   *tview.Flex
	canvas *Canvas
	header *HeaderBar
	status *StatusBar

	store  *store.Store
	save   func() error
	logger *slog.Logger

	unsubscribe func()
}

// NewEditor builds an editor over s. Nothing is drawn until Run.
func NewEditor(s *store.Store, opts EditorOptions) *Editor {
	if opts.Layout == (render.Layout{}) {
		opts.Layout = render.DefaultLayout()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Editor{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		canvas: NewCanvas(s, opts.Layout, opts.Logger),
		header: NewHeaderBar(opts.Title),
		status: NewStatusBar(HintsCanvas),
		store:  s,
		save:   opts.Save,
		logger: opts.Logger,
	}

	e.pages.AddPage(PageCanvas, e.canvas, true, true)
	e.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.header, 1, 0, false).
		AddItem(e.pages, 0, 1, true).
		AddItem(e.status, 1, 0, false)

	e.canvas.SetSelectedFunc(func(string) { e.refreshHeader() })
	e.unsubscribe = s.Subscribe(func(diagram.Graph) { e.refreshHeader() })
	e.refreshHeader()

	e.app.SetInputCapture(e.handleKey)
	return e
}

// Canvas returns the editor's canvas.
func (e *Editor) Canvas() *Canvas { return e.canvas }

// SetScreen makes the editor draw to screen instead of the terminal.
func (e *Editor) SetScreen(screen tcell.Screen) *Editor {
	e.app.SetScreen(screen)
	return e
}

// Run shows the editor and blocks until the user quits.
func (e *Editor) Run() error {
	defer e.unsubscribe()
	return e.app.SetRoot(e.root, true).
		EnableMouse(true).
		SetFocus(e.canvas).
		Run()
}

// Stop ends Run.
func (e *Editor) Stop() { e.app.Stop() }

// FrontPage returns the name of the visible page.
func (e *Editor) FrontPage() string {
	name, _ := e.pages.GetFrontPage()
	return name
}

func (e *Editor) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if e.FrontPage() != PageCanvas {
		return event
	}
	e.status.Reset()

	switch event.Key() {
	case tcell.KeyEnter:
		e.editSelected()
		return nil
	case tcell.KeyEscape:
		e.app.Stop()
		return nil
	}

	switch event.Rune() {
	case 'a':
		e.addTable()
		return nil
	case 'e':
		e.editSelected()
		return nil
	case 'd':
		e.confirmDelete()
		return nil
	case 's':
		e.saveDiagram()
		return nil
	case 'q':
		e.app.Stop()
		return nil
	}
	return event
}

func (e *Editor) refreshHeader() {
	g := e.store.Graph()
	context := fmt.Sprintf("%d tables  %d relationships", len(g.Tables), len(g.Relationships))
	if t := g.Table(e.canvas.Selected()); t != nil {
		context += "  selected: " + t.Name
	}
	e.header.SetContext(context)
}

func (e *Editor) addTable() {
	d := e.store.CreateTable()
	e.canvas.Select(d.ID())
	e.openDraft(d)
}

func (e *Editor) editSelected() {
	id := e.canvas.Selected()
	if id == "" {
		e.status.Flash("select a table first", true)
		return
	}
	d, err := e.store.Edit(id)
	if err != nil {
		e.status.Flash(err.Error(), true)
		return
	}
	e.openDraft(d)
}

func (e *Editor) confirmDelete() {
	t, ok := e.store.Table(e.canvas.Selected())
	if !ok {
		e.status.Flash("select a table first", true)
		return
	}

	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete table %q and its relationships?", t.Name)).
		AddButtons([]string{ButtonDelete, ButtonCancel}).
		SetDoneFunc(func(_ int, label string) {
			if label == ButtonDelete {
				e.store.DeleteTable(t.ID)
				e.canvas.Controller().CanvasClick()
				e.refreshHeader()
			}
			e.closePage(PageConfirm)
		})
	e.pages.AddPage(PageConfirm, modal, true, true)
	e.app.SetFocus(modal)
}

func (e *Editor) saveDiagram() {
	if e.save == nil {
		e.status.Flash("nowhere to save this diagram", true)
		return
	}
	if err := e.save(); err != nil {
		e.logger.Error("save failed", "error", err)
		e.status.Flash("save failed: "+err.Error(), true)
		return
	}
	e.status.Flash("saved", false)
}

func (e *Editor) openDraft(d *store.Draft) {
	form := tview.NewForm()
	form.SetBorder(true).
		SetTitle(PanelDraft).
		SetTitleColor(Theme.Accent).
		SetBorderColor(Theme.BorderFocus)
	form.SetCancelFunc(func() { e.closePage(PageDraft) })
	e.fillDraftForm(form, d)

	e.pages.AddPage(PageDraft, centered(form, 64, 24), true, true)
	e.status.SetHints(HintsDraft)
	e.app.SetFocus(form)
}

// fillDraftForm rebuilds the form from the draft. Every field writes
// straight into the draft; nothing reaches the store until Save.
func (e *Editor) fillDraftForm(form *tview.Form, d *store.Draft) {
	form.Clear(true)
	t := d.Table()

	form.AddInputField("Table", t.Name, 32, nil, d.SetName)
	for _, col := range t.Columns {
		update := func(fn func(c *diagram.Column)) {
			if err := d.UpdateColumn(col.ID, fn); err != nil {
				e.logger.Warn("column update failed", "column", col.ID, "error", err)
			}
		}
		options, current := typeOptions(col.DataType)

		form.AddInputField("Column", col.Name, 24, nil, func(text string) {
			update(func(c *diagram.Column) { c.Name = text })
		})
		form.AddDropDown("  type", options, current, func(option string, _ int) {
			update(func(c *diagram.Column) { c.DataType = diagram.DataType(option) })
		})
		form.AddCheckbox("  primary key", col.IsPrimaryKey, func(checked bool) {
			update(func(c *diagram.Column) { c.IsPrimaryKey = checked })
		})
		form.AddCheckbox("  foreign key", col.IsForeignKey, func(checked bool) {
			update(func(c *diagram.Column) { c.IsForeignKey = checked })
		})
		form.AddInputField("  references", col.ForeignKeyReference, 24, nil, func(text string) {
			update(func(c *diagram.Column) { c.ForeignKeyReference = text })
		})
	}

	form.AddButton(ButtonAddColumn, func() {
		d.AddColumn()
		e.fillDraftForm(form, d)
		e.app.SetFocus(form)
	})
	form.AddButton(ButtonRemoveColumn, func() {
		cols := d.Table().Columns
		if !d.DeleteColumn(cols[len(cols)-1].ID) {
			e.status.Flash("a table keeps at least one column", true)
			return
		}
		e.fillDraftForm(form, d)
		e.app.SetFocus(form)
	})
	form.AddButton(ButtonSave, func() {
		e.store.UpdateTable(d.Table())
		e.closePage(PageDraft)
	})
	form.AddButton(ButtonCancel, func() { e.closePage(PageDraft) })
}

func (e *Editor) closePage(name string) {
	e.pages.RemovePage(name)
	e.status.SetHints(HintsCanvas)
	e.app.SetFocus(e.canvas)
}

// typeOptions lists the vocabulary and the index of dt. A type outside the
// vocabulary is appended so editing does not silently change it.
func typeOptions(dt diagram.DataType) ([]string, int) {
	options := make([]string, 0, len(diagram.Vocabulary)+1)
	for _, v := range diagram.Vocabulary {
		options = append(options, string(v))
	}
	i := slices.Index(options, string(dt))
	if i < 0 {
		options = append(options, string(dt))
		i = len(options) - 1
	}
	return options, i
}

// centered wraps p in flexes that keep it at width by height in the middle
// of the screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
