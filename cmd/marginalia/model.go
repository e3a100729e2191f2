package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tsawler/marginalia"
	"github.com/tsawler/marginalia/pipeline"
	"github.com/tsawler/marginalia/view"
)

// Terminal cells are the only width unit a TUI can measure, so the scale
// calculator is fed approximate typographic sizes: a cell advance of 7.2pt
// and a row height of 14.4pt.
const (
	cellPt = 7.2
	rowPt  = 14.4
)

const chromeRows = 4 // header, status line, borders

type model struct {
	session   *marginalia.Session
	filename  string
	data      []byte
	mediaType string

	width     int
	height    int
	resizeSeq int

	loaded     bool
	extracting bool
	page       int
	scaleCtx   *view.ScaleContext

	// sourceText caches each page's raw text layer for the source pane; a
	// failed page holds a placeholder.
	sourceText map[int]string

	sourceView   viewport.Model
	combinedView viewport.Model
	editor       textarea.Model
	editing      bool

	status string
	notice string // persistent load-failure notice
}

type loadedMsg struct{ err error }
type seedMsg struct{ res pipeline.Result }
type resizeSettledMsg struct{ seq int }
type modalSettledMsg struct{}
type copiedMsg struct{ err error }

func newModel(session *marginalia.Session, filename string, data []byte, mediaType string) *model {
	editor := textarea.New()
	editor.Placeholder = "Notes for this page…"
	editor.ShowLineNumbers = false

	return &model{
		session:      session,
		filename:     filename,
		data:         data,
		mediaType:    mediaType,
		page:         1,
		sourceText:   map[int]string{},
		sourceView:   viewport.New(40, 20),
		combinedView: viewport.New(40, 20),
		editor:       editor,
	}
}

func (m *model) Init() tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Load(context.Background(), m.data, m.mediaType)
		return loadedMsg{err: err}
	}
}

func (m *model) extractCmd() tea.Cmd {
	return func() tea.Msg {
		return seedMsg{res: m.session.Extract(context.Background())}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			// Non-fatal: the notice stays up, the session stays usable.
			m.notice = fmt.Sprintf("Could not open %s: %v", m.filename, msg.err)
			return m, nil
		}
		m.loaded = true
		m.extracting = true
		m.page = 1
		m.scaleCtx = view.NewScaleContext(m.session.Document().BaselineWidth())
		m.remeasure()
		m.syncPanes()
		m.status = "Extracting text…"
		return m, m.extractCmd()

	case seedMsg:
		m.extracting = false
		if !m.session.ApplySeed(msg.res) {
			return m, nil
		}
		if n := len(msg.res.Warnings); n > 0 {
			m.status = fmt.Sprintf("Extraction done, %d page(s) failed", n)
		} else {
			m.status = "Extraction done"
		}
		m.loadEditor()
		m.syncPanes()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeSeq++
		seq := m.resizeSeq
		// Coalesce resize storms; only the last size triggers remeasure.
		return m, tea.Tick(view.ResizeDebounce, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		m.remeasure()
		m.syncPanes()
		return m, nil

	case modalSettledMsg:
		if m.loaded && m.session.View().Modal().Open {
			m.scaleCtx.MeasureModal(view.MeasurerFunc(func() float64 {
				return float64(m.width) * cellPt
			}))
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.status = "Notes copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blinks and other component messages go to the focused editor.
	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if !m.loaded {
		if key.String() == "q" || key.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m, nil
	}

	ctrl := m.session.View()

	if m.editing {
		if key.Type == tea.KeyEsc {
			m.editing = false
			m.editor.Blur()
			m.saveEditor()
			m.syncPanes()
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(key)
		m.saveEditor()
		return m, cmd
	}

	if ctrl.Modal().Open {
		// Escape, clicking the backdrop, or the close key are one and the
		// same transition; the TUI only has keys.
		switch key.String() {
		case "esc", "enter", "q":
			ctrl.CloseModal()
		}
		return m, nil
	}

	switch key.String() {
	case "q", "esc":
		return m, tea.Quit
	case "left", "h":
		if m.page > 1 {
			m.saveEditor()
			m.page--
			m.loadEditor()
			m.syncPanes()
		}
	case "right", "l":
		if m.page < m.session.Document().PageCount() {
			m.saveEditor()
			m.page++
			m.loadEditor()
			m.syncPanes()
		}
	case "s":
		if !ctrl.Toggle(view.PaneSource) {
			m.status = "Source and notes cannot both be hidden"
		} else {
			m.remeasure()
			m.syncPanes()
		}
	case "n":
		if !ctrl.Toggle(view.PaneNotes) {
			m.status = "Source and notes cannot both be hidden"
		} else {
			m.remeasure()
			m.syncPanes()
		}
	case "c":
		ctrl.Toggle(view.PaneCombined)
		m.remeasure()
		m.syncPanes()
	case "1":
		ctrl.SetLayoutMode(view.ModeNormal)
		m.syncPanes()
	case "2":
		ctrl.SetLayoutMode(view.ModeComparison)
		m.syncPanes()
	case "3":
		ctrl.SetLayoutMode(view.ModeReading)
		m.syncPanes()
	case "enter":
		if err := ctrl.OpenModal(m.page); err == nil {
			// Let the overlay mount before measuring its width.
			return m, tea.Tick(view.ModalSettleDelay, func(time.Time) tea.Msg {
				return modalSettledMsg{}
			})
		}
	case "i", "tab":
		m.editing = true
		return m, m.editor.Focus()
	case "y":
		return m, func() tea.Msg {
			return copiedMsg{err: m.session.CopyToClipboard()}
		}
	case "up", "k":
		m.sourceView.ScrollUp(1)
	case "down", "j":
		m.sourceView.ScrollDown(1)
	}

	return m, nil
}

// saveEditor writes the editor buffer back to the note store.
func (m *model) saveEditor() {
	if m.loaded {
		m.session.Notes().Set(m.page, m.editor.Value())
	}
}

// loadEditor fills the editor buffer from the note store.
func (m *model) loadEditor() {
	m.editor.SetValue(m.session.Notes().Get(m.page))
}

// remeasure feeds the current source-pane width to the scale context.
func (m *model) remeasure() {
	if !m.loaded {
		return
	}
	m.scaleCtx.MeasureSource(view.MeasurerFunc(func() float64 {
		return float64(m.paneWidth()) * cellPt
	}))
}

// paneWidth returns the width in cells of one visible pane.
func (m *model) paneWidth() int {
	visible := 0
	vis := m.session.View().Visibility()
	for _, on := range []bool{vis.Source, vis.Notes, vis.Combined} {
		if on {
			visible++
		}
	}
	if visible == 0 {
		visible = 1
	}
	w := m.width/visible - 2 // border
	if w < 10 {
		w = 10
	}
	return w
}

// pageSource returns (and caches) the raw text layer for a page, degrading
// to a placeholder on failure.
func (m *model) pageSource(page int) string {
	if text, ok := m.sourceText[page]; ok {
		return text
	}
	text, err := m.session.Document().PageText(context.Background(), page)
	if err != nil {
		text = "[this page could not be rendered]"
	}
	m.sourceText[page] = text
	return text
}

// editorRows converts the abstract editor-height policy into textarea rows.
func (m *model) editorRows() int {
	ctrl := m.session.View()
	scale := m.scaleCtx.SourceScale()
	pageHeightAtScale := m.session.Document().Baseline().Height * scale

	h := view.EditorHeight(ctrl.LayoutMode(), m.editor.Value(), pageHeightAtScale)
	rows := int(h / rowPt)
	if limit := m.height - chromeRows; rows > limit {
		rows = limit
	}
	if rows < 3 {
		rows = 3
	}
	return rows
}

// syncPanes lays out the visible panes for the current page and sizes.
func (m *model) syncPanes() {
	if !m.loaded || m.width == 0 {
		return
	}

	w := m.paneWidth()
	contentHeight := m.height - chromeRows
	if contentHeight < 3 {
		contentHeight = 3
	}

	scale := m.scaleCtx.SourceScale()
	wrapCols := int(m.session.Document().BaselineWidth() * scale / cellPt)
	if wrapCols < 10 || wrapCols > w {
		wrapCols = w
	}

	m.sourceView.Width = w
	m.sourceView.Height = contentHeight
	m.sourceView.SetContent(wordwrap.String(m.pageSource(m.page), wrapCols))

	m.editor.SetWidth(w)
	m.editor.SetHeight(m.editorRows())

	m.combinedView.Width = w
	m.combinedView.Height = contentHeight
	m.combinedView.SetContent(wordwrap.String(m.session.Export(), w))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	paneStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle    = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1, 2)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

func (m *model) View() string {
	if m.notice != "" {
		return noticeStyle.Render(m.notice + "\n\nPress q to quit.")
	}
	if !m.loaded {
		return statusStyle.Render("Opening " + m.filename + "…")
	}

	ctrl := m.session.View()
	doc := m.session.Document()

	header := titleStyle.Render(fmt.Sprintf("%s — page %d/%d — %s mode",
		m.filename, m.page, doc.PageCount(), ctrl.LayoutMode()))

	var panes []string
	vis := ctrl.Visibility()
	if vis.Source {
		panes = append(panes, paneStyle.Render(
			paneTitleStyle.Render("Source")+"\n"+m.sourceView.View()))
	}
	if vis.Notes {
		panes = append(panes, paneStyle.Render(
			paneTitleStyle.Render(fmt.Sprintf("Notes (%d chars)", m.session.Notes().CharCount(m.page)))+
				"\n"+m.editor.View()))
	}
	if vis.Combined {
		panes = append(panes, paneStyle.Render(
			paneTitleStyle.Render("Combined")+"\n"+m.combinedView.View()))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	status := m.status
	if m.extracting {
		status = "Extracting text…"
	}
	help := "←/→ page · s/n/c panes · 1/2/3 mode · enter enlarge · i edit · y copy · q quit"
	footer := statusStyle.Render(status + "  " + help)

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	if modal := ctrl.Modal(); modal.Open {
		scale := m.scaleCtx.ModalScale()
		cols := int(doc.BaselineWidth() * scale / cellPt)
		if cols < 10 || cols > m.width-8 {
			cols = m.width - 8
		}
		content := fmt.Sprintf("Page %d (scale %.2f)\n\n%s",
			modal.Page, scale, wordwrap.String(m.pageSource(modal.Page), cols))
		box := modalStyle.Render(content)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	return screen
}
