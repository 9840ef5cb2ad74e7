package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/positions/internal/gridconfig"
	"github.com/muurk/positions/internal/i18n"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/lookup"
	"github.com/muurk/positions/internal/notice"
	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/urls"
)

// Backend is everything the grid needs from the server. *positions.Client
// implements it.
type Backend interface {
	gridconfig.Fetcher
	positions.RowStore
	positions.RowLister
	lookup.Searcher
	lookup.UnitFetcher
}

// Options configures the grid editor.
type Options struct {
	Backend    Backend
	Endpoints  urls.Endpoints
	Translator *i18n.Translator

	FormID         string
	Validation     positions.ValidationMode
	PageSize       int
	Filters        map[string]string
	LookupDebounce time.Duration

	// ChangeFeedURL enables the change feed subscription when set
	ChangeFeedURL    string
	ChangeFeedHeader http.Header
}

type mode int

const (
	modeLoading mode = iota
	modeGrid
	modeForm
	modeConfirmDelete
	modeFailed
)

// Model is the grid editor: a paged table of rows with an add/edit form.
type Model struct {
	ctx    context.Context
	opts   Options
	bridge *bridge

	boot    *gridconfig.Bootstrapper
	loader  *positions.PageLoader
	editor  *positions.RowEditor
	editors map[lookup.Kind]lookup.Editor
	cascade *lookup.UnitCascade

	cfg     *gridconfig.GridConfig
	columns []gridconfig.Column
	page    *positions.Page
	rows    []positions.RowRecord
	request positions.PageRequest

	mode    mode
	busy    int
	form    *form
	pending string // id awaiting delete confirmation
	notice  *notice.Notice
	err     error

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// newModel wires the grid logic to a model. Messages from background work
// go through b.
func newModel(ctx context.Context, opts Options, b *bridge) Model {
	if opts.Translator == nil {
		opts.Translator, _ = i18n.New(i18n.DefaultLocale)
	}

	loader := positions.NewPageLoader(opts.Backend, opts.FormID, b.page)
	request := positions.DefaultPageRequest()
	if opts.PageSize > 0 {
		request.Rows = opts.PageSize
	}
	request.Filters = opts.Filters
	loader.SetRequest(request)

	editor := positions.NewRowEditor(opts.Backend, loader, b, opts.Translator)
	editor.Mode = opts.Validation

	cascade := lookup.NewUnitCascade(ctx, opts.Backend, b)
	editors := lookup.NewEditors(lookup.Options{
		Endpoints: opts.Endpoints,
		Searcher:  opts.Backend,
		OnResult:  b.lookupResult,
		Cascade:   cascade,
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	t := table.New(table.WithFocused(true), table.WithHeight(MinTableHeight))

	return Model{
		ctx:     ctx,
		opts:    opts,
		bridge:  b,
		boot:    gridconfig.NewBootstrapper(opts.Backend, opts.Translator, b),
		loader:  loader,
		editor:  editor,
		editors: editors,
		cascade: cascade,
		request: request,
		mode:    modeLoading,
		busy:    1,
		table:   t,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the bootstrap.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bootstrapCmd())
}

func (m Model) bootstrapCmd() tea.Cmd {
	ctx, boot, formID, pub := m.ctx, m.boot, m.opts.FormID, m.bridge
	return func() tea.Msg {
		_, err := boot.Run(ctx, gridconfig.Default(formID), pub)
		return bootstrapDoneMsg{err: err}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		return opDoneMsg{op: opReload, err: editor.Reload(ctx)}
	}
}

func (m Model) saveCmd(pd positions.PostData) tea.Cmd {
	ctx, editor, cfg, mode := m.ctx, m.editor, m.cfg, m.opts.Validation
	notifier := m.bridge
	return func() tea.Msg {
		if err := cfg.ValidateRow(pd, mode); err != nil {
			notifier.Notify(notice.Failure(positions.UserMessage(err)))
			return opDoneMsg{op: opSave, err: err}
		}
		return opDoneMsg{op: opSave, err: editor.Submit(ctx, pd)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, editor := m.ctx, m.editor
	return func() tea.Msg {
		return opDoneMsg{op: opDelete, err: editor.Delete(ctx, id)}
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h := msg.Height - chromeHeight
		if h < MinTableHeight {
			h = MinTableHeight
		}
		m.table.SetHeight(h)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case configMsg:
		m.cfg = msg.cfg
		m.applyColumns()
		m.mode = modeGrid
		m.busy++
		return m, m.reloadCmd()

	case bootstrapDoneMsg:
		m.busy--
		if msg.err != nil {
			m.err = msg.err
			m.mode = modeFailed
			if m.notice == nil && !positions.IsCanceled(msg.err) {
				n := notice.Failure(positions.UserMessage(msg.err))
				m.notice = &n
			}
		}
		return m, nil

	case pageMsg:
		m.page = msg.page
		m.rows = msg.page.Rows
		m.applyRows()
		return m, nil

	case noticeMsg:
		n := msg.notice
		m.notice = &n
		return m, nil

	case lookupMsg:
		if m.form != nil {
			m.form.showResult(msg.result)
		}
		return m, nil

	case unitMsg:
		if m.form != nil {
			m.form.setUnit(msg.unit)
		}
		return m, nil

	case opDoneMsg:
		m.busy--
		if msg.err != nil {
			logging.Debug("Grid operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		}
		switch msg.op {
		case opSave:
			if msg.err == nil {
				m.closeForm()
			}
		case opDelete:
			m.mode = modeGrid
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateGrid(msg)
		}
	}

	return m, nil
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Grid
	switch {
	case key.Matches(msg, keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.mode != modeGrid {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Edit):
		if row, ok := m.selected(); ok {
			m.openForm(positions.PostDataFromRecord(row))
		}
		return m, nil
	case key.Matches(msg, keys.Add):
		m.openForm(positions.NewAddPostData(m.opts.FormID))
		return m, nil
	case key.Matches(msg, keys.Delete):
		if row, ok := m.selected(); ok {
			m.pending = row.ID
			m.mode = modeConfirmDelete
		}
		return m, nil
	case key.Matches(msg, keys.Reload):
		m.busy++
		return m, m.reloadCmd()
	case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
		return m.turnPage(key.Matches(msg, keys.Next))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) turnPage(forward bool) (tea.Model, tea.Cmd) {
	if m.page == nil {
		return m, nil
	}
	target := m.page.Page - 1
	if forward {
		target = m.page.Page + 1
	}
	if target < 1 || target > m.page.Total {
		return m, nil
	}
	m.request.Page = target
	m.loader.SetRequest(m.request)
	m.busy++
	return m, m.reloadCmd()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Form
	f := m.form

	switch {
	case msg.String() == "ctrl+c":
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, keys.Cancel):
		m.closeForm()
		return m, nil
	case key.Matches(msg, keys.Save):
		pd := f.postData()
		m.busy++
		return m, m.saveCmd(pd)
	case key.Matches(msg, keys.Next):
		f.move(1)
		return m, nil
	case key.Matches(msg, keys.Prev):
		f.move(-1)
		return m, nil
	case key.Matches(msg, keys.Suggest) && len(f.suggestions) > 0:
		if msg.String() == "up" {
			f.moveSuggestion(-1)
		} else {
			f.moveSuggestion(1)
		}
		return m, nil
	case key.Matches(msg, keys.Choose):
		if !f.choose() {
			f.move(1)
		}
		return m, nil
	}

	return m, f.update(m.ctx, msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm.Yes):
		id := m.pending
		m.pending = ""
		m.busy++
		return m, m.deleteCmd(id)
	case key.Matches(msg, m.keys.Confirm.No):
		m.pending = ""
		m.mode = modeGrid
	}
	return m, nil
}

func (m *Model) openForm(pd positions.PostData) {
	m.form = newForm(m.cfg, pd, m.editors, m.opts.LookupDebounce)
	m.mode = modeForm
}

func (m *Model) closeForm() {
	if m.form != nil {
		m.form.close()
		m.form = nil
	}
	m.cascade.Cancel()
	m.mode = modeGrid
}

func (m *Model) shutdown() {
	m.closeForm()
}

// Close waits for background lookups. Call it after the program has exited.
func (m Model) Close() {
	m.cascade.Close()
}

func (m Model) selected() (positions.RowRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return positions.RowRecord{}, false
	}
	return m.rows[i], true
}

// applyColumns rebuilds the table header from the published config.
func (m *Model) applyColumns() {
	cols, labels := m.cfg.Visible()
	m.columns = cols

	tableCols := make([]table.Column, len(cols))
	for i, c := range cols {
		width := len(labels[i]) + 2
		switch {
		case c.Width > 0 && c.Width/8 > width:
			width = c.Width / 8
		case width < 10:
			width = 10
		}
		tableCols[i] = table.Column{Title: labels[i], Width: width}
	}

	m.table.SetRows(nil)
	m.table.SetColumns(tableCols)
	m.applyRows()
}

func (m *Model) applyRows() {
	if len(m.columns) == 0 {
		return
	}
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		cells := make(table.Row, len(m.columns))
		for j, c := range m.columns {
			cells[j] = r.Cell(c.Index)
		}
		rows[i] = cells
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppName))
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  document %s · %s", m.opts.FormID, m.opts.Translator.Locale())))
	if m.busy > 0 {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeLoading:
		b.WriteString("Loading grid configuration...\n")
	case modeFailed:
		b.WriteString(FailureStyle.Render("The grid could not be prepared."))
		b.WriteString("\n")
	case modeForm:
		b.WriteString(m.formView())
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if m.page != nil {
			b.WriteString(PagerStyle.Render(m.opts.Translator.Pager(m.page.Page, m.page.Total, m.page.Records)))
			b.WriteString("\n")
		}
		if m.mode == modeConfirmDelete {
			b.WriteString(InfoStyle.Render(fmt.Sprintf("Delete position %s? (y/n)", m.pending)))
			b.WriteString("\n")
		}
	}

	if m.notice != nil {
		b.WriteString(renderNotice(*m.notice))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.helpView()))
	return b.String()
}

func (m Model) helpView() string {
	switch m.mode {
	case modeForm:
		return m.help.View(m.keys.Form)
	case modeConfirmDelete:
		return m.help.View(m.keys.Confirm)
	default:
		return m.help.View(m.keys.Grid)
	}
}

func (m Model) formView() string {
	f := m.form
	var b strings.Builder

	title := "Edit position " + f.base.ID()
	if f.oper == positions.OperAdd {
		title = "New position"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		labelStyle := LabelStyle
		if i == f.focus {
			labelStyle = FocusedLabelStyle
		}
		b.WriteString(labelStyle.Render(field.label))

		switch field.kind {
		case fieldSelect:
			b.WriteString(fmt.Sprintf("< %s >", field.choices[field.choice].Value))
		case fieldReadonly:
			b.WriteString(ReadonlyStyle.Render(field.input.Value()))
		default:
			b.WriteString(field.input.View())
		}
		b.WriteString("\n")

		if i == f.focus {
			for j, c := range f.suggestions {
				label := lookup.Render(c.Label(), f.query, func(s string) string { return MatchStyle.Render(s) })
				if j == f.suggestIdx {
					b.WriteString(SelectedSuggestionStyle.Render("→ " + label))
				} else {
					b.WriteString(SuggestionStyle.Render(label))
				}
				b.WriteString("\n")
			}
		}
	}

	return FormBoxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func renderNotice(n notice.Notice) string {
	switch n.Kind {
	case notice.KindSuccess:
		return SuccessStyle.Render("✓ " + n.Content)
	case notice.KindFailure:
		return FailureStyle.Render("✗ " + n.Content)
	default:
		return InfoStyle.Render(n.Content)
	}
}
