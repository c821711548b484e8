package termhost

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.lsp.dev/protocol"

	"github.com/hintsync/hintsync"
)

// TUI is an interactive host: an animated terminal view of the visible
// documents with live hint-category toggles. Decoration replacements arrive
// as messages so the tea event loop owns all view state.
type TUI struct {
	program *tea.Program
	model   *tuiModel
	store   *docStore
}

var _ hintsync.Host = (*TUI)(nil)

// NewTUI creates a TUI host. onConfig is invoked when the user toggles a
// category, onRefresh when they force a refresh; both run on the tea loop
// and must not block.
func NewTUI(w io.Writer, cfg hintsync.Hints, onConfig func(hintsync.Hints), onRefresh func()) *TUI {
	model := newTUIModel(cfg, onConfig, onRefresh)

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithAltScreen(), // Keep the scrollback clean
	}

	// Only use input if we have a TTY
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	p := tea.NewProgram(model, opts...)

	return &TUI{
		program: p,
		model:   model,
		store:   newDocStore(),
	}
}

// Start begins the TUI event loop.
func (t *TUI) Start() error {
	go func() {
		_, _ = t.program.Run()
	}()

	// Give the program a moment to initialize
	time.Sleep(20 * time.Millisecond)

	return nil
}

// Wait blocks until the user quits.
func (t *TUI) Wait() {
	t.program.Wait()
}

// Quit asks the program to exit.
func (t *TUI) Quit() {
	t.program.Quit()
}

// Open registers a document as visible and shows it.
func (t *TUI) Open(uri protocol.DocumentURI, text string) {
	t.store.open(uri, text)
	t.program.Send(docMsg{uri: uri, lines: strings.Split(text, "\n")})
}

// Update replaces an open document's text.
func (t *TUI) Update(uri protocol.DocumentURI, text string) {
	t.store.update(uri, text)
	t.program.Send(docMsg{uri: uri, lines: strings.Split(text, "\n")})
}

// VisibleDocuments implements hintsync.Host.
func (t *TUI) VisibleDocuments() []protocol.DocumentURI {
	return t.store.visible()
}

// SetDecorations implements hintsync.Host.
func (t *TUI) SetDecorations(uri protocol.DocumentURI, kind hintsync.InlayHintKind, decs []hintsync.Decoration) {
	t.store.set(uri, kind, decs)
	t.program.Send(decorationsMsg{uri: uri, kind: kind, decs: decs})
}

// -----------------------------------------------------------------------------
// Model
// -----------------------------------------------------------------------------

// Messages.
type (
	docMsg struct {
		uri   protocol.DocumentURI
		lines []string
	}
	decorationsMsg struct {
		uri  protocol.DocumentURI
		kind hintsync.InlayHintKind
		decs []hintsync.Decoration
	}
)

type tuiDoc struct {
	uri   protocol.DocumentURI
	lines []string
	decs  map[hintsync.InlayHintKind][]hintsync.Decoration
}

type tuiModel struct {
	styles  *Styles
	spinner spinner.Model

	docs   []*tuiDoc
	byURI  map[protocol.DocumentURI]*tuiDoc
	active int

	cfg       hintsync.Hints
	onConfig  func(hintsync.Hints)
	onRefresh func()

	// refreshing is set when the user forces a refresh or toggles a
	// category, and cleared when the next decoration update lands.
	refreshing bool

	width  int
	height int

	scrollOffset int
}

func newTUIModel(cfg hintsync.Hints, onConfig func(hintsync.Hints), onRefresh func()) *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerFrames(),
		FPS:    time.Second / 10,
	}
	s.Style = DefaultStyles().Toggle

	return &tuiModel{
		styles:    DefaultStyles(),
		spinner:   s,
		byURI:     make(map[protocol.DocumentURI]*tuiDoc),
		cfg:       cfg,
		onConfig:  onConfig,
		onRefresh: onRefresh,
		width:     80,
		height:    24,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // bubbletea.Model interface required by tea.Program
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.QuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case spinner.TickMsg:
		if m.refreshing {
			var cmd tea.Cmd

			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case docMsg:
		doc, ok := m.byURI[msg.uri]
		if !ok {
			doc = &tuiDoc{uri: msg.uri, decs: make(map[hintsync.InlayHintKind][]hintsync.Decoration)}
			m.byURI[msg.uri] = doc
			m.docs = append(m.docs, doc)
		}

		doc.lines = msg.lines

	case decorationsMsg:
		if doc, ok := m.byURI[msg.uri]; ok {
			doc.decs[msg.kind] = msg.decs
		}

		m.refreshing = false
	}

	return m, tea.Batch(cmds...)
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) { //nolint:ireturn,funcorder
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "tab", "l", "right":
		if len(m.docs) > 0 {
			m.active = (m.active + 1) % len(m.docs)
			m.scrollOffset = 0
		}

	case "shift+tab", "h", "left":
		if len(m.docs) > 0 {
			m.active = (m.active + len(m.docs) - 1) % len(m.docs)
			m.scrollOffset = 0
		}

	case "j", "down":
		if doc := m.activeDoc(); doc != nil {
			maxScroll := max(len(doc.lines)-m.viewportHeight(), 0)
			if m.scrollOffset < maxScroll {
				m.scrollOffset++
			}
		}

	case "k", "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}

	case "t":
		m.cfg.TypeHints = !m.cfg.TypeHints
		m.refreshing = true
		m.onConfig(m.cfg)

		return m, m.spinner.Tick

	case "p":
		m.cfg.ParameterHints = !m.cfg.ParameterHints
		m.refreshing = true
		m.onConfig(m.cfg)

		return m, m.spinner.Tick

	case "r":
		m.refreshing = true
		m.onRefresh()

		return m, m.spinner.Tick
	}

	return m, nil
}

func (m *tuiModel) activeDoc() *tuiDoc { //nolint:funcorder
	if m.active >= len(m.docs) {
		return nil
	}

	return m.docs[m.active]
}

func (m *tuiModel) viewportHeight() int { //nolint:funcorder
	// Reserve lines for header, blank, footer
	reserved := 4

	return max(m.height-reserved, 1)
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	doc := m.activeDoc()
	if doc == nil {
		b.WriteString(m.styles.Dim.Render("no documents open"))
		b.WriteString("\n")

		return b.String()
	}

	var decs []hintsync.Decoration
	for _, kind := range hintsync.Kinds() {
		decs = append(decs, doc.decs[kind]...)
	}

	lines := renderLines(doc.lines, decs, m.styles, true)

	start := min(m.scrollOffset, max(len(lines)-1, 0))
	end := min(start+m.viewportHeight(), len(lines))

	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())

	return b.String()
}

func (m *tuiModel) header() string { //nolint:funcorder
	toggle := func(on bool, label string) string {
		if on {
			return m.styles.Toggle.Render(m.styles.SymbolOn + " " + label)
		}

		return m.styles.Dim.Render(m.styles.SymbolOff + " " + label)
	}

	parts := []string{
		toggle(m.cfg.Enables(hintsync.KindType), "types"),
		toggle(m.cfg.Enables(hintsync.KindParameter), "parameters"),
	}

	if m.refreshing {
		parts = append(parts, m.spinner.View())
	}

	title := ""
	if doc := m.activeDoc(); doc != nil {
		title = m.styles.Path.Render(string(doc.uri)) +
			m.styles.Dim.Render(fmt.Sprintf("  (%d/%d)", m.active+1, len(m.docs)))
	}

	return m.styles.SymbolPointer + " " + title + "  " + strings.Join(parts, "  ")
}

func (m *tuiModel) footer() string { //nolint:funcorder
	return m.styles.Dim.Render("tab: next doc  t/p: toggle hints  r: refresh  q: quit")
}
