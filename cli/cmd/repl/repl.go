package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/windeq/library"
	"github.com/ardnew/windeq/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
)

const defaultWidth = 80

// model is the Bubble Tea model for the shell.
type model struct {
	ctx        context.Context
	input      textinput.Model
	session    *session
	logger     log.Logger
	history    *History
	historyIdx int
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	suggIdx    int
	tabActive  bool
	preTab     string // input before tab-cycling began
	preCursor  int
	width      int
	quitting   bool
	mode       inputMode
	other      string // input of the inactive mode
}

// Run starts an interactive shell over dir. History is kept under
// cacheDir, or in memory only when cacheDir is empty.
func Run(
	ctx context.Context,
	dir *library.Directory,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var histPath string
	if cacheDir != "" {
		histPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(histPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", histPath),
			slog.Any("error", err),
		)
	}

	m := newModel(ctx, newSession(dir), history, logger)

	logger.TraceContext(ctx, "repl start",
		slog.String("library", dir.Name()),
		slog.Int("paths", len(m.session.paths)),
		slog.Int("history", history.Len()),
	)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

func newModel(ctx context.Context, s *session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		input:      ti,
		session:    s,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len())))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Type a path or expression, or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	default:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTab)
			m.input.SetCursor(m.preCursor)
			m.refresh()

			return m, nil
		}

		return m.switchMode(1 - m.mode), nil
	}

	var cmd tea.Cmd

	if msg.Type != tea.KeyRunes || msg.String() == " " {
		m.tabActive = false
	}

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// cycle moves the tab selection by step and writes the selected candidate
// into the input. A single candidate is accepted at once.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.matches = nil
		m.suggIdx = -1

		return m

	case !m.tabActive:
		m.tabActive = true
		m.preTab = m.input.Value()
		m.preCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}

	default:
		m.suggIdx = (m.suggIdx + step + n) % n
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with s and moves the cursor after it.
func (m *model) replaceWord(s string) {
	input := m.input.Value()
	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refresh recomputes the completion matches for the current input.
func (m *model) refresh() {
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.session.complete(m.mode, m.input.Value(), m.input.Position())
	m.suggIdx = -1
}

// browse moves through history by step, switching to the mode each entry
// was entered in. Moving past the newest entry clears the input.
func (m model) browse(step int) model {
	idx := m.historyIdx + step
	if idx < 0 {
		return m
	}

	m.historyIdx = min(idx, m.history.Len())

	entry, err := m.history.Entry(m.historyIdx)
	if err != nil {
		m.input.SetValue("")
		m.refresh()

		return m
	}

	if entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refresh()

	return m
}

// switchMode changes to mode, swapping in the input left there.
func (m model) switchMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	text := m.other
	m.other = m.input.Value()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(text)
	m.input.SetCursor(len(text))
	m.refresh()

	return m
}

func (m model) execute() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctx, "repl eval", slog.String("input", input))

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := m.session.eval(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctx, "repl command", slog.String("input", input))

	if f := strings.Fields(input); f[0] == "c" || f[0] == "clear" {
		return m, tea.ClearScreen
	}

	out, err := m.session.command(input)

	switch {
	case errors.Is(err, errQuit):
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(out))
}
