package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/abelbrown/herbal/internal/capture"
	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/otel"
	"github.com/abelbrown/herbal/internal/session"
)

// unsupportedVoice is the notice shown when no recognizer is configured.
const unsupportedVoice = "Voice search is not supported here.\nSet capture.command in ~/.herbal/config.yaml or HERBAL_CAPTURE_CMD to a speech-to-text program."

// Options wires the App to its collaborators. Everything but the session
// is optional.
type Options struct {
	Voice  *capture.Controller
	Copy   func(string) error // clipboard writer; defaults to the system clipboard
	Logout func() tea.Cmd
	Log    *otel.Logger
	Ring   *otel.RingBuffer
	Ctx    context.Context
}

// App is the root Bubble Tea model.
// Session state lives in *session.Session; App holds only view state.
type App struct {
	sess   *session.Session
	voice  *capture.Controller
	clip   func(string) error
	logout func() tea.Cmd
	log    *otel.Logger
	ring   *otel.RingBuffer
	ctx    context.Context

	renderLimit *rate.Limiter

	input     textinput.Model
	inputOn   bool
	cursor    int
	systemIdx int // index into sess.Systems(); -1 = all
	details   *catalog.DetailView
	notice    string
	status    string
	err       error
	showDebug bool
	loggedOut bool
	styles    Styles
	width     int
	height    int
	ready     bool
}

// NewApp creates the App over sess.
func NewApp(sess *session.Session, opts Options) App {
	ti := textinput.New()
	ti.Prompt = "🔍 "
	ti.Placeholder = filter.Placeholder(sess.State().Mode)
	ti.SetValue(sess.State().Query)

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	voice := opts.Voice
	if voice == nil {
		voice = capture.NewController(nil, opts.Log)
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	a := App{
		sess:        sess,
		voice:       voice,
		clip:        copyFn,
		logout:      opts.Logout,
		log:         opts.Log,
		ring:        opts.Ring,
		ctx:         ctx,
		renderLimit: rate.NewLimiter(rate.Every(time.Second), 1),
		input:       ti,
		systemIdx:   -1,
		styles:      NewStyles(sess.Dark()),
	}
	a.applyInputStyles()
	return a
}

// Init initializes the App. The catalog is already loaded.
func (a App) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.log.Debug(otel.KindMsgReceived, "ui", fmt.Sprintf("%T", msg))
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = msg.Width - 6
		return a, nil

	case CaptureDone:
		text, ok, err := a.voice.Finish(msg.Result)
		if ok {
			a.input.SetValue(strings.TrimSpace(text))
			a.applyInput()
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			a.status = "voice capture failed"
		}
		return a, nil

	case Copied:
		if msg.Err != nil {
			a.err = fmt.Errorf("copy %s: %w", msg.Name, msg.Err)
		} else {
			a.status = "copied " + msg.Name
		}
		return a, nil

	case LoggedOut:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.loggedOut = true
		a.voice.Stop()
		return a, tea.Quit
	}

	if a.inputOn {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.voice.Stop()
		return a, tea.Quit
	}

	// Clear any existing error and status on key press
	a.err = nil
	a.status = ""

	if a.notice != "" {
		a.notice = ""
		return a, nil
	}
	if a.showDebug {
		if msg.String() == "?" || msg.String() == "esc" {
			a.showDebug = false
		}
		return a, nil
	}
	if a.details != nil {
		return a.handleDetailsKey(msg)
	}
	if a.inputOn {
		return a.handleInputKey(msg)
	}

	switch msg.String() {
	case "q":
		a.voice.Stop()
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(a.sess.Visible())-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if n := len(a.sess.Visible()); n > 0 {
			a.cursor = n - 1
		}
		return a, nil

	case "/":
		a.inputOn = true
		return a, a.input.Focus()

	case "tab":
		a.sess.SetMode(a.sess.State().Mode.Other())
		a.input.Placeholder = filter.Placeholder(a.sess.State().Mode)
		a.clampCursor()
		return a, nil

	case "s":
		a.cycleSystem(1)
		return a, nil

	case "S":
		a.cycleSystem(-1)
		return a, nil

	case "x":
		a.systemIdx = -1
		a.sess.ResetSystem()
		a.clampCursor()
		return a, nil

	case "ctrl+u":
		a.clearQuery()
		return a, nil

	case "enter":
		if p, ok := a.current(); ok {
			if d, found := a.sess.Details(p); found {
				a.details = &d
			}
		}
		return a, nil

	case "f":
		if p, ok := a.current(); ok {
			a.toggleFavorite(p)
		}
		return a, nil

	case "v":
		return a.toggleVoice()

	case "t":
		a.toggleTheme()
		return a, nil

	case "y":
		if p, ok := a.current(); ok {
			if d, found := a.sess.Details(p); found {
				return a, a.copyCmd(d)
			}
		}
		return a, nil

	case "L":
		if a.logout != nil {
			return a, a.logout()
		}
		return a, nil

	case "?":
		a.showDebug = a.ring != nil
		return a, nil
	}

	return a, nil
}

// handleInputKey routes keys while the query input has focus.
func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		a.inputOn = false
		a.input.Blur()
		return a, nil
	case "ctrl+u":
		a.clearQuery()
		return a, nil
	case "tab":
		a.sess.SetMode(a.sess.State().Mode.Other())
		a.input.Placeholder = filter.Placeholder(a.sess.State().Mode)
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	before := a.input.Value()
	a.input, cmd = a.input.Update(msg)
	if a.input.Value() != before {
		a.applyInput()
	}
	return a, cmd
}

// applyInput makes the input box the query. Typed and spoken text both go
// through here.
func (a *App) applyInput() {
	a.sess.SetQuery(a.input.Value())
	a.clampCursor()
}

// handleDetailsKey routes keys while the details overlay is open.
func (a App) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		a.details = nil
	case "f":
		a.toggleFavorite(a.details.Name)
	case "y":
		return a, a.copyCmd(*a.details)
	case "t":
		a.toggleTheme()
	}
	return a, nil
}

func (a *App) current() (string, bool) {
	visible := a.sess.Visible()
	if a.cursor < 0 || a.cursor >= len(visible) {
		return "", false
	}
	return visible[a.cursor].Name, true
}

func (a *App) clampCursor() {
	n := len(a.sess.Visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) clearQuery() {
	a.input.SetValue("")
	a.sess.ClearQuery()
	a.clampCursor()
}

// cycleSystem steps the system filter through "all" and each system.
func (a *App) cycleSystem(step int) {
	systems := a.sess.Systems()
	if len(systems) == 0 {
		return
	}
	n := len(systems) + 1 // slot 0 is "all"
	slot := ((a.systemIdx+1+step)%n + n) % n
	a.systemIdx = slot - 1
	if a.systemIdx < 0 {
		a.sess.ResetSystem()
	} else {
		a.sess.SetSystem(systems[a.systemIdx])
	}
	a.clampCursor()
}

func (a *App) toggleFavorite(name string) {
	on, err := a.sess.ToggleFavorite(name)
	switch {
	case err != nil:
		a.err = fmt.Errorf("favorites not saved: %w", err)
	case on:
		a.status = "★ " + name
	default:
		a.status = "removed " + name
	}
}

func (a *App) toggleTheme() {
	if _, err := a.sess.ToggleTheme(); err != nil {
		a.err = fmt.Errorf("theme not saved: %w", err)
	}
	a.styles = NewStyles(a.sess.Dark())
	a.applyInputStyles()
}

func (a *App) applyInputStyles() {
	a.input.PromptStyle = a.styles.StatusKey
	a.input.TextStyle = a.styles.Name.Padding(0)
	a.input.PlaceholderStyle = a.styles.StatusText
}

func (a App) toggleVoice() (tea.Model, tea.Cmd) {
	run, err := a.voice.Toggle(a.ctx)
	if errors.Is(err, capture.ErrUnsupported) {
		a.notice = unsupportedVoice
		return a, nil
	}
	if err != nil {
		a.err = err
		return a, nil
	}
	if run == nil {
		return a, nil
	}
	return a, func() tea.Msg {
		return CaptureDone{Result: run()}
	}
}

func (a App) copyCmd(d catalog.DetailView) tea.Cmd {
	write := a.clip
	return func() tea.Msg {
		return Copied{Name: d.Name, Err: write(d.Text())}
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.renderLimit.Allow() {
		a.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindViewRender, Comp: "ui", Count: len(a.sess.Visible())})
	}

	if a.showDebug {
		panel := debugOverlay(a.styles, a.ring, a.width, a.height-1)
		return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, panel) + "\n" + debugStatusBar(a.styles, a.width)
	}
	if a.notice != "" {
		return noticeOverlay(a.styles, a.notice, a.width, a.height)
	}
	if a.details != nil {
		return detailsOverlay(a.styles, *a.details, a.sess.IsFavorite(a.details.Name), a.width, a.height)
	}

	state := a.sess.State()
	header := renderHeader(a.styles, state.Mode, state.System, a.sess.User(), a.sess.Dark(), a.width)
	input := a.input.View()

	// header, input, blank line, status bar, optional error line
	contentHeight := a.height - 4
	errorBar := ""
	if a.err != nil {
		errorBar = a.styles.Error.Width(a.width).Render("Error: "+a.err.Error()+" (press any key to dismiss)") + "\n"
		contentHeight--
	}
	cards := renderCards(a.styles, a.sess.Cards(), a.cursor, a.width, contentHeight)
	cards = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(cards)

	status := renderStatusBar(a.styles, a.cursor, len(a.sess.Visible()), a.voice.Listening(), a.status, a.width)
	return header + "\n" + input + "\n\n" + cards + "\n" + errorBar + status
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// DidLogout reports whether the App quit because the user logged out.
func (a App) DidLogout() bool {
	return a.loggedOut
}

// InputFocused reports whether the query input has focus (for testing).
func (a App) InputFocused() bool {
	return a.inputOn
}
