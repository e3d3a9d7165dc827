package ui

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"cycleplanner/internal/logging"
	"cycleplanner/internal/pathutil"
	"cycleplanner/internal/picker"
	"cycleplanner/internal/storage"
	"cycleplanner/internal/window"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// opacityStep is the change applied by the opacity keys.
const opacityStep = 0.1

// inputState is what the keyboard currently drives.
type inputState int

const (
	stateBrowse inputState = iota
	stateName
	statePickParent
	statePickImport
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	// Logger receives window transitions and failed operations.
	Logger *slog.Logger

	// Changes delivers index.json rewrites, usually from an IndexWatcher.
	Changes <-chan struct{}

	// PickStart is the folder the picker opens in.
	PickStart string

	// Opacity is applied to the window when the app starts.
	Opacity float64

	// CellWidth and CellHeight are the logical size of one terminal cell.
	CellWidth  float64
	CellHeight float64
}

// App is the cycle browser. It is also the host window: the terminal
// plays the window and a window.Controller drives its modes.
type App struct {
	storage     *storage.Storage
	styles      *Styles
	config      *AppConfig
	log         *slog.Logger
	win         *TermWindow
	ctrl        *window.Controller
	helpOverlay *HelpOverlay

	index  *storage.IndexData
	cycle  *storage.CycleData
	cursor int

	state       inputState
	input       textinput.Model
	picker      picker.Model
	pendingName string

	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	keys      KeyMap
	inputKeys InputKeyMap
	helpKeys  HelpKeyMap
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(store *storage.Storage, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{}
	}
	if cfg.Opacity == 0 {
		cfg.Opacity = window.DefaultOpacity
	}

	win := NewTermWindow(cfg.CellWidth, cfg.CellHeight)
	ctrl := window.NewController(win,
		window.WithAlpha(window.JoinAlpha(win, window.NewLayeredAlpha(window.ConsoleHandle()))),
		window.WithOpacity(cfg.Opacity),
	)

	ti := textinput.New()
	ti.Placeholder = "Cycle name"
	ti.CharLimit = 120
	ti.Width = 40

	keys := DefaultKeyMap()

	return &App{
		storage:     store,
		styles:      styles,
		config:      cfg,
		log:         logging.WithComponent(cfg.Logger, "ui"),
		win:         win,
		ctrl:        ctrl,
		helpOverlay: NewHelpOverlay(styles, keys),
		input:       ti,
		keys:        keys,
		inputKeys:   DefaultInputKeyMap(),
		helpKeys:    DefaultHelpKeyMap(),
	}
}

// tickMsg is sent periodically to expire status messages.
type tickMsg time.Time

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init loads the index, applies the configured opacity and starts
// listening for index rewrites.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		loadIndexCmd(a.storage),
		waitForIndexChangeCmd(a.config.Changes),
	}
	if a.ctrl.Opacity() < window.MaxOpacity {
		cmds = append(cmds, setOpacityCmd(a.ctrl, a.ctrl.Opacity()))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.win.SetTerminalSize(msg.Width, msg.Height)
		a.helpOverlay.SetSize(msg.Width, msg.Height)
		a.input.Width = max(10, min(60, msg.Width-8))
		return a, a.updatePicker(a.frameSizeMsg())

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()

	case indexLoadedMsg:
		return a, a.handleIndex(msg)

	case indexChangedMsg:
		a.log.Debug("index changed on disk")
		return a, tea.Batch(loadIndexCmd(a.storage), waitForIndexChangeCmd(a.config.Changes))

	case cycleLoadedMsg:
		if msg.id != a.index.Selected() {
			return a, nil
		}
		if msg.err != nil {
			a.cycle = nil
			a.fail("Load cycle", msg.err)
			return a, nil
		}
		a.cycle = msg.data
		return a, nil

	case windowModeMsg:
		if msg.err != nil {
			a.fail("Toggle "+msg.mode.String(), msg.err)
			return a, nil
		}
		a.log.Info("window mode", slog.String("mode", a.ctrl.Mode().String()))
		if msg.on {
			a.SetStatus(capitalize(msg.mode.String())+" mode", false)
		} else {
			a.SetStatus("Normal mode", false)
		}
		return a, a.updatePicker(a.frameSizeMsg())

	case opacityMsg:
		if msg.err != nil {
			a.fail("Opacity", msg.err)
			return a, nil
		}
		a.log.Debug("opacity", slog.Float64("opacity", msg.opacity))
		a.SetStatus(fmt.Sprintf("Opacity %d%%", int(math.Round(msg.opacity*100))), false)
		return a, nil

	case onTopMsg:
		if msg.err != nil {
			a.fail("Always on top", msg.err)
			return a, nil
		}
		a.log.Info("always on top", slog.Bool("on", msg.on))
		if msg.on {
			a.SetStatus("Pinned on top", false)
		} else {
			a.SetStatus("Unpinned", false)
		}
		return a, nil

	case maximizeMsg:
		if msg.err != nil {
			a.fail("Maximize", msg.err)
			return a, nil
		}
		a.log.Info("maximize", slog.Bool("maximized", msg.maximized))
		if msg.maximized {
			a.SetStatus("Maximized", false)
		} else {
			a.SetStatus("Restored", false)
		}
		return a, a.updatePicker(a.frameSizeMsg())

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	// Directory listings and other picker-internal messages.
	return a, a.updatePicker(msg)
}

func (a *App) handleIndex(msg indexLoadedMsg) tea.Cmd {
	if msg.err != nil {
		a.fail(opLabel(msg.op), msg.err)
		return nil
	}

	prev := len(a.cycles())
	a.index = msg.index

	switch msg.op {
	case "create":
		if n := len(a.cycles()); n > prev {
			a.cursor = n - 1
			a.SetStatus("Created "+displayName(a.cycles()[n-1].Name), false)
		}
	case "import":
		a.SetStatus("Imported cycle", false)
	case "select":
		if meta, ok := a.index.Find(a.index.Selected()); ok {
			a.SetStatus("Selected "+displayName(meta.Name), false)
		}
	}
	a.cursor = min(max(a.cursor, 0), max(len(a.cycles())-1, 0))

	selected := a.index.Selected()
	if selected == "" {
		a.cycle = nil
		return nil
	}
	return loadCycleCmd(a.storage, selected)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	switch a.state {
	case stateName:
		return a.handleNameKey(msg)
	case statePickParent, statePickImport:
		return a.handlePickKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.cycles())-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Select):
		if cycles := a.cycles(); a.cursor < len(cycles) {
			return selectCycleCmd(a.storage, cycles[a.cursor].ID)
		}
	case key.Matches(msg, a.keys.Create):
		a.state = stateName
		a.input.Reset()
		return a.input.Focus()
	case key.Matches(msg, a.keys.Import):
		return a.openPicker(statePickImport, "Choose a cycle folder to import")
	case key.Matches(msg, a.keys.Reload):
		return loadIndexCmd(a.storage)
	case key.Matches(msg, a.keys.PostIt):
		return togglePostItCmd(a.ctrl)
	case key.Matches(msg, a.keys.Calendar):
		return toggleCalendarCmd(a.ctrl)
	case key.Matches(msg, a.keys.OnTop):
		return toggleOnTopCmd(a.ctrl)
	case key.Matches(msg, a.keys.Maximize):
		return toggleMaximizeCmd(a.ctrl)
	case key.Matches(msg, a.keys.OpacityUp):
		return setOpacityCmd(a.ctrl, stepOpacity(a.ctrl.Opacity(), opacityStep))
	case key.Matches(msg, a.keys.OpacityDown):
		return setOpacityCmd(a.ctrl, stepOpacity(a.ctrl.Opacity(), -opacityStep))
	}
	return nil
}

func (a *App) handleNameKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.inputKeys.Cancel):
		a.state = stateBrowse
		a.input.Blur()
		a.input.Reset()
		a.SetStatus("Canceled", false)
		return nil
	case key.Matches(msg, a.inputKeys.Confirm):
		a.pendingName = strings.TrimSpace(a.input.Value())
		a.input.Blur()
		a.input.Reset()
		return a.openPicker(statePickParent, fmt.Sprintf("Choose where to create %q", a.pendingName))
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a *App) handlePickKey(msg tea.KeyMsg) tea.Cmd {
	cmd := a.updatePicker(msg)
	if !a.picker.Done() {
		return cmd
	}

	state := a.state
	a.state = stateBrowse
	path := a.picker.Path()
	if path == "" {
		a.SetStatus("Canceled", false)
		return nil
	}
	a.config.PickStart = path

	if state == statePickParent {
		return createCycleCmd(a.storage, a.pendingName, path)
	}
	return importCycleCmd(a.storage, path)
}

func (a *App) openPicker(state inputState, title string) tea.Cmd {
	a.state = state
	a.picker = picker.New(a.config.PickStart)
	a.picker.Title = title
	a.picker, _ = a.picker.Update(a.frameSizeMsg())
	return a.picker.Init()
}

// updatePicker forwards msg to the picker while one is open.
func (a *App) updatePicker(msg tea.Msg) tea.Cmd {
	if a.state != statePickParent && a.state != statePickImport {
		return nil
	}
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	return cmd
}

// frameSizeMsg is a size message for content drawn inside the frame.
func (a *App) frameSizeMsg() tea.WindowSizeMsg {
	cols, rows := a.win.Frame()
	if cols == 0 || rows == 0 {
		cols, rows = a.width, a.height
	}
	// Border, title bar and help bar.
	return tea.WindowSizeMsg{Width: max(cols-4, 0), Height: max(rows-4, 0)}
}

func (a *App) cycles() []storage.CycleMeta {
	if a.index == nil {
		return nil
	}
	return a.index.Cycles
}

// fail reports an error in the status bar and the log.
func (a *App) fail(op string, err error) {
	a.log.Warn(op+" failed", slog.Any("err", err))
	a.SetStatus(op+": "+err.Error(), true)
}

func opLabel(op string) string {
	switch op {
	case "select":
		return "Select cycle"
	case "create":
		return "Create cycle"
	case "import":
		return "Import cycle"
	default:
		return "Load index"
	}
}

// stepOpacity moves v by delta and rounds to whole percent.
func stepOpacity(v, delta float64) float64 {
	return window.ClampOpacity(math.Round((v+delta)*100) / 100)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

// View renders the app inside the window frame.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	styles := a.styles.Faded(a.win.Opacity())

	var b strings.Builder
	b.WriteString(a.renderTitleBar(styles))
	b.WriteString("\n")
	switch a.state {
	case stateName:
		b.WriteString(a.renderNamePrompt(styles))
	case statePickParent, statePickImport:
		b.WriteString(a.picker.View())
	default:
		b.WriteString(a.renderBrowser(styles))
	}
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar(styles))

	return a.renderFrame(styles, b.String())
}

// renderFrame draws content in a frame sized by the window and places it
// according to the mode.
func (a *App) renderFrame(styles *Styles, content string) string {
	cols, rows := a.win.Frame()
	if cols <= 2 || rows <= 2 {
		return styles.FrameStyle.Render(content)
	}
	frame := styles.FrameStyle.
		Width(cols - 2).
		Height(rows - 2).
		MaxWidth(cols).
		MaxHeight(rows).
		Render(content)

	switch a.ctrl.Mode() {
	case window.ModePostIt:
		return lipgloss.Place(a.width, a.height, lipgloss.Right, lipgloss.Top, frame)
	case window.ModeCalendar:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, frame)
	}
	return frame
}

// renderTitleBar creates the top bar with the window state.
func (a *App) renderTitleBar(styles *Styles) string {
	parts := []string{styles.TitleStyle.Render(" cycle planner ")}

	if mode := a.ctrl.Mode(); mode != window.ModeNormal {
		parts = append(parts, styles.ModeStyle.Render(mode.String()))
	}
	if on, err := a.win.IsAlwaysOnTop(); err == nil && on {
		parts = append(parts, styles.PinStyle.Render("pinned"))
	}
	if opacity := a.win.Opacity(); opacity < window.MaxOpacity {
		parts = append(parts, styles.StatLabelStyle.Render(fmt.Sprintf("%d%%", int(math.Round(opacity*100)))))
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderNamePrompt(styles *Styles) string {
	var b strings.Builder
	b.WriteString(styles.PaneTitleStyle.Render("New cycle"))
	b.WriteString("\n")
	b.WriteString(styles.InputPromptStyle.Render("Name: "))
	b.WriteString(a.input.View())
	b.WriteString("\n")
	return b.String()
}

// renderBrowser lists the cycles and summarizes the selected one.
func (a *App) renderBrowser(styles *Styles) string {
	var b strings.Builder
	b.WriteString(styles.PaneTitleStyle.Render("Cycles"))
	b.WriteString("\n")

	if a.index == nil {
		b.WriteString(styles.StatLabelStyle.Render("Loading…"))
		b.WriteString("\n")
		return b.String()
	}

	cycles := a.cycles()
	if len(cycles) == 0 {
		b.WriteString(styles.StatLabelStyle.Render("No cycles yet. Press n to create one or i to import a folder."))
		b.WriteString("\n")
		return b.String()
	}

	selected := a.index.Selected()
	for i, c := range cycles {
		mark := styles.CycleUnselectedMark
		if c.ID == selected {
			mark = styles.CycleSelectedMark
		}
		line := mark + " " + displayName(c.Name)
		if i == a.cursor {
			b.WriteString(styles.CycleCursorStyle.Render("> " + line))
		} else {
			b.WriteString(styles.CycleStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if meta, ok := a.index.Find(selected); ok {
		b.WriteString("\n")
		b.WriteString(a.renderSelected(styles, meta))
	}
	return b.String()
}

func (a *App) renderSelected(styles *Styles, meta storage.CycleMeta) string {
	var b strings.Builder
	b.WriteString(styles.PaneTitleStyle.Render(displayName(meta.Name)))
	b.WriteString("\n")
	b.WriteString(styles.PathStyle.Render(pathutil.Display(meta.FolderPath)))
	b.WriteString("\n")
	if meta.CreatedAt != "" {
		b.WriteString(styles.StatLabelStyle.Render("Created " + meta.CreatedAt))
		b.WriteString("\n")
	}

	if a.cycle == nil || a.cycle.ID != meta.ID {
		return b.String()
	}
	stat := func(label string, n int) string {
		return styles.StatLabelStyle.Render(label+" ") + styles.StatValueStyle.Render(fmt.Sprint(n))
	}
	b.WriteString(strings.Join([]string{
		stat("Goals", len(a.cycle.Goals)),
		stat("Works", len(a.cycle.Works)),
		stat("Tasks", len(a.cycle.Tasks)),
	}, "  "))
	b.WriteString("\n")
	return b.String()
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar(styles *Styles) string {
	if a.status != "" {
		if a.statusErr {
			return styles.ErrorStyle.Render(a.status)
		}
		return styles.StatusStyle.Render(a.status)
	}

	switch a.state {
	case stateName:
		return styles.RenderHelp(
			"enter", "choose folder",
			"esc", "cancel",
		)
	case statePickParent, statePickImport:
		return ""
	}
	return styles.renderBindings(a.keys.ShortHelp())
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program with the given storage backend, styles, and config.
func Run(store *storage.Storage, styles *Styles, cfg *AppConfig) error {
	app := NewApp(store, styles, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
