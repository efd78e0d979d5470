// Package wizard implements the interactive Bubble Tea TUI for
// meldmc-installer. The wizard loads the version catalog in the background,
// then walks through four stages: channel, version, Minecraft directory and
// a final confirmation screen. It only collects a Selection; installing is
// the caller's job. When Options.Yes is true the TUI is skipped and Run
// returns the newest version of the requested channel.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/platform"
)

// ErrCancelled is returned by Run when the user quits before confirming.
var ErrCancelled = errors.New("installation cancelled")

// Source is what the wizard needs from the install service.
type Source interface {
	Refresh(ctx context.Context) (*catalog.LoadReport, error)
	ListVersions(ch catalog.Channel) []catalog.Entry
}

// Options controls wizard behaviour.
type Options struct {
	// Channel is highlighted first, and used by Yes.
	Channel catalog.Channel
	// DefaultMinecraftDir pre-fills the directory input.
	DefaultMinecraftDir string
	// Yes skips the TUI and selects the newest version of Channel.
	Yes bool
}

// Selection is what the user confirmed.
type Selection struct {
	Channel      catalog.Channel
	Index        int
	Version      catalog.Entry
	MinecraftDir string
}

// Run shows the interactive wizard and returns the user's selection.
func Run(ctx context.Context, src Source, opts Options) (*Selection, error) {
	if opts.Yes {
		if _, err := src.Refresh(ctx); err != nil {
			return nil, err
		}
		return defaultSelection(src.ListVersions(opts.Channel), opts)
	}

	model := newModel(ctx, src, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	result := final.(wizardModel)
	if result.cancelled || !result.confirmed {
		return nil, ErrCancelled
	}
	return result.toSelection(), nil
}

// ── styles ────────────────────────────────────────────────────────────────────

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = dimStyle
)

// listHeight is how many versions are visible at once.
const listHeight = 10

// ── model stages ─────────────────────────────────────────────────────────────

type stage int

const (
	stageLoading stage = iota // waiting for the catalog
	stageChannel              // release or snapshot
	stageVersion              // pick a version in the channel
	stageDir                  // Minecraft directory
	stageConfirm              // confirm / cancel
)

// catalogMsg carries the result of a background Refresh into Update.
type catalogMsg struct {
	versions map[catalog.Channel][]catalog.Entry
	report   *catalog.LoadReport
	err      error
}

type wizardModel struct {
	load      tea.Cmd
	versions  map[catalog.Channel][]catalog.Entry
	warning   string
	errMsg    string
	dirInput  textinput.Model
	stage     stage
	channel   int // index into catalog.Channels
	cursor    int // index into the channel's versions
	cancelled bool
	confirmed bool
}

func newModel(ctx context.Context, src Source, opts Options) wizardModel {
	dir := opts.DefaultMinecraftDir
	if dir == "" {
		dir = defaultDir()
	}

	di := textinput.New()
	di.Placeholder = "~/.minecraft"
	di.SetValue(dir)
	di.Width = 60

	return wizardModel{
		load:     loadCatalog(ctx, src),
		stage:    stageLoading,
		dirInput: di,
		channel:  channelIndex(opts.Channel),
	}
}

// loadCatalog refreshes src off the UI loop. The entries are copied into the
// message so the model only changes inside Update.
func loadCatalog(ctx context.Context, src Source) tea.Cmd {
	return func() tea.Msg {
		report, err := src.Refresh(ctx)
		msg := catalogMsg{versions: map[catalog.Channel][]catalog.Entry{}, report: report, err: err}
		for _, ch := range catalog.Channels {
			msg.versions[ch] = src.ListVersions(ch)
		}
		return msg
	}
}

// ── tea.Model interface ───────────────────────────────────────────────────────

func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load)
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogMsg:
		return m.applyCatalog(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	if m.stage == stageDir {
		m.dirInput, cmd = m.dirInput.Update(msg)
	}
	return m, cmd
}

func (m wizardModel) applyCatalog(msg catalogMsg) wizardModel {
	m.versions = msg.versions
	m.warning = ""
	m.errMsg = ""
	switch {
	case msg.err != nil:
		m.errMsg = "Unable to load versions: " + msg.err.Error()
		m.stage = stageLoading
		return m
	case msg.report != nil && msg.report.Degraded():
		var missing []string
		for _, c := range msg.report.Channels {
			if c.Err != nil || c.Count == 0 {
				missing = append(missing, c.Channel.Title())
			}
		}
		m.warning = "No versions listed for: " + strings.Join(missing, ", ")
	}
	m.stage = stageChannel
	m.cursor = 0
	return m
}

func (m wizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageLoading:
		return m.handleLoadingKey(msg)
	case stageChannel:
		return m.handleChannelKey(msg)
	case stageVersion:
		return m.handleVersionKey(msg)
	case stageDir:
		return m.handleDirKey(msg)
	case stageConfirm:
		return m.handleConfirmKey(msg)
	}
	return m, nil
}

func (m wizardModel) handleLoadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "r":
		if m.errMsg != "" {
			m.errMsg = ""
			return m, m.load
		}
	}
	return m, nil
}

func (m wizardModel) handleChannelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.channel > 0 {
			m.channel--
		}
	case "down", "j":
		if m.channel < len(catalog.Channels)-1 {
			m.channel++
		}
	case "enter":
		if len(m.channelVersions()) == 0 {
			m.errMsg = fmt.Sprintf("No %s versions available", m.currentChannel())
			return m, nil
		}
		m.errMsg = ""
		m.cursor = 0
		m.stage = stageVersion
	}
	return m, nil
}

func (m wizardModel) handleVersionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.channelVersions())
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "left", "h", "backspace":
		m.stage = stageChannel
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(n-1, 0)
	case "enter":
		m.stage = stageDir
		m.dirInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m wizardModel) handleDirKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "shift+tab":
		m.dirInput.Blur()
		m.stage = stageVersion
		return m, nil
	case "enter":
		if strings.TrimSpace(m.dirInput.Value()) == "" {
			m.errMsg = "Minecraft directory is required"
			return m, nil
		}
		m.errMsg = ""
		m.dirInput.Blur()
		m.stage = stageConfirm
		return m, nil
	}
	var cmd tea.Cmd
	m.dirInput, cmd = m.dirInput.Update(msg)
	return m, cmd
}

func (m wizardModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n", "N":
		m.cancelled = true
		return m, tea.Quit
	case "b", "left":
		m.stage = stageDir
		m.dirInput.Focus()
		return m, textinput.Blink
	case "enter", "y", "Y":
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

// ── View ──────────────────────────────────────────────────────────────────────

func (m wizardModel) View() string {
	switch m.stage {
	case stageLoading:
		return m.viewLoading()
	case stageChannel:
		return m.viewChannel()
	case stageVersion:
		return m.viewVersion()
	case stageDir:
		return m.viewDir()
	case stageConfirm:
		return m.viewConfirm()
	}
	return ""
}

func header(sub string) string {
	return titleStyle.Render("  MeldMC") + "  " + sub + "\n\n"
}

func (m wizardModel) viewLoading() string {
	var b strings.Builder
	b.WriteString(header("installer"))
	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render("✖ "+m.errMsg) + "\n\n")
		b.WriteString(helpStyle.Render("  r retry · esc quit"))
		return b.String()
	}
	b.WriteString("  " + dimStyle.Render("Loading versions...") + "\n\n")
	b.WriteString(helpStyle.Render("  esc quit"))
	return b.String()
}

func (m wizardModel) viewChannel() string {
	var b strings.Builder
	b.WriteString(header("select channel"))
	if m.warning != "" {
		b.WriteString("  " + warnStyle.Render("! "+m.warning) + "\n\n")
	}
	for i, ch := range catalog.Channels {
		count := dimStyle.Render(fmt.Sprintf("%d versions", len(m.versions[ch])))
		b.WriteString(renderRow(i == m.channel, fmt.Sprintf("%-10s", ch.Title()), count))
	}
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render("✖ "+m.errMsg) + "\n\n")
	}
	b.WriteString(helpStyle.Render("  ↑↓ move · enter select · esc quit"))
	return b.String()
}

func (m wizardModel) viewVersion() string {
	var b strings.Builder
	versions := m.channelVersions()
	b.WriteString(header("select " + m.currentChannel().String() + " version"))

	start, end := window(m.cursor, len(versions), listHeight)
	if start > 0 {
		b.WriteString(dimStyle.Render("    ...") + "\n")
	}
	for i := start; i < end; i++ {
		note := ""
		if i == 0 {
			note = dimStyle.Render("latest")
		}
		b.WriteString(renderRow(i == m.cursor, fmt.Sprintf("%-24s", versions[i].ID), note))
	}
	if end < len(versions) {
		b.WriteString(dimStyle.Render("    ...") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  ↑↓ move · enter select · ← back · esc quit"))
	return b.String()
}

func (m wizardModel) viewDir() string {
	var b strings.Builder
	b.WriteString(header("installation directory"))
	b.WriteString("  " + sectionStyle.Render("Minecraft directory") + "\n")
	b.WriteString("  " + m.dirInput.View() + "\n")
	b.WriteString(dimStyle.Render("  The launcher's data directory, containing launcher_profiles.json\n\n"))
	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render("✖ "+m.errMsg) + "\n\n")
	}
	b.WriteString(helpStyle.Render("  enter next · shift+tab back · esc quit"))
	return b.String()
}

func (m wizardModel) viewConfirm() string {
	var b strings.Builder
	sel := m.toSelection()
	b.WriteString(header("ready to install"))
	b.WriteString(fmt.Sprintf("  Version:    %s\n", focusStyle.Render(sel.Version.ID)))
	b.WriteString(fmt.Sprintf("  Channel:    %s\n", focusStyle.Render(sel.Channel.Title())))
	b.WriteString(fmt.Sprintf("  Directory:  %s\n\n", focusStyle.Render(sel.MinecraftDir)))
	b.WriteString(helpStyle.Render("  Press enter to install · b back · n to cancel"))
	return b.String()
}

func renderRow(focused bool, label, note string) string {
	cursor := "  "
	style := normalStyle
	if focused {
		cursor = focusStyle.Render(" ▶")
		style = selectedStyle
	}
	return fmt.Sprintf("%s %s  %s\n", cursor, style.Render(label), note)
}

// window returns the [start, end) slice of n rows to show so that cursor is visible.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(start, 0)
	start = min(start, n-height)
	return start, start + height
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (m wizardModel) currentChannel() catalog.Channel {
	return catalog.Channels[m.channel]
}

func (m wizardModel) channelVersions() []catalog.Entry {
	return m.versions[m.currentChannel()]
}

func (m wizardModel) toSelection() *Selection {
	sel := &Selection{
		Channel:      m.currentChannel(),
		Index:        m.cursor,
		MinecraftDir: expandHome(strings.TrimSpace(m.dirInput.Value())),
	}
	if v := m.channelVersions(); m.cursor < len(v) {
		sel.Version = v[m.cursor]
	}
	return sel
}

func defaultSelection(versions []catalog.Entry, opts Options) (*Selection, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("no %s versions available", opts.Channel)
	}
	dir := opts.DefaultMinecraftDir
	if dir == "" {
		dir = defaultDir()
	}
	return &Selection{
		Channel:      opts.Channel,
		Index:        0,
		Version:      versions[0],
		MinecraftDir: expandHome(dir),
	}, nil
}

func channelIndex(ch catalog.Channel) int {
	for i, c := range catalog.Channels {
		if c == ch {
			return i
		}
	}
	return 0
}

// defaultDir is overridden in tests.
var defaultDir = platform.DefaultMinecraftDir

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
