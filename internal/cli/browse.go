package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/sisara/internal/cli/formatter"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/tree"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTreeBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the tree interactively, expanding and collapsing lines",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive == nil || !app.IsInteractive() {
				return fmt.Errorf("%s needs an interactive terminal; use 'sisara tree list' instead", cmd.CommandPath())
			}
			p := tea.NewProgram(newBrowseModel(cmd.Context(), app), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(browseModel); ok && m.err != nil {
				return m.err
			}
			return nil
		}),
	}
}

// forestLoadedMsg carries a fresh read of the tree.
type forestLoadedMsg struct {
	forest []*domain.TreeNode
	err    error
}

// toggledMsg reports a persisted expand/collapse.
type toggledMsg struct {
	id  string
	err error
}

type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultBrowseKeyMap() browseKeyMap {
	return browseKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Reload, k.Quit}
}

// browseModel shows the tree honouring each line's open flag. Toggling a
// line writes the flag back so the next session opens the same way.
type browseModel struct {
	ctx  context.Context
	app  *App
	keys browseKeyMap

	forest []*domain.TreeNode
	items  []formatter.TreeItem
	cursor int

	vp     viewport.Model
	width  int
	height int

	status string
	err    error
}

func newBrowseModel(ctx context.Context, app *App) browseModel {
	vp := viewport.New(0, 0)
	vp.KeyMap = treeViewportKeyMap()
	return browseModel{
		ctx:  ctx,
		app:  app,
		keys: defaultBrowseKeyMap(),
		vp:   vp,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.load()
}

func (m browseModel) load() tea.Cmd {
	return func() tea.Msg {
		forest, err := m.app.Budget.GetAll(m.ctx)
		return forestLoadedMsg{forest: forest, err: err}
	}
}

func (m browseModel) toggle(id string, open bool) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Budget.Update(m.ctx, id, domain.LineItemPatch{IsOpen: domain.Some(open)})
		return toggledMsg{id: id, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = m.contentHeight()
		m.refresh()
		return m, nil

	case forestLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.forest = msg.forest
		m.items = formatter.ForestItems(m.forest, true)
		m.cursor = min(m.cursor, max(len(m.items)-1, 0))
		m.refresh()
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.status = "Could not save: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if len(m.items) == 0 {
			return m, nil
		}
		item := m.items[m.cursor]
		if !item.HasKids {
			return m, nil
		}
		return m, m.toggle(item.ID, item.Collapsed)

	case key.Matches(msg, m.keys.Reload):
		return m, m.load()

	case isScrollKey(msg):
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// contentHeight leaves room for the header and status bar.
func (m browseModel) contentHeight() int {
	return max(m.height-4, 1)
}

// refresh re-renders the tree into the viewport and scrolls the cursor
// into view.
func (m *browseModel) refresh() {
	lines := make([]string, len(m.items))
	for i, item := range m.items {
		line := formatter.RenderLine(item)
		if item.Detail != "" {
			line += "  " + formatter.StyleBlue.Render(item.Detail)
		}
		if i == m.cursor {
			line = formatter.StyleCursor.Render("›") + " " + line
		} else {
			line = "  " + line
		}
		lines[i] = line
	}
	m.vp.SetContent(strings.Join(lines, "\n"))

	if m.vp.Height <= 0 {
		return
	}
	switch {
	case m.cursor < m.vp.YOffset:
		m.vp.SetYOffset(m.cursor)
	case m.cursor >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m browseModel) View() string {
	var b strings.Builder
	header := formatter.StylePurple.Render("sisara") + " " + formatter.Dim("›") + " " +
		formatter.Dim(fmt.Sprintf("budget tree (%d lines)", tree.Count(m.forest)))
	b.WriteString(header + "\n")
	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	b.WriteString(sep + "\n")

	if len(m.items) == 0 {
		b.WriteString(formatter.Dim("No line items.") + "\n")
	} else {
		b.WriteString(m.vp.View() + "\n")
	}

	b.WriteString(sep + "\n")
	if m.status != "" {
		b.WriteString(formatter.StyleRed.Render(m.status))
		return b.String()
	}
	var hints []string
	if m.vp.TotalLineCount() > m.vp.Height && m.vp.Height > 0 {
		hints = append(hints, scrollIndicator(m.vp))
	}
	for _, k := range m.keys.ShortHelp() {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	b.WriteString(strings.Join(hints, "  "))
	return b.String()
}

// treeViewportKeyMap returns a restricted keymap for the tree viewport.
// Only page keys scroll; arrows move the cursor.
func treeViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
	}
}

// isScrollKey reports whether the key scrolls the viewport rather
// than moving the cursor.
func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlU, tea.KeyCtrlD:
		return true
	}
	return false
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	pct := int(vp.ScrollPercent() * 100)
	return formatter.Dim(fmt.Sprintf("[%d%%]", pct))
}
