package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/layout"
	"github.com/matzehuels/loomviz/pkg/selection"
)

var (
	browseHintStyle  = lipgloss.NewStyle().Foreground(colorDim)
	browseErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	browsePaneStyle  = lipgloss.NewStyle().PaddingLeft(1)
)

// Terminal cells are drawn as this many layout units so the fit matches
// what a browser window of the same size would show.
const (
	cellWidth  = 8
	cellHeight = 16
)

// Pan step in viewport units and zoom factor per key press.
const (
	panStep    = 40
	zoomFactor = 1.25
)

func (c *CLI) browseCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the feed interactively",
		Long: `Browse opens a terminal browser over the feed. Move with ↑/↓ and press
enter to select an API; its pipeline and steps are shown below the list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term := &termRenderer{}
			s, err := c.loadSession(cmd.Context(), detailed, selection.WithRenderer(term))
			if err != nil {
				return err
			}
			m := newBrowseModel(cmd.Context(), s.ctrl, term)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "include output types and timeouts in step labels")
	return cmd
}

// =============================================================================
// termRenderer - selection.Renderer for the terminal
// =============================================================================

// termRenderer records the last drawn view. The bubbletea model reads it
// back on every frame; the controller writes it from command goroutines.
type termRenderer struct {
	mu   sync.Mutex
	vp   layout.Viewport
	view *selection.View
}

func (r *termRenderer) Clear() {
	r.mu.Lock()
	r.view = nil
	r.mu.Unlock()
}

func (r *termRenderer) Draw(v selection.View) error {
	r.mu.Lock()
	r.view = &v
	r.mu.Unlock()
	return nil
}

func (r *termRenderer) Viewport() layout.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vp.Width <= 0 || r.vp.Height <= 0 {
		return selection.DefaultViewport
	}
	return r.vp
}

func (r *termRenderer) resize(cols, rows int) {
	r.mu.Lock()
	r.vp = layout.Viewport{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
	r.mu.Unlock()
}

// =============================================================================
// browseModel - Interactive feed browser
// =============================================================================

// viewMsg reports the outcome of a selection.
type viewMsg struct{ err error }

// reloadMsg reports the outcome of a feed reload.
type reloadMsg struct{ err error }

// browseModel is the bubbletea model behind `loomviz browse`. Selection
// state lives in the controller; the model only tracks the list cursor.
type browseModel struct {
	ctx  context.Context
	ctrl *selection.Controller
	term *termRenderer

	APIs   []descriptor.API
	Cursor int
	Offset int
	Height int
	Err    error
}

func newBrowseModel(ctx context.Context, ctrl *selection.Controller, term *termRenderer) browseModel {
	m := browseModel{ctx: ctx, ctrl: ctrl, term: term, Height: 10}
	m.sync()
	return m
}

// sync pulls the feed and cursor from the controller.
func (m *browseModel) sync() {
	m.APIs = m.ctrl.Store().All()
	if i := m.ctrl.Index(); i >= 0 {
		m.Cursor = i
	}
	m.Cursor = min(m.Cursor, max(len(m.APIs)-1, 0))
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m browseModel) selectCmd(index int) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Select(m.ctx, index)
		return viewMsg{err: err}
	}
}

func (m browseModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		return reloadMsg{err: m.ctrl.Load(m.ctx)}
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.term.resize(msg.Width, msg.Height)
		m.Height = max(msg.Height/3, 5)
		m.scroll()
		m.Err = m.ctrl.Refit()
	case viewMsg:
		m.Err = msg.err
	case reloadMsg:
		m.Err = msg.err
		m.sync()
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.term.Viewport()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.scroll()
		}
	case "down", "j":
		if m.Cursor < len(m.APIs)-1 {
			m.Cursor++
			m.scroll()
		}
	case "enter", " ":
		if len(m.APIs) > 0 {
			return m, m.selectCmd(m.Cursor)
		}
	case "r":
		return m, m.reloadCmd()
	case "+", "=":
		m.ctrl.ZoomAt(zoomFactor, vp.Width/2, vp.Height/2)
	case "-":
		m.ctrl.ZoomAt(1/zoomFactor, vp.Width/2, vp.Height/2)
	case "left", "h":
		m.ctrl.Pan(panStep, 0)
	case "right", "l":
		m.ctrl.Pan(-panStep, 0)
	case "0":
		m.ctrl.ResetZoom()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("loom APIs"))
	b.WriteString("  ")
	b.WriteString(browseHintStyle.Render(m.ctrl.Store().Source().Name()))
	b.WriteString("\n")
	b.WriteString(browseHintStyle.Render("↑/↓ navigate  ⏎ select  +/- zoom  ←/→ pan  0 fit  r reload  q quit"))
	b.WriteString("\n\n")

	if len(m.APIs) == 0 {
		b.WriteString(browseHintStyle.Render("The feed has no APIs."))
	} else {
		end := min(m.Offset+m.Height, len(m.APIs))
		b.WriteString(apiTable(m.APIs[m.Offset:end], m.Offset, m.Cursor))
		b.WriteString("\n")
		b.WriteString(browseHintStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.APIs))))
	}
	b.WriteString("\n\n")

	if v, ok := m.ctrl.Current(); ok {
		b.WriteString(browsePaneStyle.Render(m.viewPane(v)))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(browseErrorStyle.Render(iconError + " " + errs.UserMessage(m.Err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) viewPane(v selection.View) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(v.Title))
	b.WriteString("\n")
	b.WriteString(pipelineLine(v.Stages))
	b.WriteString("\n\n")

	switch {
	case v.Err != nil:
		b.WriteString(browseErrorStyle.Render(errs.UserMessage(v.Err)))
	case v.Graph == nil || v.Graph.IsEmpty():
		b.WriteString(browseHintStyle.Render("No processing steps"))
	default:
		b.WriteString(stepTable(v.Graph))
		b.WriteString("\n")
		b.WriteString(browseHintStyle.Render(fmt.Sprintf("zoom %s", m.ctrl.Transform())))
	}
	return b.String()
}
