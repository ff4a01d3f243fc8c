package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/interceptor"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	// Step classes, matching the SVG palette.
	styleClass = map[graphview.Class]lipgloss.Style{
		graphview.ClassRequired: lipgloss.NewStyle().Foreground(colorBlue),
		graphview.ClassOptional: lipgloss.NewStyle().Foreground(colorGray),
		graphview.ClassTerminal: lipgloss.NewStyle().Foreground(colorGreen),
	}
	styleStage = map[interceptor.Kind]lipgloss.Style{
		interceptor.Request:     lipgloss.NewStyle().Foreground(colorGray),
		interceptor.Interceptor: lipgloss.NewStyle().Foreground(colorYellow),
		interceptor.Execution:   lipgloss.NewStyle().Foreground(colorGreen),
	}
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCursor  = "▸"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Feed Display
// =============================================================================

// apiTable renders apis as a table. first is the feed index of apis[0],
// so a scrolled window keeps its real indexes; cursor is a feed index and
// -1 marks no row.
func apiTable(apis []descriptor.API, first, cursor int) string {
	rows := make([][]string, len(apis))
	for i, a := range apis {
		mark := " "
		if first+i == cursor {
			mark = iconCursor
		}
		rows[i] = []string{mark, strconv.Itoa(first + i), a.Method, a.Path, a.Type,
			strconv.Itoa(len(a.Interceptors)), strconv.Itoa(len(a.Nodes))}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Method", "Path", "Type", "Stages", "Steps").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if first+row == cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if row < len(apis) && apis[row].IsPassthrough() {
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}

// pipelineLine renders the interceptor stages as a colored arrow chain,
// or a dim placeholder when the API has none.
func pipelineLine(stages []interceptor.Stage) string {
	if len(stages) == 0 {
		return StyleDim.Render("no interceptors")
	}
	parts := make([]string, len(stages))
	for i, s := range stages {
		label := s.Label()
		if b := s.Badge(); b != "" {
			label += StyleDim.Render(" " + b)
		}
		parts[i] = styleStage[s.Kind].Render(label)
	}
	return strings.Join(parts, StyleDim.Render(" "+iconArrow+" "))
}

// stepTable lists a step graph with each step's consumers.
func stepTable(g *graphview.Graph) string {
	next := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		next[e.From] = append(next[e.From], e.To)
	}
	rows := make([][]string, len(g.Nodes))
	for i, n := range g.Nodes {
		rows[i] = []string{n.Name, string(n.Class), strings.ReplaceAll(n.Label, "\n", " "), strings.Join(next[n.Name], ", ")}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Step", "Class", "Label", "Feeds").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 && row < len(g.Nodes) {
				return styleClass[g.Nodes[row].Class]
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
