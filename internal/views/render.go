package views

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth = 112
	// below this the side panel goes under the main one
	stackWidth = 90
	sideWidth  = 46
)

type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	IsError      bool
	Footer       string
	Notification string
	// Width is the terminal width; zero means unknown.
	Width int
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	todayStyle    = lipgloss.NewStyle().Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// paneWidths splits the terminal between the main and side panes, borders included.
func paneWidths(total int) (main, side int, stacked bool) {
	if total <= 0 {
		total = defaultWidth
	}
	frame := panelStyle.GetHorizontalFrameSize()
	if total < stackWidth {
		return total - frame, total - frame, true
	}
	return total - sideWidth - 2*frame, sideWidth, false
}

func RenderApp(data AppData) string {
	mainW, sideW, stacked := paneWidths(data.Width)
	left := panelStyle.Width(mainW).Render(data.LeftPane)
	right := panelStyle.Width(sideW).Render(data.RightPane)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	style := statusStyle
	if data.IsError {
		style = errorStyle
	}

	parts := []string{headerStyle.Render(data.Header), body}
	if data.StatusLine != "" {
		parts = append(parts, style.Render(data.StatusLine))
	}
	if data.Notification != "" {
		parts = append(parts, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		parts = append(parts, footerStyle.Render(data.Footer))
	}
	return strings.Join(parts, "\n")
}

var (
	markdownMu        sync.Mutex
	markdownRenderers = map[int]*glamour.TermRenderer{}
)

func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if r, ok := markdownRenderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	markdownRenderers[width] = r
	return r, nil
}

// RenderMarkdown renders coach replies. The input is returned unchanged if rendering fails.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := markdownRenderer(width)
	if err != nil {
		return md
	}
	markdownMu.Lock()
	out, err := r.Render(md)
	markdownMu.Unlock()
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// ProgressBar draws a fixed-width bar for percent in [0, 100].
func ProgressBar(percent float64, width int) string {
	percent = min(max(percent, 0), 100)
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func percentLabel(p float64) string {
	return fmt.Sprintf("%3.0f%%", p)
}
