// Package ui provides styled terminal output helpers (success, error,
// stop and insight formatting) using lipgloss.
package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	costStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	nextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	statusStyles = map[itinerary.Status]lipgloss.Style{
		itinerary.StatusPlanned: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		itinerary.StatusVisited: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		itinerary.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

var highlightStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("45")).
	Padding(0, 1)

// Setup downgrades styling when stdout is not a terminal or the user asked
// for no color. Call once at startup.
func Setup() {
	if !term.IsTerminal(int(os.Stdout.Fd())) || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("Error: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints a plain message.
func Info(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// JSON prints v as indented JSON for scripting.
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ShortID shortens a stop id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// StatusBadge returns a status indicator with symbol,
// e.g. "○ planned", "✓ visited", "~ skipped".
func StatusBadge(status itinerary.Status) string {
	symbols := map[itinerary.Status]string{
		itinerary.StatusPlanned: "○",
		itinerary.StatusVisited: "✓",
		itinerary.StatusSkipped: "~",
	}
	symbol, ok := symbols[status]
	if !ok {
		symbol = "?"
	}
	if style, has := statusStyles[status]; has {
		return style.Render(fmt.Sprintf("%s %s", symbol, status))
	}
	return fmt.Sprintf("%s %s", symbol, status)
}

// FormatMoney renders a cost estimate without trailing zeros.
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatStopLine formats a stop in short, one-line form.
func FormatStopLine(st itinerary.Stop, isNext bool) string {
	var parts []string
	parts = append(parts, subtleStyle.Render(ShortID(st.ID)))
	parts = append(parts, st.ScheduledAt.Format("Mon 02 Jan 15:04"))
	if isNext {
		parts = append(parts, nextStyle.Render("▸ "+st.Title))
	} else {
		parts = append(parts, titleStyle.Render(st.Title))
	}
	if st.Cost > 0 {
		parts = append(parts, costStyle.Render(FormatMoney(st.Cost)))
	}
	parts = append(parts, StatusBadge(st.Status))
	return strings.Join(parts, "  ")
}

// FormatStopLong formats a stop with every field on its own line.
func FormatStopLong(st itinerary.Stop) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(st.Title))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  id:        %s\n", st.ID)
	fmt.Fprintf(&sb, "  when:      %s\n", st.ScheduledAt.Format("Monday, 2 January 2006 at 15:04"))
	fmt.Fprintf(&sb, "  address:   %s\n", st.Address)
	fmt.Fprintf(&sb, "  status:    %s\n", StatusBadge(st.Status))
	fmt.Fprintf(&sb, "  cost:      %s\n", FormatMoney(st.Cost))
	if st.Notes != "" {
		fmt.Fprintf(&sb, "  notes:     %s\n", st.Notes)
	}
	return sb.String()
}

// Highlight wraps content in a bordered block. Used for the next stop.
func Highlight(content string) string {
	return highlightStyle.Render(strings.TrimRight(content, "\n"))
}

// SourceBadge describes where an insight answer came from.
func SourceBadge(src insight.Source) string {
	switch src {
	case insight.SourceCache:
		return subtleStyle.Render("(cached)")
	case insight.SourceOffline:
		return warningStyle.Render("(offline tips)")
	case insight.SourceOnline:
		return successStyle.Render("(fresh)")
	}
	return ""
}

// FormatInsight renders an insight payload for the terminal.
func FormatInsight(ins insight.Insight) string {
	var sb strings.Builder
	header := ins.Title
	if header == "" {
		header = ins.StopID
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString(" " + SourceBadge(ins.Source))
	if !ins.GeneratedAt.IsZero() && ins.Source != insight.SourceOffline {
		sb.WriteString(" " + subtleStyle.Render("generated "+FormatTimeAgo(ins.GeneratedAt)))
	}
	sb.WriteString("\n")

	sections := []struct {
		name string
		text insight.FlexText
	}{
		{"Costs", ins.Costs},
		{"Weather", ins.Weather},
		{"Recommendations", ins.Recommendations},
		{"Tips", ins.Tips},
	}
	for _, sec := range sections {
		if sec.text == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render(sec.name + ":"))
		sb.WriteString("\n  " + string(sec.text) + "\n")
	}
	return sb.String()
}

// FormatTimeAgo formats a time as a human-readable "ago" string.
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
