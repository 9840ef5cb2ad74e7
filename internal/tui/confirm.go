package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MaxContentWidth caps boxes printed outside the grid editor.
const MaxContentWidth = 100

// TerminalWidth returns the stdout width clamped to the supported range.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// ConfirmDelete prints a warning box describing the row and asks for "y".
// Anything else, including end of input, keeps the row.
func ConfirmDelete(in io.Reader, out io.Writer, width int, id, summary string) bool {
	title := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true).
		Render(fmt.Sprintf("⚠  DELETE POSITION %s", id))

	lines := []string{"", title, ""}
	if summary != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("• "+summary), "")
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(MutedColor).Italic(true).
		Render("The row is removed from the document immediately."), "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	fmt.Fprintln(out, box)
	fmt.Fprint(out, lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render("Delete? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}
