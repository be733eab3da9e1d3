// Package ui renders styled terminal output for the CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	primaryColor   = lipgloss.Color("#00B3D9")
	successColor   = lipgloss.Color("#00C97A")
	warningColor   = lipgloss.Color("#FFB800")
	errorColor     = lipgloss.Color("#FF4444")
	secondaryColor = lipgloss.Color("#6C757D")

	titleStyle     = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	sectionStyle   = lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Underline(true)
	secondaryStyle = lipgloss.NewStyle().Foreground(secondaryColor)
)

// PrintHeader prints a bordered header with a title and subtitle.
func PrintHeader(title, subtitle string) {
	width := 72
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	box := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(
			lipgloss.Center,
			titleStyle.Render(title),
			secondaryStyle.Render(subtitle),
		))

	fmt.Println(box)
	fmt.Println()
}

// PrintSuccess prints a success message.
func PrintSuccess(format string, args ...interface{}) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message.
func PrintWarning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// PrintSection prints a section heading.
func PrintSection(title string) {
	fmt.Println(sectionStyle.Render(title))
}

// PrintInfo prints an informational line.
func PrintInfo(format string, args ...interface{}) {
	fmt.Println("  " + fmt.Sprintf(format, args...))
}

// PrintList prints items as a bulleted list.
func PrintList(items []string) {
	for _, item := range items {
		fmt.Println(secondaryStyle.Render("  • ") + item)
	}
}

// PrintSQL prints a labelled SQL statement with its bind values.
func PrintSQL(label, stmt string, values []interface{}) {
	color.New(color.FgCyan, color.Bold).Println(label)
	fmt.Println("  " + stmt)
	if len(values) > 0 {
		fmt.Println(secondaryStyle.Render(fmt.Sprintf("  values: %v", values)))
	}
	fmt.Println()
}
