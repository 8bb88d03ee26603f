package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	actionStyle  lipgloss.Style
	pathStyle    lipgloss.Style

	renameStyle     lipgloss.Style
	moveStyle       lipgloss.Style
	moveRenameStyle lipgloss.Style
	deleteStyle     lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		plain := lipgloss.NewStyle()
		successStyle, errorStyle, warningStyle, infoStyle = plain, plain, plain, plain
		dimStyle, actionStyle, pathStyle = plain, plain, plain
		renameStyle, moveStyle, moveRenameStyle, deleteStyle = plain, plain, plain, plain
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	renameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	moveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	moveRenameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
}

// Success renders success text
func Success(text string) string {
	return successStyle.Render(text)
}

// Error renders error text
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning renders warning text
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info renders info text
func Info(text string) string {
	return infoStyle.Render(text)
}

// Dim renders dim text
func Dim(text string) string {
	return dimStyle.Render(text)
}

// Action renders action text
func Action(text string) string {
	return actionStyle.Render(text)
}

// Path renders path text
func Path(text string) string {
	return pathStyle.Render(text)
}

// OpType renders an operation type name in its color
func OpType(name string) string {
	switch name {
	case "rename":
		return renameStyle.Render(name)
	case "move":
		return moveStyle.Render(name)
	case "move_rename":
		return moveRenameStyle.Render(name)
	case "delete":
		return deleteStyle.Render(name)
	}
	return name
}

// SuccessMsg prints a success message
func SuccessMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg prints an error message
func ErrorMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg prints a warning message
func WarningMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg prints an info message
func InfoMsg(format string, args ...interface{}) {
	fmt.Fprintln(out, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
