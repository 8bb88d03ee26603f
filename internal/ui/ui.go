// Package ui renders jellyfix output for terminals and pipes.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	// Detect if we're in a terminal
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = os.Getenv("NO_COLOR") == ""

	out io.Writer = os.Stdout
	in  io.Reader = os.Stdin
)

// DisableColors disables all color output
func DisableColors() {
	colorEnabled = false
	initStyles()
}

// EnableColors enables color output when stdout is a terminal
func EnableColors() {
	colorEnabled = true
	initStyles()
}

// IsTerminal checks if stdout is a terminal with color enabled
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// SetOutput redirects all ui output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// SetInput replaces the reader used by Confirm. It returns the previous reader.
func SetInput(r io.Reader) io.Reader {
	prev := in
	in = r
	return prev
}

// Output returns the current ui writer
func Output() io.Writer {
	return out
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(out)
	if IsTerminal() {
		fmt.Fprintln(out, Action("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(out, strings.ToUpper(title))
	fmt.Fprintln(out, strings.Repeat("=", len(title)))
}

// FormatBytes formats bytes to human-readable format using go-humanize
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatCount renders n with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatTime renders t relative to now ("3 minutes ago")
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// Confirm prompts for user confirmation. A non-interactive stdin answers no.
func Confirm(prompt string) bool {
	if f, ok := in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		return false
	}

	fmt.Fprint(out, prompt+" (y/N): ")
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
