package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressBar shows a simple progress bar
type ProgressBar struct {
	total   int
	current int
	width   int
	label   string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{
		total: total,
		width: 40,
		label: label,
	}
}

// Increment increments the progress by 1
func (p *ProgressBar) Increment() {
	p.Update(p.current + 1)
}

// Update sets the progress and redraws
func (p *ProgressBar) Update(current int) {
	p.current = current
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}
	percent := float64(p.current) / float64(p.total) * 100

	if !IsTerminal() {
		// pipes get one line at the end
		if p.current >= p.total {
			fmt.Fprintf(out, "%s: %d/%d (%.1f%%)\n", p.label, p.current, p.total, percent)
		}
		return
	}

	filled := p.width * p.current / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(out, "\r%s [%s] %d/%d (%.1f%%)", p.label, bar, p.current, p.total, percent)
	if p.current >= p.total {
		fmt.Fprintln(out)
	}
}

// Spinner shows an animated spinner for indeterminate progress
type Spinner struct {
	chars []string
	label string
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{
		chars: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		label: label,
		done:  make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	if !IsTerminal() {
		fmt.Fprintf(out, "%s...\n", s.label)
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(s.chars) {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(out, "\r%s %s", s.chars[i], s.label)
			}
		}
	}()
}

// Stop stops the spinner. It is safe to call once.
func (s *Spinner) Stop() {
	close(s.done)
	s.wg.Wait()
	if IsTerminal() {
		fmt.Fprint(out, "\r"+strings.Repeat(" ", len(s.label)+4)+"\r")
	}
}
