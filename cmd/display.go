// File: cmd/display.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/arqv30/arqv-cli/internal/notify"
	"github.com/arqv30/arqv-cli/internal/progress"
)

// progressDisplay renders simulated progress. On a terminal it overwrites a
// single line; otherwise it prints one line per phase change.
type progressDisplay struct {
	w   io.Writer
	tty bool

	mu        sync.Mutex
	lastPhase int
	width     int
}

func newProgressDisplay(w io.Writer) *progressDisplay {
	return &progressDisplay{w: w, tty: isTerminal(w), lastPhase: -1}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progressLine formats one progress state, e.g.
// "[ 37%] 5/13 Building the archaeological avatar  ETA 0:31".
func progressLine(s progress.State) string {
	return fmt.Sprintf("[%3d%%] %s %s  ETA %s", int(s.Percent), s.StepCounter(), s.Label, s.RemainingText())
}

// Update is a progress.WithOnUpdate callback.
func (d *progressDisplay) Update(s progress.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := progressLine(s)
	if d.tty {
		pad := ""
		if n := d.width - len(line); n > 0 {
			pad = strings.Repeat(" ", n)
		}
		fmt.Fprintf(d.w, "\r%s%s", line, pad)
		d.width = len(line)
		return
	}
	if s.Phase != d.lastPhase {
		fmt.Fprintln(d.w, line)
		d.lastPhase = s.Phase
	}
}

// Finish ends an overwritten line so later output starts on a fresh one.
func (d *progressDisplay) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tty && d.width > 0 {
		fmt.Fprintln(d.w)
		d.width = 0
	}
	d.lastPhase = -1
}

// notificationPrinter prints every notification as it becomes visible. An
// active progress line is ended first.
func notificationPrinter(w io.Writer, display *progressDisplay) notify.Listener {
	var mu sync.Mutex
	return func(n notify.Notification, visible bool) {
		if !visible {
			return
		}
		if display != nil {
			display.Finish()
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "[%s] %s\n", n.Kind, n.Message)
	}
}
