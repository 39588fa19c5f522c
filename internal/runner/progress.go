package runner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner displays an animated spinner with the given message on
// w. Call the returned function to stop the spinner and clear the line.
func startSpinner(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once
	go func() {
		i := 0
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", runewidth.StringWidth(message)+2)) //nolint:errcheck
				close(cleared)
				return
			case <-time.After(80 * time.Millisecond):
				fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], message) //nolint:errcheck
				i++
			}
		}
	}()
	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

const barWidth = 30

// progressBar draws a single-line determinate progress bar.
type progressBar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
}

func newProgressBar(w io.Writer, label string) *progressBar {
	return &progressBar{w: w, label: runewidth.Truncate(label, 40, "…")}
}

func (b *progressBar) set(fraction float64, animated bool) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * barWidth)

	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.w, "\r[%s%s] %3.0f%% %s", //nolint:errcheck
		strings.Repeat("█", filled),
		strings.Repeat(" ", barWidth-filled),
		fraction*100,
		b.label)
}

func (b *progressBar) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	width := barWidth + 8 + runewidth.StringWidth(b.label)
	fmt.Fprintf(b.w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
}
