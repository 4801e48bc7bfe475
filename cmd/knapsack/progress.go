package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spboyer/knapsack/internal/pipeline"
	"github.com/spboyer/knapsack/internal/spinner"
)

// progressPrinter reports pipeline events on stderr: a spinner on a
// terminal, one line per problem otherwise.
type progressPrinter struct {
	w       io.Writer
	verbose bool

	mu   sync.Mutex
	done int
	spin *spinner.Spinner
}

func newProgressPrinter(w io.Writer, verbose bool) *progressPrinter {
	return &progressPrinter{w: w, verbose: verbose}
}

// Attach registers the printer with the runner and starts the spinner when
// w is a terminal.
func (p *progressPrinter) Attach(r *pipeline.Runner, total int) {
	if isTerminal(p.w) && !p.verbose {
		p.spin = spinner.Start(p.w, fmt.Sprintf("Solving 0/%d", total))
	}
	r.OnProgress(p.listen)
}

// Stop clears the spinner, if any.
func (p *progressPrinter) Stop() {
	if p.spin != nil {
		p.spin.Stop()
	}
}

func (p *progressPrinter) listen(event pipeline.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.EventType != pipeline.EventProblemStart {
		p.done++
	}
	if p.spin != nil {
		p.spin.Update("Solving %d/%d", p.done, event.Total)
		return
	}
	if !p.verbose {
		return
	}

	switch event.EventType {
	case pipeline.EventProblemStart:
		fmt.Fprintf(p.w, "[%d/%d] Solving %s...\n", event.Num, event.Total, event.Problem) //nolint:errcheck
	case pipeline.EventProblemCached:
		fmt.Fprintf(p.w, "✓ [%d/%d] %s [cached]\n", event.Num, event.Total, event.Problem) //nolint:errcheck
	case pipeline.EventProblemComplete:
		status := "✓"
		if event.Err != nil {
			status = "✗"
		}
		fmt.Fprintf(p.w, "%s [%d/%d] %s (%v)\n", status, event.Num, event.Total, event.Problem, event.Duration) //nolint:errcheck
	case pipeline.EventProblemFailed:
		fmt.Fprintf(p.w, "✗ [%d/%d] %s: %v\n", event.Num, event.Total, event.Problem, event.Err) //nolint:errcheck
	}
}
