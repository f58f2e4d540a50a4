// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var progressFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const progressTick = 100 * time.Millisecond

// Progress draws a one-line wait indicator on a terminal:
//
//	research task r_123 ⠹ (1m 4s) running, 6 checks
//
// Each Observe call records one status probe. On a non-terminal writer
// Progress draws nothing but still counts probes.
type Progress struct {
	w     io.Writer
	draw  bool
	label string

	mu      sync.Mutex
	status  string
	checks  int
	started time.Time
	frame   int

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewProgress returns a Progress on stderr, drawing only when stderr is a
// terminal and --json is off.
func NewProgress(label string) *Progress {
	return newProgress(os.Stderr, label, term.IsTerminal(int(os.Stderr.Fd())) && !GetJSON())
}

func newProgress(w io.Writer, label string, draw bool) *Progress {
	return &Progress{w: w, draw: draw, label: label}
}

// Start records the start time and begins drawing. Calling Start twice is a
// no-op.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.started = time.Now()
	p.stop = make(chan struct{})
	if !p.draw {
		return
	}
	p.redraw()
	p.wg.Add(1)
	go p.loop(p.stop)
}

// Observe records the status returned by one probe.
func (p *Progress) Observe(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	p.checks++
}

// Checks reports how many probes have been observed.
func (p *Progress) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// Stop ends drawing, clears the line and returns the time since Start.
func (p *Progress) Stop() time.Duration {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop == nil {
		return 0
	}

	close(stop)
	p.wg.Wait()
	if p.draw {
		fmt.Fprint(p.w, "\r\033[K")
	}
	return time.Since(p.started)
}

func (p *Progress) loop(stop <-chan struct{}) {
	defer p.wg.Done()
	t := time.NewTicker(progressTick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			p.mu.Lock()
			p.frame = (p.frame + 1) % len(progressFrames)
			p.redraw()
			p.mu.Unlock()
		}
	}
}

// redraw must be called with mu held.
func (p *Progress) redraw() {
	fmt.Fprint(p.w, "\r\033[K"+p.line())
}

func (p *Progress) line() string {
	frame := progressFrames[p.frame]
	if !ColorEnabled() {
		frame = "..."
	}
	s := fmt.Sprintf("%s %s %s", p.label, Muted.Render(frame),
		Muted.Render("("+FormatElapsed(time.Since(p.started))+")"))
	if p.status == "" {
		return s
	}
	s += " " + StatusInfo.Render(p.status)
	if p.checks == 1 {
		return s + Muted.Render(", 1 check")
	}
	return s + Muted.Render(fmt.Sprintf(", %d checks", p.checks))
}

// FormatElapsed renders d as "12s", "3m" or "1m 23s".
func FormatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	switch m, s := secs/60, secs%60; {
	case m == 0:
		return fmt.Sprintf("%ds", s)
	case s == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dm %ds", m, s)
	}
}
