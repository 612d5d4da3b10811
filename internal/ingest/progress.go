package ingest

import (
	"fmt"
	"sync"
)

// ProgressFunc receives batch progress. percent is in [0,100] and never
// decreases within one Process call; the last call always reports 100.
type ProgressFunc func(percent float64, stage string)

const (
	acquiredPercent = 10
	filesSpan       = 80
)

// progress serializes callbacks and enforces monotonic, bounded percentages.
type progress struct {
	mu    sync.Mutex
	fn    ProgressFunc
	last  float64
	total int
	done  int
}

func newProgress(fn ProgressFunc, total int) *progress {
	return &progress{fn: fn, total: total}
}

func (p *progress) report(percent float64, stage string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(percent, stage)
}

// emit must be called with mu held.
func (p *progress) emit(percent float64, stage string) {
	if percent > 100 {
		percent = 100
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(percent, stage)
}

func (p *progress) filePercent() float64 {
	if p.total == 0 {
		return acquiredPercent + filesSpan
	}
	return acquiredPercent + filesSpan*float64(p.done)/float64(p.total)
}

func (p *progress) fileStarted(index int, name string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(p.filePercent(), fmt.Sprintf("Recognizing text in %s (%d/%d)", name, index+1, p.total))
}

func (p *progress) fileDone(index int, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.fn == nil {
		return
	}
	p.emit(p.filePercent(), fmt.Sprintf("Processed %s (%d/%d)", name, index+1, p.total))
}

func (p *progress) finish(err error) {
	stage := "Complete"
	if err != nil {
		stage = "Failed"
	}
	p.report(100, stage)
}
