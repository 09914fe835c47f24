package model

import (
	"fmt"
	"io"
	"time"
)

// Progress receives byte-count callbacks during a download. Implementations
// must tolerate an unknown total (total <= 0).
type Progress interface {
	Start(total int64)
	Update(n int64)
	Close()
}

// NopProgress discards all progress events.
type NopProgress struct{}

func (NopProgress) Start(int64)  {}
func (NopProgress) Update(int64) {}
func (NopProgress) Close()       {}

// writerProgress prints throttled percentage lines to an io.Writer.
type writerProgress struct {
	w         io.Writer
	total     int64
	written   int64
	lastPrint time.Time
	interval  time.Duration
}

// NewWriterProgress returns a Progress that writes plain-text percentage
// updates to w, at most one line per 700ms.
func NewWriterProgress(w io.Writer) Progress {
	return &writerProgress{w: w, interval: 700 * time.Millisecond}
}

func (p *writerProgress) Start(total int64) {
	p.total = total
	p.written = 0
	p.lastPrint = time.Now()
}

func (p *writerProgress) Update(n int64) {
	p.written += n
	if time.Since(p.lastPrint) < p.interval {
		return
	}
	if p.total > 0 {
		pct := float64(p.written) * 100 / float64(p.total)
		fmt.Fprintf(p.w, "  progress: %.1f%% (%d/%d bytes)\n", pct, p.written, p.total)
	} else {
		fmt.Fprintf(p.w, "  progress: %d bytes\n", p.written)
	}
	p.lastPrint = time.Now()
}

// Close prints a final line with the actual byte count; an interrupted
// transfer reports less than 100%.
func (p *writerProgress) Close() {
	if p.total > 0 {
		pct := float64(p.written) * 100 / float64(p.total)
		fmt.Fprintf(p.w, "  progress: %.1f%% (%d/%d bytes)\n", pct, p.written, p.total)
	} else {
		fmt.Fprintf(p.w, "  downloaded %d bytes\n", p.written)
	}
}
