//go:build !windows

package overlay

import (
	"fmt"

	"clickhalo/internal/indicator"
)

// Stub implementation for platforms without overlay rendering yet. The rest
// of the program (hook, loop, API stream) still works; main degrades to
// running without on-screen indicators.

// Overlay is a stub renderer
type Overlay struct{}

// New reports that rendering is unavailable on this platform
func New(opts Options) (*Overlay, error) {
	return nil, fmt.Errorf("overlay rendering not supported on this platform")
}

// Render implements indicator.Sink (stub)
func (o *Overlay) Render(snap indicator.Snapshot) {}

// Close tears down the overlay (stub)
func (o *Overlay) Close() {}
