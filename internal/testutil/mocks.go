package testutil

import (
	"fmt"
	"sync"
)

// ProgressRecorder records progress callbacks for later inspection
type ProgressRecorder struct {
	mu    sync.Mutex
	Calls []string
}

// Report matches the processor's progress callback signature
func (p *ProgressRecorder) Report(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, fmt.Sprintf("%d/%d", done, total))
}

// Last returns the last recorded call, or "" if there was none
func (p *ProgressRecorder) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Calls) == 0 {
		return ""
	}
	return p.Calls[len(p.Calls)-1]
}

// SampleCards is a small card text with one quoted part and one blank line
const SampleCards = `Paris;France
"Berlin; the capital";Germany

Madrid;Spain`

// SampleTags is the tag text aligned with SampleCards
const SampleTags = `geo, europe
geo

geo`
