package transport

import (
	"fmt"
	"regexp"
	"sync"
)

// TLSFailureSignature matches diagnostics raised by the secure layer.
var TLSFailureSignature = regexp.MustCompile(`(?i)ssl|tls`)

// Capture collects warning-level diagnostics raised while connecting.
// The zero value is ready to use.
type Capture struct {
	mu       sync.Mutex
	warnings []string
}

// Warn records a diagnostic.
func (c *Capture) Warn(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns a copy of all recorded diagnostics in order.
func (c *Capture) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warnings...)
}

// Match returns the recorded diagnostics matching re.
func (c *Capture) Match(re *regexp.Regexp) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, w := range c.warnings {
		if re.MatchString(w) {
			out = append(out, w)
		}
	}
	return out
}

// Reset drops all recorded diagnostics.
func (c *Capture) Reset() {
	c.mu.Lock()
	c.warnings = nil
	c.mu.Unlock()
}
