package commands

import (
	"crypto/tls"
	"fmt"
	"io"

	"github.com/linesock/linesock-go/pkg/config"
	"github.com/linesock/linesock-go/pkg/readiness"
	"github.com/linesock/linesock-go/pkg/transport"
)

// RunProbe prints the environment and the strategy sockets would use.
func RunProbe(cfg *config.Config, w io.Writer) {
	env := readiness.Probe()
	mode := cfg.ReadinessMode()
	detected := readiness.Classify(env, cfg.Readiness.PollOn)
	strategy := readiness.Resolve(mode, cfg.Readiness.PollOn, nil)

	fmt.Fprintln(w, "=== linesock Environment ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "OS:              %s\n", env.OS)
	fmt.Fprintf(w, "Machine:         %s\n", env.Machine)
	fmt.Fprintf(w, "Runtime:         %s\n", env.RuntimeVersion)
	fmt.Fprintf(w, "64-bit:          %t\n", env.Is64Bit())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Configured mode: %s\n", mode)
	fmt.Fprintf(w, "Classified as:   %s\n", detected)
	fmt.Fprintf(w, "Strategy:        %s\n", strategy.Mode())
	fmt.Fprintf(w, "Polling rules:   %d\n", len(cfg.Readiness.PollOn))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "TLS available:   %t\n", cfg.TLSSupported())
	fmt.Fprintf(w, "TLS versions:    %s, %s\n", transport.VersionName(tls.VersionTLS12), transport.VersionName(tls.VersionTLS13))
	fmt.Fprintf(w, "Strictly secure: %t\n", cfg.StrictlySecure)
	fmt.Fprintf(w, "Default timeout: %s\n", cfg.Timeout())
}
