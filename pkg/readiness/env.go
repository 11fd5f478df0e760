package readiness

import (
	"fmt"
	"go/version"
	"runtime"
	"strings"
	"sync"
)

// Environment identifies the process environment for classification.
type Environment struct {
	// OS is the operating system family (runtime.GOOS).
	OS string

	// Machine is the hardware name as reported by uname(2) where available,
	// otherwise runtime.GOARCH.
	Machine string

	// RuntimeVersion is the Go runtime version (runtime.Version()).
	RuntimeVersion string
}

// String returns a compact description for logs and the probe command.
func (e Environment) String() string {
	return fmt.Sprintf("%s/%s %s", e.OS, e.Machine, e.RuntimeVersion)
}

// Is64Bit reports whether the machine name denotes a 64-bit platform.
func (e Environment) Is64Bit() bool {
	return strings.Contains(e.Machine, "64")
}

var probeOnce = sync.OnceValue(func() Environment {
	return Environment{
		OS:             runtime.GOOS,
		Machine:        machine(),
		RuntimeVersion: runtime.Version(),
	}
})

// Probe returns the process environment. It is computed once and cached,
// since it depends only on the OS and runtime identity.
func Probe() Environment {
	return probeOnce()
}

// Rule matches environments that need a specific strategy.
// Empty fields match anything.
type Rule struct {
	// OS is compared case-insensitively with Environment.OS.
	OS string `yaml:"os"`

	// Machine must be a substring of Environment.Machine.
	Machine string `yaml:"machine"`

	// From is the first affected runtime version (inclusive), e.g. "go1.21.0".
	From string `yaml:"from"`

	// Until is the first fixed runtime version (exclusive).
	Until string `yaml:"until"`
}

// Validate checks that version bounds are well formed.
func (r Rule) Validate() error {
	if r.From != "" && !version.IsValid(r.From) {
		return fmt.Errorf("invalid runtime version %q in from", r.From)
	}
	if r.Until != "" && !version.IsValid(r.Until) {
		return fmt.Errorf("invalid runtime version %q in until", r.Until)
	}
	if r.From != "" && r.Until != "" && version.Compare(r.From, r.Until) >= 0 {
		return fmt.Errorf("empty version range [%s, %s)", r.From, r.Until)
	}
	return nil
}

// Matches reports whether env falls inside the rule.
func (r Rule) Matches(env Environment) bool {
	if r.OS != "" && !strings.EqualFold(r.OS, env.OS) {
		return false
	}
	if r.Machine != "" && !strings.Contains(env.Machine, r.Machine) {
		return false
	}
	if r.From == "" && r.Until == "" {
		return true
	}
	// Development builds report versions like "devel go1.26-abcdef".
	if !version.IsValid(env.RuntimeVersion) {
		return false
	}
	if r.From != "" && version.Compare(env.RuntimeVersion, r.From) < 0 {
		return false
	}
	if r.Until != "" && version.Compare(env.RuntimeVersion, r.Until) >= 0 {
		return false
	}
	return true
}

// QuietRules are the environments whose readiness diagnostics are
// unreliable and must be discarded.
var QuietRules = []Rule{
	{OS: "windows"},
}

// Classify maps an environment to a concrete mode. Quiet rules are checked
// before the polling rules; everything else is ModeStandard.
func Classify(env Environment, pollOn []Rule) Mode {
	for _, r := range QuietRules {
		if r.Matches(env) {
			return ModeQuiet
		}
	}
	for _, r := range pollOn {
		if r.Matches(env) {
			return ModePoll
		}
	}
	return ModeStandard
}

// Detect classifies the probed process environment.
func Detect(pollOn []Rule) Mode {
	return Classify(Probe(), pollOn)
}
