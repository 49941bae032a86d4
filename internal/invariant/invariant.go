// Package invariant centralizes the "this should never happen"
// assertions spec.md §7 calls for: violations are deterministic
// properties of malformed internal state (a caller skipped a pruning
// step, consolidated input that was never sorted), never externally
// triggerable runtime errors, so the default behavior is to fail loud
// rather than attempt recovery.
package invariant

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Mode controls what Check does on a failed invariant.
type Mode int

const (
	// ModeFatal logs the violation and panics (the default: debug and
	// normal production runs).
	ModeFatal Mode = iota
	// ModeLogOnly logs the violation and lets the caller continue,
	// matching spec.md §7's "release-logging" tier.
	ModeLogOnly
	// ModeDisabled skips the check entirely.
	ModeDisabled
)

// Current is the process-wide invariant mode. Tests may override it to
// exercise ModeLogOnly/ModeDisabled paths without crashing the test
// binary.
var Current = ModeFatal

// Check verifies cond and reacts per Current when it is false. format
// and args build the violation message the way fmt.Sprintf does.
// ModeFatal logs then panics rather than calling logrus.Fatal/os.Exit,
// so a caller higher up the stack (or a test) can still recover it.
func Check(cond bool, format string, args ...interface{}) {
	if cond || Current == ModeDisabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logrus.WithField("invariant", msg).Error("invariant violated")
	if Current == ModeFatal {
		panic("invariant violated: " + msg)
	}
}
