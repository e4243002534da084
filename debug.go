package mapmorph

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with the mapmorph prefix and timestamp
// formatting. The logger writes to w and filters messages below level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "mapmorph",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// defaultLogger reports warnings and errors on stderr.
func defaultLogger() *log.Logger {
	return NewLogger(os.Stderr, log.WarnLevel)
}

// SetDebugMode enables or disables debug mode. When enabled, lifecycle
// transitions are logged at debug level and every resolved transition is
// checked against its boundary invariants as it begins; violations are
// logged as errors.
func (o *Orchestrator) SetDebugMode(enabled bool) {
	o.debug = enabled
	if enabled {
		o.logger.SetLevel(log.DebugLevel)
	} else {
		o.logger.SetLevel(log.WarnLevel)
	}
}

// debugVerify runs the invariant checks on freshly resolved params.
func (o *Orchestrator) debugVerify(p *Params) {
	if !o.debug {
		return
	}
	if err := VerifyBoundaries(p, o.easing, DefaultTolerance); err != nil {
		o.logger.Error("boundary invariant", "key", p.Key, "dir", p.Direction, "err", err)
	}
	fwd, rev := p, p.Reversed()
	if p.Direction == Reverse {
		fwd, rev = rev, p
	}
	if err := VerifySymmetry(fwd, rev, o.easing, DefaultTolerance); err != nil {
		o.logger.Error("reversal invariant", "key", p.Key, "err", err)
	}
}
