package bmtree

import goLog "log"

// Logger receives coarse lifecycle events from a Tree: level materialization
// on first use of a batch, and wipe boundaries. Never consulted for control
// flow — disabling logging cannot change Tree behavior.
type Logger interface {
	Logf(format string, a ...interface{})
}

type dummyLogger struct{}
type stdlibLogger struct{}

func (logger *dummyLogger) Logf(format string, a ...interface{}) {}

func (logger *stdlibLogger) Logf(format string, a ...interface{}) {
	goLog.Printf(format, a...)
}

var log Logger = &dummyLogger{}

// EnableLogging sends bmtree's lifecycle log lines to the standard log
// package. For more flexibility, use SetLogger.
func EnableLogging() {
	SetLogger(&stdlibLogger{})
}

// SetLogger installs logger as the destination for lifecycle log lines.
// Passing nil disables logging.
func SetLogger(logger Logger) {
	if logger == nil {
		log = &dummyLogger{}
		return
	}
	log = logger
}
