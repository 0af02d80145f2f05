package logger

import (
	"github.com/fatih/color"
)

// Leveled printf-style logging with colored console output. The
// package-level variables behave like fmt.Printf with the text colored
// for the log level.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan when enabled via Init, and is a
// no-op otherwise.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
