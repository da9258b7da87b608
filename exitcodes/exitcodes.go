// Package exitcodes defines the standard exit codes used by test-reporter.
package exitcodes

// Exit code constants used by the application:
//
// * Success (0): Used when the session completes and a report is emitted,
//   regardless of the pass/fail outcome of the observed tests
// * Failure (1): Used for unspecified errors
// * RuntimeErr (2): Used for runtime errors such as bad configuration or an
//   unreadable event stream
const (
	Success    = 0
	Failure    = 1
	RuntimeErr = 2
)
