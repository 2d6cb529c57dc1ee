package logging

import "os"

// Fatalf eases call sites migrating off the standard 'log' package.
// Prefer the explicitly leveled API, e.g. log.Error(), where a log need not
// also terminate the process.
func (log *Logger) Fatalf(format string, v ...interface{}) {
	log.Log(Error, 1, format, v...)
	os.Exit(1)
}
