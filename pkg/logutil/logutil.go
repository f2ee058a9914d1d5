// Package logutil provides Arcana's diagnostic logging, grounded on the
// teacher's own logutil package (a thin wrapper around the standard
// library's log.Logger with a discard sink for tests) rather than a
// structured-logging dependency — Elvish does not reach for one either, and
// neither does Arcana.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

// Discard is a Logger that ignores all logging, for tests that want to
// exercise code paths without cluttering output.
var Discard = log.New(io.Discard, "", 0)

var (
	mu   sync.Mutex
	sink io.Writer = os.Stderr
)

// UseEnv points subsequent GetLogger output at the file named by ARCC_LOG,
// if set, instead of stderr. Called once from cmd/arcc's entry point.
func UseEnv() error {
	mu.Lock()
	defer mu.Unlock()
	path := os.Getenv("ARCC_LOG")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	sink = f
	return nil
}

// GetLogger returns a *log.Logger writing to the current sink (stderr, or
// the file named by ARCC_LOG after UseEnv), prefixed with prefix.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log.New(sink, prefix, log.LstdFlags)
}
