package tests

import (
	"runtime/debug"
	"testing"
)

// Success and Failed markers for test output.
const (
	Success = "✓"
	Failed  = "✗"
)

// Recover turns a panic into a test failure with a stack trace.
func Recover(t *testing.T) {
	if r := recover(); r != nil {
		t.Fatal("Unhandled Exception:", string(debug.Stack()))
	}
}
