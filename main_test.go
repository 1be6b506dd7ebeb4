//go:build !integration

package proposal

import (
	"testing"

	"go.uber.org/goleak"
)

// Every render must tear down what it started, so the whole package runs
// under goroutine leak detection.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
