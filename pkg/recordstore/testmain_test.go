package recordstore

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyTestMain runs the tests and fails the binary on leaked goroutines.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
