package watch

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures watch sessions stop every goroutine they start.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
