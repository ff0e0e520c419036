package divscan

import (
	"testing"

	"go.uber.org/goleak"
)

// Every reduction joins its workers before returning; nothing may outlive a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
