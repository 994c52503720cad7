package corpus

import (
	"crypto/rand"
	"fmt"
	"time"
)

// newRunID creates a short random hex ID to tie a run's log lines together.
func newRunID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
