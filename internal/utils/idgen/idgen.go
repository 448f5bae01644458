package idgen

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropyMu   sync.Mutex
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a lower-case, time-ordered ULID string.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return strings.ToLower(id.String())
}

// NewWithPrefix returns New() prefixed with prefix.
func NewWithPrefix(prefix string) string {
	return prefix + New()
}

// IsValid reports whether value (optionally prefixed) parses as a ULID.
func IsValid(value, prefix string) bool {
	if prefix != "" && !strings.HasPrefix(value, prefix) {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), prefix)))
	return err == nil
}
