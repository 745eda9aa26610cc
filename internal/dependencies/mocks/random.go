package mocks

import (
	"strings"

	"github.com/mcoot/roomlobby/internal/dependencies/random"
)

// MockRandom replays queued values. When the String queue is empty it falls
// back to a counter so repeated calls still produce distinct strings.
type MockRandom struct {
	strings []string
	calls   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates an empty MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueString appends results for String
func (r *MockRandom) QueueString(values ...string) {
	r.strings = append(r.strings, values...)
}

// Intn always returns 0
func (r *MockRandom) Intn(n int) int {
	return 0
}

func (r *MockRandom) String(length int, alphabet string) string {
	r.calls++
	if len(r.strings) > 0 {
		v := r.strings[0]
		r.strings = r.strings[1:]
		return v
	}
	if alphabet == "" || length <= 0 {
		return ""
	}
	var b strings.Builder
	n := r.calls
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[n%len(alphabet)])
		n /= len(alphabet)
	}
	return b.String()
}

// StringCalls returns how many times String was called
func (r *MockRandom) StringCalls() int {
	return r.calls
}
