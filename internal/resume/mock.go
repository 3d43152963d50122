package resume

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// DefaultPresence is the chance that the mock extractor finds each field.
const DefaultPresence = 0.7

// MockResumeText is the body returned for every mock extraction.
const MockResumeText = "Software Engineer with 5+ years of experience in React, Node.js, and cloud technologies..."

var (
	firstNames = []string{"John", "Jane", "Alex", "Sarah", "Michael", "Emily", "David", "Lisa"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}
	domains    = []string{"gmail.com", "yahoo.com", "outlook.com", "company.com"}
)

// MockExtractor invents identity fields instead of parsing the document.
type MockExtractor struct {
	// Presence is the probability of each field being found.
	Presence float64

	mu sync.Mutex
	r  *rand.Rand
}

// NewMockExtractor returns a MockExtractor using r, or the global source
// when r is nil.
func NewMockExtractor(r *rand.Rand) *MockExtractor {
	return &MockExtractor{Presence: DefaultPresence, r: r}
}

func (m *MockExtractor) Extract(ctx context.Context, doc Document) (Extracted, error) {
	if err := ctx.Err(); err != nil {
		return Extracted{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Extracted{Text: MockResumeText}
	if m.found() {
		out.Name = m.name()
	}
	if m.found() {
		out.Email = m.email()
	}
	if m.found() {
		out.Phone = m.phone()
	}
	return out, nil
}

func (m *MockExtractor) found() bool {
	return m.float() < m.Presence
}

func (m *MockExtractor) name() string {
	return pick(m, firstNames) + " " + pick(m, lastNames)
}

func (m *MockExtractor) email() string {
	local := strings.Replace(strings.ToLower(m.name()), " ", ".", 1)
	return local + "@" + pick(m, domains)
}

func (m *MockExtractor) phone() string {
	return fmt.Sprintf("+1-%d-%d-%d", 100+m.intN(900), 100+m.intN(900), 1000+m.intN(9000))
}

func pick(m *MockExtractor, s []string) string {
	return s[m.intN(len(s))]
}

func (m *MockExtractor) float() float64 {
	if m.r == nil {
		return rand.Float64()
	}
	return m.r.Float64()
}

func (m *MockExtractor) intN(n int) int {
	if m.r == nil {
		return rand.IntN(n)
	}
	return m.r.IntN(n)
}
