package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock backend for testing.
type MockProvider struct {
	// Translations maps source text to its translation. A key of the form
	// "text|LOCALE" takes precedence for that target locale.
	Translations map[string]string
	// Fail maps target locales to the error returned for them.
	Fail map[string]error

	mu        sync.Mutex
	CallCount int                // Number of times Translate was called
	Requests  []TranslateRequest // Every request received, in order
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello|DE":       "Hallo",
			"Hello|FR":       "Bonjour",
			"World|DE":       "Welt",
			"World|FR":       "Monde",
			"Hello World|DE": "Hallo Welt",
			"Hello World|FR": "Bonjour le monde",
		},
		Fail: map[string]error{},
	}
}

// Translate returns mock translations. Unknown texts come back as
// "[LOCALE] text".
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Requests = append(m.Requests, req)

	if err := m.Fail[req.TargetLocale]; err != nil {
		return "", err
	}
	if translation, ok := m.Translations[req.Text+"|"+req.TargetLocale]; ok {
		return translation, nil
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s] %s", req.TargetLocale, req.Text), nil
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Requests) == 0 {
		return nil
	}
	req := m.Requests[len(m.Requests)-1]
	return &req
}

// Reset clears the recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount = 0
	m.Requests = nil
}

// Verify MockProvider implements Backend
var _ Backend = (*MockProvider)(nil)
