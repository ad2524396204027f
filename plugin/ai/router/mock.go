package router

import (
	"context"
	"sync"

	"github.com/hrygo/switchboard/plugin/ai/module"
)

// MockClassifier is a mock implementation of IntentClassifier for testing.
type MockClassifier struct {
	mu sync.Mutex
	// Overrides maps exact input to a module; everything else is General.
	Overrides map[string]module.Module
	Calls     int
}

// NewMockClassifier creates a new MockClassifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{Overrides: make(map[string]module.Module)}
}

// Classify returns the override for input, or General.
func (m *MockClassifier) Classify(_ context.Context, input string, _ module.Module) module.Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if mod, ok := m.Overrides[input]; ok {
		return mod
	}
	return module.General
}

// CallCount returns how often Classify ran.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var _ IntentClassifier = (*MockClassifier)(nil)
