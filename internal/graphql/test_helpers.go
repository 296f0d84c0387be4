package graphql

import (
	"context"
	"encoding/json"
	"sync"
)

// MockExecutor implements Executor for testing. Calls are recorded in order.
type MockExecutor struct {
	ExecuteFunc func(ctx context.Context, doc Document, vars Variables, out any) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall is one recorded Execute call.
type MockCall struct {
	Document  Document
	Variables Variables
}

func (m *MockExecutor) Execute(ctx context.Context, doc Document, vars Variables, out any) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Document: doc, Variables: vars})
	m.mu.Unlock()

	if m.ExecuteFunc == nil {
		return nil
	}
	return m.ExecuteFunc(ctx, doc, vars, out)
}

// Calls returns the recorded calls.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times Execute ran.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// DecodeInto unmarshals a JSON data fixture into out, the way Client does
// with a real response.
func DecodeInto(out any, data string) error {
	return json.Unmarshal([]byte(data), out)
}
