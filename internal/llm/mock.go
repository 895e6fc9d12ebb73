package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/avoronov/smb-tagger/internal/model"
)

// MockClient is a deterministic test double for Client. It records every
// call and answers from a fixed per-schema script.
type MockClient struct {
	responses map[model.SchemaID]model.Classification
	errs      map[model.SchemaID]error
	calls     []MockCall
	mu        sync.Mutex
}

// MockCall records one classification request.
type MockCall struct {
	Schema model.SchemaID
	Input  string
}

// NewMockClient creates an empty mock; unscripted schemas return an error.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: make(map[model.SchemaID]model.Classification),
		errs:      make(map[model.SchemaID]error),
	}
}

// Respond scripts a successful response for a schema.
func (m *MockClient) Respond(s model.SchemaID, c model.Classification) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[s] = c
	return m
}

// Fail scripts a failure for a schema.
func (m *MockClient) Fail(s model.SchemaID, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[s] = err
	return m
}

// Classify implements Client.
func (m *MockClient) Classify(_ context.Context, schema model.SchemaID, input string) (model.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Schema: schema, Input: input})

	if err, ok := m.errs[schema]; ok {
		return nil, err
	}
	if resp, ok := m.responses[schema]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("no scripted response for schema %s", schema)
}

// Calls returns a copy of all recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of requests made for a schema.
func (m *MockClient) CallCount(s model.SchemaID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Schema == s {
			n++
		}
	}
	return n
}
