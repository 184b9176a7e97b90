package expansion

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

// mockCompleter is a function-free stub: set response/err, inspect calls.
type mockCompleter struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTestService(t *testing.T, llm Completer) *Service {
	t.Helper()
	svc, err := New(llm, Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}
