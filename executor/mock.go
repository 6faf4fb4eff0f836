package executor

import (
	"context"
	"sync"

	"github.com/getpup/modular"
)

// MockLoader is a mock implementation of Loader for testing.
// Units it returns record every successful execution in Executions, in order.
type MockLoader struct {
	mu sync.Mutex

	// LoadFunc is called by Load if set. It replaces the default MockUnit.
	LoadFunc func(ctx context.Context, rec modular.Record) (Unit, error)

	// ExecuteFunc is called by default units before an execution is recorded.
	// A non-nil error fails the execution.
	ExecuteFunc func(ctx context.Context, id modular.Identifier, direction modular.Direction) error

	LoadCalls  []LoadCall
	Executions []Execution
}

// LoadCall records the parameters of a single Load call.
type LoadCall struct {
	Record modular.Record
}

// Execution records one unit run.
type Execution struct {
	Identifier modular.Identifier
	Direction  modular.Direction
}

// NewMockLoader creates a new MockLoader with an empty call history.
func NewMockLoader() *MockLoader {
	return &MockLoader{
		LoadCalls:  make([]LoadCall, 0),
		Executions: make([]Execution, 0),
	}
}

// Load implements the Loader interface.
// It records the call parameters, then:
// - If LoadFunc is set, calls and returns it
// - Otherwise, returns a MockUnit bound to this loader
func (m *MockLoader) Load(ctx context.Context, rec modular.Record) (Unit, error) {
	m.mu.Lock()
	m.LoadCalls = append(m.LoadCalls, LoadCall{Record: rec})
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, rec)
	}

	return &MockUnit{
		ID:             rec.Identifier,
		UpStatements:   []string{"-- up " + string(rec.Identifier)},
		DownStatements: []string{"-- down " + string(rec.Identifier)},
		loader:         m,
	}, nil
}

// Executed returns the identifiers executed in direction, in order.
func (m *MockLoader) Executed(direction modular.Direction) []modular.Identifier {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]modular.Identifier, 0)
	for _, e := range m.Executions {
		if e.Direction == direction {
			ids = append(ids, e.Identifier)
		}
	}
	return ids
}

// Reset clears the call history.
func (m *MockLoader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = make([]LoadCall, 0)
	m.Executions = make([]Execution, 0)
}

func (m *MockLoader) execute(ctx context.Context, id modular.Identifier, direction modular.Direction) error {
	if m.ExecuteFunc != nil {
		if err := m.ExecuteFunc(ctx, id, direction); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.Executions = append(m.Executions, Execution{Identifier: id, Direction: direction})
	m.mu.Unlock()
	return nil
}

// MockUnit is a Unit for tests. When created by a MockLoader it reports its
// executions back to that loader; UpFunc and DownFunc override that behavior.
type MockUnit struct {
	ID             modular.Identifier
	UpStatements   []string
	DownStatements []string
	UpFunc         func(ctx context.Context) error
	DownFunc       func(ctx context.Context) error

	loader *MockLoader
}

// Identifier implements Unit.
func (u *MockUnit) Identifier() modular.Identifier {
	return u.ID
}

// Up implements Unit.
func (u *MockUnit) Up(ctx context.Context) error {
	if u.UpFunc != nil {
		return u.UpFunc(ctx)
	}
	if u.loader != nil {
		return u.loader.execute(ctx, u.ID, modular.DirectionUp)
	}
	return nil
}

// Down implements Unit.
func (u *MockUnit) Down(ctx context.Context) error {
	if u.DownFunc != nil {
		return u.DownFunc(ctx)
	}
	if u.loader != nil {
		return u.loader.execute(ctx, u.ID, modular.DirectionDown)
	}
	return nil
}

// Statements implements Unit.
func (u *MockUnit) Statements(direction modular.Direction) []string {
	if direction == modular.DirectionDown {
		return u.DownStatements
	}
	return u.UpStatements
}
