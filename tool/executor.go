package tool

import (
	"context"
	"time"
)

// Executor supplies the concrete dispatch behavior for Manager.Execute.
// The registry itself defines no dispatch semantics; callers bind an
// Executor per deployment.
//
// Preconditions: reg is a registered category and its requirements have
// been validated. Postconditions: on success the returned map is the tool's
// result payload; on failure the error should carry a *Error so codes
// survive transport boundaries.
type Executor interface {
	Execute(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error) {
	return f(ctx, reg, params)
}

// ExecutorMux routes execution by category name. Categories without a bound
// executor fail with EXECUTION_UNSUPPORTED.
type ExecutorMux struct {
	executors map[string]Executor
}

// NewExecutorMux creates an empty executor mux.
func NewExecutorMux() *ExecutorMux {
	return &ExecutorMux{executors: make(map[string]Executor)}
}

// Bind attaches an executor to a category name, replacing any previous binding.
func (m *ExecutorMux) Bind(name string, exec Executor) {
	m.executors[name] = exec
}

// Execute implements Executor.
func (m *ExecutorMux) Execute(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error) {
	exec, ok := m.executors[reg.Name]
	if !ok {
		return nil, NewExecutionUnsupportedError(reg.Name)
	}
	return exec.Execute(ctx, reg, params)
}

var _ Executor = (*ExecutorMux)(nil)

// Result is the outcome of one tool execution.
type Result struct {
	InvocationID string         `json:"invocation_id"`
	Tool         string         `json:"tool"`
	Output       map[string]any `json:"output,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
}
