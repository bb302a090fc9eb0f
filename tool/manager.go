package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sea-labs/sea/config"
)

// Manager answers "what tools and capabilities exist". Its registry is built
// once at construction and never mutated afterwards, so all read methods are
// safe for concurrent callers without locking.
type Manager struct {
	cfg      *config.Config
	registry map[string]Registration
	order    []string

	policy   RequirementPolicy
	executor Executor
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithRequirementPolicy replaces the default presence-based requirement policy.
func WithRequirementPolicy(policy RequirementPolicy) Option {
	return func(m *Manager) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithExecutor binds the executor that serves Manager.Execute.
func WithExecutor(exec Executor) Option {
	return func(m *Manager) {
		m.executor = exec
	}
}

// WithObserver attaches an observer for validate/execute outcomes.
func WithObserver(observer Observer) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// WithLogger sets the manager logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCustomRegistrations appends custom categories after the builtins.
// Builtins win on name collision; registrations with invalid descriptors
// fail construction.
func WithCustomRegistrations(regs []Registration) Option {
	return func(m *Manager) {
		for _, reg := range regs {
			if reg.Origin == "" {
				reg.Origin = OriginCustom
			}
			m.add(reg)
		}
	}
}

// NewManager builds a manager over the built-in registry plus any custom
// registrations supplied by options. The config handle is held for
// collaborators (requirement policies, executors) that read per-tool
// settings; the built-in registry itself is not configuration-driven.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		registry: make(map[string]Registration),
		policy:   presencePolicy{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, reg := range Builtins() {
		m.add(reg)
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, name := range m.order {
		if err := m.registry[name].Descriptor.Validate(); err != nil {
			return nil, fmt.Errorf("tool: registration %q: %w", name, err)
		}
	}
	return m, nil
}

// LoadStored reads custom registrations from a store, for use with
// WithCustomRegistrations at construction.
func LoadStored(ctx context.Context, store Store) ([]Registration, error) {
	if store == nil {
		return nil, nil
	}
	regs, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("tool: loading stored registrations: %w", err)
	}
	for i := range regs {
		regs[i].Origin = OriginCustom
	}
	return regs, nil
}

// add inserts a registration, ignoring name collisions with earlier entries.
func (m *Manager) add(reg Registration) {
	if reg.Name == "" {
		return
	}
	if _, exists := m.registry[reg.Name]; exists {
		return
	}
	if reg.Status == "" {
		reg.Status = StatusUnverified
	}
	m.registry[reg.Name] = reg.Clone()
	m.order = append(m.order, reg.Name)
}

// Config returns the configuration handle the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Get returns the descriptor for a category by exact name match. Absence is
// not an error.
func (m *Manager) Get(name string) (Descriptor, bool) {
	reg, ok := m.registry[name]
	if !ok {
		return Descriptor{}, false
	}
	return reg.Descriptor.Clone(), true
}

// Registration returns the full registry record for a category.
func (m *Manager) Registration(name string) (Registration, bool) {
	reg, ok := m.registry[name]
	if !ok {
		return Registration{}, false
	}
	return reg.Clone(), true
}

// Has returns true when the category name is registered.
func (m *Manager) Has(name string) bool {
	_, ok := m.registry[name]
	return ok
}

// List returns all category names in registration order. Successive calls
// return identical results.
func (m *Manager) List() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// All returns all registrations in registration order.
func (m *Manager) All() []Registration {
	out := make([]Registration, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.registry[name].Clone())
	}
	return out
}

// Len returns the number of registered categories.
func (m *Manager) Len() int {
	return len(m.registry)
}

// Validate checks that the named category exists and that the requirement
// policy accepts it. Returns UNKNOWN_TOOL or UNMET_REQUIREMENT on failure.
func (m *Manager) Validate(ctx context.Context, name string) error {
	started := m.now()
	err := m.validate(ctx, name)
	m.observe(Observation{
		Kind:      ObservationValidate,
		Tool:      name,
		Success:   err == nil,
		ErrorCode: observationCode(err),
		Duration:  m.now().Sub(started),
	})
	return err
}

func (m *Manager) validate(ctx context.Context, name string) error {
	reg, ok := m.registry[name]
	if !ok {
		return NewUnknownToolError(name)
	}
	if err := m.policy.Check(ctx, reg.Clone()); err != nil {
		return NewUnmetRequirementError(name, err)
	}
	return nil
}

// Execute validates the category and dispatches through the bound executor.
// With no executor bound the call fails with EXECUTION_UNSUPPORTED; the
// manager itself never interprets params.
func (m *Manager) Execute(ctx context.Context, name string, params map[string]any) (Result, error) {
	started := m.now()
	invocationID := uuid.NewString()

	result, err := m.execute(ctx, name, params)
	result.InvocationID = invocationID
	result.Tool = name
	result.StartedAt = started
	result.Duration = m.now().Sub(started)

	m.observe(Observation{
		Kind:         ObservationExecute,
		Tool:         name,
		InvocationID: invocationID,
		Success:      err == nil,
		ErrorCode:    observationCode(err),
		Duration:     result.Duration,
	})

	if err != nil {
		m.logger.Warn("tool execution failed",
			slog.String("tool", name),
			slog.String("invocation_id", invocationID),
			slog.String("code", ErrorCode(err, ErrorCodeExecutionFailed)),
		)
		return result, err
	}

	m.logger.Debug("tool executed",
		slog.String("tool", name),
		slog.String("invocation_id", invocationID),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func (m *Manager) execute(ctx context.Context, name string, params map[string]any) (Result, error) {
	if err := m.validate(ctx, name); err != nil {
		return Result{}, err
	}
	if m.executor == nil {
		return Result{}, NewExecutionUnsupportedError(name)
	}

	reg := m.registry[name]
	output, err := m.executor.Execute(ctx, reg.Clone(), params)
	if err != nil {
		if _, ok := ErrorFrom(err); ok {
			return Result{}, err
		}
		if ctx.Err() != nil {
			return Result{}, newError(ErrorCodeTimeout, name, "execution cancelled or timed out", true, err)
		}
		return Result{}, NewExecutionFailedError(name, err)
	}
	return Result{Output: output}, nil
}

func (m *Manager) observe(obs Observation) {
	if m.observer == nil {
		return
	}
	m.observer.Observe(obs)
}

func observationCode(err error) string {
	if err == nil {
		return ""
	}
	return ErrorCode(err, ErrorCodeExecutionFailed)
}
