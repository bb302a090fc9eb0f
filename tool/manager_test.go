package tool

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(nil, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestManager_ListContainsAllBuiltins(t *testing.T) {
	m := newTestManager(t)

	want := []string{
		"code_analysis",
		"simulation",
		"documentation",
		"version_control",
		"project_management",
	}
	if got := m.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	seen := make(map[string]int)
	for _, name := range m.List() {
		seen[name]++
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("category %q appears %d times", name, count)
		}
	}
}

func TestManager_ListIsDeterministic(t *testing.T) {
	m := newTestManager(t)
	first := m.List()
	second := m.List()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("successive List() calls differ: %v vs %v", first, second)
	}
}

func TestManager_GetCodeAnalysis(t *testing.T) {
	m := newTestManager(t)

	d, ok := m.Get("code_analysis")
	if !ok {
		t.Fatal("code_analysis should be registered")
	}
	if d.Kind != KindCatalog {
		t.Fatalf("Kind = %q, want catalog", d.Kind)
	}
	for _, lang := range []string{"python", "java", "cpp", "matlab"} {
		if !slices.Contains(d.Catalog.Languages, lang) {
			t.Errorf("Languages missing %q: %v", lang, d.Catalog.Languages)
		}
	}
	wantCaps := []string{"linting", "formatting", "static_analysis"}
	if !reflect.DeepEqual(d.Catalog.Capabilities, wantCaps) {
		t.Errorf("Capabilities = %v, want %v", d.Catalog.Capabilities, wantCaps)
	}
}

func TestManager_GetUnknownReturnsFalse(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.Get("nonexistent_tool"); ok {
		t.Error("Get should report absence for unknown names")
	}
}

func TestManager_GetIsExactMatch(t *testing.T) {
	m := newTestManager(t)
	for _, name := range []string{"Code_Analysis", "code_analysis ", "code"} {
		if _, ok := m.Get(name); ok {
			t.Errorf("Get(%q) should miss; lookup is exact-match only", name)
		}
	}
}

func TestManager_RegistryIsImmutable(t *testing.T) {
	m := newTestManager(t)

	d, _ := m.Get("code_analysis")
	d.Catalog.Languages[0] = "cobol"
	d.Catalog.Capabilities = append(d.Catalog.Capabilities, "telepathy")

	fresh, _ := m.Get("code_analysis")
	if fresh.Catalog.Languages[0] != "python" {
		t.Error("mutating a returned descriptor must not change the registry")
	}
	if len(fresh.Catalog.Capabilities) != 3 {
		t.Errorf("Capabilities length = %d, want 3", len(fresh.Catalog.Capabilities))
	}
}

func TestManager_ConstructionIsDeterministic(t *testing.T) {
	a := newTestManager(t)
	b := newTestManager(t)

	if !reflect.DeepEqual(a.List(), b.List()) {
		t.Errorf("independently built managers list different categories")
	}
	for _, name := range a.List() {
		da, _ := a.Get(name)
		db, _ := b.Get(name)
		if !reflect.DeepEqual(da, db) {
			t.Errorf("descriptor for %q differs between instances", name)
		}
	}
}

func TestManager_CustomRegistrationsAppendAfterBuiltins(t *testing.T) {
	custom := Registration{
		Name:       "requirements_tracing",
		Descriptor: NewTracking([]string{"doors"}, []string{"trace_matrix"}),
	}
	m := newTestManager(t, WithCustomRegistrations([]Registration{custom}))

	names := m.List()
	if names[len(names)-1] != "requirements_tracing" {
		t.Errorf("custom category should come last, got %v", names)
	}
	if m.Len() != 6 {
		t.Errorf("Len() = %d, want 6", m.Len())
	}

	reg, ok := m.Registration("requirements_tracing")
	if !ok {
		t.Fatal("custom registration should be present")
	}
	if reg.Origin != OriginCustom {
		t.Errorf("Origin = %q, want custom", reg.Origin)
	}
	if reg.Status != StatusUnverified {
		t.Errorf("Status = %q, want unverified default", reg.Status)
	}
}

func TestManager_BuiltinsWinOnNameCollision(t *testing.T) {
	shadow := Registration{
		Name:       "code_analysis",
		Descriptor: NewTracking([]string{"impostor"}, []string{"nothing"}),
	}
	m := newTestManager(t, WithCustomRegistrations([]Registration{shadow}))

	d, _ := m.Get("code_analysis")
	if d.Kind != KindCatalog {
		t.Errorf("builtin descriptor should win, got kind %q", d.Kind)
	}
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
}

func TestNewManager_RejectsInvalidCustomDescriptor(t *testing.T) {
	bad := Registration{
		Name:       "broken",
		Descriptor: Descriptor{Kind: KindCatalog},
	}
	if _, err := NewManager(nil, WithCustomRegistrations([]Registration{bad})); err == nil {
		t.Fatal("NewManager should reject invalid descriptors")
	}
}

func TestManager_ValidateUnknownTool(t *testing.T) {
	m := newTestManager(t)

	err := m.Validate(context.Background(), "nonexistent_tool")
	if err == nil {
		t.Fatal("Validate should fail for unknown tools")
	}
	if got := ErrorCode(err, ""); got != ErrorCodeUnknownTool {
		t.Errorf("code = %q, want %q", got, ErrorCodeUnknownTool)
	}
}

func TestManager_ValidateDefaultPolicyAcceptsRegistered(t *testing.T) {
	m := newTestManager(t)
	for _, name := range m.List() {
		if err := m.Validate(context.Background(), name); err != nil {
			t.Errorf("Validate(%q): %v", name, err)
		}
	}
}

func TestManager_ValidateCustomPolicyRejection(t *testing.T) {
	policy := RequirementPolicyFunc(func(ctx context.Context, reg Registration) error {
		if reg.Name == "simulation" {
			return errors.New("numerical engines not installed")
		}
		return nil
	})
	m := newTestManager(t, WithRequirementPolicy(policy))

	err := m.Validate(context.Background(), "simulation")
	if err == nil {
		t.Fatal("Validate should surface policy rejection")
	}
	if got := ErrorCode(err, ""); got != ErrorCodeUnmetRequirement {
		t.Errorf("code = %q, want %q", got, ErrorCodeUnmetRequirement)
	}
	if err := m.Validate(context.Background(), "documentation"); err != nil {
		t.Errorf("Validate(documentation): %v", err)
	}
}

func TestManager_ExecuteWithoutExecutor(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Execute(context.Background(), "documentation", nil)
	if err == nil {
		t.Fatal("Execute with no executor should fail")
	}
	if got := ErrorCode(err, ""); got != ErrorCodeExecutionUnsupported {
		t.Errorf("code = %q, want %q", got, ErrorCodeExecutionUnsupported)
	}
}

func TestManager_ExecuteDispatchesThroughExecutor(t *testing.T) {
	mux := NewExecutorMux()
	mux.Bind("documentation", ExecutorFunc(func(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error) {
		if reg.Descriptor.Kind != KindFormat {
			t.Errorf("executor got kind %q, want format", reg.Descriptor.Kind)
		}
		return map[string]any{"rendered": params["format"]}, nil
	}))
	m := newTestManager(t, WithExecutor(mux))

	result, err := m.Execute(context.Background(), "documentation", map[string]any{"format": "markdown"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Output["rendered"] != "markdown" {
		t.Errorf("Output = %v", result.Output)
	}
	if result.InvocationID == "" {
		t.Error("InvocationID should be set")
	}
	if result.Tool != "documentation" {
		t.Errorf("Tool = %q", result.Tool)
	}
}

func TestManager_ExecuteUnknownToolBeforeDispatch(t *testing.T) {
	called := false
	exec := ExecutorFunc(func(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error) {
		called = true
		return nil, nil
	})
	m := newTestManager(t, WithExecutor(exec))

	_, err := m.Execute(context.Background(), "nonexistent_tool", nil)
	if got := ErrorCode(err, ""); got != ErrorCodeUnknownTool {
		t.Errorf("code = %q, want %q", got, ErrorCodeUnknownTool)
	}
	if called {
		t.Error("executor must not run for unknown tools")
	}
}

func TestManager_ExecuteWrapsPlainExecutorErrors(t *testing.T) {
	exec := ExecutorFunc(func(ctx context.Context, reg Registration, params map[string]any) (map[string]any, error) {
		return nil, errors.New("git exploded")
	})
	m := newTestManager(t, WithExecutor(exec))

	_, err := m.Execute(context.Background(), "version_control", nil)
	toolErr, ok := ErrorFrom(err)
	if !ok {
		t.Fatalf("error should carry a *Error, got %v", err)
	}
	if toolErr.Code != ErrorCodeExecutionFailed {
		t.Errorf("code = %q, want %q", toolErr.Code, ErrorCodeExecutionFailed)
	}
	if !toolErr.Retryable {
		t.Error("executor failures should be marked retryable")
	}
}

func TestManager_ObserverSeesOutcomes(t *testing.T) {
	var observations []Observation
	m := newTestManager(t, WithObserver(ObserverFunc(func(obs Observation) {
		observations = append(observations, obs)
	})))

	_ = m.Validate(context.Background(), "simulation")
	_, _ = m.Execute(context.Background(), "nonexistent_tool", nil)

	if len(observations) != 2 {
		t.Fatalf("observations = %d, want 2", len(observations))
	}
	if observations[0].Kind != ObservationValidate || !observations[0].Success {
		t.Errorf("first observation = %+v", observations[0])
	}
	if observations[1].Kind != ObservationExecute || observations[1].Success {
		t.Errorf("second observation = %+v", observations[1])
	}
	if observations[1].ErrorCode != ErrorCodeUnknownTool {
		t.Errorf("ErrorCode = %q, want %q", observations[1].ErrorCode, ErrorCodeUnknownTool)
	}
}

func TestExecutorMux_UnboundCategory(t *testing.T) {
	mux := NewExecutorMux()
	_, err := mux.Execute(context.Background(), Registration{Name: "simulation"}, nil)
	if got := ErrorCode(err, ""); got != ErrorCodeExecutionUnsupported {
		t.Errorf("code = %q, want %q", got, ErrorCodeExecutionUnsupported)
	}
}

func TestError_MessageFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code and message", NewUnknownToolError("x"), `UNKNOWN_TOOL: tool "x" is not registered`},
		{"code only", &Error{Code: "TIMEOUT"}, "TIMEOUT"},
		{"message only", &Error{Message: "boom"}, "boom"},
		{"empty", &Error{}, ErrorCodeExecutionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := NewUnmetRequirementError("simulation", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}
