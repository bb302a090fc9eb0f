package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "tools.json"))
}

func customRegistration(name string) Registration {
	return Registration{
		Name:       name,
		Descriptor: NewTracking([]string{"doors"}, []string{"trace_matrix"}),
	}
}

func TestFileStore_EmptyListOnMissingFile(t *testing.T) {
	store := newTestFileStore(t)
	regs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(regs) != 0 {
		t.Errorf("List on missing file = %d entries, want 0", len(regs))
	}
}

func TestFileStore_UpsertGetRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, customRegistration("requirements_tracing")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	reg, found, err := store.Get(ctx, "requirements_tracing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("registration should be found")
	}
	if reg.Descriptor.Kind != KindTracking {
		t.Errorf("Kind = %q, want tracking", reg.Descriptor.Kind)
	}
	if reg.Status != StatusUnverified {
		t.Errorf("Status = %q, want unverified default", reg.Status)
	}
	if reg.Origin != OriginCustom {
		t.Errorf("Origin = %q, want custom default", reg.Origin)
	}
	if reg.RegisteredAt.IsZero() {
		t.Error("RegisteredAt should be stamped")
	}
}

func TestFileStore_UpsertPreservesRegisteredAt(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, customRegistration("requirements_tracing")); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	first, _, err := store.Get(ctx, "requirements_tracing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	updated := customRegistration("requirements_tracing")
	updated.Status = StatusReady
	if err := store.Upsert(ctx, updated); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	second, _, err := store.Get(ctx, "requirements_tracing")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if !second.RegisteredAt.Equal(first.RegisteredAt) {
		t.Error("RegisteredAt should survive updates")
	}
	if second.Status != StatusReady {
		t.Errorf("Status = %q, want ready", second.Status)
	}
}

func TestFileStore_UpsertRejectsInvalidDescriptor(t *testing.T) {
	store := newTestFileStore(t)
	bad := Registration{Name: "broken", Descriptor: Descriptor{Kind: KindEngine}}
	if err := store.Upsert(context.Background(), bad); err == nil {
		t.Fatal("Upsert should reject invalid descriptors")
	}
}

func TestFileStore_DeleteMissingIsNoop(t *testing.T) {
	store := newTestFileStore(t)
	if err := store.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestFileStore_ListIsNameSorted(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := store.Upsert(ctx, customRegistration(name)); err != nil {
			t.Fatalf("Upsert(%s): %v", name, err)
		}
	}

	regs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, reg := range regs {
		if reg.Name != want[i] {
			t.Errorf("regs[%d] = %q, want %q", i, reg.Name, want[i])
		}
	}
}

func TestFileStore_CorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewFileStore(path)
	if _, err := store.List(context.Background()); err == nil {
		t.Fatal("List should fail on corrupt store file")
	}
}

func TestManager_LoadsStoredRegistrations(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	if err := store.Upsert(ctx, customRegistration("requirements_tracing")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	stored, err := LoadStored(ctx, store)
	if err != nil {
		t.Fatalf("LoadStored: %v", err)
	}
	m := newTestManager(t, WithCustomRegistrations(stored))

	if !m.Has("requirements_tracing") {
		t.Error("stored registration should be visible through the manager")
	}
	if m.Len() != 6 {
		t.Errorf("Len() = %d, want 6", m.Len())
	}
}
