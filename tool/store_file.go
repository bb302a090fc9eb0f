package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	fileStoreVersionV1 = "1"
	defaultStoreDir    = ".sea"
	defaultStoreFile   = "tools.json"
)

var errEmptyStorePath = errors.New("tool: file store path is empty")

type fileStoreDocument struct {
	Version string         `json:"version"`
	Tools   []Registration `json:"tools"`
}

// FileStore persists custom category registrations in a local JSON file.
// This store is intended for CLI mode.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed registration store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore creates a CLI store at ~/.sea/tools.json.
func NewDefaultFileStore() (*FileStore, error) {
	path, err := DefaultFileStorePath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

// DefaultFileStorePath returns the default registration file path for CLI mode.
func DefaultFileStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("tool: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultStoreDir, defaultStoreFile), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// List returns all registrations in deterministic (name-sorted) order.
func (s *FileStore) List(ctx context.Context) ([]Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("tool: file store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	regs, err := s.load()
	if err != nil {
		return nil, err
	}
	return cloneRegistrations(regs), nil
}

// Get returns a registration by name.
func (s *FileStore) Get(ctx context.Context, name string) (Registration, bool, error) {
	regs, err := s.List(ctx)
	if err != nil {
		return Registration{}, false, err
	}

	for _, reg := range regs {
		if reg.Name == name {
			return reg, true, nil
		}
	}
	return Registration{}, false, nil
}

// Upsert inserts or updates a registration by name.
func (s *FileStore) Upsert(ctx context.Context, reg Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("tool: file store is nil")
	}
	if strings.TrimSpace(reg.Name) == "" {
		return errors.New("tool: registration name is required")
	}
	if err := reg.Descriptor.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	regs, err := s.load()
	if err != nil {
		return err
	}

	index := -1
	for i := range regs {
		if regs[i].Name == reg.Name {
			index = i
			break
		}
	}

	if reg.Status == "" {
		reg.Status = StatusUnverified
	}
	if reg.Origin == "" {
		reg.Origin = OriginCustom
	}
	if reg.RegisteredAt.IsZero() {
		if index >= 0 && !regs[index].RegisteredAt.IsZero() {
			reg.RegisteredAt = regs[index].RegisteredAt
		} else {
			reg.RegisteredAt = time.Now().UTC()
		}
	}

	if index >= 0 {
		regs[index] = reg
	} else {
		regs = append(regs, reg)
	}

	return s.save(regs)
}

// Delete removes a registration by name. Deleting a missing name is a no-op.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("tool: file store is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	regs, err := s.load()
	if err != nil {
		return err
	}

	filtered := make([]Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.Name != name {
			filtered = append(filtered, reg)
		}
	}
	return s.save(filtered)
}

func (s *FileStore) load() ([]Registration, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, errEmptyStorePath
	}

	// #nosec G304 -- path is configured by caller and constrained to local filesystem usage.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Registration{}, nil
		}
		return nil, fmt.Errorf("tool: read registrations: %w", err)
	}
	if len(data) == 0 {
		return []Registration{}, nil
	}

	var doc fileStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tool: decode registrations: %w", err)
	}
	sortRegistrations(doc.Tools)
	return doc.Tools, nil
}

func (s *FileStore) save(regs []Registration) error {
	if strings.TrimSpace(s.path) == "" {
		return errEmptyStorePath
	}

	regs = cloneRegistrations(regs)
	sortRegistrations(regs)

	doc := fileStoreDocument{
		Version: fileStoreVersionV1,
		Tools:   regs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("tool: encode registrations: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("tool: create store dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("tool: write temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("tool: replace store file: %w", err)
	}
	return nil
}

func sortRegistrations(regs []Registration) {
	slices.SortFunc(regs, func(a, b Registration) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func cloneRegistrations(in []Registration) []Registration {
	out := make([]Registration, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

var _ Store = (*FileStore)(nil)
