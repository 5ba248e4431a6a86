package artifact

import (
	"errors"
	"sort"
	"sync"

	"github.com/playforge/playforge/core"
)

// ErrNotFound is returned when no file or deliverable exists for the given
// session / name pair.
var ErrNotFound = errors.New("artifact not found")

// Store keeps generated files and the final deliverable per session. It is
// volatile and best suited for single-process deployments; finished
// artifacts meant to outlive the process belong to the caller.
//
// Layout: sessionID -> file name -> raw bytes, plus one final artifact per
// session.
type Store struct {
	mu     sync.RWMutex
	files  map[string]map[string][]byte
	finals map[string]*core.Artifact
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		files:  make(map[string]map[string][]byte),
		finals: make(map[string]*core.Artifact),
	}
}

// SaveFile stores (or overwrites) a generated file for the session. The
// input slice is copied before storage.
func (s *Store) SaveFile(sessionID, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.files[sessionID]
	if !ok {
		m = make(map[string][]byte)
		s.files[sessionID] = m
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m[name] = cp
}

// GetFile returns a copy of the stored file bytes or ErrNotFound.
func (s *Store) GetFile(sessionID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.files[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the sorted file names stored for the session.
func (s *Store) List(sessionID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.files[sessionID]
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveArtifact records the session's final deliverable.
func (s *Store) SaveArtifact(sessionID string, a *core.Artifact) {
	s.mu.Lock()
	s.finals[sessionID] = a
	s.mu.Unlock()
}

// GetArtifact returns the final deliverable or ErrNotFound.
func (s *Store) GetArtifact(sessionID string) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.finals[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Drop removes everything stored for the session. Idempotent.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.files, sessionID)
	delete(s.finals, sessionID)
	s.mu.Unlock()
}
