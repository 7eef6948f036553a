package prefetch

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"Handlecache/internal/atproto/identity"
)

// fakeStore is an in-memory Store that counts accesses and can inject failures
type fakeStore struct {
	mu     sync.Mutex
	data   map[string]Mapping
	gets   int
	sets   int
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]Mapping)}
}

func (s *fakeStore) Get(ctx context.Context, namespace string) (Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if m, ok := s.data[namespace]; ok {
		return m.Clone(), nil
	}
	return nil, nil
}

func (s *fakeStore) Set(ctx context.Context, namespace string, mapping Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[namespace] = mapping.Clone()
	return nil
}

func (s *fakeStore) seed(namespace string, mapping Mapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[namespace] = mapping.Clone()
}

func (s *fakeStore) snapshot(namespace string) Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[namespace].Clone()
}

func (s *fakeStore) counts() (gets, sets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets
}

// mockResolver is a testify mock for HandleResolver
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveHandle(ctx context.Context, did string) identity.Resolution {
	args := m.Called(ctx, did)
	return args.Get(0).(identity.Resolution)
}

// stubExtractor returns a fixed extraction for every URL
type stubExtractor struct {
	extraction Extraction
	ok         bool
}

func (s stubExtractor) Extract(rawURL string) (Extraction, bool) {
	return s.extraction, s.ok
}
