package middleware_test

import (
	"context"
	"errors"
	"sort"

	"github.com/aretw0/pagecraft/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string][]byte
	// Err, when set, is returned by every call.
	Err   error
	Calls int
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]byte)}
}

func (s *MockStore) Save(ctx context.Context, docID string, data []byte) error {
	s.Calls++
	if s.Err != nil {
		return s.Err
	}
	s.data[docID] = append([]byte(nil), data...)
	return nil
}

func (s *MockStore) Load(ctx context.Context, docID string) ([]byte, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	data, ok := s.data[docID]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MockStore) Delete(ctx context.Context, docID string) error {
	s.Calls++
	if s.Err != nil {
		return s.Err
	}
	delete(s.data, docID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var errBackendDown = errors.New("backend down")

var _ ports.DocumentStore = (*MockStore)(nil)
