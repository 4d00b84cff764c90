package store

import (
	"context"
	"time"
)

// MockStore provides customizable hooks for testing Store behavior.
type MockStore struct {
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	DeleteFunc func(ctx context.Context, key string) error
	TakeFunc   func(ctx context.Context, key string) ([]byte, error)
}

// Ensure MockStore implements Store
var _ Store = (*MockStore)(nil)

// Set calls SetFunc if set, otherwise returns nil
func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

// Get calls GetFunc if set, otherwise reports the key as missing
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, ErrNotFound
}

// Delete calls DeleteFunc if set, otherwise returns nil
func (m *MockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// Take calls TakeFunc if set, otherwise reports the key as missing
func (m *MockStore) Take(ctx context.Context, key string) ([]byte, error) {
	if m.TakeFunc != nil {
		return m.TakeFunc(ctx, key)
	}
	return nil, ErrNotFound
}
