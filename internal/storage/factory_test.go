package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/storage"
)

type mockStorage struct{}

func (m *mockStorage) Upload(_ context.Context, p string, _ io.Reader, n int64) (*storage.UploadResult, error) {
	return &storage.UploadResult{Path: p, Size: n}, nil
}
func (m *mockStorage) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) { return false, nil }

func TestRegister_AddsFactory(t *testing.T) {
	storage.Register("test-backend", func(_ *config.StorageConfig) (storage.Storage, error) {
		return &mockStorage{}, nil
	})

	s, err := storage.NewStorage(&config.StorageConfig{Backend: "test-backend"})
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	if _, ok := s.(*mockStorage); !ok {
		t.Errorf("NewStorage() returned %T, want *mockStorage", s)
	}

	found := false
	for _, name := range storage.Backends() {
		if name == "test-backend" {
			found = true
		}
	}
	if !found {
		t.Errorf("Backends() = %v, missing test-backend", storage.Backends())
	}
}

func TestNewStorage_UnknownBackend(t *testing.T) {
	_, err := storage.NewStorage(&config.StorageConfig{Backend: "ftp"})
	if err == nil {
		t.Fatal("NewStorage() expected error for unknown backend, got nil")
	}
	if !strings.Contains(err.Error(), "ftp") {
		t.Errorf("error %q does not name the backend", err)
	}
}

func TestNewStorage_EmptyBackend(t *testing.T) {
	if _, err := storage.NewStorage(&config.StorageConfig{}); err == nil {
		t.Error("NewStorage() expected error for empty backend, got nil")
	}
}
