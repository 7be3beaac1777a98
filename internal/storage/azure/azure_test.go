package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/pkg/checksum"
)

type storedBlob struct {
	content  []byte
	metadata map[string]string
}

type fakeBlobService struct {
	mu    sync.Mutex
	blobs map[string]*storedBlob
}

// newTestStorage creates an AzureStorage pointed at an httptest server that
// imitates enough of the Blob REST API for block blob upload, download and
// property lookups.
func newTestStorage(t *testing.T) (*AzureStorage, *fakeBlobService) {
	t.Helper()

	fake := &fakeBlobService{blobs: map[string]*storedBlob{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := strings.CutPrefix(r.URL.Path, "/logs/")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		fake.mu.Lock()
		defer fake.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			meta := map[string]string{}
			for k, v := range r.Header {
				if name, ok := strings.CutPrefix(strings.ToLower(k), "x-ms-meta-"); ok && len(v) > 0 {
					meta[name] = v[0]
				}
			}
			fake.blobs[key] = &storedBlob{content: data, metadata: meta}
			w.WriteHeader(http.StatusCreated)

		case http.MethodGet:
			b, ok := fake.blobs[key]
			if !ok {
				w.Header().Set("x-ms-error-code", "BlobNotFound")
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(b.content)))
			w.WriteHeader(http.StatusOK)
			w.Write(b.content)

		case http.MethodHead:
			b, ok := fake.blobs[key]
			if !ok {
				w.Header().Set("x-ms-error-code", "BlobNotFound")
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(b.content)))
			w.WriteHeader(http.StatusOK)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := azblob.NewClientWithNoCredential(srv.URL, nil)
	if err != nil {
		t.Fatalf("failed to create azblob client: %v", err)
	}
	return &AzureStorage{client: client, containerName: "logs"}, fake
}

func TestUploadDownloadAndExists(t *testing.T) {
	s, fake := newTestStorage(t)
	ctx := context.Background()
	data := []byte(`{"id":3,"action":"DELETED"}`)

	exists, err := s.Exists(ctx, "activity-logs/3.json")
	if err != nil {
		t.Fatalf("Exists before upload returned error: %v", err)
	}
	if exists {
		t.Fatal("Exists = true before upload, want false")
	}

	res, err := s.Upload(ctx, "activity-logs/3.json", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.Size != int64(len(data)) {
		t.Fatalf("unexpected size: got %d want %d", res.Size, len(data))
	}
	if res.Checksum != checksum.Sum(data) {
		t.Errorf("Checksum = %q, want %q", res.Checksum, checksum.Sum(data))
	}

	fake.mu.Lock()
	gotMeta := fake.blobs["activity-logs/3.json"].metadata["sha256"]
	fake.mu.Unlock()
	if gotMeta != res.Checksum {
		t.Errorf("x-ms-meta-sha256 = %q, want %q", gotMeta, res.Checksum)
	}

	rc, err := s.Download(ctx, "activity-logs/3.json")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, data) {
		t.Fatalf("download content mismatch: %q", string(got))
	}

	exists, err = s.Exists(ctx, "activity-logs/3.json")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !exists {
		t.Fatal("Exists = false, want true")
	}
}

func TestDownload_NotFound(t *testing.T) {
	s, _ := newTestStorage(t)
	if _, err := s.Download(context.Background(), "missing.json"); err == nil {
		t.Error("Download() expected error for missing blob, got nil")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AzureStorageConfig
	}{
		{"missing account name", config.AzureStorageConfig{AccountKey: "a2V5", ContainerName: "logs"}},
		{"missing account key", config.AzureStorageConfig{AccountName: "acct", ContainerName: "logs"}},
		{"missing container", config.AzureStorageConfig{AccountName: "acct", AccountKey: "a2V5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(&tt.cfg); err == nil {
				t.Error("New() = nil error, want error")
			}
		})
	}
}
