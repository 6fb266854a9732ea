package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestBytes_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "daily-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(server.Close)

	c := New("daily-test", WithRetry(2, time.Millisecond))
	got, err := c.Bytes(context.Background(), server.URL, 0)
	if err != nil {
		t.Fatalf("Bytes returned error: %v", err)
	}
	if string(got) != "payload" || calls.Load() != 2 {
		t.Fatalf("Bytes = %q after %d calls, want payload after 2", got, calls.Load())
	}
}

func TestBytes_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	_, err := New("daily-test", WithRetry(3, time.Millisecond)).Bytes(context.Background(), server.URL, 0)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("Bytes error = %v, want 404 StatusError", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestBytes_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	t.Cleanup(server.Close)

	got, err := New("daily-test", WithRetry(0, 0)).Bytes(context.Background(), server.URL, 4)
	if err != nil || string(got) != "0123" {
		t.Fatalf("Bytes = %q, %v; want 0123", got, err)
	}
}

func TestToFile_WritesAndRemovesOnFailure(t *testing.T) {
	fail := atomic.Bool{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("image-bytes"))
	}))
	t.Cleanup(server.Close)

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/cache", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	c := New("daily-test", WithRetry(0, 0))

	if err := c.ToFile(context.Background(), fs, server.URL, "/cache/a.jpg"); err != nil {
		t.Fatalf("ToFile returned error: %v", err)
	}
	data, err := afero.ReadFile(fs, "/cache/a.jpg")
	if err != nil || string(data) != "image-bytes" {
		t.Fatalf("file = %q, %v", data, err)
	}

	fail.Store(true)
	if err := c.ToFile(context.Background(), fs, server.URL, "/cache/b.jpg"); err == nil {
		t.Fatalf("ToFile returned nil error for a 500")
	}
	if exists, _ := afero.Exists(fs, "/cache/b.jpg"); exists {
		t.Fatalf("partial download was left behind")
	}
}
