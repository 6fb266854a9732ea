package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/daily/internal/api"
)

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "http://127.0.0.1:11452"},
		{in: "0.0.0.0:11452", want: "http://127.0.0.1:11452"},
		{in: "[::]:9000", want: "http://127.0.0.1:9000"},
		{in: "desktop.lan:11452", want: "http://desktop.lan:11452"},
		{in: "http://example.com:1234/path?x=1#frag", want: "http://example.com:1234"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := parseBaseURL(tt.in)
			if err != nil {
				t.Fatalf("parseBaseURL returned error: %v", err)
			}
			if u.String() != tt.want {
				t.Fatalf("url = %q, want %q", u.String(), tt.want)
			}
		})
	}
}

func TestClient_FetchStatusAndSetOverride(t *testing.T) {
	t.Parallel()

	var gotOverride api.OverrideRequest
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/status":
			_ = json.NewEncoder(w).Encode(api.StatusResponse{AppliedURL: "https://img/a.jpg", ConfigLoaded: true})
		case "/api/temp_wallpaper":
			_ = json.NewDecoder(r.Body).Decode(&gotOverride)
			_ = json.NewEncoder(w).Encode(api.OverrideResponse{Success: true, Message: "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	status, err := c.FetchStatus(ctx)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if status.AppliedURL != "https://img/a.jpg" || !status.ConfigLoaded {
		t.Fatalf("FetchStatus payload = %#v", status)
	}

	resp, err := c.SetOverride(ctx, "https://img/b.jpg", 4)
	if err != nil {
		t.Fatalf("SetOverride returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("SetOverride response = %#v", resp)
	}
	if gotOverride.URL != "https://img/b.jpg" || gotOverride.Hours == nil || *gotOverride.Hours != 4 {
		t.Fatalf("override request = %#v", gotOverride)
	}
	if !strings.HasPrefix(gotUserAgent, "dailyctl/") {
		t.Fatalf("User-Agent = %q, want dailyctl/*", gotUserAgent)
	}
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/temp_wallpaper":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(api.OverrideResponse{Message: "url is required"})
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStatus(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchStatus error = %v, want decode response error", err)
	}

	_, err = c.SetOverride(context.Background(), "", 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("SetOverride error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "url is required" {
		t.Fatalf("APIError = %#v", apiErr)
	}
}
