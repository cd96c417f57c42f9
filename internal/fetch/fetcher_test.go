package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPFetcherFetchesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0)
	dest := filepath.Join(t.TempDir(), "out.bin")

	if err := f.Fetch(context.Background(), srv.URL+"/widget.bin", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("body = %q, want payload", got)
	}
}

func TestHTTPFetcherDoesNotRetryOn404(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0)
	dest := filepath.Join(t.TempDir(), "out.bin")

	if err := f.Fetch(context.Background(), srv.URL+"/missing", dest); err == nil {
		t.Fatal("Fetch: want error for 404")
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want exactly 1 (no retry on 4xx)", hits)
	}
}

func TestDefaultFetcherRoutesByScheme(t *testing.T) {
	recipeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(recipeDir, "local.txt"), []byte("from disk"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	df := NewDefaultFetcher(recipeDir)
	dest := filepath.Join(t.TempDir(), "local.txt")

	if err := df.Fetch(context.Background(), "local.txt", dest); err != nil {
		t.Fatalf("Fetch (local): %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != "from disk" {
		t.Errorf("content = %q, want \"from disk\"", got)
	}
}

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a.tar.gz": true,
		"http://example.com/a.tar.gz":  true,
		"ftp://example.com/a.tar.gz":   true,
		"relative/path.tar.gz":         false,
		"./local.tar":                  false,
	}
	for uri, want := range cases {
		if got := isRemote(uri); got != want {
			t.Errorf("isRemote(%q) = %v, want %v", uri, got, want)
		}
	}
}
