package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adityaaj2003/tunegan/pkg/httputil"
	"github.com/adityaaj2003/tunegan/pkg/manifest"
	"github.com/adityaaj2003/tunegan/pkg/registry"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/torch/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"info": {"name": "torch", "version": "2.1.0", "summary": "Tensors and Dynamic neural networks"},
			"releases": {"2.0.0": [], "2.0.1": [], "2.1.0": []}
		}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return NewClientWithBaseURL(cache, baseURL)
}

func TestFetchPackage(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	info, err := c.FetchPackage(context.Background(), "torch", false)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}

	if info.Name != "torch" {
		t.Errorf("Name = %q, want torch", info.Name)
	}
	if info.Version != "2.1.0" {
		t.Errorf("Version = %q, want 2.1.0", info.Version)
	}
	if len(info.Releases) != 3 {
		t.Errorf("Releases = %v, want 3 entries", info.Releases)
	}
	if !info.HasRelease("2.0.1") {
		t.Error("HasRelease(2.0.1) = false, want true")
	}
	if info.HasRelease("9.9.9") {
		t.Error("HasRelease(9.9.9) = true, want false")
	}
}

func TestFetchPackageNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchPackage(context.Background(), "no-such-package", false)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("FetchPackage error = %v, want ErrNotFound", err)
	}
}

func TestFetchPackageUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"info": {"name": "torch", "version": "2.1.0"}, "releases": {}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.FetchPackage(ctx, "torch", false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchPackage(ctx, "torch", false); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("HTTP calls = %d, want 1 (second fetch should hit cache)", calls)
	}

	if _, err := c.FetchPackage(ctx, "torch", true); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("HTTP calls = %d, want 2 (refresh should bypass cache)", calls)
	}
}

func TestAudit(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	m, err := manifest.Parse(strings.NewReader(`torch==2.1.0
torch-vision==0.16.0
torch==9.9.9
# comment lines are not audited
`))
	if err != nil {
		t.Fatal(err)
	}

	results := c.Audit(context.Background(), m, false)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Status != AuditOK {
		t.Errorf("torch==2.1.0 status = %s, want ok", results[0].Status)
	}
	if results[0].Latest != "2.1.0" {
		t.Errorf("torch latest = %q, want 2.1.0", results[0].Latest)
	}
	if results[1].Status != AuditPackageNotFound {
		t.Errorf("torch-vision status = %s, want package not found", results[1].Status)
	}
	if results[2].Status != AuditUnknownVersion {
		t.Errorf("torch==9.9.9 status = %s, want unknown version", results[2].Status)
	}
}
