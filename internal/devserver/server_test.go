package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/recera/transitmap/internal/config"
)

func newTestServer(t *testing.T, build BuildFunc, wasmExec string) *Server {
	t.Helper()
	public := t.TempDir()
	files := map[string]string{
		"index.html":      `<div id="map-container"></div>`,
		"app.wasm":        "\x00asm",
		"transit-map.svg": "<svg/>",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(public, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.DefaultConfig()
	cfg.Site.PublicDir = public
	cfg.Dev.AllowAllOrigins = true
	if build == nil {
		build = func(context.Context) error { return nil }
	}
	return New(cfg, build, wasmExec)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  Change
	}{
		{
			name:  "go sources",
			paths: []string{"app/client/main.go", "pkg/components/mapviewer/viewer.go"},
			want:  Change{Go: []string{"app/client/main.go", "pkg/components/mapviewer/viewer.go"}, Rebuild: true},
		},
		{
			name:  "assets",
			paths: []string{"public/transit-map.SVG", "public/style.css", "public/style.css"},
			want:  Change{Assets: []string{"public/transit-map.SVG", "public/style.css"}, Reload: true},
		},
		{
			name:  "mixed",
			paths: []string{"public/index.html", "app/client/main.go"},
			want:  Change{Go: []string{"app/client/main.go"}, Assets: []string{"public/index.html"}, Rebuild: true, Reload: true},
		},
		{
			name:  "ignored",
			paths: []string{"README.md", "public/app.wasm", "go.sum"},
			want:  Change{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, Classify(tt.paths)); d != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestHandler_Static(t *testing.T) {
	s := newTestServer(t, nil, "")
	h := s.Handler()

	rec := get(t, h, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "map-container") {
		t.Errorf("Expected index page, got %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Expected no-cache, got %q", got)
	}

	rec = get(t, h, "/transit-map.svg")
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg/>" {
		t.Errorf("Expected map file, got %d %q", rec.Code, rec.Body.String())
	}

	if rec = get(t, h, "/missing.svg"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec = get(t, h, "/favicon.ico"); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for missing favicon, got %d", rec.Code)
	}
	if rec = get(t, h, "/healthz"); rec.Body.String() != "ok" {
		t.Errorf("Expected ok, got %q", rec.Body.String())
	}
}

func TestHandler_Wasm(t *testing.T) {
	s := newTestServer(t, nil, "")
	h := s.Handler()

	rec := get(t, h, "/app.wasm")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/wasm" {
		t.Errorf("Expected application/wasm, got %q", got)
	}

	if rec = get(t, h, "/wasm_exec.js"); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 without wasm_exec.js, got %d", rec.Code)
	}

	path := filepath.Join(t.TempDir(), "wasm_exec.js")
	if err := os.WriteFile(path, []byte("// go runtime"), 0644); err != nil {
		t.Fatal(err)
	}
	s = newTestServer(t, nil, path)
	rec = get(t, s.Handler(), "/wasm_exec.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "// go runtime" {
		t.Errorf("Expected wasm_exec.js, got %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/javascript") {
		t.Errorf("Expected javascript content type, got %q", got)
	}
}

func TestHandleChanges_Notifies(t *testing.T) {
	builds := 0
	var buildErr error
	s := newTestServer(t, func(context.Context) error {
		builds++
		return buildErr
	}, "")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/livereload", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	read := func() map[string]interface{} {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	conn.WriteJSON(map[string]string{"type": "HELLO"})
	if msg := read(); msg["type"] != "ACK" {
		t.Fatalf("Expected ACK, got %v", msg)
	}

	ctx := context.Background()
	s.handleChanges(ctx, []string{"public/style.css"})
	if msg := read(); msg["type"] != "RELOAD" || msg["path"] != "public/style.css" {
		t.Errorf("Expected RELOAD for style.css, got %v", msg)
	}
	if builds != 0 {
		t.Errorf("Expected no build for assets, got %d", builds)
	}

	s.handleChanges(ctx, []string{"app/client/main.go", "public/index.html"})
	if msg := read(); msg["type"] != "REBUILD" || msg["path"] != "app/client/main.go" {
		t.Errorf("Expected REBUILD, got %v", msg)
	}

	buildErr = errors.New("undefined: mapviewer.Mount")
	s.handleChanges(ctx, []string{"app/client/main.go"})
	if msg := read(); msg["type"] != "ERROR" || msg["error"] != "undefined: mapviewer.Mount" {
		t.Errorf("Expected ERROR, got %v", msg)
	}
	if builds != 2 {
		t.Errorf("Expected 2 builds, got %d", builds)
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	w, err := newWatcher(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("newWatcher() error: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []string, 4)
	go w.Run(ctx, func(_ context.Context, paths []string) { batches <- paths })

	path := filepath.Join(dir, "style.css")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("a", i+1)), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case batch := <-batches:
		if len(batch) == 0 || batch[0] != path {
			t.Errorf("Expected batch for %s, got %v", path, batch)
		}
		if c := Classify(batch); !c.Reload || len(c.Assets) != 1 {
			t.Errorf("Expected a single reload asset, got %+v", c)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a batch of changes")
	}
}
