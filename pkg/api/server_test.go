package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pulsegrid/pkg/cache"
	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/observability"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

const echo = `diagram "echo" {
  grid channel {
    bar   rf  size 80x4 grid 1,0 span 1x3 grow x
    pulse p90 size 10x20 column 0 top
    pulse p180 size 10x30 column 2 both
  }
}`

const loop = `diagram "loop" {
  group g {
    box a size 5x5 at 0,0 bind b x far near
    box b size 5x5 at 10,0 bind a x near far
  }
}`

func newTestServer(t *testing.T, maxBody int64) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, nil)
	cfg := config.Default()
	if maxBody > 0 {
		cfg.Server.MaxBody = maxBody
	}
	return New(runner, pipeline.FromConfig(cfg), cfg.Server, nil)
}

func body(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func do(s *Server, method, target, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, 0), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q: %v", rec.Header().Get(RequestIDHeader), err)
	}
	var got map[string]string
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	newTestServer(t, 0).Handler().ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != id {
		t.Errorf("id = %q, want %q", rec.Header().Get(RequestIDHeader), id)
	}
}

func TestParse(t *testing.T) {
	rec := do(newTestServer(t, 0), http.MethodPost, "/v1/parse?name=echo.pg", echo)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var snap layout.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Name != "echo" || len(snap.Root.Children) != 3 {
		t.Errorf("snapshot = %q with %d children", snap.Name, len(snap.Root.Children))
	}
}

func TestLayoutCaches(t *testing.T) {
	s := newTestServer(t, 0)
	payload := body(t, map[string]any{"source": echo})

	for _, want := range []string{"miss", "hit"} {
		rec := do(s, http.MethodPost, "/v1/layout", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if got := rec.Header().Get(CacheHeader); got != want {
			t.Errorf("%s = %q, want %q", CacheHeader, got, want)
		}
		var geo diagram.Geometry
		if err := json.Unmarshal(rec.Body.Bytes(), &geo); err != nil {
			t.Fatal(err)
		}
		if len(geo.Boxes) != 4 || geo.Frame.W == 0 {
			t.Errorf("geometry = %d boxes, frame %+v", len(geo.Boxes), geo.Frame)
		}
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t, 0)
	tests := []struct {
		name        string
		target      string
		payload     map[string]any
		contentType string
		contains    string
	}{
		{"svg", "/v1/render", map[string]any{"source": echo}, "image/svg+xml", "<svg"},
		{"pdf query", "/v1/render?format=pdf", map[string]any{"source": echo}, "application/pdf", "%PDF"},
		{"formats field", "/v1/render", map[string]any{"source": echo, "formats": []string{"json"}}, "application/json", `"boxes"`},
		{"bindings", "/v1/render?style=bindings&format=dot", map[string]any{"source": loop}, "text/vnd.graphviz; charset=utf-8", "digraph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, body(t, tt.payload))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		maxBody int64
		target  string
		payload string
		status  int
		code    errors.Code
	}{
		{"bad json", 0, "/v1/layout", `{"source":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", 0, "/v1/layout", `{"src": "x"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no input", 0, "/v1/layout", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad source", 0, "/v1/parse", `diagram "x" { blob a }`, http.StatusBadRequest, errors.ErrCodeInvalidSource},
		{"bad format", 0, "/v1/render?format=png", `{"source": "diagram \"x\" { box a size 1x1 }"}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"strict cycle", 0, "/v1/layout", `{"strict": true, "source": ` + jsonString(loop) + `}`, http.StatusUnprocessableEntity, errors.ErrCodeBindingCycle},
		{"too large", 16, "/v1/layout", `{"source": ` + jsonString(echo) + `}`, http.StatusRequestEntityTooLarge, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(t, tt.maxBody), http.MethodPost, tt.target, tt.payload)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			var eb errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil {
				t.Fatal(err)
			}
			if eb.Code != tt.code || eb.Error == "" {
				t.Errorf("error body = %+v, want code %s", eb, tt.code)
			}
		})
	}
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (r *httpRecorder) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.status = append(r.status, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	s := newTestServer(t, 0)
	do(s, http.MethodGet, "/healthz", "")
	do(s, http.MethodPost, "/v1/layout", `{}`)

	want := []string{"/healthz", "/v1/layout"}
	if len(rec.routes) != 2 || rec.routes[0] != want[0] || rec.routes[1] != want[1] {
		t.Errorf("routes = %v, want %v", rec.routes, want)
	}
	if len(rec.status) == 2 && (rec.status[0] != http.StatusOK || rec.status[1] != http.StatusBadRequest) {
		t.Errorf("status = %v", rec.status)
	}
}
