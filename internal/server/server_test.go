package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/demoserver"
	"github.com/raysh454/hfdl/internal/server"
	"github.com/raysh454/hfdl/internal/testutil"
)

type testEnv struct {
	srv     *server.Server
	mirror  *demoserver.DemoServer
	domain  string
	tempDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ds := demoserver.NewDemoServer(demoserver.DefaultConfig())
	ts := httptest.NewServer(ds.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	appCfg := app.DefaultConfig()
	appCfg.TempDir = dir
	appCfg.Fetcher.Retry.MaxAttempts = 3
	appCfg.Fetcher.Retry.Wait = time.Millisecond

	s, err := server.NewServer(context.Background(), server.Config{
		ListenAddr: ":0",
		AppConfig:  appCfg,
		Logger:     &testutil.DummyLogger{},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return &testEnv{srv: s, mirror: ds, domain: ts.URL, tempDir: dir}
}

func (e *testEnv) query(hfPath string) string {
	v := url.Values{}
	if hfPath != "" {
		v.Set("hf_path", hfPath)
	}
	v.Set("domain", e.domain)
	return v.Encode()
}

func do(t *testing.T, s http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	return body.Error
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/healthz")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_Preflight(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "OPTIONS", "/jobs/abc")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if m := rec.Header().Get("Access-Control-Allow-Methods"); m != "GET, DELETE" {
		t.Errorf("unexpected allowed methods %q", m)
	}
}

// ─── Script download ───────────────────────────────────────────────────

func TestServer_DownloadScript(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-sh" {
		t.Errorf("expected application/x-sh, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="dl.sh"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "#!/bin/bash\n") {
		t.Errorf("expected bash shebang, got %q", body)
	}
	if !strings.Contains(body, "mkdir -p 'tiny-gpt'") {
		t.Errorf("expected directory guard for tiny-gpt: %s", body)
	}
	want := "wget --no-check-certificate -c -P 'tiny-gpt' '" + e.domain + "/demo/tiny-gpt/resolve/main/config.json'"
	if !strings.Contains(body, want) {
		t.Errorf("expected line %q in:\n%s", want, body)
	}
	if n := strings.Count(body, "wget "); n != 5 {
		t.Errorf("expected 5 wget lines, got %d", n)
	}

	entries, err := os.ReadDir(e.tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 temp file, got %d", len(entries))
	}
}

func TestServer_DownloadScript_Revision(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt")+"&revision=v1.0")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "/resolve/v1.0/pytorch_model.bin'") {
		t.Errorf("expected v1.0 file in script: %s", rec.Body.String())
	}
}

func TestServer_DownloadScript_BadRequests(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing hf_path", e.query("")},
		{"single segment", e.query("justone")},
		{"dot segment", e.query("owner/..")},
		{"bad domain", "hf_path=owner/name&domain=" + url.QueryEscape("bad host/x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, e.srv, "GET", "/?"+tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if errorOf(t, rec) == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestServer_DownloadScript_UnknownRepo(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/?"+e.query("nobody/nothing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	listings, _ := e.mirror.Stats()
	if listings != 1 {
		t.Errorf("404 must not be retried, mirror saw %d listing requests", listings)
	}
}

func TestServer_DownloadScript_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.mirror.SetFailFirst(2)

	rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after retries, got %d: %s", rec.Code, rec.Body.String())
	}
	listings, _ := e.mirror.Stats()
	if listings != 3 {
		t.Errorf("expected 3 listing requests, got %d", listings)
	}
}

func TestServer_DownloadScript_RetriesExhausted(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.mirror.SetFailFirst(10)

	rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := errorOf(t, rec); msg != "Failed to fetch the URL, pls try again later" {
		t.Errorf("expected %q, got %q", server.FetchFailedMessage, msg)
	}
}

func TestServer_DownloadScript_EmptyRepo(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/?"+e.query("demo/empty-repo"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "wget") {
		t.Errorf("expected no wget lines: %s", rec.Body.String())
	}
}

// ─── Links ─────────────────────────────────────────────────────────────

func TestServer_ListLinks(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/links?"+e.query("datasets/demo/squad-mini"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body server.LinksResponse
	decodeJSON(t, rec, &body)
	if body.HFPath != "datasets/demo/squad-mini" || body.Revision != "main" {
		t.Errorf("unexpected response %+v", body)
	}
	if len(body.Links) != 4 {
		t.Errorf("expected 4 links, got %d", len(body.Links))
	}
}

// ─── Scripts and jobs ──────────────────────────────────────────────────

func TestServer_GetScript_NotFound(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/scripts/does-not-exist")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_ListAndDeleteScripts(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	var list server.ScriptsResponse
	rec := do(t, e.srv, "GET", "/scripts")
	decodeJSON(t, rec, &list)
	if len(list.Scripts) != 0 {
		t.Fatalf("expected no scripts, got %d", len(list.Scripts))
	}

	if rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt")); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, e.srv, "GET", "/scripts")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeJSON(t, rec, &list)
	if len(list.Scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(list.Scripts))
	}
	id := list.Scripts[0].ID
	if list.Scripts[0].Size == 0 {
		t.Error("expected a non-empty script")
	}

	rec = do(t, e.srv, "DELETE", "/scripts/"+id)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, e.srv, "GET", "/scripts/"+id); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := do(t, e.srv, "DELETE", "/scripts/"+id); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}

	entries, err := os.ReadDir(e.tempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp dir to be empty, got %d entries", len(entries))
	}
}

func TestServer_Jobs_EmptyAndUnknown(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/jobs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body server.JobsResponse
	decodeJSON(t, rec, &body)
	if len(body.Jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(body.Jobs))
	}

	if rec := do(t, e.srv, "GET", "/jobs/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_CancelJob(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "DELETE", "/jobs/unknown")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", rec.Code)
	}

	tg, err := e.srv.Service().Target(e.domain, "demo/tiny-gpt", "")
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	job, err := e.srv.Service().StartGenerateJob(context.Background(), tg)
	if err != nil {
		t.Fatalf("StartGenerateJob: %v", err)
	}

	rec = do(t, e.srv, "DELETE", "/jobs/"+job.ID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Errorf("expected no Content-Type on 204, got %q", ct)
	}
	for range job.Events {
	}
}

func TestServer_GenerateWS(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	hs := httptest.NewServer(e.srv)
	t.Cleanup(hs.Close)

	wsURL := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws/generate?" + e.query("demo/tiny-gpt")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var job app.Job
	if err := conn.ReadJSON(&job); err != nil {
		t.Fatalf("read job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected job id")
	}

	var result app.JobEvent
	for {
		var ev app.JobEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if ev.Type == app.JobEventResult || ev.Status == app.JobFailed {
			result = ev
			break
		}
	}
	if result.Status != app.JobDone || result.ScriptID == "" {
		t.Fatalf("unexpected final event %+v", result)
	}
	if !strings.Contains(result.Script, "tiny-gpt") {
		t.Errorf("expected script content in result event")
	}

	rec := do(t, e.srv, "GET", "/scripts/"+result.ScriptID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for stored script, got %d", rec.Code)
	}
	if rec.Body.String() != result.Script {
		t.Error("stored script differs from streamed script")
	}

	rec = do(t, e.srv, "GET", "/jobs/"+job.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for job, got %d", rec.Code)
	}
}

func TestServer_GenerateWS_BadRequest(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/ws/generate")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 before upgrade, got %d", rec.Code)
	}
}

// ─── Lifecycle ─────────────────────────────────────────────────────────

func TestServer_Close_RemovesTempFiles(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	for _, repo := range []string{"demo/tiny-gpt", "datasets/demo/squad-mini"} {
		if rec := do(t, e.srv, "GET", "/?"+e.query(repo)); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", repo, rec.Code)
		}
	}

	if err := e.srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := os.ReadDir(e.tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp dir to be empty after Close, found %d files", len(entries))
	}

	if rec := do(t, e.srv, "GET", "/?"+e.query("demo/tiny-gpt")); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after Close, got %d", rec.Code)
	}
}

func TestServer_HTTPServer(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	hs := e.srv.HTTPServer()
	if hs.Addr != ":0" {
		t.Errorf("expected addr :0, got %q", hs.Addr)
	}
	if hs.Handler != e.srv {
		t.Error("expected server to be the handler")
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	rec := do(t, e.srv, "GET", "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"/links"`) {
		t.Errorf("expected /links in OpenAPI document")
	}
}
