package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"slideforge/internal/config"
	"slideforge/internal/idempotency"
	"slideforge/internal/layout"
	"slideforge/internal/outline"
	"slideforge/internal/render"
	"slideforge/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		API:     config.APIConfig{Port: 8080},
		Storage: config.StorageConfig{Dir: t.TempDir(), MaxUploadMB: 1},
		Scoring: config.ScoringConfig{
			UnderflowWeight: 2.0,
			OverflowWeight:  1.5,
			TiebreakWeight:  0.5,
		},
		Idempotency: config.IdempotencyConfig{Backend: "memory", TTLSeconds: 300},
	}
}

type testApp struct {
	router *gin.Engine
	store  *storage.LocalStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	store, err := storage.NewLocalStore(cfg.Storage, nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog := layout.NewCatalog("", nil)
	outlineService := outline.NewServiceWith(&outline.HeuristicStrategy{}, &outline.HeuristicStrategy{}, nil, nil)
	exporter := render.NewExporter(store, render.NewPPTXRenderer(nil, nil), nil)

	router := NewRouter(nil)
	RegisterRoutes(router, cfg, store, nil, catalog, outlineService, exporter, idempotency.NewMemoryStore(), nil)
	return &testApp{router: router, store: store}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestHealthAndCorrelationID(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing correlation id header")
	}
	if w.Header().Get("X-Response-Time-Ms") == "" {
		t.Error("missing response time header")
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/health", nil, map[string]string{"X-Correlation-ID": "abc-123"})
	if got := w.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("correlation id = %q, want echo of caller's", got)
	}
}

func TestOutlineEndpointHeuristicExample(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/v1/outline",
		map[string]any{"topic": "Q3 Review", "slide_count": 3}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var d struct {
		SlideCount int `json:"slide_count"`
		Slides     []struct {
			Title string `json:"title"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.SlideCount != 3 {
		t.Errorf("slide_count = %d", d.SlideCount)
	}
	if d.Slides[0].Title != "Slide 1: Q3 Review — Overview" {
		t.Errorf("title = %q", d.Slides[0].Title)
	}
}

func TestOutlineRequiresTopicOrText(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/v1/outline", map[string]any{"slide_count": 3}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestOutlineRegenerateIndexBounds(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/v1/outline/5/regenerate",
		map[string]any{"topic": "T", "slide_count": 3}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = app.do(t, http.MethodPost, "/v1/outline/1/regenerate",
		map[string]any{"topic": "Q3 Review", "slide_count": 3}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var s struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.Title != "Slide 2: Q3 Review — Goals" {
		t.Errorf("title = %q", s.Title)
	}
}

func TestLayoutsListAndFilter(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/v1/layouts", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var lib struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &lib); err != nil {
		t.Fatal(err)
	}
	if len(lib.Items) != 3 {
		t.Errorf("items = %d, want embedded default 3", len(lib.Items))
	}

	w = app.do(t, http.MethodPost, "/v1/layouts/filter", map[string]any{
		"components": map[string]int{"text_count": 6, "image_count": 0},
		"top_k":      2,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("filter status = %d", w.Code)
	}
	var out struct {
		Candidates []string `json:"candidates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Candidates) != 2 {
		t.Errorf("candidates = %v", out.Candidates)
	}
	if out.Candidates[0] != "title_bullets_left" {
		t.Errorf("top candidate = %q for text-heavy shape", out.Candidates[0])
	}
}

func buildBody(policy string, layoutID string) map[string]any {
	sel := []map[string]any{}
	if layoutID != "" {
		sel = append(sel, map[string]any{"slide_id": "s1", "layout_id": layoutID})
	}
	return map[string]any{
		"deck": map[string]any{
			"version": "1.0",
			"topic":   "T",
			"slides": []map[string]any{
				{"id": "s1", "title": "First", "bullets": []string{"a", "b"}},
			},
		},
		"selections": sel,
		"policy":     policy,
	}
}

func TestEditorBuildStrictUnknownLayout(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/v1/editor/build", buildBody("strict", "nope"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "nope") || !strings.Contains(w.Body.String(), "s1") {
		t.Errorf("error should identify slide and layout: %s", w.Body.String())
	}
}

func TestEditorBuildBestFitWarns(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/v1/editor/build", buildBody("best_fit", "nope"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Warnings []layout.Warning  `json:"warnings"`
		Meta     map[string]string `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("warnings = %+v", resp.Warnings)
	}
	if resp.Meta["idempotency"] != "MISS" {
		t.Errorf("meta = %+v", resp.Meta)
	}
}

func TestEditorBuildWarningsAsErrors(t *testing.T) {
	app := newTestApp(t)
	body := buildBody("best_fit", "nope")
	body["warnings_as_errors"] = true
	w := app.do(t, http.MethodPost, "/v1/editor/build", body, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEditorBuildIdempotency(t *testing.T) {
	app := newTestApp(t)
	headers := map[string]string{"Idempotency-Key": "key-1"}

	first := app.do(t, http.MethodPost, "/v1/editor/build", buildBody("best_fit", ""), headers)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	second := app.do(t, http.MethodPost, "/v1/editor/build", buildBody("best_fit", ""), headers)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d", second.Code)
	}

	var a, b map[string]json.RawMessage
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}

	var metaA, metaB map[string]string
	_ = json.Unmarshal(a["meta"], &metaA)
	_ = json.Unmarshal(b["meta"], &metaB)
	if metaA["idempotency"] != "MISS" || metaB["idempotency"] != "HIT" {
		t.Errorf("markers = %q / %q", metaA["idempotency"], metaB["idempotency"])
	}

	// Aside from the marker the replay is the first payload verbatim, ids
	// included.
	if !bytes.Equal(a["editor"], b["editor"]) {
		t.Error("editor payloads differ between MISS and HIT")
	}
	if !bytes.Equal(a["warnings"], b["warnings"]) {
		t.Error("warnings differ between MISS and HIT")
	}
}

func TestExportRequiresExactlyOnePayload(t *testing.T) {
	app := newTestApp(t)

	both := map[string]any{
		"slides": []map[string]any{{"id": "s1", "title": "A"}},
		"editor": map[string]any{"version": "1.0", "slides": []any{}},
	}
	w := app.do(t, http.MethodPost, "/v1/export", both, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("both payloads: status = %d, want 400", w.Code)
	}

	w = app.do(t, http.MethodPost, "/v1/export", map[string]any{"theme": "default"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("neither payload: status = %d, want 400", w.Code)
	}
}

func TestDownloadRejectsBadNames(t *testing.T) {
	app := newTestApp(t)

	// Names outside the stamped artifact pattern are rejected as invalid,
	// not treated as missing files.
	for _, name := range []string{
		"deck_20250601_120000_default.exe",
		"deck_2025_120000_default.txt",
		"..deck_20250601_120000_default.txt",
		"secret.txt",
	} {
		w := app.do(t, http.MethodGet, "/v1/export/"+name, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestDownloadMissingFile(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/v1/export/deck_20250601_120000_default.txt", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDownloadServesArtifact(t *testing.T) {
	app := newTestApp(t)
	name := "deck_20250601_120000_default.txt"
	if _, err := app.store.WriteExport(name, []byte("Kickoff\n")); err != nil {
		t.Fatal(err)
	}

	w := app.do(t, http.MethodGet, "/v1/export/"+name, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "Kickoff\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestAssetsUploadDisabled(t *testing.T) {
	app := newTestApp(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "a.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("not really a png"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/assets/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 when object store disabled", w.Code)
	}
}

func TestUploadStoresAndPreviews(t *testing.T) {
	app := newTestApp(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("First line\nSecond line"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Path          string `json:"path"`
		ParsedPreview struct {
			Kind        string `json:"kind"`
			TextPreview string `json:"text_preview"`
		} `json:"parsed_preview"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ParsedPreview.Kind != "text" {
		t.Errorf("kind = %q", resp.ParsedPreview.Kind)
	}
	if !strings.Contains(resp.ParsedPreview.TextPreview, "First line") {
		t.Errorf("preview = %q", resp.ParsedPreview.TextPreview)
	}
	if _, err := os.Stat(resp.Path); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
	if filepath.Dir(resp.Path) != app.store.UploadsDir() {
		t.Errorf("stored outside uploads dir: %q", resp.Path)
	}
}

func TestAuthGuardWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.Auth = config.AuthConfig{Enabled: true, Token: "sekret"}

	store, err := storage.NewLocalStore(cfg.Storage, nil)
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(nil)
	RegisterRoutes(router, cfg, store, nil, layout.NewCatalog("", nil),
		outline.NewServiceWith(&outline.HeuristicStrategy{}, &outline.HeuristicStrategy{}, nil, nil),
		render.NewExporter(store, render.NewPPTXRenderer(nil, nil), nil),
		idempotency.NewMemoryStore(), nil)
	app := &testApp{router: router, store: store}

	w := app.do(t, http.MethodPost, "/v1/outline", map[string]any{"topic": "T", "slide_count": 1}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}

	w = app.do(t, http.MethodPost, "/v1/outline", map[string]any{"topic": "T", "slide_count": 1},
		map[string]string{"Authorization": "Bearer sekret"})
	if w.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", w.Code)
	}

	// Reads stay open.
	w = app.do(t, http.MethodGet, "/v1/layouts", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("layouts status = %d", w.Code)
	}
}
