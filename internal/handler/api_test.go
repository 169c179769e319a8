package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/scan"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, root string, rules *ignore.RuleSet) (*gin.Engine, *API) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if rules == nil {
		rules = ignore.New()
	}
	api := NewAPI(root, rules, config.DefaultConfig(), zap.NewNop(), nil)

	r := gin.New()
	r.GET("/api/ping", api.GetPing)
	r.GET("/api/meta", api.GetMeta)
	r.GET("/api/files", api.GetFiles)
	r.GET("/api/raw/*path", api.GetRaw)
	r.GET("/api/render/*path", api.GetRender)
	r.POST("/api/refresh", api.PostRefresh)
	r.POST("/api/shutdown", api.PostShutdown)
	return r, api
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func seedProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"hello.py":  "print('hi')\n",
		"README.md": "# Demo\n\nSome *docs*.\n",
	}
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestGetPing(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/ping")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Error("expected ok true")
	}
	if _, has := body["time"]; !has {
		t.Error("expected time field")
	}
}

func TestGetMeta(t *testing.T) {
	root := seedProject(t)
	r, _ := setupRouter(t, root, nil)
	w := doRequest(r, http.MethodGet, "/api/meta")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var meta scan.Meta
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Root != root {
		t.Errorf("meta root = %q, want %q", meta.Root, root)
	}
	if meta.FileCount != 2 {
		t.Errorf("expected 2 files, got %d", meta.FileCount)
	}
}

func TestGetFiles(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/files")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var files []scan.FileRecord
	if err := json.Unmarshal(w.Body.Bytes(), &files); err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 records, got %d", len(files))
	}
	if files[0].Path != "README.md" || files[1].Path != "hello.py" {
		t.Errorf("unexpected order: %s, %s", files[0].Path, files[1].Path)
	}
	if files[1].Text == nil || !strings.Contains(*files[1].Text, "print") {
		t.Error("expected hello.py text content")
	}
}

func TestGetFilesEmptyProject(t *testing.T) {
	r, _ := setupRouter(t, t.TempDir(), nil)
	w := doRequest(r, http.MethodGet, "/api/files")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", w.Body.String())
	}
}

func TestGetFilesHonorsIgnore(t *testing.T) {
	root := seedProject(t)
	if err := os.MkdirAll(filepath.Join(root, "build"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "build", "out.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	r, _ := setupRouter(t, root, ignore.New("build/"))
	w := doRequest(r, http.MethodGet, "/api/files")

	if strings.Contains(w.Body.String(), "build/out.txt") {
		t.Error("ignored file leaked into the file list")
	}
}

func TestGetRaw(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/raw/hello.py")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "print('hi')\n" {
		t.Errorf("unexpected raw body: %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/x-python") {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestGetRawRejectsTraversal(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/raw/../etc/passwd")

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for traversal, got %d", w.Code)
	}
}

func TestGetRenderMarkdown(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/render/README.md")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["kind"] != "markdown" {
		t.Errorf("expected markdown kind, got %v", body["kind"])
	}
	if html, _ := body["html"].(string); !strings.Contains(html, "<h1") {
		t.Error("expected rendered heading")
	}
	if body["title"] != "Demo" {
		t.Errorf("expected title Demo, got %v", body["title"])
	}
}

func TestGetRenderCode(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodGet, "/api/render/hello.py")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["kind"] != "code" {
		t.Errorf("expected code kind, got %v", body["kind"])
	}
	if html, _ := body["html"].(string); !strings.Contains(html, "<span") {
		t.Error("expected highlighted output")
	}
}

func TestPostRefresh(t *testing.T) {
	r, _ := setupRouter(t, seedProject(t), nil)
	w := doRequest(r, http.MethodPost, "/api/refresh")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Error("expected ok true")
	}
	if body["file_count"] != float64(2) {
		t.Errorf("expected file_count 2, got %v", body["file_count"])
	}
}

func TestGetIndexEmbedsPayloads(t *testing.T) {
	root := seedProject(t)
	_, api := setupRouter(t, root, nil)

	shell := []byte(`<html><head>` + metaPlaceholder + filesPlaceholder + `</head><body></body></html>`)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", api.GetIndex(shell))

	w := doRequest(r, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := w.Body.String()
	if !strings.Contains(out, `"file_count":2`) {
		t.Error("expected embedded metadata")
	}
	if !strings.Contains(out, `"path":"hello.py"`) {
		t.Error("expected embedded file list")
	}
}

func TestSafeJSONEscapesScriptClose(t *testing.T) {
	data, err := safeJSON(map[string]string{"text": "</script><script>alert(1)</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "</script>") {
		t.Error("embedded JSON must not contain a literal </script>")
	}
}
