package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"context-generator-be/internal/config"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/internal/repository/memory"
	"context-generator-be/internal/service"
	"context-generator-be/pkg/aggregate"
	"context-generator-be/pkg/llm"
	"context-generator-be/pkg/pdfparse"
	"context-generator-be/pkg/toolrunner"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.reply, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	app    *fiber.App
	root   string
	cookie string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	root := t.TempDir()
	log := logger.NewNopLogger()

	authFile := filepath.Join(root, "auth.json")
	require.NoError(t, os.WriteFile(authFile, []byte("{}"), 0o644))

	runner := &toolrunner.FakeRunner{Handler: func(inv toolrunner.Invocation) (*toolrunner.Result, error) {
		switch inv.Name {
		case pdfparse.DefaultCommand:
			return &toolrunner.Result{}, os.WriteFile(inv.Args[3], []byte("# parsed"), 0o644)
		default:
			return &toolrunner.Result{Stdout: "<documents>combined</documents>\n"}, nil
		}
	}}

	repo := memory.NewSessionRepository(time.Hour)
	settingsSvc := service.NewSettingsService(repo, config.PathsConfig{
		PdfInputDir:    filepath.Join(root, "pdfs"),
		TxtInputDir:    filepath.Join(root, "txt"),
		ParsedSubdir:   "parsed",
		OutputDir:      filepath.Join(root, "out"),
		OutputFilename: "context.txt",
	}, log)
	parser := pdfparse.NewParser(pdfparse.Options{AuthFile: authFile, Runner: runner})
	aggregator := aggregate.NewAggregator(aggregate.Options{Runner: runner})

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	app.Use(serverutils.SessionMiddleware(time.Hour))
	api := app.Group("/api")

	NewSettingsController(settingsSvc).RegisterRoutes(api)
	NewFileController(service.NewFileService(settingsSvc, 1, log)).RegisterRoutes(api)
	NewContextController(service.NewContextService(settingsSvc, parser, aggregator, nil, 1<<20, log)).RegisterRoutes(api)
	NewPersonaController(service.NewPersonaService(settingsSvc, &stubProvider{reply: "You are a librarian."},
		service.PersonaOptions{APIKey: "k", Model: "gemini-test"}, log)).RegisterRoutes(api)
	NewStatusController(service.NewStatusService(parser, repo, service.StatusOptions{
		Tools: []string{pdfparse.DefaultCommand, aggregate.DefaultCommand},
	}, log)).RegisterRoutes(api)

	return &testApp{app: app, root: root}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == serverutils.SessionCookieName {
			a.cookie = c.Name + "=" + c.Value
		}
	}

	var body envelope
	raw, _ := io.ReadAll(resp.Body)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body))
	} else {
		body.Data = raw
	}
	return resp, body
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func uploadRequest(t *testing.T, target string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSettingsController(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), filepath.Join(a.root, "pdfs"))

	newTxt := filepath.Join(a.root, "other-txt")
	resp, body = a.do(t, jsonRequest(http.MethodPut, "/api/settings", map[string]string{
		"pdf_input_dir":   filepath.Join(a.root, "pdfs"),
		"txt_input_dir":   newTxt,
		"parsed_subdir":   "parsed",
		"output_dir":      filepath.Join(a.root, "out"),
		"output_filename": "ctx.txt",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body.Data))
	assert.DirExists(t, newTxt)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), "ctx.txt")

	resp, _ = a.do(t, jsonRequest(http.MethodPut, "/api/settings", map[string]string{
		"pdf_input_dir":   filepath.Join(a.root, "pdfs"),
		"txt_input_dir":   newTxt,
		"parsed_subdir":   "../escape",
		"output_dir":      filepath.Join(a.root, "out"),
		"output_filename": "ctx.txt",
	}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFileController_UploadListDelete(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, uploadRequest(t, "/api/files/txt", map[string]string{
		"notes.md":  "# notes",
		"image.png": "not text",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var upload struct {
		Saved  []struct{ Name string } `json:"saved"`
		Failed []struct{ Name string } `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &upload))
	require.Len(t, upload.Saved, 1)
	assert.Equal(t, "notes.md", upload.Saved[0].Name)
	require.Len(t, upload.Failed, 1)
	assert.Equal(t, "image.png", upload.Failed[0].Name)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/files/txt", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), "notes.md")

	resp, _ = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/files/txt/notes.md", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoFileExists(t, filepath.Join(a.root, "txt", "notes.md"))

	resp, _ = a.do(t, httptest.NewRequest(http.MethodDelete, "/api/files/txt/notes.md", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, httptest.NewRequest(http.MethodGet, "/api/files/docx", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContextController_GenerateAndDownload(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.do(t, httptest.NewRequest(http.MethodGet, "/api/context/download", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = a.do(t, jsonRequest(http.MethodPost, "/api/context/generate", map[string]string{"mode": "everything"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := a.do(t, jsonRequest(http.MethodPost, "/api/context/generate", map[string]string{"mode": "txt-only"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body.Data))
	assert.Contains(t, string(body.Data), "combined")

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/context/output", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"exists":true`)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/context/download", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "context.txt")
	assert.Equal(t, "<documents>combined</documents>\n", string(body.Data))
}

func TestPersonaController(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, httptest.NewRequest(http.MethodPost, "/api/persona/suggest", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, string(body.Data))

	resp, _ = a.do(t, jsonRequest(http.MethodPost, "/api/context/generate", map[string]string{"mode": "txt-only"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = a.do(t, httptest.NewRequest(http.MethodPost, "/api/persona/suggest", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), "You are a librarian.")

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/persona", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), "You are a librarian.")
}

func TestStatusController(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status struct {
		LlamaParseAuth bool     `json:"llama_parse_auth"`
		Modes          []string `json:"modes"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &status))
	assert.True(t, status.LlamaParseAuth)
	assert.Len(t, status.Modes, 3)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/api/logs?limit=5", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}
