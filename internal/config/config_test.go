package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("TOOL_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "pdfs_to_parse", cfg.Paths.PdfInputDir)
	assert.Equal(t, "txt_files", cfg.Paths.TxtInputDir)
	assert.Equal(t, "parsed_pdfs_streamlit", cfg.Paths.ParsedSubdir)
	assert.Equal(t, "promptgen_cxml.txt", cfg.Paths.OutputFilename)
	assert.Equal(t, "llama-parse", cfg.Tools.LlamaParseCommand)
	assert.Equal(t, "files-to-prompt", cfg.Tools.FilesToPromptCommand)
	assert.Equal(t, 300*time.Second, cfg.Tools.Timeout)
	assert.Empty(t, cfg.Keys.GoogleGemini)
	assert.InDelta(t, 0.7, cfg.Ai.Temperature, 0.0001)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PDF_INPUT_DIR", "/data/pdfs")
	t.Setenv("TOOL_TIMEOUT", "45s")
	t.Setenv("UPLOAD_MAX_MB", "12")
	t.Setenv("PERSONA_TEMPERATURE", "0.2")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "/data/pdfs", cfg.Paths.PdfInputDir)
	assert.Equal(t, 45*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, 12, cfg.App.UploadMaxMB)
	assert.InDelta(t, 0.2, cfg.Ai.Temperature, 0.0001)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("UPLOAD_MAX_MB", "lots")
	assert.Equal(t, 7, getEnvAsInt("UPLOAD_MAX_MB", 7))
}
