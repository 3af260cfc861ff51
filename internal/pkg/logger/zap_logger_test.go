package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_GetLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := NewIsolatedLogger(path)

	l.Info("ContextService", "run started", map[string]interface{}{"mode": "both"})
	l.Warn("PdfParser", "pdf failed", map[string]interface{}{"file": "a.pdf"})
	l.Error("PersonaService", "api failed", map[string]interface{}{"error": errors.New("quota exceeded")})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// newest first
	assert.Equal(t, "api failed", all[0].Message)
	assert.Equal(t, "PersonaService", all[0].Module)
	assert.Equal(t, "quota exceeded", all[0].Details["error"])
	assert.Equal(t, "run started", all[2].Message)
	assert.NotEmpty(t, all[2].Id)

	warns, err := l.GetLogs("warn", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "pdf failed", warns[0].Message)

	page, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "pdf failed", page[0].Message)

	beyond, err := l.GetLogs("", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestGetLogs_MissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "missing.log")}
	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x", "y", nil)
	entries, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
