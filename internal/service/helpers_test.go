package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"context-generator-be/internal/config"
	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/repository/memory"
	"context-generator-be/pkg/llm"

	"github.com/stretchr/testify/require"
)

const testSession = "session-1"

func newTestSettings(t *testing.T) (ISettingsService, entity.Settings) {
	t.Helper()
	root := t.TempDir()
	paths := config.PathsConfig{
		PdfInputDir:    filepath.Join(root, "pdfs"),
		TxtInputDir:    filepath.Join(root, "txt"),
		ParsedSubdir:   "parsed",
		OutputDir:      filepath.Join(root, "out"),
		OutputFilename: "context.txt",
	}
	svc := NewSettingsService(memory.NewSessionRepository(time.Hour), paths, logger.NewNopLogger())
	settings := svc.Current(testSession)
	require.NoError(t, svc.Validate(settings))
	return svc, settings
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	options llm.Options
	reply   string
	err     error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.options = llm.Apply(llm.Options{}, opts...)
	return f.reply, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
