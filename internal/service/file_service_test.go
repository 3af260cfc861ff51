package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pdfBytes = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

func multipartFiles(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func TestFileService_ListSortedNonRecursive(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())

	writeTestFile(t, filepath.Join(settings.PdfInputDir, "b.pdf"), pdfBytes)
	writeTestFile(t, filepath.Join(settings.PdfInputDir, "a.pdf"), pdfBytes)
	writeTestFile(t, filepath.Join(settings.PdfInputDir, "readme.txt"), "x")
	writeTestFile(t, filepath.Join(settings.TxtInputDir, "notes.md"), "# notes")
	writeTestFile(t, filepath.Join(settings.ParsedDir(), "a.md"), "parsed")

	pdfs, err := svc.List(context.Background(), testSession, entity.FileKindPdf)
	require.NoError(t, err)
	require.Len(t, pdfs.Files, 2)
	assert.Equal(t, "a.pdf", pdfs.Files[0].Name)
	assert.Equal(t, "b.pdf", pdfs.Files[1].Name)
	assert.Equal(t, "application/pdf", pdfs.Files[0].MimeType)
	assert.NotEmpty(t, pdfs.Files[0].SizeHuman)

	txts, err := svc.List(context.Background(), testSession, entity.FileKindTxt)
	require.NoError(t, err)
	require.Len(t, txts.Files, 1)
	assert.Equal(t, "notes.md", txts.Files[0].Name)
}

func TestListDir_MissingDirectory(t *testing.T) {
	files, err := ListDir(filepath.Join(t.TempDir(), "nope"), entity.FileKindTxt)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileService_Upload(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())
	writeTestFile(t, filepath.Join(settings.TxtInputDir, "existing.md"), "old")

	res, err := svc.Upload(context.Background(), testSession, entity.FileKindTxt, multipartFiles(t, map[string]string{
		"existing.md": "new content",
		"data.csv":    "a,b\n1,2\n",
		"binary.exe":  "MZ",
	}))

	require.NoError(t, err)
	require.Len(t, res.Saved, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "binary.exe", res.Failed[0].Name)

	saved := map[string]bool{}
	for _, s := range res.Saved {
		saved[s.Name] = s.Overwritten
	}
	assert.True(t, saved["existing.md"])
	assert.False(t, saved["data.csv"])

	got, err := os.ReadFile(filepath.Join(settings.TxtInputDir, "existing.md"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(got))
}

func TestFileService_UploadPdfChecksContent(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())

	res, err := svc.Upload(context.Background(), testSession, entity.FileKindPdf, multipartFiles(t, map[string]string{
		"real.pdf":  pdfBytes,
		"fake.pdf":  "just text pretending",
		"notes.txt": "x",
	}))

	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	assert.Equal(t, "real.pdf", res.Saved[0].Name)
	assert.Len(t, res.Failed, 2)
	assert.FileExists(t, filepath.Join(settings.PdfInputDir, "real.pdf"))
	assert.NoFileExists(t, filepath.Join(settings.PdfInputDir, "fake.pdf"))
}

func TestFileService_UploadStaysInsideDirectory(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())

	res, err := svc.Upload(context.Background(), testSession, entity.FileKindTxt, multipartFiles(t, map[string]string{
		"../escape.txt": "x",
	}))

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(settings.TxtInputDir), "escape.txt"))
	for _, s := range res.Saved {
		assert.FileExists(t, filepath.Join(settings.TxtInputDir, s.Name))
	}
}

func TestFileService_UploadSizeLimit(t *testing.T) {
	settingsSvc, _ := newTestSettings(t)
	svc := NewFileService(settingsSvc, 1, logger.NewNopLogger())

	res, err := svc.Upload(context.Background(), testSession, entity.FileKindTxt, multipartFiles(t, map[string]string{
		"big.txt": string(bytes.Repeat([]byte("a"), (1<<20)+1)),
	}))

	require.NoError(t, err)
	assert.Empty(t, res.Saved)
	assert.Len(t, res.Failed, 1)
}

func TestFileService_UploadNothing(t *testing.T) {
	settingsSvc, _ := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())

	_, err := svc.Upload(context.Background(), testSession, entity.FileKindTxt, nil)
	assert.Equal(t, apperror.KindInput, apperror.KindOf(err))
}

func TestFileService_Delete(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())
	writeTestFile(t, filepath.Join(settings.TxtInputDir, "gone.txt"), "x")

	_, err := svc.Delete(context.Background(), testSession, entity.FileKindTxt, "gone.txt")
	require.NoError(t, err)

	list, err := svc.List(context.Background(), testSession, entity.FileKindTxt)
	require.NoError(t, err)
	assert.Empty(t, list.Files)

	_, err = svc.Delete(context.Background(), testSession, entity.FileKindTxt, "gone.txt")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Delete(context.Background(), testSession, entity.FileKindTxt, "../context.txt")
	assert.Equal(t, apperror.KindInput, apperror.KindOf(err))

	_, err = svc.Delete(context.Background(), testSession, entity.FileKindTxt, settings.ParsedSubdir)
	assert.Error(t, err)
}

func TestFileService_DeleteListedOddNames(t *testing.T) {
	settingsSvc, settings := newTestSettings(t)
	svc := NewFileService(settingsSvc, 10, logger.NewNopLogger())
	writeTestFile(t, filepath.Join(settings.TxtInputDir, ".DS_Store"), "x")
	writeTestFile(t, filepath.Join(settings.TxtInputDir, " a.txt"), "x")

	list, err := svc.List(context.Background(), testSession, entity.FileKindTxt)
	require.NoError(t, err)
	require.Len(t, list.Files, 2)

	for _, f := range list.Files {
		_, err := svc.Delete(context.Background(), testSession, entity.FileKindTxt, f.Name)
		require.NoError(t, err, f.Name)
	}

	list, err = svc.List(context.Background(), testSession, entity.FileKindTxt)
	require.NoError(t, err)
	assert.Empty(t, list.Files)

	for _, name := range []string{".", "..", "a/b.txt", `a\b.txt`} {
		_, err := svc.Delete(context.Background(), testSession, entity.FileKindTxt, name)
		assert.Equal(t, apperror.KindInput, apperror.KindOf(err), name)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"report.pdf", "report.pdf", false},
		{"dir/report.pdf", "report.pdf", false},
		{`C:\Users\me\report.pdf`, "report.pdf", false},
		{"../report.pdf", "", true},
		{"..", "", true},
		{".hidden", "", true},
		{"", "", true},
		{"dir/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
