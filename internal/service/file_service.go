package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"context-generator-be/internal/dto"
	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

// TextExtensions are accepted by TXT uploads.
var TextExtensions = []string{
	"txt", "md", "markdown", "json", "xml", "yaml", "yml",
	"py", "js", "html", "css", "csv", "tsv", "rst",
}

const sniffLen = 3072

type IFileService interface {
	List(ctx context.Context, sessionID string, kind entity.FileKind) (*dto.ListFilesResponse, error)
	Upload(ctx context.Context, sessionID string, kind entity.FileKind, files []*multipart.FileHeader) (*dto.UploadFilesResponse, error)
	Delete(ctx context.Context, sessionID string, kind entity.FileKind, name string) (*dto.DeleteFileResponse, error)
}

type fileService struct {
	settings     ISettingsService
	maxFileBytes int64
	logger       logger.ILogger
}

func NewFileService(settings ISettingsService, maxUploadMB int, log logger.ILogger) IFileService {
	return &fileService{
		settings:     settings,
		maxFileBytes: int64(maxUploadMB) << 20,
		logger:       log,
	}
}

func (s *fileService) List(ctx context.Context, sessionID string, kind entity.FileKind) (*dto.ListFilesResponse, error) {
	dir := kind.Dir(s.settings.Current(sessionID))
	files, err := ListDir(dir, kind)
	if err != nil {
		return nil, err
	}
	return &dto.ListFilesResponse{Kind: kind, Directory: dir, Files: files}, nil
}

// ListDir lists the regular files directly inside dir, sorted by name.
// A missing directory yields an empty list.
func ListDir(dir string, kind entity.FileKind) ([]entity.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entity.FileEntry{}, nil
		}
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.list", err, fmt.Sprintf("cannot read %s", dir))
	}

	regular := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		if !e.Type().IsRegular() {
			return false
		}
		if kind == entity.FileKindPdf {
			return strings.EqualFold(filepath.Ext(e.Name()), ".pdf")
		}
		return true
	})

	files := make([]entity.FileEntry, 0, len(regular))
	for _, e := range regular {
		info, err := e.Info()
		if err != nil {
			continue
		}
		full := filepath.Join(dir, e.Name())
		mime := "application/octet-stream"
		if m, err := mimetype.DetectFile(full); err == nil {
			mime = m.String()
		}
		files = append(files, entity.FileEntry{
			Name:       e.Name(),
			Path:       full,
			Size:       info.Size(),
			SizeHuman:  humanize.Bytes(uint64(info.Size())),
			MimeType:   mime,
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *fileService) Upload(ctx context.Context, sessionID string, kind entity.FileKind, files []*multipart.FileHeader) (*dto.UploadFilesResponse, error) {
	if len(files) == 0 {
		return nil, apperror.New(apperror.KindInput, "files.upload", "no files were uploaded")
	}

	dir := kind.Dir(s.settings.Current(sessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.upload", err, fmt.Sprintf("cannot create %s", dir))
	}

	res := &dto.UploadFilesResponse{
		Directory: dir,
		Saved:     []dto.SavedFile{},
		Failed:    []dto.FailedFile{},
	}
	for _, fh := range files {
		saved, err := s.saveOne(dir, kind, fh)
		if err != nil {
			res.Failed = append(res.Failed, dto.FailedFile{Name: fh.Filename, Reason: err.Error()})
			continue
		}
		res.Saved = append(res.Saved, *saved)
	}

	s.logger.Info("FileService", "upload finished", map[string]interface{}{
		"session_id": sessionID,
		"kind":       kind,
		"saved":      len(res.Saved),
		"failed":     len(res.Failed),
	})
	return res, nil
}

func (s *fileService) saveOne(dir string, kind entity.FileKind, fh *multipart.FileHeader) (*dto.SavedFile, error) {
	name, err := SanitizeFileName(fh.Filename)
	if err != nil {
		return nil, err
	}
	if s.maxFileBytes > 0 && fh.Size > s.maxFileBytes {
		return nil, apperror.Newf(apperror.KindInput, "files.upload", "%s exceeds the %s upload limit",
			name, humanize.Bytes(uint64(s.maxFileBytes)))
	}
	if err := checkExtension(kind, name); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInput, "files.upload", err, "cannot read upload")
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Wrap(apperror.KindInput, "files.upload", err, "cannot read upload")
	}
	head = head[:n]

	if kind == entity.FileKindPdf {
		if m := mimetype.Detect(head); !m.Is("application/pdf") {
			return nil, apperror.Newf(apperror.KindInput, "files.upload", "%s is not a PDF (detected %s)", name, m.String())
		}
	}

	target := filepath.Join(dir, name)
	_, statErr := os.Stat(target)
	overwritten := statErr == nil

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.upload", err, "cannot create file")
	}
	written, copyErr := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), src))
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.upload", errors.Join(copyErr, closeErr), "cannot write file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.upload", err, "cannot write file")
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.upload", err, "cannot write file")
	}

	return &dto.SavedFile{
		Name:        name,
		Size:        written,
		SizeHuman:   humanize.Bytes(uint64(written)),
		Overwritten: overwritten,
	}, nil
}

func checkExtension(kind entity.FileKind, name string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch kind {
	case entity.FileKindPdf:
		if ext != "pdf" {
			return apperror.Newf(apperror.KindInput, "files.upload", "%s: only .pdf files are accepted", name)
		}
	case entity.FileKindTxt:
		if !lo.Contains(TextExtensions, ext) {
			return apperror.Newf(apperror.KindInput, "files.upload", "%s: extension not accepted (allowed: %s)",
				name, strings.Join(TextExtensions, ", "))
		}
	}
	return nil
}

// SanitizeFileName reduces an uploaded name to its base name. Names with a
// parent reference, hidden names and empty names are rejected.
func SanitizeFileName(raw string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/")
	if lo.Contains(strings.Split(normalized, "/"), "..") || strings.HasSuffix(normalized, "/") {
		return "", apperror.Newf(apperror.KindInput, "files", "invalid file name %q", raw)
	}
	name := path.Base(normalized)
	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", apperror.Newf(apperror.KindInput, "files", "invalid file name %q", raw)
	}
	return name, nil
}

func (s *fileService) Delete(ctx context.Context, sessionID string, kind entity.FileKind, name string) (*dto.DeleteFileResponse, error) {
	// Any name the listing shows can be deleted, hidden ones included, as long
	// as it is a single path element.
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, apperror.Newf(apperror.KindInput, "files.delete", "invalid file name %q", name)
	}
	clean := name

	dir := kind.Dir(s.settings.Current(sessionID))
	target := filepath.Join(dir, clean)
	if rel, err := filepath.Rel(dir, target); err != nil || strings.HasPrefix(rel, "..") {
		return nil, apperror.Newf(apperror.KindInput, "files.delete", "invalid file name %q", name)
	}

	info, err := os.Lstat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Newf(apperror.KindNotFound, "files.delete", "%s not found in %s", clean, dir)
		}
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.delete", err, "cannot access file")
	}
	if info.IsDir() {
		return nil, apperror.Newf(apperror.KindInput, "files.delete", "%s is a directory", clean)
	}

	if err := os.Remove(target); err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "files.delete", err, fmt.Sprintf("cannot delete %s", clean))
	}

	s.logger.Info("FileService", "file deleted", map[string]interface{}{
		"session_id": sessionID,
		"path":       target,
	})
	return &dto.DeleteFileResponse{Name: clean}, nil
}
