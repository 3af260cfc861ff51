package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"context-generator-be/internal/config"
	"context-generator-be/internal/dto"
	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/internal/repository/memory"
)

type ISettingsService interface {
	Get(ctx context.Context, sessionID string) (*dto.SettingsResponse, error)
	Update(ctx context.Context, sessionID string, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	Validate(settings entity.Settings) error
	Current(sessionID string) entity.Settings
	Session(sessionID string) entity.Session
	SaveSession(session entity.Session)
}

type settingsService struct {
	repo     *memory.SessionRepository
	defaults entity.Settings
	logger   logger.ILogger
}

func NewSettingsService(repo *memory.SessionRepository, paths config.PathsConfig, log logger.ILogger) ISettingsService {
	defaults := entity.Settings{
		PdfInputDir:    absOrSelf(paths.PdfInputDir),
		TxtInputDir:    absOrSelf(paths.TxtInputDir),
		ParsedSubdir:   paths.ParsedSubdir,
		OutputDir:      absOrSelf(paths.OutputDir),
		OutputFilename: paths.OutputFilename,
	}
	return &settingsService{
		repo:     repo,
		defaults: defaults,
		logger:   log,
	}
}

func absOrSelf(p string) string {
	abs, err := filepath.Abs(expandHome(p))
	if err != nil {
		return p
	}
	return abs
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Session returns the session, creating it from the defaults on first access.
func (s *settingsService) Session(sessionID string) entity.Session {
	if session, found := s.repo.Get(sessionID); found {
		return session
	}
	session := entity.Session{ID: sessionID, Settings: s.defaults}
	s.repo.Save(session)
	return session
}

func (s *settingsService) SaveSession(session entity.Session) {
	s.repo.Save(session)
}

func (s *settingsService) Current(sessionID string) entity.Settings {
	return s.Session(sessionID).Settings
}

func (s *settingsService) Get(ctx context.Context, sessionID string) (*dto.SettingsResponse, error) {
	return dto.NewSettingsResponse(s.Current(sessionID)), nil
}

func (s *settingsService) Update(ctx context.Context, sessionID string, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	trimmed := dto.UpdateSettingsRequest{
		PdfInputDir:    strings.TrimSpace(req.PdfInputDir),
		TxtInputDir:    strings.TrimSpace(req.TxtInputDir),
		ParsedSubdir:   strings.TrimSpace(req.ParsedSubdir),
		OutputDir:      strings.TrimSpace(req.OutputDir),
		OutputFilename: strings.TrimSpace(req.OutputFilename),
	}
	if err := serverutils.ValidateRequest(&trimmed); err != nil {
		return nil, err
	}

	next := entity.Settings{
		PdfInputDir:    absOrSelf(trimmed.PdfInputDir),
		TxtInputDir:    absOrSelf(trimmed.TxtInputDir),
		ParsedSubdir:   trimmed.ParsedSubdir,
		OutputDir:      absOrSelf(trimmed.OutputDir),
		OutputFilename: trimmed.OutputFilename,
	}

	if err := s.Validate(next); err != nil {
		s.logger.Warn("SettingsService", "rejected settings update", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	session := s.Session(sessionID)
	session.Settings = next
	s.repo.Save(session)

	s.logger.Info("SettingsService", "settings updated", map[string]interface{}{
		"session_id": sessionID,
		"txt_dir":    next.TxtInputDir,
		"output":     next.OutputPath(),
	})
	return dto.NewSettingsResponse(next), nil
}

// Validate makes sure every configured directory exists (creating it when
// missing) and is writable. Nothing is retried.
func (s *settingsService) Validate(settings entity.Settings) error {
	if !isPlainName(settings.ParsedSubdir) {
		return apperror.Newf(apperror.KindConfiguration, "settings", "parsed subfolder must be a plain directory name, got %q", settings.ParsedSubdir)
	}
	if !isPlainName(settings.OutputFilename) {
		return apperror.Newf(apperror.KindConfiguration, "settings", "output filename must be a plain file name, got %q", settings.OutputFilename)
	}

	// The parsed subfolder is removed and recreated on every run.
	parsedDir := settings.ParsedDir()
	if isWithin(parsedDir, settings.PdfInputDir) {
		return apperror.Newf(apperror.KindConfiguration, "settings",
			"PDF input directory %s must not be inside the parsed subfolder %s", settings.PdfInputDir, parsedDir)
	}
	if isWithin(parsedDir, settings.OutputDir) {
		return apperror.Newf(apperror.KindConfiguration, "settings",
			"output directory %s must not be inside the parsed subfolder %s", settings.OutputDir, parsedDir)
	}

	dirs := []struct {
		label string
		path  string
	}{
		{"PDF input directory", settings.PdfInputDir},
		{"TXT input directory", settings.TxtInputDir},
		{"output directory", settings.OutputDir},
	}
	for _, d := range dirs {
		if err := ensureWritableDir(d.label, d.path); err != nil {
			return err
		}
	}
	return nil
}

// isPlainName reports whether name is a single path element that does not
// refer to its parent or to itself.
func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." || name != strings.TrimSpace(name) {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// isWithin reports whether target is base or lies below it.
func isWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func ensureWritableDir(label, dir string) error {
	if dir == "" {
		return apperror.Newf(apperror.KindConfiguration, "settings", "%s is not set", label)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.Wrap(apperror.KindConfiguration, "settings", err, fmt.Sprintf("cannot create %s %s", label, dir))
	}
	info, err := os.Stat(dir)
	if err != nil {
		return apperror.Wrap(apperror.KindConfiguration, "settings", err, fmt.Sprintf("cannot access %s %s", label, dir))
	}
	if !info.IsDir() {
		return apperror.Newf(apperror.KindConfiguration, "settings", "%s %s is not a directory", label, dir)
	}

	probe, err := os.CreateTemp(dir, ".cg-write-test-*")
	if err != nil {
		return apperror.Wrap(apperror.KindConfiguration, "settings", err, fmt.Sprintf("%s %s is not writable", label, dir))
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
