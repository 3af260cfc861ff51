package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"context-generator-be/internal/dto"
	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/pkg/serverutils"
	"context-generator-be/pkg/aggregate"
	"context-generator-be/pkg/events"
	"context-generator-be/pkg/pdfparse"

	"github.com/dustin/go-humanize"
)

type PdfParser interface {
	CheckAuth() error
	ParseDir(ctx context.Context, pdfDir, outDir string, progress pdfparse.ProgressFunc) (*entity.ParseSummary, error)
}

type ContextAggregator interface {
	Combine(ctx context.Context, srcDir, outputPath string) (*aggregate.Output, error)
}

type IContextService interface {
	Generate(ctx context.Context, sessionID string, req *dto.GenerateContextRequest) (*dto.GenerateContextResponse, error)
	Output(ctx context.Context, sessionID string) (*dto.OutputPreview, error)
	DownloadPath(ctx context.Context, sessionID string) (string, error)
}

type contextService struct {
	settings        ISettingsService
	parser          PdfParser
	aggregator      ContextAggregator
	publisher       events.ProgressPublisher
	previewMaxBytes int
	logger          logger.ILogger
}

func NewContextService(
	settings ISettingsService,
	parser PdfParser,
	aggregator ContextAggregator,
	publisher events.ProgressPublisher,
	previewMaxBytes int,
	log logger.ILogger,
) IContextService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &contextService{
		settings:        settings,
		parser:          parser,
		aggregator:      aggregator,
		publisher:       publisher,
		previewMaxBytes: previewMaxBytes,
		logger:          log,
	}
}

// Generate runs the pipeline for one mode:
//
//	both      parse PDFs, aggregate the TXT dir (parsed subfolder included)
//	pdf-only  parse PDFs, aggregate only the parsed subfolder
//	txt-only  clear the parsed subfolder, aggregate the TXT dir
func (s *contextService) Generate(ctx context.Context, sessionID string, req *dto.GenerateContextRequest) (res *dto.GenerateContextResponse, err error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	mode, err := entity.ParseProcessingMode(req.Mode)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInput, "context.generate", err, "invalid mode")
	}

	progress := func(step, message string, current, total int) {
		s.publisher.PublishProgress(ctx, entity.Progress{
			SessionID: sessionID,
			Step:      step,
			Message:   message,
			Current:   current,
			Total:     total,
		})
	}
	defer func() {
		if err != nil {
			progress("error", err.Error(), 0, 0)
		}
	}()

	settings := s.settings.Current(sessionID)
	report := &entity.RunReport{Mode: mode, StartedAt: time.Now()}

	progress("validate", "checking directories", 0, 0)
	if err := s.settings.Validate(settings); err != nil {
		return nil, err
	}
	report.Step("Settings validated")

	if mode.RunsExtraction() {
		if err := s.extract(ctx, mode, settings, report, progress); err != nil {
			return nil, err
		}
	} else {
		progress("clear", "clearing previously parsed PDF output", 0, 0)
		if err := pdfparse.ResetDir(settings.ParsedDir()); err != nil {
			return nil, err
		}
		report.Step("Cleared parsed PDF folder %s", settings.ParsedDir())
	}

	source := mode.SourceDir(settings)
	report.SourceDir = source
	progress("aggregate", fmt.Sprintf("combining %s", source), 0, 0)

	out, err := s.aggregator.Combine(ctx, source, settings.OutputPath())
	if err != nil {
		return nil, err
	}
	report.OutputPath = out.Path
	report.BytesWritten = out.BytesWritten
	report.CommandLine = out.CommandLine
	report.Step("Combined %s into %s (%s)", source, out.Path, humanize.Bytes(uint64(out.BytesWritten)))

	preview, err := s.preview(out.Path)
	if err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now()
	progress("done", "context generated", 1, 1)

	s.logger.Info("ContextService", "context generated", map[string]interface{}{
		"session_id":  sessionID,
		"mode":        mode,
		"source":      source,
		"output":      out.Path,
		"bytes":       out.BytesWritten,
		"duration_ms": report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	})

	return &dto.GenerateContextResponse{Report: report, Output: preview}, nil
}

func (s *contextService) extract(
	ctx context.Context,
	mode entity.ProcessingMode,
	settings entity.Settings,
	report *entity.RunReport,
	progress func(step, message string, current, total int),
) error {
	progress("auth", "checking llama-parse credentials", 0, 0)
	if err := s.parser.CheckAuth(); err != nil {
		return err
	}

	summary, err := s.parser.ParseDir(ctx, settings.PdfInputDir, settings.ParsedDir(), func(current, total int, file string) {
		progress("parse", fmt.Sprintf("parsing %s", file), current, total)
	})
	report.Parse = summary
	if err != nil {
		return err
	}

	if summary.Attempted == 0 {
		report.Warn("No PDF files found in %s", settings.PdfInputDir)
	}
	report.Step("Parsed %d of %d PDF(s)", summary.Succeeded, summary.Attempted)

	if !summary.OK() {
		if mode == entity.ModePdfOnly {
			return apperror.Newf(apperror.KindToolFailed, "context.parse", "%d PDF(s) failed to parse", summary.Failed).
				WithDetail(failureDetail(summary))
		}
		for _, f := range summary.Failures {
			report.Warn("%s: %s", f.File, f.Reason)
		}
	}

	if mode == entity.ModePdfOnly && summary.Succeeded == 0 {
		return apperror.New(apperror.KindInput, "context.parse", "no PDFs were parsed; nothing to combine")
	}
	return nil
}

func failureDetail(summary *entity.ParseSummary) string {
	var b strings.Builder
	for _, f := range summary.Failures {
		fmt.Fprintf(&b, "%s: %s\n", f.File, f.Reason)
		if f.Output != "" {
			fmt.Fprintf(&b, "%s\n", f.Output)
		}
	}
	return strings.TrimSpace(b.String())
}

func (s *contextService) Output(ctx context.Context, sessionID string) (*dto.OutputPreview, error) {
	return s.preview(s.settings.Current(sessionID).OutputPath())
}

func (s *contextService) DownloadPath(ctx context.Context, sessionID string) (string, error) {
	path := s.settings.Current(sessionID).OutputPath()
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", apperror.Newf(apperror.KindNotFound, "context.download", "no generated context at %s", path)
	}
	return path, nil
}

// preview reads at most previewMaxBytes of the output, cut on a rune boundary.
func (s *contextService) preview(path string) (*dto.OutputPreview, error) {
	res := &dto.OutputPreview{Path: path}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return nil, apperror.Wrap(apperror.KindFilesystem, "context.output", err, "cannot read output file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "context.output", err, "cannot read output file")
	}

	limit := int64(s.previewMaxBytes)
	if limit <= 0 {
		limit = info.Size()
	}
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "context.output", err, "cannot read output file")
	}

	truncated := info.Size() > int64(len(data))
	if truncated {
		data = trimPartialRune(data)
	}

	res.Exists = true
	res.Size = info.Size()
	res.SizeHuman = humanize.Bytes(uint64(info.Size()))
	res.Content = string(data)
	res.Truncated = truncated
	res.ModifiedAt = info.ModTime().Format(time.RFC3339)
	return res, nil
}

// trimPartialRune drops a multi-byte rune cut off at the end of data. Invalid
// bytes elsewhere are left alone.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			return data[:i]
		}
		return data
	}
	return data
}
