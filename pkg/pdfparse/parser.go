// Package pdfparse converts a directory of PDFs to markdown through the
// llama-parse CLI.
package pdfparse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/pkg/toolrunner"

	"github.com/samber/lo"
)

const DefaultCommand = "llama-parse"

// ProgressFunc is called once per PDF, before it is handed to the tool.
type ProgressFunc func(current, total int, file string)

type Options struct {
	Command  string
	AuthFile string
	Timeout  time.Duration
	Runner   toolrunner.Runner
	Logger   logger.ILogger
}

type Parser struct {
	command  string
	authFile string
	timeout  time.Duration
	runner   toolrunner.Runner
	logger   logger.ILogger
}

func NewParser(opts Options) *Parser {
	command := opts.Command
	if command == "" {
		command = DefaultCommand
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Parser{
		command:  command,
		authFile: opts.AuthFile,
		timeout:  opts.Timeout,
		runner:   opts.Runner,
		logger:   log,
	}
}

func (p *Parser) Command() string {
	return p.command
}

func (p *Parser) AuthFile() string {
	return p.authFile
}

// CheckAuth verifies the credential file written by `llama-parse auth`.
func (p *Parser) CheckAuth() error {
	if p.authFile == "" {
		return apperror.New(apperror.KindConfiguration, "pdfparse.auth", "llama-parse auth file is not configured")
	}
	info, err := os.Stat(p.authFile)
	if err != nil || info.IsDir() {
		return apperror.Newf(apperror.KindConfiguration, "pdfparse.auth",
			"llama-parse auth file not found at %s; run 'llama-parse auth' first", p.authFile)
	}
	return nil
}

// ListPDFs returns the *.pdf regular files directly inside dir, sorted.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	pdfs := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if !e.Type().IsRegular() {
			return "", false
		}
		return filepath.Join(dir, e.Name()), strings.EqualFold(filepath.Ext(e.Name()), ".pdf")
	})
	sort.Strings(pdfs)
	return pdfs, nil
}

// ParseDir empties outDir and parses every PDF in pdfDir into outDir/<stem>.md.
// A file counts as parsed only when the tool exits 0 and the markdown exists.
// Per-file failures are collected in the summary; a missing tool aborts.
func (p *Parser) ParseDir(ctx context.Context, pdfDir, outDir string, progress ProgressFunc) (*entity.ParseSummary, error) {
	info, err := os.Stat(pdfDir)
	if err != nil || !info.IsDir() {
		return nil, apperror.Newf(apperror.KindConfiguration, "pdfparse", "PDF input directory not found: %s", pdfDir)
	}

	if err := ResetDir(outDir); err != nil {
		return nil, err
	}

	pdfs, err := ListPDFs(pdfDir)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "pdfparse", err, "could not list PDFs")
	}

	summary := &entity.ParseSummary{Attempted: len(pdfs)}
	if len(pdfs) == 0 {
		p.logger.Info("PdfParser", "no PDFs found", map[string]interface{}{"dir": pdfDir})
		return summary, nil
	}

	for i, pdf := range pdfs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := filepath.Base(pdf)
		if progress != nil {
			progress(i+1, len(pdfs), name)
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		outFile := filepath.Join(outDir, stem+".md")

		res, runErr := p.runner.Run(ctx, toolrunner.Invocation{
			Name:    p.command,
			Args:    []string{"parse", pdf, "-o", outFile, "--format", "markdown"},
			Timeout: p.timeout,
		})
		if runErr != nil {
			if apperror.Is(runErr, apperror.KindToolMissing) {
				return summary, runErr
			}
			failure := entity.ParseFailure{File: name, Reason: runErr.Error(), Output: apperror.DetailOf(runErr)}
			if res != nil {
				failure.ExitCode = res.ExitCode
			}
			summary.Failed++
			summary.Failures = append(summary.Failures, failure)
			p.logger.Warn("PdfParser", "parse failed", map[string]interface{}{
				"file":      name,
				"exit_code": failure.ExitCode,
			})
			continue
		}

		if _, err := os.Stat(outFile); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, entity.ParseFailure{
				File:   name,
				Reason: "command succeeded but output file is missing",
				Output: strings.TrimSpace(res.Combined),
			})
			continue
		}

		summary.Succeeded++
	}

	p.logger.Info("PdfParser", "parsing finished", map[string]interface{}{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	})
	return summary, nil
}

// ResetDir removes dir with its contents and recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return apperror.Wrap(apperror.KindFilesystem, "pdfparse", err, fmt.Sprintf("could not clear %s", dir))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.Wrap(apperror.KindFilesystem, "pdfparse", err, fmt.Sprintf("could not create %s", dir))
	}
	return nil
}
