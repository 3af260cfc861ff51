// Package aggregate concatenates a directory tree into one Claude-XML
// document through the files-to-prompt CLI.
package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/pkg/toolrunner"
)

const DefaultCommand = "files-to-prompt"

type Options struct {
	Command string
	Timeout time.Duration
	Runner  toolrunner.Runner
	Logger  logger.ILogger
}

type Aggregator struct {
	command string
	timeout time.Duration
	runner  toolrunner.Runner
	logger  logger.ILogger
}

type Output struct {
	Path         string
	BytesWritten int64
	CommandLine  string
	Stderr       string
}

func NewAggregator(opts Options) *Aggregator {
	command := opts.Command
	if command == "" {
		command = DefaultCommand
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Aggregator{
		command: command,
		timeout: opts.Timeout,
		runner:  opts.Runner,
		logger:  log,
	}
}

func (a *Aggregator) Command() string {
	return a.command
}

// Args is the argument list passed for srcDir.
func Args(srcDir string) []string {
	return []string{srcDir, "--cxml"}
}

// Combine runs the tool over srcDir recursively and replaces outputPath with
// its stdout. The previous output stays untouched unless the tool exits 0.
func (a *Aggregator) Combine(ctx context.Context, srcDir, outputPath string) (*Output, error) {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConfiguration, "aggregate", err, "invalid source directory")
	}
	if info, err := os.Stat(absSrc); err != nil || !info.IsDir() {
		return nil, apperror.Newf(apperror.KindConfiguration, "aggregate", "source directory not found: %s", absSrc)
	}

	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConfiguration, "aggregate", err, "invalid output path")
	}
	if err := os.MkdirAll(filepath.Dir(absOut), 0o755); err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "aggregate", err, "could not create output directory")
	}

	res, err := a.runner.Run(ctx, toolrunner.Invocation{
		Name:    a.command,
		Args:    Args(absSrc),
		Timeout: a.timeout,
	})
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(absOut, []byte(res.Stdout), 0o644); err != nil {
		return nil, apperror.Wrap(apperror.KindFilesystem, "aggregate", err, "could not write output file")
	}

	a.logger.Info("Aggregator", "context written", map[string]interface{}{
		"source": absSrc,
		"output": absOut,
		"bytes":  len(res.Stdout),
	})

	return &Output{
		Path:         absOut,
		BytesWritten: int64(len(res.Stdout)),
		CommandLine:  res.CommandLine,
		Stderr:       res.Stderr,
	}, nil
}
