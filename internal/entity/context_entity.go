package entity

import (
	"fmt"
	"strings"
	"time"
)

type ProcessingMode string

const (
	ModeBoth    ProcessingMode = "both"
	ModePdfOnly ProcessingMode = "pdf-only"
	ModeTxtOnly ProcessingMode = "txt-only"
)

var ProcessingModes = []ProcessingMode{ModeBoth, ModePdfOnly, ModeTxtOnly}

func ParseProcessingMode(s string) (ProcessingMode, error) {
	mode := ProcessingMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeBoth, ModePdfOnly, ModeTxtOnly:
		return mode, nil
	}
	return "", fmt.Errorf("unknown processing mode %q (want both, pdf-only or txt-only)", s)
}

// RunsExtraction reports whether PDFs are parsed before aggregation.
func (m ProcessingMode) RunsExtraction() bool {
	return m == ModeBoth || m == ModePdfOnly
}

// SourceDir picks the tree handed to the aggregation tool.
func (m ProcessingMode) SourceDir(s Settings) string {
	if m == ModePdfOnly {
		return s.ParsedDir()
	}
	return s.TxtInputDir
}

type FileKind string

const (
	FileKindPdf FileKind = "pdf"
	FileKindTxt FileKind = "txt"
)

func ParseFileKind(s string) (FileKind, error) {
	switch kind := FileKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case FileKindPdf, FileKindTxt:
		return kind, nil
	}
	return "", fmt.Errorf("unknown file kind %q (want pdf or txt)", s)
}

// Dir is the input directory the kind is stored in.
func (k FileKind) Dir(s Settings) string {
	if k == FileKindPdf {
		return s.PdfInputDir
	}
	return s.TxtInputDir
}

type FileEntry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	MimeType   string    `json:"mime_type"`
	ModifiedAt time.Time `json:"modified_at"`
}

type ParseFailure struct {
	File     string `json:"file"`
	ExitCode int    `json:"exit_code"`
	Reason   string `json:"reason"`
	Output   string `json:"output,omitempty"`
}

type ParseSummary struct {
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Failures  []ParseFailure `json:"failures,omitempty"`
}

func (p ParseSummary) OK() bool {
	return p.Failed == 0
}

type RunReport struct {
	Mode         ProcessingMode `json:"mode"`
	Parse        *ParseSummary  `json:"parse,omitempty"`
	SourceDir    string         `json:"source_dir"`
	OutputPath   string         `json:"output_path"`
	BytesWritten int64          `json:"bytes_written"`
	CommandLine  string         `json:"command_line"`
	Steps        []string       `json:"steps"`
	Warnings     []string       `json:"warnings,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

func (r *RunReport) Step(format string, args ...interface{}) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

func (r *RunReport) Warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Progress is pushed to the browser while a run blocks the request.
type Progress struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
	Message   string `json:"message"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
}
