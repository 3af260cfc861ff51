package entity

import "path/filepath"

// Settings are the user-editable paths of one UI session. All paths are
// absolute once they went through the settings service.
type Settings struct {
	PdfInputDir    string `json:"pdf_input_dir"`
	TxtInputDir    string `json:"txt_input_dir"`
	ParsedSubdir   string `json:"parsed_subdir"`
	OutputDir      string `json:"output_dir"`
	OutputFilename string `json:"output_filename"`
}

// ParsedDir is where extracted PDF text lands; it lives inside the TXT input
// directory so a recursive aggregation of that directory picks it up.
func (s Settings) ParsedDir() string {
	return filepath.Join(s.TxtInputDir, s.ParsedSubdir)
}

func (s Settings) OutputPath() string {
	return filepath.Join(s.OutputDir, s.OutputFilename)
}

// Session is the in-memory state kept for one browser.
type Session struct {
	ID         string
	Settings   Settings
	Suggestion string
}
