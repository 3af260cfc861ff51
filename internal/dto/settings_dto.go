package dto

import "context-generator-be/internal/entity"

type UpdateSettingsRequest struct {
	PdfInputDir    string `json:"pdf_input_dir" validate:"required"`
	TxtInputDir    string `json:"txt_input_dir" validate:"required"`
	ParsedSubdir   string `json:"parsed_subdir" validate:"required,filename"`
	OutputDir      string `json:"output_dir" validate:"required"`
	OutputFilename string `json:"output_filename" validate:"required,filename"`
}

type SettingsResponse struct {
	entity.Settings
	ParsedDir  string `json:"parsed_dir"`
	OutputPath string `json:"output_path"`
}

func NewSettingsResponse(s entity.Settings) *SettingsResponse {
	return &SettingsResponse{
		Settings:   s,
		ParsedDir:  s.ParsedDir(),
		OutputPath: s.OutputPath(),
	}
}
