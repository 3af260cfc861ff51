package dto

import "context-generator-be/internal/entity"

type GenerateContextRequest struct {
	Mode string `json:"mode" validate:"required,oneof=both pdf-only txt-only"`
}

type OutputPreview struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	Size       int64  `json:"size"`
	SizeHuman  string `json:"size_human"`
	Content    string `json:"content"`
	Truncated  bool   `json:"truncated"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

type GenerateContextResponse struct {
	Report *entity.RunReport `json:"report"`
	Output *OutputPreview    `json:"output"`
}
