package dto

import "context-generator-be/internal/entity"

type ListFilesResponse struct {
	Kind      entity.FileKind    `json:"kind"`
	Directory string             `json:"directory"`
	Files     []entity.FileEntry `json:"files"`
}

type SavedFile struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	SizeHuman   string `json:"size_human"`
	Overwritten bool   `json:"overwritten"`
}

type FailedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type UploadFilesResponse struct {
	Directory string       `json:"directory"`
	Saved     []SavedFile  `json:"saved"`
	Failed    []FailedFile `json:"failed"`
}

type DeleteFileResponse struct {
	Name string `json:"name"`
}
