package dto

import "context-generator-be/pkg/toolrunner"

type StatusResponse struct {
	Tools            []toolrunner.ToolStatus `json:"tools"`
	LlamaParseAuth   bool                    `json:"llama_parse_auth"`
	AuthFile         string                  `json:"auth_file"`
	GeminiConfigured bool                    `json:"gemini_configured"`
	PersonaModel     string                  `json:"persona_model"`
	Modes            []string                `json:"modes"`
	ActiveSessions   int                     `json:"active_sessions"`
}
