package dto

type PersonaResponse struct {
	Suggestion string `json:"suggestion"`
	Model      string `json:"model"`
	Truncated  bool   `json:"context_truncated"`
}
