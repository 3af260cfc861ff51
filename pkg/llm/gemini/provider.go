package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-pro"
)

type GeminiProvider struct {
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float64
	Client      *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(baseURL, apiKey, modelName string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		ModelName:   modelName,
		Temperature: 0.7,
		Client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback"`
}

type geminiErrorDetail struct {
	Type   string `json:"@type"`
	Reason string `json:"reason"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int                 `json:"code"`
		Message string              `json:"message"`
		Status  string              `json:"status"`
		Details []geminiErrorDetail `json:"details"`
	} `json:"error"`
}

// --- Interface Implementation ---

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return "", apperror.New(apperror.KindConfiguration, "gemini", "GOOGLE_GEMINI_API_KEY is not set")
	}

	options := llm.Apply(llm.Options{Temperature: g.Temperature, Model: g.ModelName}, opts...)

	payload := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}
	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
			continue
		}
		role := msg.Role
		if role == "assistant" {
			role = llm.RoleModel
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.BaseURL, url.PathEscape(options.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.KindRemote, "gemini", err, "request failed")
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindRemote, "gemini", err, "read response")
	}

	if res.StatusCode != http.StatusOK {
		return "", classifyStatus(res.StatusCode, resBody, options.Model)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", apperror.Wrap(apperror.KindRemote, "gemini", err, "unexpected response structure")
	}

	return extractText(&geminiRes)
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func extractText(res *geminiResponse) (string, error) {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "", apperror.Newf(apperror.KindRemoteSafety, "gemini",
			"content generation blocked by safety filters (%s)", res.PromptFeedback.BlockReason)
	}

	var text strings.Builder
	finishReason := ""
	if len(res.Candidates) > 0 {
		cand := res.Candidates[0]
		finishReason = cand.FinishReason
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				text.WriteString(part.Text)
			}
		}
	}

	out := strings.TrimSpace(text.String())
	if out != "" {
		return out, nil
	}

	switch finishReason {
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "RECITATION":
		return "", apperror.Newf(apperror.KindRemoteSafety, "gemini",
			"content generation blocked by safety filters (%s)", finishReason)
	}
	return "", apperror.New(apperror.KindRemoteEmpty, "gemini", "received an empty text response from the model")
}

// classifyStatus maps a non-200 response onto a distinct error kind.
func classifyStatus(status int, body []byte, model string) error {
	var parsed geminiErrorBody
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	lower := strings.ToLower(message)

	reasons := make([]string, 0, len(parsed.Error.Details))
	for _, d := range parsed.Error.Details {
		reasons = append(reasons, d.Reason)
	}
	hasReason := func(r string) bool {
		for _, reason := range reasons {
			if reason == r {
				return true
			}
		}
		return false
	}

	cause := errors.New(message)
	detail := fmt.Sprintf("status %d: %s", status, message)

	switch {
	case hasReason("API_KEY_INVALID") || strings.Contains(lower, "api key not valid") || status == http.StatusUnauthorized:
		return apperror.Wrap(apperror.KindRemoteAuth, "gemini", cause,
			"invalid Google AI API key; check GOOGLE_GEMINI_API_KEY").WithDetail(detail)
	case status == http.StatusTooManyRequests || parsed.Error.Status == "RESOURCE_EXHAUSTED" || strings.Contains(lower, "quota"):
		return apperror.Wrap(apperror.KindRemoteQuota, "gemini", cause,
			"quota exceeded; check Google Cloud limits or try later").WithDetail(detail)
	case status == http.StatusNotFound ||
		(strings.Contains(lower, "model") && (strings.Contains(lower, "not found") || strings.Contains(lower, "permission"))):
		return apperror.Wrap(apperror.KindRemoteModel, "gemini", cause,
			fmt.Sprintf("model '%s' not found or permission denied", model)).WithDetail(detail)
	case status == http.StatusForbidden:
		return apperror.Wrap(apperror.KindRemoteAuth, "gemini", cause,
			"API key is not permitted to call this API").WithDetail(detail)
	}
	return apperror.Wrap(apperror.KindRemote, "gemini", cause,
		fmt.Sprintf("API error (status %d)", status)).WithDetail(detail)
}
