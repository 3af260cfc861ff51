package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"context-generator-be/internal/dto"
	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/pkg/llm"
)

const truncatedMarker = "\n[... context truncated ...]"

const personaPromptTemplate = `Analyze the following text snippet extracted from a larger context document (formatted with XML tags like <document path="...">). Identify the primary subject matter, domain, or key technologies discussed.

Based on this analysis, generate a concise system prompt (4-8 sentences) suitable for another AI assistant. This system prompt should:
1. Instruct the assistant to adopt the persona of a knowledgeable expert in the identified domain/subject (e.g., "You are an expert Python developer specializing in data analysis libraries...").
2. Emphasize using the *full context* (which will be provided to the assistant separately) to answer questions accurately, comprehensively, and based on the provided documents preferentially. Emphasize use of a search tool to verify facts or extend knowledge.
3. Guide the assistant to cite the source document path when possible or relevant.
4. Avoid mentioning the snippet analysis process in the final output.

Output *only* the generated system prompt text, with no extra explanations, preamble, or formatting like markdown quotes.

Snippet:
-------
%s
-------
Generated System Prompt:`

type IPersonaService interface {
	Suggest(ctx context.Context, sessionID string) (*dto.PersonaResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.PersonaResponse, error)
}

type PersonaOptions struct {
	APIKey          string
	Model           string
	Temperature     float64
	SnippetMaxChars int
}

type personaService struct {
	settings ISettingsService
	provider llm.LLMProvider
	opts     PersonaOptions
	logger   logger.ILogger
}

func NewPersonaService(settings ISettingsService, provider llm.LLMProvider, opts PersonaOptions, log logger.ILogger) IPersonaService {
	return &personaService{
		settings: settings,
		provider: provider,
		opts:     opts,
		logger:   log,
	}
}

// BuildSnippet trims the context and keeps at most maxChars runes of it.
func BuildSnippet(text string, maxChars int) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if maxChars <= 0 {
		return trimmed, false
	}
	runes := []rune(trimmed)
	if len(runes) <= maxChars {
		return trimmed, false
	}
	return string(runes[:maxChars]) + truncatedMarker, true
}

func BuildPersonaPrompt(snippet string) string {
	return fmt.Sprintf(personaPromptTemplate, snippet)
}

func (s *personaService) Suggest(ctx context.Context, sessionID string) (*dto.PersonaResponse, error) {
	if strings.TrimSpace(s.opts.APIKey) == "" {
		return nil, apperror.New(apperror.KindConfiguration, "persona",
			"GOOGLE_GEMINI_API_KEY is not set; add it to the environment or .env file")
	}

	session := s.settings.Session(sessionID)
	path := session.Settings.OutputPath()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Newf(apperror.KindInput, "persona", "no generated context at %s; generate it first", path)
		}
		return nil, apperror.Wrap(apperror.KindFilesystem, "persona", err, "cannot read generated context")
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, apperror.New(apperror.KindInput, "persona", "input context is empty")
	}

	snippet, truncated := BuildSnippet(string(raw), s.opts.SnippetMaxChars)

	s.logger.Info("PersonaService", "requesting persona suggestion", map[string]interface{}{
		"session_id":    sessionID,
		"model":         s.opts.Model,
		"snippet_chars": len([]rune(snippet)),
		"truncated":     truncated,
	})

	opts := []llm.Option{llm.WithTemperature(s.opts.Temperature)}
	if s.opts.Model != "" {
		opts = append(opts, llm.WithModel(s.opts.Model))
	}
	suggestion, err := s.provider.Generate(ctx, BuildPersonaPrompt(snippet), opts...)
	if err != nil {
		return nil, err
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return nil, apperror.New(apperror.KindRemoteEmpty, "persona", "received an empty text response from the model")
	}

	session = s.settings.Session(sessionID)
	session.Suggestion = suggestion
	s.settings.SaveSession(session)

	return &dto.PersonaResponse{Suggestion: suggestion, Model: s.opts.Model, Truncated: truncated}, nil
}

func (s *personaService) Get(ctx context.Context, sessionID string) (*dto.PersonaResponse, error) {
	session := s.settings.Session(sessionID)
	return &dto.PersonaResponse{Suggestion: session.Suggestion, Model: s.opts.Model}, nil
}
