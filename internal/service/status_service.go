package service

import (
	"context"
	"strings"

	"context-generator-be/internal/dto"
	"context-generator-be/internal/entity"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/repository/memory"
	"context-generator-be/pkg/toolrunner"

	"github.com/samber/lo"
)

type AuthChecker interface {
	CheckAuth() error
	AuthFile() string
}

type StatusOptions struct {
	Tools        []string
	GeminiAPIKey string
	PersonaModel string
}

type IStatusService interface {
	Status(ctx context.Context) (*dto.StatusResponse, error)
	Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error)
}

type statusService struct {
	auth     AuthChecker
	sessions *memory.SessionRepository
	opts     StatusOptions
	logger   logger.ILogger
}

func NewStatusService(auth AuthChecker, sessions *memory.SessionRepository, opts StatusOptions, log logger.ILogger) IStatusService {
	return &statusService{
		auth:     auth,
		sessions: sessions,
		opts:     opts,
		logger:   log,
	}
}

// Status reports the environment checks shown on the UI start page. It never
// runs a tool or calls the remote API.
func (s *statusService) Status(ctx context.Context) (*dto.StatusResponse, error) {
	tools := lo.Map(s.opts.Tools, func(name string, _ int) toolrunner.ToolStatus {
		return toolrunner.Check(name)
	})

	return &dto.StatusResponse{
		Tools:            tools,
		LlamaParseAuth:   s.auth.CheckAuth() == nil,
		AuthFile:         s.auth.AuthFile(),
		GeminiConfigured: strings.TrimSpace(s.opts.GeminiAPIKey) != "",
		PersonaModel:     s.opts.PersonaModel,
		Modes: lo.Map(entity.ProcessingModes, func(m entity.ProcessingMode, _ int) string {
			return string(m)
		}),
		ActiveSessions: s.sessions.Count(),
	}, nil
}

func (s *statusService) Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error) {
	return s.logger.GetLogs(level, limit, offset)
}
