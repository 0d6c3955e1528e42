package service

import (
	"context"
	"fmt"
	"time"

	"github.com/thiagovferrari/crm2026/internal/config"
	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OfflineSuggestion is returned whenever the text-generation collaborator is
// unreachable or misconfigured. Advisor failures are never surfaced as
// application errors.
const OfflineSuggestion = "AI offline. Please check connection."

// advisorRequest 文本生成 API 请求
type advisorRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// advisorResponse 文本生成 API 响应
type advisorResponse struct {
	Text string `json:"text"`
}

// AdvisorService 商业策略建议服务（外部文本生成服务客户端）
type AdvisorService struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

func NewAdvisorService(cfg config.AdvisorConfig, logger *zap.Logger) *AdvisorService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &AdvisorService{
		httpClient: client,
		model:      cfg.Model,
		logger:     logger,
	}
}

// Suggest asks the collaborator for three commercial strategies for the
// contact. Degrades to OfflineSuggestion on any failure.
func (s *AdvisorService) Suggest(ctx context.Context, contact *domain.ContactWithDetails) string {
	if s.httpClient.BaseURL == "" {
		s.logger.Debug("Advisor not configured, returning offline suggestion")
		return OfflineSuggestion
	}

	prompt := fmt.Sprintf(
		"Analyze this client and suggest 3 commercial strategies. Name: %s, Company: %s, Status: %s. Area: %s",
		contact.Name, contact.Company, contact.Status, contact.CommercialArea,
	)

	started := time.Now()
	var response advisorResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(advisorRequest{Model: s.model, Prompt: prompt}).
		SetResult(&response).
		Post("/v1/completions")

	if err != nil {
		s.logger.Warn("Advisor call failed",
			zap.String("contact_id", contact.ID),
			zap.Error(err),
		)
		return OfflineSuggestion
	}
	if resp.IsError() {
		s.logger.Warn("Advisor returned error status",
			zap.String("contact_id", contact.ID),
			zap.Int("status", resp.StatusCode()),
		)
		return OfflineSuggestion
	}
	if response.Text == "" {
		return "Insight not available."
	}

	s.logger.Info("Advisor suggestion generated",
		zap.String("contact_id", contact.ID),
		zap.Duration("elapsed", time.Since(started)),
	)
	return response.Text
}
