package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

// PingPrompt is the fixed prompt used by model status checks.
const PingPrompt = `Hello, this is a test. Please respond with "Ollama is working correctly!"`

// defaultTimeout applies to kinds without a configured profile.
const defaultTimeout = 30 * time.Second

// OllamaClient implements Client against an Ollama-compatible /api/generate endpoint.
type OllamaClient struct {
	baseURL    string
	model      string
	profiles   map[CallKind]Profile
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// ollamaRequest represents the request body for /api/generate.
type ollamaRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Images  []string `json:"images,omitempty"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// ollamaResponse represents the non-streaming reply.
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaClient creates a new model server client.
func NewOllamaClient(cfg *config.ModelConfig, m *metrics.Metrics, logger *zap.Logger) *OllamaClient {
	return &OllamaClient{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		model:    cfg.Model,
		profiles: ProfilesFromConfig(cfg),
		// Deadlines come from the per-kind context, not the transport.
		httpClient: &http.Client{},
		metrics:    m,
		logger:     logger.Named("ollama_client"),
	}
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Profile returns the deadline and options for a call kind.
func (c *OllamaClient) Profile(kind CallKind) Profile {
	p, ok := c.profiles[kind]
	if !ok || p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	return p
}

// Generate sends one non-streaming generation request. No retries are made.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	profile := c.Profile(req.Kind)

	ctx, cancel := context.WithTimeout(ctx, profile.Timeout)
	defer cancel()

	body := ollamaRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: profile.Options,
	}
	for _, img := range req.Images {
		body.Images = append(body.Images, base64.StdEncoding.EncodeToString(img))
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, domain.WrapError("marshal_request", err, domain.KindInternal)
	}

	start := time.Now()
	resp, err := c.executeRequest(ctx, jsonBody)
	elapsed := time.Since(start)

	c.metrics.ObserveCall(metrics.TargetModel, string(req.Kind), metrics.Outcome(err, domain.IsTimeout(err)), elapsed)

	if err != nil {
		c.logger.Warn("model call failed",
			zap.String("kind", string(req.Kind)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("model call completed",
		zap.String("kind", string(req.Kind)),
		zap.Int("images", len(req.Images)),
		zap.Int("response_length", len(resp.Text)),
		zap.Duration("duration", elapsed),
	)

	return resp, nil
}

// executeRequest performs a single HTTP request to the model server.
func (c *OllamaClient) executeRequest(ctx context.Context, jsonBody []byte) (*Response, error) {
	url := c.baseURL + "/api/generate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, domain.WrapError("create_request", err, domain.KindInternal)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapError("model_timeout", domain.ErrModelTimeout, domain.KindTimeout)
		}
		return nil, domain.WrapError("http_request",
			fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err), domain.KindDependency)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapError("model_timeout", domain.ErrModelTimeout, domain.KindTimeout)
		}
		return nil, domain.WrapError("read_response", err, domain.KindDependency)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("model server error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 200)),
		)
		return nil, domain.WrapError("model_status",
			fmt.Errorf("%w: status %d", domain.ErrModelUnavailable, resp.StatusCode), domain.KindDependency)
	}

	var out ollamaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Warn("failed to unmarshal model response",
			zap.Error(err),
			zap.String("body_preview", truncate(string(body), 500)),
		)
		return nil, domain.WrapError("parse_response", domain.ErrInvalidModelResponse, domain.KindDependency)
	}

	if out.Error != "" {
		return nil, domain.WrapError("model_error",
			fmt.Errorf("%w: %s", domain.ErrModelUnavailable, out.Error), domain.KindDependency)
	}

	if strings.TrimSpace(out.Response) == "" {
		return nil, domain.WrapError("empty_response", domain.ErrEmptyModelResponse, domain.KindDependency)
	}

	return &Response{Model: out.Model, Text: out.Response}, nil
}
