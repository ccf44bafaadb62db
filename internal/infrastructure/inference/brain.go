// Package inference implements the dual-backend analysis client: a
// low-latency hosted chat-completions service used when a credential is
// configured, and a slower self-hosted model as fallback.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsHarvester/internal/config"
	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/metrics"
	"NewsHarvester/internal/ports"
	"NewsHarvester/internal/retry"
)

const (
	hostedTimeout = 60 * time.Second
	localTimeout  = 300 * time.Second
	probeTimeout  = 2 * time.Second

	systemPrompt = "You are an expert news analyst. Output valid JSON only, no markdown formatting."

	userPromptFormat = `Analyze this text:
%s

Return JSON strictly in this format:
{
    "summary": "3 concise sentences",
    "tags": ["tag1", "tag2", "tag3"],
    "category": "Technology/Politics/Science/etc",
    "urgency": <int 1-10>
}`
)

// Brain selects between the two inference backends and parses their output
// into a structured analysis.
type Brain struct {
	hosted        config.HostedBackendConfig
	local         config.LocalBackendConfig
	maxTextLength int

	hostedClient *http.Client
	localClient  *http.Client
	hostedPolicy retry.Policy
	localPolicy  retry.Policy
	logger       *slog.Logger
}

var _ ports.Analyzer = (*Brain)(nil)

// NewBrain builds the client and probes the self-hosted backend. The probe
// is advisory: an unreachable local model only logs a warning and never
// blocks construction or later calls.
func NewBrain(cfg config.InferenceConfig, logger *slog.Logger) *Brain {
	b := &Brain{
		hosted:        cfg.Hosted,
		local:         cfg.Local,
		maxTextLength: cfg.MaxTextLength,
		hostedClient:  &http.Client{Timeout: hostedTimeout},
		localClient:   &http.Client{Timeout: localTimeout},
		hostedPolicy:  retry.Exponential(3, 2*time.Second, 10*time.Second, 2),
		localPolicy:   retry.Exponential(3, 2*time.Second, 10*time.Second, 2),
		logger:        logger,
	}

	b.probeLocal()

	if b.hosted.APIKey == "" {
		logger.Info("no hosted inference key configured, running local-only")
	}

	return b
}

func (b *Brain) probeLocal() {
	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Get(b.local.BaseURL + "/")
	if err != nil {
		b.logger.Warn("local inference backend unreachable", "base_url", b.local.BaseURL, "error", err)
		return
	}
	resp.Body.Close()
}

// Analyze produces summary, tags, category, and urgency for the text. The
// hosted backend is attempted first when a key is configured, each backend
// under its own bounded backoff. A (nil, nil) return means no usable result
// after all attempts; an error means both backends failed outright.
func (b *Brain) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	snippet := text
	if b.maxTextLength > 0 && len(snippet) > b.maxTextLength {
		snippet = snippet[:b.maxTextLength]
	}
	userPrompt := fmt.Sprintf(userPromptFormat, snippet)

	var resultText string

	if b.hosted.APIKey != "" {
		err := b.hostedPolicy.Do(ctx, func() error {
			out, herr := b.thinkHosted(ctx, userPrompt)
			if herr != nil {
				metrics.InferenceAttempts.WithLabelValues("hosted", "error").Inc()
				return herr
			}
			metrics.InferenceAttempts.WithLabelValues("hosted", "ok").Inc()
			resultText = out
			return nil
		})
		if err != nil {
			b.logger.Warn("hosted inference exhausted, falling back to local", "error", err)
		}
	}

	if resultText == "" {
		err := b.localPolicy.Do(ctx, func() error {
			out, lerr := b.thinkLocal(ctx, userPrompt)
			if lerr != nil {
				metrics.InferenceAttempts.WithLabelValues("local", "error").Inc()
				return lerr
			}
			metrics.InferenceAttempts.WithLabelValues("local", "ok").Inc()
			resultText = out
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("all inference backends failed: %w", err)
		}
	}

	analysis := parseAnalysis(resultText)
	if analysis == nil {
		b.logger.Warn("inference returned unparseable output", "head", head(resultText, 100))
	}
	return analysis, nil
}

// thinkHosted posts an OpenAI-style chat-completions request.
func (b *Brain) thinkHosted(ctx context.Context, userPrompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model": b.hosted.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal hosted payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.hosted.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new hosted request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.hosted.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.hostedClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("hosted request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("hosted backend %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode hosted response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("hosted backend returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

// thinkLocal posts an Ollama-style generate request with JSON format mode.
func (b *Brain) thinkLocal(ctx context.Context, userPrompt string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model":  b.local.Model,
		"prompt": userPrompt,
		"system": systemPrompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0.3,
			"num_ctx":     4096,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal local payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.local.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new local request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.localClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("local request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("local backend %s", resp.Status)
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode local response: %w", err)
	}

	return decoded.Response, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
