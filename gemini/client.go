package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindforge/mindmap-api/cache"
	"github.com/mindforge/mindmap-api/config"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/models"
	"github.com/sethvargo/go-retry"
)

// ErrNoModel means the provider returned no usable model list for our key.
// It is the only error Generate surfaces; everything else degrades to the
// deterministic fallback.
var ErrNoModel = errors.New("no generative model available for the provided API key")

// Client talks to the generative language API and keeps the UI available by
// construction: transport failures are retried, provider rejections and
// malformed payloads resolve to a fallback mind map.
type Client struct {
	apiKey  string
	baseURL string
	cache   *cache.Store
	log     *logger.Logger

	httpClient *http.Client
	listClient *http.Client

	maxAttempts    int
	initialBackoff time.Duration
}

func NewClient(cfg *config.Config, cacheStore *cache.Store, log *logger.Logger) *Client {
	return &Client{
		apiKey:         cfg.GeminiAPIKey,
		baseURL:        cfg.GeminiBaseURL,
		cache:          cacheStore,
		log:            log.With("service", "gemini"),
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		listClient:     &http.Client{Timeout: 20 * time.Second},
		maxAttempts:    3,
		initialBackoff: 2 * time.Second,
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

// Generate resolves a mind map for topic. Apart from ErrNoModel it never
// fails: cached content first, then a fresh provider response, then the
// fallback skeleton.
func (c *Client) Generate(ctx context.Context, topic string, noCache bool) (*models.MindMapResponse, error) {
	model := c.ChooseModel(ctx)
	if model == "" {
		return nil, ErrNoModel
	}

	if !noCache {
		if cached, ok := c.cache.Get(topic, model); ok {
			return cached, nil
		}
	}

	resp := c.callProvider(ctx, topic, model)
	if resp == nil {
		return Fallback(topic), nil
	}

	// Write-through is best-effort: a cache failure must not fail the request.
	if err := c.cache.Put(topic, model, resp); err != nil {
		c.log.Warn("cache write failed", "topic", topic, "model", model, "error", err)
	}
	return resp, nil
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d", e.status)
}

// callProvider posts the prompt and parses the reply. Transport failures are
// retried with exponential backoff (2s, 4s, 8s); HTTP error statuses are not.
// A nil return means the caller should fall back.
func (c *Client) callProvider(ctx context.Context, topic, model string) *models.MindMapResponse {
	payload, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: buildPrompt(topic)}}}},
	})
	if err != nil {
		return nil
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	var body []byte
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.initialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Timeout or connection failure; worth another attempt.
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode != http.StatusOK {
			return &httpStatusError{status: resp.StatusCode, body: string(b)}
		}
		body = b
		return nil
	})
	if err != nil {
		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			// Includes 403/404 from misconfigured keys; resolved to the
			// fallback so the UI keeps rendering.
			c.log.Warn("provider rejected request", "model", model, "status", statusErr.status)
		} else {
			c.log.Warn("provider unreachable after retries", "model", model, "error", err)
		}
		return nil
	}

	parsed := ParseResponse(body)
	if parsed == nil {
		c.log.Warn("provider response did not contain a valid mind map", "model", model)
	}
	return parsed
}

func buildPrompt(topic string) string {
	systemPrompt := "You output STRICT JSON for a mind map. Build a deeply structured, study-ready outline for the topic. " +
		"REQUIREMENTS (enforce strictly):\n" +
		"- Top-level: 6-8 sections tailored to the topic (no filler).\n" +
		"- For EACH top-level section: include bulletPoints with 5-9 short, factual bullets.\n" +
		"- For EACH top-level section: include 3-5 children subsections.\n" +
		"- For EACH subsection child: include bulletPoints with 3-6 bullets (concise) and may include its own children if helpful.\n" +
		"- Every node fields: title (string), learn_more (string URL or empty), bulletPoints (array<string>), children (array).\n" +
		"- Prefer concrete, current terminology; avoid placeholders like '[current name]'.\n" +
		"- If the topic is an institution (e.g., Indian Army), good top-level sections are: Overview; Organizational Structure; Major Operations & Wars; Modernization & Technology; Recruitment & Training; Contributions & Roles; Future Vision; Notable Units/Regiments.\n" +
		"- If the topic is a concept, adapt the section names accordingly (Definition; Key Concepts; Mechanisms; Applications; History; Case Studies; Common Misconceptions; Further Reading)."

	return "Return ONLY valid JSON for a mind map with fields: " +
		"topic (string), root (object: title, learn_more, bulletPoints[array<string>], children[] of same shape).\n" +
		systemPrompt + "\nUser topic: " + topic
}
