package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
	logx "github.com/tanpawarit/insurance-analyst/pkg/logger"
)

const ingestionPath = "/api/public/ingestion"

type Config struct {
	Host      string        `split_words:"true" default:"https://cloud.langfuse.com"`
	PublicKey string        `split_words:"true"`
	SecretKey string        `split_words:"true"`
	Timeout   time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether tracing credentials are present. Tracing is
// strictly optional and everything else runs without it.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.PublicKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// Client ships observed spans to the Langfuse ingestion endpoint.
// Delivery failures are logged and swallowed so a tracing outage never
// touches the answer path.
type Client struct {
	baseURL    string
	publicKey  string
	secretKey  string
	httpClient *http.Client
}

var _ contractx.TraceSink = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.Host)
	if baseURL == "" {
		return nil, errors.New("langfuse host is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	if !cfg.Enabled() {
		return nil, errors.New("langfuse public and secret keys are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		secretKey:  strings.TrimSpace(cfg.SecretKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type ingestionEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      traceBody `json:"body"`
}

type traceBody struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Level     string         `json:"level,omitempty"`
	Status    string         `json:"statusMessage,omitempty"`
}

type ingestionBatch struct {
	Batch []ingestionEvent `json:"batch"`
}

// Observe sends one trace per span. The ingestion API accepts batches;
// the tool emits spans one at a time, so each batch carries a single
// event.
func (c *Client) Observe(ctx context.Context, span contractx.Span) {
	if err := c.send(ctx, span); err != nil {
		log := logx.Component("langfuse")
		log.Warn().Err(err).Str("span", span.Name).Msg("trace delivery failed")
	}
}

func (c *Client) send(ctx context.Context, span contractx.Span) error {
	body := traceBody{
		ID:        uuid.NewString(),
		Name:      span.Name,
		Input:     span.Input,
		Output:    span.Output,
		Timestamp: span.StartedAt,
		Metadata:  span.Metadata,
	}
	if span.Error != "" {
		body.Level = "ERROR"
		body.Status = span.Error
	}

	payload, err := json.Marshal(ingestionBatch{
		Batch: []ingestionEvent{{
			ID:        uuid.NewString(),
			Type:      "trace-create",
			Timestamp: span.EndedAt,
			Body:      body,
		}},
	})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ingestionPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post ingestion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ingestion returned status %d", resp.StatusCode)
	}
	return nil
}
