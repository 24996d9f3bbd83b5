package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"go.uber.org/zap"
)

// Client is an HTTP client for the knowledge-memory service. Every answer
// shape the backend produces is normalized at this boundary; orchestration
// code only ever sees domain.MemoryAnswer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory service request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read memory response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrEntityNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("memory service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/cognify", nil)
	return err
}

func (c *Client) Query(ctx context.Context, query string, queryContext map[string]any) (*domain.MemoryAnswer, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/query", map[string]any{
		"query":   query,
		"context": queryContext,
	})
	if err != nil {
		return nil, err
	}

	answer, err := NormalizeAnswer(body)
	if err != nil {
		c.logger.Warn("unrecognized memory answer shape", zap.Error(err))
		return nil, err
	}
	return answer, nil
}

func (c *Client) AddEntity(ctx context.Context, record *domain.EntityRecord) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/entities", record)
	return err
}

func (c *Client) AddRelationship(ctx context.Context, rel *domain.Relationship) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/relationships", rel)
	return err
}

func (c *Client) GetEntity(ctx context.Context, id string) (*domain.EntityRecord, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/entities/"+id, nil)
	if err != nil {
		return nil, err
	}

	var record domain.EntityRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &record, nil
}

func (c *Client) GetRelationships(ctx context.Context, id string, relType string) ([]domain.Relationship, error) {
	path := "/entities/" + id + "/relationships"
	if relType != "" {
		path += "?type=" + relType
	}
	body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var rels []domain.Relationship
	if err := json.Unmarshal(body, &rels); err != nil {
		return nil, fmt.Errorf("unmarshal relationships: %w", err)
	}
	return rels, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodGet, "/health", nil)
	return err
}
