package retrieval

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

// Client is an HTTP client for the document-retrieval service.
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

type retrieveRequest struct {
	Query         string `json:"query"`
	TopK          int    `json:"top_k"`
	ProductFilter string `json:"product_filter,omitempty"`
}

type retrieveResponse struct {
	Chunks []domain.Chunk `json:"chunks"`
}

func (c *Client) Retrieve(ctx context.Context, query string, topK int, productFilter string) ([]domain.Chunk, error) {
	body, err := json.Marshal(retrieveRequest{
		Query:         query,
		TopK:          topK,
		ProductFilter: productFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal retrieve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create retrieve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval service request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read retrieve response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result retrieveResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Some deployments return the chunk list bare.
		var chunks []domain.Chunk
		if listErr := json.Unmarshal(respBody, &chunks); listErr == nil {
			return chunks, nil
		}
		return nil, fmt.Errorf("unmarshal retrieve response: %w", err)
	}
	return result.Chunks, nil
}
