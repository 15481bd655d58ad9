package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mintflow/syncd/internal/core/ports"
)

// RemoteCategorizer calls a model-serving endpoint for classification. The
// reconciler falls back to a default label when a call fails, so transport
// errors here are returned as-is.
type RemoteCategorizer struct {
	url    string
	client *http.Client
}

// NewRemoteCategorizer creates a categorizer backed by the given endpoint.
func NewRemoteCategorizer(url string, timeout time.Duration) *RemoteCategorizer {
	return &RemoteCategorizer{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ ports.Categorizer = (*RemoteCategorizer)(nil)

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
}

// Classify sends the description to the remote model.
func (c *RemoteCategorizer) Classify(ctx context.Context, text string) (ports.Classification, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return ports.Classification{}, fmt.Errorf("failed to encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return ports.Classification{}, fmt.Errorf("failed to create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.Classification{}, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.Classification{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.Classification{}, fmt.Errorf("failed to decode classify response: %w", err)
	}
	return ports.Classification{
		Category:    out.Category,
		Subcategory: out.Subcategory,
		Confidence:  out.Confidence,
	}, nil
}
