package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP calls a remote model server. Each batch is POSTed as
// {"sequences": [...]} and the server answers {"predictions": [[...], ...]}.
type HTTP struct {
	url        string
	features   []string
	httpClient *http.Client
}

// NewHTTP creates a client for the model server at url.
// features names the output columns; it may be empty.
func NewHTTP(url string, features []string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HTTP{
		url:      url,
		features: features,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type httpRequest struct {
	Sequences []string `json:"sequences"`
}

type httpResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

func (h *HTTP) Features() []string {
	return h.features
}

// Predict sends one batch to the server.
func (h *HTTP) Predict(ctx context.Context, seqs []string) ([][]float64, error) {
	body, err := json.Marshal(httpRequest{Sequences: seqs})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("predict server error %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if len(out.Predictions) != len(seqs) {
		return nil, fmt.Errorf("predict server returned %d rows for %d sequences", len(out.Predictions), len(seqs))
	}
	return out.Predictions, nil
}
