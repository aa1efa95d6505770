package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
)

// Config holds closure-report service configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client requests closure-report generation from the external document
// renderer. Rendering and upload happen on the remote side; this client only
// hands over the case reference and receives the document URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new closure-report client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type generateRequest struct {
	CaseID      string `json:"case_id"`
	RequestedBy string `json:"requested_by"`
}

type generateResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// Generate requests a closure report for the case and returns its URL
func (c *Client) Generate(ctx context.Context, caseID, actorID string) (string, error) {
	body, err := json.Marshal(generateRequest{CaseID: caseID, RequestedBy: actorID})
	if err != nil {
		return "", fmt.Errorf("failed to encode report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/closure-reports", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("report service request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read report response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Warn("Report service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("case_id", caseID))
		return "", fmt.Errorf("report service returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode report response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("report service returned no URL: %s", parsed.Error)
	}

	return parsed.URL, nil
}

// Verify interface compliance
var _ port.ClosureReportGenerator = (*Client)(nil)
