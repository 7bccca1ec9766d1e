package predictionfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Prediction one record of the external disaster prediction feed.
// Confidence is a percentage and may be omitted by the feed.
type Prediction struct {
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	DisasterType string   `json:"disaster_type"`
	Year         int      `json:"year"`
	Confidence   *float64 `json:"confidence"`
}

// feedResponse feed envelope
type feedResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Client HTTP client for the prediction feed
type Client struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewClient creates a feed client for url
func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, url: url, logger: logger}
}

// Fetch downloads the current prediction batch
func (c *Client) Fetch(ctx context.Context) ([]Prediction, error) {
	var body feedResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.url)
	if err != nil {
		c.logger.Error("prediction feed request failed", zap.Error(err))
		return nil, fmt.Errorf("prediction feed request: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("prediction feed returned error",
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("prediction feed status %d", resp.StatusCode())
	}

	c.logger.Info("prediction feed fetched", zap.Int("count", len(body.Predictions)))
	return body.Predictions, nil
}
