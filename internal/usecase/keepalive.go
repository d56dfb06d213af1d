package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// KeepAliveJob pings an HTTP endpoint so that idle hosting platforms keep
// the service warm.
type KeepAliveJob struct {
	url     string
	client  *http.Client
	logger  zerolog.Logger
	timeout time.Duration
}

// NewKeepAliveJob creates a new KeepAliveJob.
func NewKeepAliveJob(url string, client *http.Client, logger zerolog.Logger) *KeepAliveJob {
	if client == nil {
		client = http.DefaultClient
	}

	return &KeepAliveJob{
		url:     url,
		client:  client,
		logger:  logger,
		timeout: DefaultJobTimeout,
	}
}

// Name identifies the job in logs and metrics.
func (j *KeepAliveJob) Name() string {
	return "keepalive"
}

// Run performs a single ping. Non-2xx responses are reported as errors.
func (j *KeepAliveJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build keep-alive request: %w", err)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("keep-alive request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keep-alive got unexpected status %d", resp.StatusCode)
	}

	j.logger.Debug().Str("url", j.url).Int("status", resp.StatusCode).Msg("keep-alive ping succeeded")

	return nil
}
