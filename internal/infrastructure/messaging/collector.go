// Package messaging provides outbound real-time communication: the
// best-effort remote collector forwarder and the live dashboard feed.
package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
)

// Forwarder sends events to a remote collector. Failures are the caller's
// to log and swallow; this layer never retries.
type Forwarder interface {
	Forward(event *analytics.Event) error
	Enabled() bool
}

// CollectorClient posts tracked events to a fixed ingestion endpoint.
type CollectorClient struct {
	endpoint string
	client   *http.Client
	logger   *logging.ChanneledLogger
}

// NewCollectorClient creates a forwarder for the given endpoint. An empty
// endpoint disables forwarding.
func NewCollectorClient(endpoint string, timeout time.Duration, logger *logging.ChanneledLogger) *CollectorClient {
	return &CollectorClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Enabled reports whether a collector endpoint is configured.
func (c *CollectorClient) Enabled() bool {
	return c.endpoint != ""
}

// Forward posts {event, timestamp} to the collector. Non-2xx responses and
// transport failures are returned as errors; the caller decides to swallow
// them. No retries here — retry policy belongs to the collector's side.
func (c *CollectorClient) Forward(event *analytics.Event) error {
	if !c.Enabled() {
		return nil
	}

	payload := map[string]any{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode collector payload: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("collector forward failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector rejected event: status %d", resp.StatusCode)
	}

	c.logger.Collector().Debug("Event forwarded to collector",
		"eventId", event.ID,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return nil
}
