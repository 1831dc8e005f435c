package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// EventsEndpoint is the sink's API endpoint for recording events
	EventsEndpoint = "/api/audit-logs"
	// DefaultHTTPTimeout bounds each request to the audit sink
	DefaultHTTPTimeout = 10 * time.Second
)

// Client posts audit events to the external audit sink over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	enabled    bool
}

// NewClient creates an audit client. Auditing is disabled when baseURL is
// empty or ENABLE_AUDIT=false; a disabled client turns every LogEvent into a
// no-op so the write path never depends on the sink being reachable.
func NewClient(baseURL string) *Client {
	enabled := isAuditEnabled(baseURL)

	if !enabled {
		slog.Info("Audit client disabled",
			"reason", "ENABLE_AUDIT=false or audit sink URL not configured")
		return &Client{enabled: false}
	}

	slog.Info("Audit client initialized", "baseURL", baseURL)
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
		enabled: true,
	}
}

// IsEnabled returns whether the audit client is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// LogEvent sends an audit event asynchronously (fire-and-forget). It returns
// immediately; the send runs on a background context so it completes even if
// the originating request is cancelled after commit.
func (c *Client) LogEvent(ctx context.Context, event *Event) {
	if !c.enabled || c.httpClient == nil {
		return
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	go c.send(context.Background(), event)
}

func (c *Client) send(ctx context.Context, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal audit event", "error", err)
		return
	}

	endpointURL, err := url.JoinPath(c.baseURL, EventsEndpoint)
	if err != nil {
		slog.Error("Failed to construct audit sink URL", "error", err, "baseURL", c.baseURL)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(payload))
	if err != nil {
		slog.Error("Failed to create audit request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send audit event", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Audit sink rejected event", "status", resp.StatusCode, "body", string(body))
		return
	}

	slog.Info("Audit event recorded",
		"action", event.Action,
		"table", event.Table,
		"recordId", event.RecordID,
		"actor", event.Actor)
}

// isAuditEnabled determines whether auditing should be active
func isAuditEnabled(baseURL string) bool {
	if strings.TrimSpace(baseURL) == "" {
		return false
	}
	if v := os.Getenv("ENABLE_AUDIT"); strings.EqualFold(v, "false") {
		return false
	}
	return true
}
