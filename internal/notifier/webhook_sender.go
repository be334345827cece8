package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultTitlePrefix = "K3s Upgrade"
	userAgent          = "k3s-upgrade-monitor/v1"
	contentType        = "text/markdown; charset=utf-8"
)

// WebhookSenderConfig holds the configuration for creating a WebhookSender.
type WebhookSenderConfig struct {
	// URL is the full ntfy topic URL. Empty disables delivery.
	URL         string
	TitlePrefix string
	Timeout     time.Duration
}

// WebhookSender implements Sender for ntfy-style HTTP POST endpoints.
type WebhookSender struct {
	httpClient  *http.Client
	logger      *zap.Logger
	url         string
	titlePrefix string
}

var _ Sender = (*WebhookSender)(nil)

// NewWebhookSender creates a WebhookSender. An empty URL yields a sender that
// only logs. Returns an error if a non-empty URL is invalid.
func NewWebhookSender(logger *zap.Logger, cfg WebhookSenderConfig) (*WebhookSender, error) {
	rawURL := strings.TrimSpace(cfg.URL)
	if rawURL != "" {
		if err := ValidateURL(rawURL); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	prefix := strings.TrimSpace(cfg.TitlePrefix)
	if prefix == "" {
		prefix = defaultTitlePrefix
	}

	return &WebhookSender{
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger.Named("notifier"),
		url:         rawURL,
		titlePrefix: prefix,
	}, nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid notification URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("notification URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("notification URL must include a host")
	}
	return nil
}

// Enabled reports whether an endpoint is configured.
func (ws *WebhookSender) Enabled() bool {
	return ws.url != ""
}

// Notify implements Sender.
func (ws *WebhookSender) Notify(ctx context.Context, title, body string, priority Priority) {
	if !ws.Enabled() {
		notificationSendTotal.WithLabelValues("skipped").Inc()
		ws.logger.Info("No notification URL configured, skipping notification",
			zap.String("title", title))
		return
	}
	if priority == "" {
		priority = PriorityDefault
	}

	if err := ws.doPost(ctx, title, body, priority); err != nil {
		notificationSendTotal.WithLabelValues("error").Inc()
		ws.logger.Error("Failed to send notification",
			zap.String("url", RedactURL(ws.url)),
			zap.String("title", title),
			zap.Error(err),
		)
		return
	}

	notificationSendTotal.WithLabelValues("success").Inc()
	ws.logger.Info("Notification sent", zap.String("title", title))
}

// doPost executes a single HTTP POST request.
func (ws *WebhookSender) doPost(ctx context.Context, title, body string, priority Priority) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Title", ws.titlePrefix+" - "+title)
	req.Header.Set("Priority", string(priority))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := ws.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		notificationSendDuration.WithLabelValues("error").Observe(elapsed)
		return fmt.Errorf("send notification: %w", err)
	}
	defer func() {
		// Drain and close body to reuse connections.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		notificationSendDuration.WithLabelValues("success").Observe(elapsed)
		return nil
	}

	notificationSendDuration.WithLabelValues("error").Observe(elapsed)
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("notification endpoint returned HTTP %d: %s",
		resp.StatusCode, strings.TrimSpace(string(snippet)))
}

// RedactURL masks credentials in a URL for safe logging.
// It redacts userinfo passwords and query parameter values.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	redacted := u.Redacted()
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		r, err := url.Parse(redacted)
		if err != nil {
			return redacted
		}
		r.RawQuery = q.Encode()
		return r.String()
	}
	return redacted
}
