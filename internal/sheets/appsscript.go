package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"invoicedesk/internal/invoice"
	"invoicedesk/internal/logger"
)

// AppsScriptConfig configures the Apps Script web-app mirror.
type AppsScriptConfig struct {
	URL      string
	Timeout  time.Duration // per attempt
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// AppsScriptMirror posts the whole invoice table to a deployed Apps Script
// web app, which clears the sheet and rewrites every row.
type AppsScriptMirror struct {
	url    string
	client *retryablehttp.Client
	log    zerolog.Logger
}

// NewAppsScriptMirror builds the mirror. The endpoint must be an absolute
// http(s) URL.
func NewAppsScriptMirror(cfg AppsScriptConfig) (*AppsScriptMirror, error) {
	const op = "NewAppsScriptMirror"

	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMirrorNotConfigured)
	}
	endpoint, err := url.Parse(cfg.URL)
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return nil, fmt.Errorf("%s: invalid Apps Script URL %q", op, cfg.URL)
	}

	log := logger.WithComponent("appsscript")

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.Logger = leveledLogger{log: log}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &AppsScriptMirror{
		url:    endpoint.String(),
		client: client,
		log:    log,
	}, nil
}

// Payload encodes records the way the Apps Script reads them: a form field
// "data" holding a JSON array of objects keyed by column header.
func Payload(records []invoice.Record) (string, error) {
	rows := lo.Map(records, func(r invoice.Record, _ int) map[string]any {
		return r.Map()
	})

	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return url.Values{"data": {string(data)}}.Encode(), nil
}

// Replace sends every record to the web app. The response body is ignored;
// only transport failures and HTTP error statuses count as failures.
func (m *AppsScriptMirror) Replace(ctx context.Context, records []invoice.Record) error {
	const op = "Replace"

	body, err := Payload(records)
	if err != nil {
		return NewMirrorError(op, 0, fmt.Errorf("failed to encode records: %w", err))
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.url, []byte(body))
	if err != nil {
		return NewMirrorError(op, 0, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	m.log.Debug().
		Int("records", len(records)).
		Msg("Posting invoices to Apps Script")

	resp, err := m.client.Do(req)
	if err != nil {
		return NewMirrorError(op, 0, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return NewMirrorError(op, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	m.log.Info().
		Int("records", len(records)).
		Int("status", resp.StatusCode).
		Msg("Apps Script accepted invoices")

	return nil
}

// leveledLogger routes retryablehttp's logging into zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
