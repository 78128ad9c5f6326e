// Package vonage talks to the Vonage Messages, Verify v2 and network APIs.
package vonage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

const (
	DefaultBaseURL            = "https://api.nexmo.com"
	DefaultNetworkBaseURL     = "https://api-eu.vonage.com"
	DefaultMessagesURL        = "https://api.nexmo.com/v1/messages"
	DefaultMessagesSandboxURL = "https://messages-sandbox.nexmo.com/v1/messages"

	maxResponseBytes = 1 << 20
)

var (
	_ ports.MessageSender        = (*Client)(nil)
	_ ports.VerificationProvider = (*Client)(nil)
	_ ports.FraudChecker         = (*Client)(nil)
)

type Options struct {
	BaseURL            string
	NetworkBaseURL     string
	MessagesURL        string
	MessagesSandboxURL string
	// SandboxChannels are sent through the Messages sandbox endpoint.
	SandboxChannels []domain.Channel
	RequestTimeout  time.Duration
	// PollInterval is used for network auth polling when the server does not
	// suggest one.
	PollInterval time.Duration
	HTTPClient   *http.Client
}

type Client struct {
	creds   Credentials
	opts    Options
	sandbox map[domain.Channel]bool
	logger  *zap.Logger
	now     func() time.Time
}

func NewClient(creds Credentials, opts Options, logger *zap.Logger) (*Client, error) {
	if !creds.HasApplication() && !creds.HasAPIKey() {
		return nil, errors.New("vonage credentials are required")
	}

	opts.BaseURL = defaultString(opts.BaseURL, DefaultBaseURL)
	opts.NetworkBaseURL = defaultString(opts.NetworkBaseURL, DefaultNetworkBaseURL)
	opts.MessagesURL = defaultString(opts.MessagesURL, DefaultMessagesURL)
	opts.MessagesSandboxURL = defaultString(opts.MessagesSandboxURL, DefaultMessagesSandboxURL)
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}

	for _, raw := range []string{opts.BaseURL, opts.NetworkBaseURL, opts.MessagesURL, opts.MessagesSandboxURL} {
		if _, err := buildAPIURL(raw, ""); err != nil {
			return nil, err
		}
	}

	sandbox := make(map[domain.Channel]bool, len(opts.SandboxChannels))
	for _, channel := range opts.SandboxChannels {
		sandbox[channel] = true
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{creds: creds, opts: opts, sandbox: sandbox, logger: logger, now: time.Now}, nil
}

// APIError is a non-2xx answer. Problem details are filled in when the body
// carried RFC 7807 or OAuth error JSON.
type APIError struct {
	Operation  string
	StatusCode int
	Type       string
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	switch {
	case e.Title != "" && e.Detail != "":
		return msg + ": " + e.Title + ": " + e.Detail
	case e.Title != "":
		return msg + ": " + e.Title
	case e.Detail != "":
		return msg + ": " + e.Detail
	default:
		return msg
	}
}

type problemResponse struct {
	Type             string `json:"type"`
	Title            string `json:"title"`
	Detail           string `json:"detail"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeAPIError(operation string, resp *http.Response) *APIError {
	apiErr := &APIError{Operation: operation, StatusCode: resp.StatusCode}

	var problem problemResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&problem); err != nil {
		return apiErr
	}
	apiErr.Type = problem.Type
	apiErr.Title = defaultString(problem.Title, problem.Error)
	apiErr.Detail = defaultString(problem.Detail, problem.ErrorDescription)
	return apiErr
}

func (c *Client) postJSON(ctx context.Context, operation, endpoint string, mode authMode, body, out any) error {
	payload, err := jsonReader(body)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	return c.do(ctx, operation, endpoint, payload, "application/json", func(req *http.Request) error {
		return c.creds.authorize(req, mode, c.now())
	}, out)
}

func jsonReader(body any) (io.Reader, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func (c *Client) postForm(ctx context.Context, operation, endpoint string, values url.Values, authorize func(*http.Request) error, out any) error {
	return c.do(ctx, operation, endpoint, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", authorize, out)
}

func (c *Client) do(ctx context.Context, operation, endpoint string, body io.Reader, contentType string, authorize func(*http.Request) error, out any) error {
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if err := authorize(req); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(operation, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.opts.HTTPClient != nil {
		return c.opts.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opts.RequestTimeout)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("api base url %q must use http or https", baseURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("api base url %q has no host", baseURL)
	}
	if path == "" {
		return parsed.String(), nil
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return parsed.String(), nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
