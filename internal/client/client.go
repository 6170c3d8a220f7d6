package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
)

// Session is the explicit identity a client acts as. An empty Token calls the
// API anonymously.
type Session struct {
	BaseURL string
	Token   string
}

// Client issues typed calls against the marketplace API.
type Client struct {
	session Session
	http    *http.Client
	retry   *retryPolicy
	newKey  func() string
}

type retryPolicy struct {
	max  uint64
	base time.Duration
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry retries calls that fail as Unavailable up to max extra attempts
// with exponential backoff starting at base.
func WithRetry(max uint64, base time.Duration) Option {
	return func(c *Client) {
		if max == 0 || base <= 0 {
			c.retry = nil
			return
		}
		c.retry = &retryPolicy{max: max, base: base}
	}
}

// New builds a client for the session.
func New(session Session, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(session.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	session.BaseURL = base
	c := &Client{
		session: session,
		http:    &http.Client{Timeout: defaultTimeout},
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the identity the client acts as.
func (c *Client) Session() Session {
	return c.session
}

type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	out      any
	mutating bool
}

func (c *Client) do(ctx context.Context, req call) error {
	var payload []byte
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode request")
		}
		payload = raw
	}
	// The key is fixed per logical call so retries replay instead of repeating.
	var idemKey string
	if req.mutating {
		idemKey = c.newKey()
	}
	attempt := func(ctx context.Context) error {
		return c.send(ctx, req, payload, idemKey)
	}
	if c.retry == nil {
		return attempt(ctx)
	}
	backoff := retry.WithMaxRetries(c.retry.max, retry.NewExponential(c.retry.base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := attempt(ctx)
		if err != nil && Classify(err) == Unavailable {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) send(ctx context.Context, req call, payload []byte, idemKey string) error {
	target := c.session.BaseURL + apiPrefix + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	if idemKey != "" {
		httpReq.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marketplace unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if req.out == nil {
		return nil
	}
	if bytesOut, ok := req.out.(*[]byte); ok {
		*bytesOut = raw
		return nil
	}
	var envelope types.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, req.out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// decodeError turns the error envelope back into a typed error. Bodies that
// are not an envelope fall back to the status code.
func decodeError(status int, raw []byte) error {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		typed := pkgerrors.New(pkgerrors.ParseCode(envelope.Error.Code), envelope.Error.Message)
		if envelope.Error.Details != nil {
			typed = typed.WithDetails(envelope.Error.Details)
		}
		return &ServerError{RequestID: envelope.Error.RequestID, err: typed}
	}
	return pkgerrors.New(codeForStatus(status), http.StatusText(status))
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		return pkgerrors.CodeConflict
	case status == http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return pkgerrors.CodeDependency
	case status >= 400 && status < 500:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeInternal
	}
}
