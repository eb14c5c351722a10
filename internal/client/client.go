package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/plainq/stamp/internal/server/service/instant"
	"github.com/plainq/stamp/internal/server/service/record"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/stamperr"
)

const (
	requestTimeout = 10 * time.Second

	// maxErrorBody bounds how much of an error response ends up in the error text.
	maxErrorBody = 512
)

// Option configures the Client structs with Options properties.
type Option func(*Options)

// WithRequestTimeout sets the timeout of a single request.
func WithRequestTimeout(t time.Duration) Option {
	return func(o *Options) { o.requestTimeout = t }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.httpClient = c }
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(o *Options) { o.userAgent = ua }
}

// Options holds a set of properties to configure Client.
type Options struct {
	requestTimeout time.Duration
	httpClient     *http.Client
	userAgent      string
}

// Client talks to the stamp HTTP API.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// New returns a pointer to a new instance of Client. Addr is either a URL
// or a host:port pair, in which case plain HTTP is assumed.
func New(addr string, options ...Option) (*Client, error) {
	opts := Options{requestTimeout: requestTimeout}

	for _, option := range options {
		option(&opts)
	}

	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: server address %q: %w", stamperr.ErrInvalidInput, addr, err)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/api/v1"

	httpClient := opts.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.requestTimeout}
	}

	c := Client{
		base:      base,
		http:      httpClient,
		userAgent: opts.userAgent,
	}

	return &c, nil
}

// Now returns the server's current instant.
func (c *Client) Now(ctx context.Context) (*instant.View, error) {
	var out instant.View
	if err := c.do(ctx, http.MethodGet, "/time/now", nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Parse asks the server to parse ISO 8601 text.
func (c *Client) Parse(ctx context.Context, text string) (*instant.View, error) {
	var out instant.View
	if err := c.do(ctx, http.MethodPost, "/time/parse", nil, instant.ParseRequest{Text: text}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) CreateRecord(ctx context.Context, label string) (*storage.Record, error) {
	var out storage.Record
	if err := c.do(ctx, http.MethodPost, "/records", nil, record.CreateRecordRequest{Label: label}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) GetRecord(ctx context.Context, id string) (*storage.Record, error) {
	var out storage.Record
	if err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) TouchRecord(ctx context.Context, id string) (*storage.Record, error) {
	var out storage.Record
	if err := c.do(ctx, http.MethodPost, "/records/"+url.PathEscape(id)+"/touch", nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// RecordAge reports the age of a record. A zero retention leaves the
// expiry check out.
func (c *Client) RecordAge(ctx context.Context, id string, retention time.Duration) (*record.RecordAgeResponse, error) {
	query := url.Values{}
	if retention > 0 {
		query.Set("retention", retention.String())
	}

	var out record.RecordAgeResponse
	if err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(id)+"/age", query, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) ListRecords(ctx context.Context, in storage.ListRecordsInput) (*storage.ListRecordsOutput, error) {
	query := url.Values{}

	if in.Cursor != "" {
		query.Set("cursor", in.Cursor)
	}

	if in.Limit > 0 {
		query.Set("limit", strconv.FormatUint(uint64(in.Limit), 10))
	}

	if in.Order != "" {
		query.Set("order", string(in.Order))
	}

	var out storage.ListRecordsOutput
	if err := c.do(ctx, http.MethodGet, "/records", query, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, nil, nil)
}

// do sends a request with an optional JSON body and decodes the JSON
// response into out unless out is nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, u.String(), body)
	if reqErr != nil {
		return fmt.Errorf("create request: %w", reqErr)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, doErr := c.http.Do(req)
	if doErr != nil {
		return fmt.Errorf("%s %s: %w", method, path, doErr)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(method, path, resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func responseError(method, path string, resp *http.Response) error {
	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(text))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w: %s", method, path, stamperr.ErrNotFound, msg)

	case http.StatusBadRequest:
		return fmt.Errorf("%s %s: %w: %s", method, path, stamperr.ErrInvalidInput, msg)

	default:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
}
