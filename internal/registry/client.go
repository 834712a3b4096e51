// Package registry is the HTTP client for the trade/supplier/product registry.
//
// It knows the request and response shapes of the search endpoints and the
// read-only analytics endpoints. It does not decide what to do with failures:
// the search pipeline logs them, the CLI prints them.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/pricebook/internal/catalog"
)

// Endpoint paths, relative to the base URL.
const (
	PathSearch          = "search"
	PathSearchResults   = "search/results"
	PathSupplierRanking = "supplier_performance/supplierTradePerformance"
	PathProductImpact   = "supplier_performance/productPerformance"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// ErrStatus is matched by errors.Is for any non-2xx response.
var ErrStatus = errors.New("registry returned non-2xx status")

// StatusError carries the status and a body excerpt of a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry error (status %d): %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Options tune a Client. Zero values get defaults.
type Options struct {
	Timeout    time.Duration // per attempt; default 3s
	RatePerSec float64       // default 4
	Retries    int           // extra attempts on 429/5xx/transport errors
	Backoff    time.Duration // first retry delay, doubled per attempt; default 250ms
	HTTPClient *http.Client
}

// Client talks to the registry. Safe for concurrent use.
type Client struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
}

// New creates a Client for baseURL. The base should end in "/" so that
// endpoint paths resolve beneath it.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("registry url %q must be http or https", baseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 4
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 250 * time.Millisecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		base:    base,
		client:  hc,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 2),
		retries: max(opts.Retries, 0),
		backoff: opts.Backoff,
	}, nil
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search resolves a free-text query into candidate matches. A successful
// response with no matches returns an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Candidate, error) {
	var out []catalog.Candidate
	if err := c.do(ctx, http.MethodPost, PathSearch, searchRequest{Query: query}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Candidate{}
	}
	return out, nil
}

// Results fetches the trade-grouped product listing for a selection.
func (c *Client) Results(ctx context.Context, sel catalog.Selection) ([]catalog.TradeGroup, error) {
	var out []catalog.TradeGroup
	if err := c.do(ctx, http.MethodPost, PathSearchResults, sel, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.TradeGroup{}
	}
	return out, nil
}

// Record is a schemaless analytics row. Its shape is owned by the server.
type Record map[string]any

// SupplierRanking fetches the precomputed supplier/trade ranking.
func (c *Client) SupplierRanking(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, http.MethodGet, PathSupplierRanking, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type impactRequest struct {
	TradeID    string `json:"trade_id"`
	SupplierID string `json:"supplier_id"`
}

// ProductImpact fetches per-product performance for a supplier within a trade.
func (c *Client) ProductImpact(ctx context.Context, tradeID, supplierID string) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, http.MethodPost, PathProductImpact, impactRequest{TradeID: tradeID, SupplierID: supplierID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one JSON request with retries on 429, 5xx and transport errors,
// then decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	target := c.base.ResolveReference(&url.URL{Path: path}).String()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff<<(attempt-1)); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		body, retryAfter, err := c.attempt(ctx, method, target, payload)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("parse %s response: %w", path, err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		if retryAfter > 0 && attempt < c.retries {
			if err := sleep(ctx, retryAfter); err != nil {
				return err
			}
		}
	}
	if c.retries == 0 {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d retries: %w", path, c.retries, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) ([]byte, time.Duration, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "pricebook/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, 0, &transportError{err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, 0, nil
	}

	var wait time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			wait = min(time.Duration(secs)*time.Second, 10*time.Second)
		}
	}
	return nil, wait, &StatusError{Code: resp.StatusCode, Body: excerpt(data)}
}

type transportError struct{ err error }

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func excerpt(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
