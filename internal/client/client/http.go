package client

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
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates endpoint (e.g. http://127.0.0.1:8080) and returns
// a client whose requests time out after timeout.
func NewHTTPClient(endpoint string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server address %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q: missing host", endpoint)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *HTTPClient) ListDeposits(ctx context.Context, opts ListOptions) (*DepositPage, error) {
	var out DepositPage
	if err := c.do(ctx, http.MethodGet, "/deposits/pending", opts.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, http.MethodGet, "/deposits/admin/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Verify(ctx context.Context, depositID, adminID string, credits *decimal.Decimal) (*VerifyResult, error) {
	body := struct {
		AdminID           string           `json:"adminId"`
		CreditsToAllocate *decimal.Decimal `json:"creditsToAllocate,omitempty"`
	}{AdminID: adminID, CreditsToAllocate: credits}

	var out VerifyResult
	if err := c.do(ctx, http.MethodPost, "/deposits/"+url.PathEscape(depositID)+"/verify", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Reject(ctx context.Context, depositID, adminID, reason string) (*Deposit, error) {
	body := struct {
		AdminID string `json:"adminId"`
		Reason  string `json:"reason"`
	}{AdminID: adminID, Reason: reason}

	var out Deposit
	if err := c.do(ctx, http.MethodPost, "/deposits/"+url.PathEscape(depositID)+"/reject", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Hubs(ctx context.Context) ([]Hub, error) {
	var out struct {
		Hubs []Hub `json:"hubs"`
	}
	if err := c.do(ctx, http.MethodGet, "/hubs", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Hubs, nil
}

func (c *HTTPClient) Ledger(ctx context.Context, userID string, opts ListOptions) (*LedgerPage, error) {
	var out LedgerPage
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/ledger", opts.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// do sends one request to the escaped path. in is JSON-encoded when non-nil; a 2xx body is
// decoded into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Kind != "" {
		apiErr.Kind = body.Error.Kind
		apiErr.Message = body.Error.Message
		return apiErr
	}

	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway {
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	apiErr.Kind = "internal"
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}

// IsUnavailable reports whether err is a transport-level failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
