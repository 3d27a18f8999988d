// Package backend is the HTTP client for the upstream order, ticket and
// refund REST services.
package backend

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
)

const defaultMaxResponseBytes int64 = 10 * 1024 * 1024

// The sentinels wrap the shared domain errors so callers outside this
// package can match them with errors.Is(err, shared.ErrNotFound).
var (
	// ErrNotFound is returned when the backend answers 404
	ErrNotFound = fmt.Errorf("backend: resource not found: %w", shared.ErrNotFound)
	// ErrUpstreamUnavailable is returned when the backend cannot be reached
	ErrUpstreamUnavailable = fmt.Errorf("backend: upstream unavailable: %w", shared.ErrUpstream)
	// ErrUpstreamRequestFailed is returned for other HTTP errors or malformed responses
	ErrUpstreamRequestFailed = fmt.Errorf("backend: upstream request failed: %w", shared.ErrUpstream)
	// ErrInvalidConfig is returned by NewClient for an unusable configuration
	ErrInvalidConfig = errors.New("backend: invalid configuration")
)

// Config holds the client settings
type Config struct {
	BaseURL          string
	ServiceToken     string
	Timeout          time.Duration
	MaxResponseBytes int64
}

// Client talks to the upstream backend. It is safe for concurrent use.
type Client struct {
	baseURL          *url.URL
	serviceToken     string
	maxResponseBytes int64
	httpClient       *http.Client
}

// NewClient creates a client. A nil httpClient gets a traced one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidConfig, cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	return &Client{
		baseURL:          base,
		serviceToken:     cfg.ServiceToken,
		maxResponseBytes: maxBytes,
		httpClient:       httpClient,
	}, nil
}

// GetTicket loads a support ticket
func (c *Client) GetTicket(ctx context.Context, ticketID int64) (*refund.Ticket, error) {
	var dto ticketDTO
	if err := c.getObject(ctx, "/api/support-tickets/"+strconv.FormatInt(ticketID, 10), &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// GetOrder loads an order with its lines
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*refund.Order, error) {
	var dto orderDTO
	if err := c.getObject(ctx, "/api/orders/"+strconv.FormatInt(orderID, 10), &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// GetExportedIdentityNumbers lists the units exported against an order line
func (c *Client) GetExportedIdentityNumbers(ctx context.Context, orderDetailID int64) ([]refund.IdentityNumberItem, error) {
	items := []refund.IdentityNumberItem{}
	path := "/api/order-details/" + strconv.FormatInt(orderDetailID, 10) + "/exported-identity-numbers"
	if err := c.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetVendorBankAccounts lists the bank accounts registered by a vendor user
func (c *Client) GetVendorBankAccounts(ctx context.Context, userID string) ([]refund.BankAccount, error) {
	var dtos []bankAccountDTO
	if err := c.get(ctx, "/api/vendor-bank-accounts/user/"+url.PathEscape(userID), &dtos); err != nil {
		return nil, err
	}
	accounts := make([]refund.BankAccount, 0, len(dtos))
	for _, d := range dtos {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, nil
}

// GetSupportedBanks lists the banks the payment gateway can pay out to
func (c *Client) GetSupportedBanks(ctx context.Context) ([]refund.SupportedBank, error) {
	var dtos []supportedBankDTO
	if err := c.get(ctx, "/api/banks/supported", &dtos); err != nil {
		return nil, err
	}
	banks := make([]refund.SupportedBank, 0, len(dtos))
	for _, d := range dtos {
		banks = append(banks, d.toDomain())
	}
	return banks, nil
}

// SubmitRefund posts the refund request for a ticket.
// A reply with status=false is not an error; the server messages are
// returned in UpstreamReply.Errors.
func (c *Client) SubmitRefund(ctx context.Context, ticketID int64, payload refund.Payload) (refund.UpstreamReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return refund.UpstreamReply{}, fmt.Errorf("backend: failed to encode refund payload: %w", err)
	}

	path := "/api/support-tickets/" + strconv.FormatInt(ticketID, 10) + "/refund"
	env, status, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return refund.UpstreamReply{}, err
	}
	if env == nil {
		if status == http.StatusNotFound {
			return refund.UpstreamReply{}, ErrNotFound
		}
		return refund.UpstreamReply{}, fmt.Errorf("%w: HTTP %d", ErrUpstreamRequestFailed, status)
	}
	return refund.UpstreamReply{
		Accepted: env.Status && status < http.StatusBadRequest,
		Errors:   env.Errors,
	}, nil
}

// Ping checks that the backend answers HTTP at all
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, "/api/banks/supported", nil)
	return err
}

// getObject is get for endpoints that must return a single object. A
// successful envelope without data is an upstream failure.
func (c *Client) getObject(ctx context.Context, path string, out any) error {
	return c.fetch(ctx, path, out, true)
}

// get leaves out untouched when the envelope carries no data
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.fetch(ctx, path, out, false)
}

func (c *Client) fetch(ctx context.Context, path string, out any, requireData bool) error {
	env, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return ErrNotFound
	}
	if env == nil {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamRequestFailed, status)
	}
	if status >= http.StatusBadRequest || !env.Status {
		return fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamRequestFailed, status, refund.FailureMessage(env.Errors))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		if requireData {
			return fmt.Errorf("%w: HTTP %d: response has no data", ErrUpstreamRequestFailed, status)
		}
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: failed to parse response data: %v", ErrUpstreamRequestFailed, err)
	}
	return nil
}

// do performs a request and decodes the envelope. The envelope is nil when
// the body is not a JSON envelope.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("backend: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", ErrUpstreamUnavailable, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &env) != nil {
		return nil, resp.StatusCode, nil
	}
	return &env, resp.StatusCode, nil
}
