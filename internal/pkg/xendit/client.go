package xendit

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
)

const (
	DefaultBaseURL = "https://api.xendit.co"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

type Config struct {
	SecretKey  string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Invoice API. It never retries; every failure is terminal for the caller.
type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("xendit: secret key is empty")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("xendit: invalid base url %q: %w", base, err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{secretKey: cfg.SecretKey, baseURL: base, http: hc}, nil
}

type CreateInvoiceParams struct {
	ExternalID         string         `json:"external_id"`
	Amount             float64        `json:"amount"`
	Currency           string         `json:"currency,omitempty"`
	Description        string         `json:"description,omitempty"`
	PayerEmail         string         `json:"payer_email,omitempty"`
	SuccessRedirectURL string         `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string         `json:"failure_redirect_url,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

type Invoice struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"external_id"`
	Status     string         `json:"status"`
	Amount     float64        `json:"amount"`
	Currency   string         `json:"currency"`
	InvoiceURL string         `json:"invoice_url"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (c *Client) CreateInvoice(ctx context.Context, p CreateInvoiceParams) (*Invoice, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, &ProviderError{Op: "create invoice", Err: err}
	}
	var inv Invoice
	if err := c.do(ctx, "create invoice", http.MethodPost, "/v2/invoices", body, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return nil, &ProviderError{Op: "get invoice", Err: fmt.Errorf("empty invoice id")}
	}
	var inv Invoice
	if err := c.do(ctx, "get invoice", http.MethodGet, "/v2/invoices/"+url.PathEscape(invoiceID), nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// username = secret key, empty password
	req.SetBasicAuth(c.secretKey, "")

	res, err := c.http.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		pe := &ProviderError{Op: op, StatusCode: res.StatusCode}
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil {
			pe.Code = ae.ErrorCode
			pe.Message = ae.Message
		}
		return pe
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &ProviderError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
