package bkash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	sandboxBaseURL = "https://tokenized.sandbox.bkash.com/v1.2.0-beta"
	liveBaseURL    = "https://tokenized.pay.bkash.com/v1.2.0-beta"

	// StatusOK is the bKash success status code
	StatusOK = "0000"

	// TransactionCompleted is the terminal success state of an execute call
	TransactionCompleted = "Completed"
)

// Config holds merchant credentials for the bKash tokenized checkout API
type Config struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Sandbox   bool   `json:"sandbox"`
	BaseURL   string `json:"base_url,omitempty"`
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Sandbox {
		return sandboxBaseURL
	}
	return liveBaseURL
}

// CreateRequest holds the fields needed to create a bKash payment
type CreateRequest struct {
	PayerReference string
	CallbackURL    string
	Amount         string
	InvoiceNumber  string
}

// CreateResponse is the parsed create-payment response. Raw keeps the
// provider body verbatim for the audit snapshot.
type CreateResponse struct {
	StatusCode    string          `json:"statusCode"`
	StatusMessage string          `json:"statusMessage"`
	PaymentID     string          `json:"paymentID"`
	BkashURL      string          `json:"bkashURL"`
	Raw           json.RawMessage `json:"-"`
}

// ExecuteResponse is the parsed execute-payment response
type ExecuteResponse struct {
	StatusCode            string          `json:"statusCode"`
	StatusMessage         string          `json:"statusMessage"`
	PaymentID             string          `json:"paymentID"`
	TrxID                 string          `json:"trxID"`
	TransactionStatus     string          `json:"transactionStatus"`
	Amount                string          `json:"amount"`
	CustomerMsisdn        string          `json:"customerMsisdn"`
	PaymentExecuteTime    string          `json:"paymentExecuteTime"`
	MerchantInvoiceNumber string          `json:"merchantInvoiceNumber"`
	Raw                   json.RawMessage `json:"-"`
}

// Completed reports whether the execute call confirmed the payment. Both the
// status code and the transaction status must agree before the ledger is
// allowed to record a completed transaction.
func (r *ExecuteResponse) Completed() bool {
	return r.StatusCode == StatusOK && r.TransactionStatus == TransactionCompleted
}

// QueryResponse is the parsed payment-status response
type QueryResponse struct {
	StatusCode        string          `json:"statusCode"`
	StatusMessage     string          `json:"statusMessage"`
	PaymentID         string          `json:"paymentID"`
	TrxID             string          `json:"trxID"`
	TransactionStatus string          `json:"transactionStatus"`
	Amount            string          `json:"amount"`
	Raw               json.RawMessage `json:"-"`
}

// Client talks to the bKash tokenized checkout API. Tokens are short-lived
// and never cached: callers grant a fresh token before every create, execute
// or query call.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a bKash client for the given merchant config
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// GrantToken acquires a fresh access token
func (c *Client) GrantToken(ctx context.Context) (string, error) {
	body := map[string]string{
		"app_key":    c.cfg.AppKey,
		"app_secret": c.cfg.AppSecret,
	}

	var resp struct {
		StatusCode    string `json:"statusCode"`
		StatusMessage string `json:"statusMessage"`
		IDToken       string `json:"id_token"`
	}

	headers := map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}

	if _, err := c.post(ctx, "/tokenized/checkout/token/grant", headers, body, &resp); err != nil {
		return "", err
	}

	if resp.StatusCode != "" && resp.StatusCode != StatusOK {
		return "", fmt.Errorf("bkash token grant failed: %s %s", resp.StatusCode, resp.StatusMessage)
	}
	if resp.IDToken == "" {
		return "", fmt.Errorf("bkash token grant returned no token")
	}

	return resp.IDToken, nil
}

// CreatePayment initiates a checkout session
func (c *Client) CreatePayment(ctx context.Context, token string, req CreateRequest) (*CreateResponse, error) {
	body := map[string]string{
		"mode":                  "0011",
		"payerReference":        req.PayerReference,
		"callbackURL":           req.CallbackURL,
		"amount":                req.Amount,
		"currency":              "BDT",
		"intent":                "sale",
		"merchantInvoiceNumber": req.InvoiceNumber,
	}

	var resp CreateResponse
	raw, err := c.post(ctx, "/tokenized/checkout/create", c.authHeaders(token), body, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw

	return &resp, nil
}

// ExecutePayment finalizes a previously created payment
func (c *Client) ExecutePayment(ctx context.Context, token, paymentID string) (*ExecuteResponse, error) {
	body := map[string]string{"paymentID": paymentID}

	var resp ExecuteResponse
	raw, err := c.post(ctx, "/tokenized/checkout/execute", c.authHeaders(token), body, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw

	return &resp, nil
}

// QueryPayment fetches the current status of a payment
func (c *Client) QueryPayment(ctx context.Context, token, paymentID string) (*QueryResponse, error) {
	body := map[string]string{"paymentID": paymentID}

	var resp QueryResponse
	raw, err := c.post(ctx, "/tokenized/checkout/payment/status", c.authHeaders(token), body, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw

	return &resp, nil
}

func (c *Client) authHeaders(token string) map[string]string {
	return map[string]string{
		"authorization": token,
		"x-app-key":     c.cfg.AppKey,
	}
}

func (c *Client) post(ctx context.Context, path string, headers map[string]string, body, out interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bkash request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build bkash request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bkash request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bkash response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode bkash response: %w", err)
	}

	return raw, nil
}
