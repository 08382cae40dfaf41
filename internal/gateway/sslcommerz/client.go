package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	sandboxHost = "https://sandbox.sslcommerz.com"
	liveHost    = "https://securepay.sslcommerz.com"
)

// Config holds SSLCommerz store credentials
type Config struct {
	StoreID       string `json:"store_id"`
	StorePassword string `json:"store_password"`
	Sandbox       bool   `json:"sandbox"`
	BaseURL       string `json:"base_url,omitempty"`
}

func (c Config) host() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Sandbox {
		return sandboxHost
	}
	return liveHost
}

// InitRequest holds the fields for a gateway session initiation
type InitRequest struct {
	Amount          string
	TransactionID   string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	ProductName     string
	StudentID       string
	FeeID           string
	InvoiceID       string
}

// InitResponse is the parsed session initiation response
type InitResponse struct {
	Status         string          `json:"status"`
	SessionKey     string          `json:"sessionkey"`
	GatewayPageURL string          `json:"GatewayPageURL"`
	FailedReason   string          `json:"failedreason"`
	Raw            json.RawMessage `json:"-"`
}

// Succeeded reports whether the gateway accepted the session
func (r *InitResponse) Succeeded() bool {
	return r.Status == "SUCCESS"
}

// ValidationResponse is the parsed validator API response
type ValidationResponse struct {
	Status     string          `json:"status"`
	TranID     string          `json:"tran_id"`
	ValID      string          `json:"val_id"`
	Amount     string          `json:"amount"`
	BankTranID string          `json:"bank_tran_id"`
	CardType   string          `json:"card_type"`
	TranDate   string          `json:"tran_date"`
	Raw        json.RawMessage `json:"-"`
}

// Valid reports whether the provider confirmed the payment. SSLCommerz
// returns VALID on first validation and VALIDATED on re-validation; both
// count as confirmed.
func (r *ValidationResponse) Valid() bool {
	return r.Status == "VALID" || r.Status == "VALIDATED"
}

// RefundRequest holds the fields for a refund initiation
type RefundRequest struct {
	BankTranID   string
	RefundAmount string
	Remarks      string
}

// Client talks to the SSLCommerz gateway and validator APIs. The gateway API
// is form-encoded; the validator and refund APIs are credential-signed GETs.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an SSLCommerz client for the given store config
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// InitiatePayment opens a gateway session and returns the redirect info
func (c *Client) InitiatePayment(ctx context.Context, req InitRequest) (*InitResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePassword)
	form.Set("total_amount", req.Amount)
	form.Set("currency", "BDT")
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_country", "Bangladesh")
	form.Set("shipping_method", "NO")
	form.Set("product_category", "Education")
	form.Set("product_profile", "non-physical-goods")

	if req.IPNURL != "" {
		form.Set("ipn_url", req.IPNURL)
	}
	if req.CustomerEmail != "" {
		form.Set("cus_email", req.CustomerEmail)
	}
	if req.CustomerAddress != "" {
		form.Set("cus_add1", req.CustomerAddress)
	}
	productName := req.ProductName
	if productName == "" {
		productName = "School Fee"
	}
	form.Set("product_name", productName)

	// value_a..value_c thread the domain references through the gateway so
	// the validate callback can find the matching ledger rows.
	if req.StudentID != "" {
		form.Set("value_a", req.StudentID)
	}
	if req.FeeID != "" {
		form.Set("value_b", req.FeeID)
	}
	if req.InvoiceID != "" {
		form.Set("value_c", req.InvoiceID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.host()+"/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build sslcommerz request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp InitResponse
	raw, err := c.do(httpReq, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw

	return &resp, nil
}

// ValidatePayment confirms a payment against the validator API
func (c *Client) ValidatePayment(ctx context.Context, valID string) (*ValidationResponse, error) {
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePassword)
	q.Set("format", "json")

	var resp ValidationResponse
	raw, err := c.get(ctx, "/validator/api/validationserverAPI.php", q, &resp)
	if err != nil {
		return nil, err
	}
	resp.Raw = raw

	return &resp, nil
}

// Refund initiates a refund against a settled bank transaction
func (c *Client) Refund(ctx context.Context, req RefundRequest) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("bank_tran_id", req.BankTranID)
	q.Set("refund_amount", req.RefundAmount)
	q.Set("refund_remarks", req.Remarks)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePassword)
	q.Set("format", "json")

	var resp map[string]interface{}
	return c.get(ctx, "/validator/api/merchantTransIDvalidationAPI.php", q, &resp)
}

// TransactionStatus queries the provider-side state of a transaction
func (c *Client) TransactionStatus(ctx context.Context, tranID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("tran_id", tranID)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePassword)
	q.Set("format", "json")

	var resp map[string]interface{}
	return c.get(ctx, "/validator/api/merchantTransIDvalidationAPI.php", q, &resp)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.host()+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sslcommerz request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out interface{}) (json.RawMessage, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sslcommerz response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode sslcommerz response: %w", err)
	}

	return raw, nil
}
