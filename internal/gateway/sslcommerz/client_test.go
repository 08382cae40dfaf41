package sslcommerz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(server *httptest.Server) *Client {
	return NewClient(Config{
		StoreID:       "store1",
		StorePassword: "store1pass",
		BaseURL:       server.URL,
	})
}

func TestInitiatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gwprocess/v4/api.php", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "store1", r.PostForm.Get("store_id"))
		assert.Equal(t, "store1pass", r.PostForm.Get("store_passwd"))
		assert.Equal(t, "1500", r.PostForm.Get("total_amount"))
		assert.Equal(t, "BDT", r.PostForm.Get("currency"))
		assert.Equal(t, "TXN-1001", r.PostForm.Get("tran_id"))
		assert.Equal(t, "7", r.PostForm.Get("value_a"))
		assert.Equal(t, "3", r.PostForm.Get("value_b"))
		assert.Empty(t, r.PostForm.Get("value_c"))
		assert.Equal(t, "School Fee", r.PostForm.Get("product_name"))

		json.NewEncoder(w).Encode(map[string]string{
			"status":         "SUCCESS",
			"sessionkey":     "sess-key",
			"GatewayPageURL": "https://example.com/pay",
		})
	}))
	defer server.Close()

	resp, err := testClient(server).InitiatePayment(context.Background(), InitRequest{
		Amount:        "1500",
		TransactionID: "TXN-1001",
		SuccessURL:    "https://school.example/success",
		FailURL:       "https://school.example/fail",
		CancelURL:     "https://school.example/cancel",
		CustomerName:  "Karim Ahmed",
		CustomerPhone: "01711111111",
		StudentID:     "7",
		FeeID:         "3",
	})
	require.NoError(t, err)

	assert.True(t, resp.Succeeded())
	assert.Equal(t, "https://example.com/pay", resp.GatewayPageURL)
	assert.NotEmpty(t, resp.Raw)
}

func TestInitiatePaymentRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status":       "FAILED",
			"failedreason": "Store Credential Error",
		})
	}))
	defer server.Close()

	resp, err := testClient(server).InitiatePayment(context.Background(), InitRequest{
		Amount:        "1500",
		TransactionID: "TXN-1001",
	})
	require.NoError(t, err)

	assert.False(t, resp.Succeeded())
	assert.Equal(t, "Store Credential Error", resp.FailedReason)
}

func TestValidatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validator/api/validationserverAPI.php", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "val-123", q.Get("val_id"))
		assert.Equal(t, "store1", q.Get("store_id"))
		assert.Equal(t, "json", q.Get("format"))

		json.NewEncoder(w).Encode(map[string]string{
			"status":       "VALID",
			"tran_id":      "TXN-1001",
			"val_id":       "val-123",
			"amount":       "1500.00",
			"bank_tran_id": "BANK-555",
		})
	}))
	defer server.Close()

	resp, err := testClient(server).ValidatePayment(context.Background(), "val-123")
	require.NoError(t, err)

	assert.True(t, resp.Valid())
	assert.Equal(t, "TXN-1001", resp.TranID)
	assert.Equal(t, "BANK-555", resp.BankTranID)
}

func TestValidationResponseValid(t *testing.T) {
	tests := []struct {
		status string
		expect bool
	}{
		{status: "VALID", expect: true},
		{status: "VALIDATED", expect: true},
		{status: "INVALID_TRANSACTION", expect: false},
		{status: "", expect: false},
	}

	for _, tt := range tests {
		resp := ValidationResponse{Status: tt.status}
		assert.Equal(t, tt.expect, resp.Valid(), "status %q", tt.status)
	}
}

func TestTransactionStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validator/api/merchantTransIDvalidationAPI.php", r.URL.Path)
		assert.Equal(t, "TXN-1001", r.URL.Query().Get("tran_id"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"APIConnect":        "DONE",
			"no_of_trans_found": 1,
		})
	}))
	defer server.Close()

	raw, err := testClient(server).TransactionStatus(context.Background(), "TXN-1001")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "DONE")
}
