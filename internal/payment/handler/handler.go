package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/schoolkit/edupay/internal/gateway"
	"github.com/schoolkit/edupay/internal/gateway/bkash"
	"github.com/schoolkit/edupay/internal/gateway/sslcommerz"
	"github.com/schoolkit/edupay/internal/payment/domain"
	"github.com/schoolkit/edupay/internal/payment/usecase/command"
	"github.com/schoolkit/edupay/internal/payment/usecase/query"
	"github.com/schoolkit/edupay/kafka"
	"github.com/schoolkit/edupay/pkg/logger"
)

// PaymentHandler exposes the gateway adapter and the transaction ledger over
// HTTP. Provider responses are passed through verbatim; the ledger writes
// happen as a side effect of confirmed payments only.
type PaymentHandler struct {
	// Command handlers
	recordCompletedHandler *command.RecordCompletedPaymentHandler
	createPendingHandler   *command.CreatePendingPaymentHandler
	completeHandler        *command.CompletePaymentHandler

	// Query handlers
	getHandler  *query.GetTransactionHandler
	listHandler *query.ListTransactionsHandler

	configs        gateway.ConfigProvider
	kafkaPublisher *kafka.Publisher

	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	completedAmount *prometheus.CounterVec
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	recordCompletedHandler *command.RecordCompletedPaymentHandler,
	createPendingHandler *command.CreatePendingPaymentHandler,
	completeHandler *command.CompletePaymentHandler,
	getHandler *query.GetTransactionHandler,
	listHandler *query.ListTransactionsHandler,
	configs gateway.ConfigProvider,
	kafkaPublisher *kafka.Publisher,
) *PaymentHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_service_requests_total",
			Help: "Total number of requests to payment service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_service_request_duration_seconds",
			Help:    "Duration of payment service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	completedAmount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_service_completed_amount_total",
			Help: "Total confirmed payment amount by provider",
		},
		[]string{"provider"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(completedAmount)

	return &PaymentHandler{
		recordCompletedHandler: recordCompletedHandler,
		createPendingHandler:   createPendingHandler,
		completeHandler:        completeHandler,
		getHandler:             getHandler,
		listHandler:            listHandler,
		configs:                configs,
		kafkaPublisher:         kafkaPublisher,
		requestCounter:         requestCounter,
		requestLatency:         requestLatency,
		completedAmount:        completedAmount,
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *PaymentHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// --- BKASH ENDPOINT ---

type bkashRequest struct {
	Action         string `json:"action"`
	PayerReference string `json:"payer_reference"`
	CallbackURL    string `json:"callback_url"`
	Amount         string `json:"amount"`
	InvoiceNumber  string `json:"invoice_number"`
	PaymentID      string `json:"paymentID"`
	StudentID      uint   `json:"student_id"`
	FeeID          *uint  `json:"fee_id"`
	InvoiceID      *uint  `json:"invoice_id"`
}

// Bkash handles POST /api/payments/bkash with a JSON action payload
// (create, execute, query)
func (h *PaymentHandler) Bkash(w http.ResponseWriter, r *http.Request) {
	var req bkashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	cfg, err := h.configs.BkashConfig(ctx)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, configErrorMessage(err, "bKash"))
		return
	}
	client := bkash.NewClient(cfg)

	// Tokens are short-lived; a fresh one is granted before every call
	// instead of caching across requests.
	token, err := client.GrantToken(ctx)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case "create":
		h.bkashCreate(ctx, w, client, token, req)
	case "execute":
		h.bkashExecute(ctx, w, client, token, req)
	case "query":
		h.bkashQuery(ctx, w, client, token, req)
	default:
		h.respondError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *PaymentHandler) bkashCreate(ctx context.Context, w http.ResponseWriter, client *bkash.Client, token string, req bkashRequest) {
	if req.PayerReference == "" || req.CallbackURL == "" || req.Amount == "" || req.InvoiceNumber == "" {
		h.respondError(w, http.StatusBadRequest, "payer_reference, callback_url, amount and invoice_number are required")
		return
	}

	resp, err := client.CreatePayment(ctx, token, bkash.CreateRequest{
		PayerReference: req.PayerReference,
		CallbackURL:    req.CallbackURL,
		Amount:         req.Amount,
		InvoiceNumber:  req.InvoiceNumber,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondRaw(w, http.StatusOK, resp.Raw)
}

func (h *PaymentHandler) bkashExecute(ctx context.Context, w http.ResponseWriter, client *bkash.Client, token string, req bkashRequest) {
	if req.PaymentID == "" {
		h.respondError(w, http.StatusBadRequest, "paymentID is required")
		return
	}

	resp, err := client.ExecutePayment(ctx, token, req.PaymentID)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Only an unambiguous provider confirmation reaches the ledger.
	if resp.Completed() && req.StudentID != 0 {
		amount, _ := strconv.ParseFloat(resp.Amount, 64)

		transactionNumber := resp.MerchantInvoiceNumber
		if transactionNumber == "" {
			transactionNumber = resp.PaymentID
		}

		tx, err := h.recordCompletedHandler.Handle(ctx, command.RecordCompletedPaymentCommand{
			StudentID:            req.StudentID,
			FeeID:                req.FeeID,
			InvoiceID:            req.InvoiceID,
			Amount:               amount,
			Method:               domain.MethodBkash,
			MethodLabel:          "bKash",
			TransactionNumber:    transactionNumber,
			GatewayTransactionID: resp.TrxID,
			GatewayResponse:      string(resp.Raw),
		})
		if err != nil {
			logger.Error(ctx).Err(err).
				Str("trx_id", resp.TrxID).
				Msg("Ledger write failed after confirmed bKash execution")
		} else {
			h.completedAmount.WithLabelValues(domain.MethodBkash).Add(amount)
			h.publishCompleted(ctx, tx)
		}
	}

	h.respondRaw(w, http.StatusOK, resp.Raw)
}

func (h *PaymentHandler) bkashQuery(ctx context.Context, w http.ResponseWriter, client *bkash.Client, token string, req bkashRequest) {
	if req.PaymentID == "" {
		h.respondError(w, http.StatusBadRequest, "paymentID is required")
		return
	}

	resp, err := client.QueryPayment(ctx, token, req.PaymentID)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondRaw(w, http.StatusOK, resp.Raw)
}

// --- SSLCOMMERZ ENDPOINT ---

type sslcommerzRequest struct {
	Action          string `json:"action"`
	Amount          string `json:"amount"`
	TransactionID   string `json:"transaction_id"`
	SuccessURL      string `json:"success_url"`
	FailURL         string `json:"fail_url"`
	CancelURL       string `json:"cancel_url"`
	IPNURL          string `json:"ipn_url"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	ProductName     string `json:"product_name"`
	StudentID       uint   `json:"student_id"`
	FeeID           *uint  `json:"fee_id"`
	InvoiceID       *uint  `json:"invoice_id"`
	ValID           string `json:"val_id"`
	BankTranID      string `json:"bank_tran_id"`
	RefundAmount    string `json:"refund_amount"`
	Remarks         string `json:"remarks"`
	TranID          string `json:"tran_id"`
}

// SSLCommerz handles POST /api/payments/sslcommerz with a JSON action
// payload (init, validate, refund, status)
func (h *PaymentHandler) SSLCommerz(w http.ResponseWriter, r *http.Request) {
	var req sslcommerzRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	cfg, err := h.configs.SSLCommerzConfig(ctx)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, configErrorMessage(err, "SSLCommerz"))
		return
	}
	client := sslcommerz.NewClient(cfg)

	switch req.Action {
	case "init":
		h.sslcommerzInit(ctx, w, client, req)
	case "validate":
		h.sslcommerzValidate(ctx, w, client, req)
	case "refund":
		h.sslcommerzRefund(ctx, w, client, req)
	case "status":
		h.sslcommerzStatus(ctx, w, client, req)
	default:
		h.respondError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *PaymentHandler) sslcommerzInit(ctx context.Context, w http.ResponseWriter, client *sslcommerz.Client, req sslcommerzRequest) {
	if req.Amount == "" || req.TransactionID == "" || req.SuccessURL == "" ||
		req.FailURL == "" || req.CancelURL == "" || req.CustomerName == "" || req.CustomerPhone == "" {
		h.respondError(w, http.StatusBadRequest, "amount, transaction_id, success_url, fail_url, cancel_url, customer_name and customer_phone are required")
		return
	}

	studentID := ""
	if req.StudentID != 0 {
		studentID = strconv.FormatUint(uint64(req.StudentID), 10)
	}
	feeID := ""
	if req.FeeID != nil {
		feeID = strconv.FormatUint(uint64(*req.FeeID), 10)
	}
	invoiceID := ""
	if req.InvoiceID != nil {
		invoiceID = strconv.FormatUint(uint64(*req.InvoiceID), 10)
	}

	resp, err := client.InitiatePayment(ctx, sslcommerz.InitRequest{
		Amount:          req.Amount,
		TransactionID:   req.TransactionID,
		SuccessURL:      req.SuccessURL,
		FailURL:         req.FailURL,
		CancelURL:       req.CancelURL,
		IPNURL:          req.IPNURL,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		ProductName:     req.ProductName,
		StudentID:       studentID,
		FeeID:           feeID,
		InvoiceID:       invoiceID,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Pre-create the pending ledger row so the later validate call has a
	// matching transaction_number to complete.
	if resp.Succeeded() && req.StudentID != 0 {
		amount, _ := strconv.ParseFloat(req.Amount, 64)
		if _, err := h.createPendingHandler.Handle(ctx, command.CreatePendingPaymentCommand{
			StudentID:         req.StudentID,
			FeeID:             req.FeeID,
			InvoiceID:         req.InvoiceID,
			Amount:            amount,
			Method:            domain.MethodSSLCommerz,
			MethodLabel:       "SSLCommerz",
			TransactionNumber: req.TransactionID,
			GatewayResponse:   string(resp.Raw),
		}); err != nil {
			logger.Error(ctx).Err(err).
				Str("transaction_id", req.TransactionID).
				Msg("Failed to pre-create pending transaction")
		}
	}

	h.respondRaw(w, http.StatusOK, resp.Raw)
}

func (h *PaymentHandler) sslcommerzValidate(ctx context.Context, w http.ResponseWriter, client *sslcommerz.Client, req sslcommerzRequest) {
	if req.ValID == "" {
		h.respondError(w, http.StatusBadRequest, "val_id is required")
		return
	}

	resp, err := client.ValidatePayment(ctx, req.ValID)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if resp.Valid() {
		tx, err := h.completeHandler.Handle(ctx, command.CompletePaymentCommand{
			TransactionNumber:    resp.TranID,
			GatewayTransactionID: resp.BankTranID,
			GatewayResponse:      string(resp.Raw),
		})
		if err != nil {
			logger.Error(ctx).Err(err).
				Str("tran_id", resp.TranID).
				Msg("Ledger write failed after validated SSLCommerz payment")
		} else {
			h.completedAmount.WithLabelValues(domain.MethodSSLCommerz).Add(tx.Amount)
			h.publishCompleted(ctx, tx)
		}
	}

	h.respondRaw(w, http.StatusOK, resp.Raw)
}

func (h *PaymentHandler) sslcommerzRefund(ctx context.Context, w http.ResponseWriter, client *sslcommerz.Client, req sslcommerzRequest) {
	if req.BankTranID == "" || req.RefundAmount == "" {
		h.respondError(w, http.StatusBadRequest, "bank_tran_id and refund_amount are required")
		return
	}

	raw, err := client.Refund(ctx, sslcommerz.RefundRequest{
		BankTranID:   req.BankTranID,
		RefundAmount: req.RefundAmount,
		Remarks:      req.Remarks,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondRaw(w, http.StatusOK, raw)
}

func (h *PaymentHandler) sslcommerzStatus(ctx context.Context, w http.ResponseWriter, client *sslcommerz.Client, req sslcommerzRequest) {
	if req.TranID == "" {
		h.respondError(w, http.StatusBadRequest, "tran_id is required")
		return
	}

	raw, err := client.TransactionStatus(ctx, req.TranID)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondRaw(w, http.StatusOK, raw)
}

// --- ADMIN ENDPOINTS ---

// ListTransactions handles GET /api/payments (admin only)
func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	studentID, _ := strconv.ParseUint(r.URL.Query().Get("student_id"), 10, 32)

	txs, err := h.listHandler.Handle(query.ListTransactionsQuery{
		StudentID: uint(studentID),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"total":        len(txs),
	})
}

// GetTransaction handles GET /api/payments/{id} (admin only)
func (h *PaymentHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	tx, err := h.getHandler.Handle(query.GetTransactionQuery{ID: uint(id)})
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	h.respondJSON(w, http.StatusOK, tx)
}

func (h *PaymentHandler) publishCompleted(ctx context.Context, tx *domain.Transaction) {
	if h.kafkaPublisher == nil {
		return
	}

	event := kafka.PaymentCompletedEvent{
		TransactionID:        tx.ID,
		TransactionNumber:    tx.TransactionNumber,
		StudentID:            tx.StudentID,
		Amount:               tx.Amount,
		Method:               tx.Method,
		GatewayTransactionID: tx.GatewayTransactionID,
	}
	if tx.FeeID != nil {
		event.FeeID = *tx.FeeID
	}
	if tx.InvoiceID != nil {
		event.InvoiceID = *tx.InvoiceID
	}

	// Best effort; a publish failure never fails the confirmed payment.
	if err := h.kafkaPublisher.PublishPaymentCompleted(ctx, event); err != nil {
		logger.Error(ctx).Err(err).
			Uint("transaction_id", tx.ID).
			Msg("Failed to publish payment completed event")
	}
}

func configErrorMessage(err error, provider string) string {
	if errors.Is(err, gateway.ErrConfigNotFound) {
		return provider + " configuration not found"
	}
	return err.Error()
}

// respondRaw passes a provider response body through verbatim
func (h *PaymentHandler) respondRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}

// respondJSON sends a JSON response
func (h *PaymentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *PaymentHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	// Gateway endpoints, invoked by the dashboards
	router.HandleFunc("/api/payments/bkash", h.metricsMiddleware("/api/payments/bkash", h.Bkash)).Methods("POST")
	router.HandleFunc("/api/payments/sslcommerz", h.metricsMiddleware("/api/payments/sslcommerz", h.SSLCommerz)).Methods("POST")

	// Admin ledger endpoints
	router.HandleFunc("/api/payments", h.metricsMiddleware("/api/payments", AdminMiddleware(h.ListTransactions))).Methods("GET")
	router.HandleFunc("/api/payments/{id:[0-9]+}", h.metricsMiddleware("/api/payments/{id}", AdminMiddleware(h.GetTransaction))).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *PaymentHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}

		h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods("GET")
}
