package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Bkash godoc
// @Summary bKash gateway operations
// @Description Dispatch a bKash tokenized checkout action (create, execute, or query). The provider response is returned verbatim; confirmed executions are recorded in the transaction ledger.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body object{action=string,amount=number,payment_id=string,invoice_number=string,student_id=int,fee_id=int} true "Gateway action"
// @Success 200 {object} object{statusCode=string,statusMessage=string,paymentID=string}
// @Failure 400 {object} object{error=string}
// @Failure 502 {object} object{error=string}
// @Router /api/payments/bkash [post]
func (h *PaymentHandler) BkashDoc() {}

// SSLCommerz godoc
// @Summary SSLCommerz gateway operations
// @Description Dispatch an SSLCommerz action (init, validate, refund, or status). Validated transactions are marked completed in the ledger.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body object{action=string,amount=number,tran_id=string,val_id=string,student_id=int} true "Gateway action"
// @Success 200 {object} object{status=string,GatewayPageURL=string}
// @Failure 400 {object} object{error=string}
// @Failure 502 {object} object{error=string}
// @Router /api/payments/sslcommerz [post]
func (h *PaymentHandler) SSLCommerzDoc() {}

// ListTransactions godoc
// @Summary List ledger transactions (admin)
// @Description Page through recorded payment transactions, optionally filtered by student
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Param student_id query int false "Student filter"
// @Success 200 {array} object{id=int,transaction_number=string,amount=number,status=string,payment_method=string}
// @Failure 403 {object} object{error=string}
// @Router /api/payments [get]
func (h *PaymentHandler) ListTransactionsDoc() {}

// GetTransaction godoc
// @Summary Get one ledger transaction (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} object{id=int,transaction_number=string,amount=number,status=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/payments/{id} [get]
func (h *PaymentHandler) GetTransactionDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *PaymentHandler) HealthCheckDoc() {}
