package http

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

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/internal/account/usecase/command"
	"github.com/schoolkit/edupay/internal/account/usecase/query"
	"github.com/schoolkit/edupay/kafka"
	"github.com/schoolkit/edupay/pkg/logger"
)

// AccountHandler exposes login, account provisioning, and the one-time admin
// bootstrap over HTTP
type AccountHandler struct {
	// Command handlers
	createAccountHandler *command.CreateAccountHandler
	setupAdminHandler    *command.SetupAdminHandler
	loginHandler         *command.LoginUserHandler
	registerHandler      *command.RegisterUserHandler

	// Query handlers
	getUserHandler    *query.GetUserHandler
	listUsersHandler  *query.ListUsersHandler
	checkLimitHandler *query.CheckSchoolLimitHandler

	kafkaPublisher *kafka.Publisher

	requestCounter      *prometheus.CounterVec
	requestLatency      *prometheus.HistogramVec
	provisionedAccounts *prometheus.CounterVec
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	createAccountHandler *command.CreateAccountHandler,
	setupAdminHandler *command.SetupAdminHandler,
	loginHandler *command.LoginUserHandler,
	registerHandler *command.RegisterUserHandler,
	getUserHandler *query.GetUserHandler,
	listUsersHandler *query.ListUsersHandler,
	checkLimitHandler *query.CheckSchoolLimitHandler,
	kafkaPublisher *kafka.Publisher,
) *AccountHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_service_requests_total",
			Help: "Total number of requests to account service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_service_request_duration_seconds",
			Help:    "Duration of account service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	provisionedAccounts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_service_provisioned_total",
			Help: "Total accounts provisioned by entity type",
		},
		[]string{"entity_type"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(provisionedAccounts)

	return &AccountHandler{
		createAccountHandler: createAccountHandler,
		setupAdminHandler:    setupAdminHandler,
		loginHandler:         loginHandler,
		registerHandler:      registerHandler,
		getUserHandler:       getUserHandler,
		listUsersHandler:     listUsersHandler,
		checkLimitHandler:    checkLimitHandler,
		kafkaPublisher:       kafkaPublisher,
		requestCounter:       requestCounter,
		requestLatency:       requestLatency,
		provisionedAccounts:  provisionedAccounts,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *AccountHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.loginHandler.Handle(command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// Register handles POST /auth/register. Self-registered identities hold no
// role until an admin bootstrap or provisioning grants one.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.registerHandler.Handle(command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			h.respondError(w, http.StatusBadRequest, "An account already exists for this email")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, user)
}

// GetProfile handles GET /users/me (authenticated user)
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uint)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := h.getUserHandler.Handle(query.GetUserQuery{ID: userID})
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// CreateAccount handles POST /api/accounts (admin only). On success the
// response carries the generated credentials; the only other channel they
// reach the admin through is the credential delivery email.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(UserIDKey).(uint)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		SchoolID    uint   `json:"school_id"`
		EntityType  string `json:"entity_type"`
		EntityID    uint   `json:"entity_id"`
		Email       string `json:"email"`
		FullName    string `json:"full_name"`
		Phone       string `json:"phone"`
		ParentEmail string `json:"parent_email"`
		ParentName  string `json:"parent_name"`
		ParentPhone string `json:"parent_phone"`
		SendEmail   *bool  `json:"send_email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateAccountCommand{
		CallerID:    callerID,
		SchoolID:    req.SchoolID,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		ParentEmail: req.ParentEmail,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
	}

	result, err := h.createAccountHandler.Handle(r.Context(), cmd)
	if err != nil {
		var limitErr *command.LimitError
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.respondError(w, http.StatusForbidden, "Admin access required")
		case errors.As(err, &limitErr):
			h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"limit_reached": true,
				"current":       limitErr.Current,
				"max":           limitErr.Max,
				"message":       limitErr.Error(),
			})
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.respondError(w, http.StatusBadRequest, "An account already exists for this email")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	// send_email defaults to true; admins opt out when they hand the
	// credentials over through another channel.
	sendEmail := req.SendEmail == nil || *req.SendEmail

	h.provisionedAccounts.WithLabelValues(req.EntityType).Inc()
	h.publishProvisioned(r.Context(), req.SchoolID, req.EntityType, req.EntityID, sendEmail, result.Credentials)
	if result.ParentCredentials != nil {
		h.provisionedAccounts.WithLabelValues(domain.EntityParent).Inc()
		h.publishProvisioned(r.Context(), req.SchoolID, domain.EntityParent, req.EntityID, sendEmail, *result.ParentCredentials)
	}

	h.respondJSON(w, http.StatusOK, result)
}

// CheckSchoolLimit handles GET /api/accounts/limit (admin only)
func (h *AccountHandler) CheckSchoolLimit(w http.ResponseWriter, r *http.Request) {
	schoolID, _ := strconv.ParseUint(r.URL.Query().Get("school_id"), 10, 32)
	entityType := r.URL.Query().Get("entity_type")

	result, err := h.checkLimitHandler.Handle(query.CheckSchoolLimitQuery{
		SchoolID:   uint(schoolID),
		EntityType: entityType,
	})
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// SetupAdmin handles POST /api/admin/setup. It bootstraps an admin role for
// an already-registered user and, for school admins, creates their school.
func (h *AccountHandler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     uint   `json:"user_id"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		SchoolName string `json:"school_name"`
		SchoolCode string `json:"school_code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.setupAdminHandler.Handle(r.Context(), command.SetupAdminCommand{
		UserID:     req.UserID,
		Email:      req.Email,
		Role:       req.Role,
		SchoolName: req.SchoolName,
		SchoolCode: req.SchoolCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "User not found. Please register first.")
		case errors.Is(err, domain.ErrInvalidRole):
			h.respondError(w, http.StatusBadRequest, "Role must be super_admin or school_admin")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"user_id":   result.UserID,
		"role":      result.Role,
		"school_id": result.SchoolID,
	})
}

// GetUser handles GET /admin/users/{id} (admin only)
func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.getUserHandler.Handle(query.GetUserQuery{ID: uint(id)})
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// ListUsers handles GET /admin/users (admin only)
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.listUsersHandler.Handle(query.ListUsersQuery{Limit: limit, Offset: offset})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, users)
}

// HealthCheck handles GET /health
func (h *AccountHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

// publishProvisioned emits the provisioning event for the credential delivery
// worker. Publish failures are logged, never surfaced to the caller.
func (h *AccountHandler) publishProvisioned(ctx context.Context, schoolID uint, entityType string, entityID uint, sendEmail bool, creds command.Credentials) {
	if h.kafkaPublisher == nil {
		return
	}

	event := kafka.AccountProvisionedEvent{
		UserID:       creds.UserID,
		CredentialID: creds.CredentialID,
		EntityType:   entityType,
		EntityID:     entityID,
		SchoolID:     schoolID,
		Email:        creds.Email,
		FullName:     creds.FullName,
		Username:     creds.Username,
		Password:     creds.Password,
		SendEmail:    sendEmail,
		Timestamp:    time.Now(),
	}
	if err := h.kafkaPublisher.PublishAccountProvisioned(ctx, event); err != nil {
		logger.Error(ctx).Err(err).Uint("user_id", creds.UserID).Msg("Failed to publish account provisioned event")
	}
}

// respondJSON sends a JSON response
func (h *AccountHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *AccountHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/auth/register", h.metricsMiddleware("/auth/register", h.Register)).Methods("POST")
	router.HandleFunc("/auth/login", h.metricsMiddleware("/auth/login", h.Login)).Methods("POST")
	router.HandleFunc("/api/admin/setup", h.metricsMiddleware("/api/admin/setup", h.SetupAdmin)).Methods("POST")

	// Authenticated user routes
	router.HandleFunc("/users/me", h.metricsMiddleware("/users/me", AuthMiddleware(h.GetProfile))).Methods("GET")

	// Admin routes
	router.HandleFunc("/api/accounts", h.metricsMiddleware("/api/accounts", AuthMiddleware(h.CreateAccount))).Methods("POST")
	router.HandleFunc("/api/accounts/limit", h.metricsMiddleware("/api/accounts/limit", AdminMiddleware(h.CheckSchoolLimit))).Methods("GET")
	router.HandleFunc("/admin/users", h.metricsMiddleware("/admin/users", AdminMiddleware(h.ListUsers))).Methods("GET")
	router.HandleFunc("/admin/users/{id:[0-9]+}", h.metricsMiddleware("/admin/users/{id}", AdminMiddleware(h.GetUser))).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *AccountHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
