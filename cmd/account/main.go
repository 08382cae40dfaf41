package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"gorm.io/gorm"

	_ "github.com/schoolkit/edupay/docs"
	"github.com/schoolkit/edupay/internal/account"
	httpDelivery "github.com/schoolkit/edupay/internal/account/delivery/http"
	"github.com/schoolkit/edupay/internal/account/repository"
	"github.com/schoolkit/edupay/internal/account/worker"
	"github.com/schoolkit/edupay/kafka"
	"github.com/schoolkit/edupay/pkg/database"
	"github.com/schoolkit/edupay/pkg/email"
	"github.com/schoolkit/edupay/pkg/logger"
	"github.com/schoolkit/edupay/pkg/middleware"
	"github.com/schoolkit/edupay/pkg/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	serviceName := getEnv("OTEL_SERVICE_NAME", "account-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting account service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "edupay"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.NewGormUserRepository(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka is optional; without brokers the provisioning endpoint still
	// works, only the credential delivery emails are skipped
	var publisher *kafka.Publisher
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		brokerList := strings.Split(brokers, ",")

		publisher, err = kafka.NewPublisher(brokerList)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to connect to Kafka, events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}

		startCredentialDelivery(db, brokerList)
	}

	accountHandler, err := account.InitializeHandler(db, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	httpPort := getEnv("HTTP_PORT", "8081")
	go startHTTPServer(accountHandler, sqlDB, httpPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

// startCredentialDelivery starts the consumer that emails generated
// credentials. Falls back to log-only delivery when Sendgrid is not
// configured.
func startCredentialDelivery(db *gorm.DB, brokers []string) {
	consumer, err := kafka.NewConsumer(brokers, "credential-delivery", []string{kafka.TopicAccountProvisioned})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start credential delivery consumer")
		return
	}

	var sender email.Sender = email.LogSender{}
	if apiKey := getEnv("SENDGRID_API_KEY", ""); apiKey != "" {
		sender = email.NewSendgridSender(
			apiKey,
			getEnv("EMAIL_FROM_NAME", "EduPay"),
			getEnv("EMAIL_FROM_ADDRESS", "no-reply@edupay.example"),
		)
	}

	delivery := worker.NewCredentialDelivery(sender, repository.NewGormCredentialRepository(db))
	delivery.Register(consumer)

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logger.Logger.Error().Err(err).Msg("Credential delivery consumer stopped")
		}
	}()
}

func startHTTPServer(accountHandler *httpDelivery.AccountHandler, db *sql.DB, port string) {
	router := mux.NewRouter()

	middleware.Register(router, "account-http")

	accountHandler.RegisterRoutes(router)
	accountHandler.RegisterHealthCheck(router, db)
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
