package payment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/gateway"
	"github.com/schoolkit/edupay/internal/payment/domain"
	"github.com/schoolkit/edupay/internal/payment/repository"
	"github.com/schoolkit/edupay/internal/payment/usecase/command"
	"github.com/schoolkit/edupay/internal/payment/usecase/query"
)

// Repository providers
func ProvideTransactionRepository(db *gorm.DB) domain.TransactionRepository {
	return repository.NewGormTransactionRepository(db)
}

func ProvideFeeRepository(db *gorm.DB) domain.FeeRepository {
	return repository.NewGormFeeRepository(db)
}

func ProvideInvoiceRepository(db *gorm.DB) domain.InvoiceRepository {
	return repository.NewGormInvoiceRepository(db)
}

func ProvideConfigProvider(db *gorm.DB) gateway.ConfigProvider {
	return gateway.NewStoreConfigProvider(repository.NewGormSettingRepository(db))
}

// Command Handlers Providers
func ProvideRecordCompletedPaymentHandler(repo domain.TransactionRepository, fees domain.FeeRepository, invoices domain.InvoiceRepository) *command.RecordCompletedPaymentHandler {
	return command.NewRecordCompletedPaymentHandler(repo, fees, invoices)
}

func ProvideCreatePendingPaymentHandler(repo domain.TransactionRepository) *command.CreatePendingPaymentHandler {
	return command.NewCreatePendingPaymentHandler(repo)
}

func ProvideCompletePaymentHandler(repo domain.TransactionRepository, fees domain.FeeRepository, invoices domain.InvoiceRepository) *command.CompletePaymentHandler {
	return command.NewCompletePaymentHandler(repo, fees, invoices)
}

// Query Handlers Providers
func ProvideGetTransactionHandler(repo domain.TransactionRepository) *query.GetTransactionHandler {
	return query.NewGetTransactionHandler(repo)
}

func ProvideListTransactionsHandler(repo domain.TransactionRepository) *query.ListTransactionsHandler {
	return query.NewListTransactionsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideTransactionRepository,
	ProvideFeeRepository,
	ProvideInvoiceRepository,
	ProvideConfigProvider,
)

var CommandHandlerSet = wire.NewSet(
	ProvideRecordCompletedPaymentHandler,
	ProvideCreatePendingPaymentHandler,
	ProvideCompletePaymentHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetTransactionHandler,
	ProvideListTransactionsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)
