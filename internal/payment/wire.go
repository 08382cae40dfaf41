//go:build wireinject
// +build wireinject

package payment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/payment/handler"
	"github.com/schoolkit/edupay/kafka"
)

// InitializeHandler initializes payment handler with all dependencies
func InitializeHandler(db *gorm.DB, publisher *kafka.Publisher) (*handler.PaymentHandler, error) {
	wire.Build(
		AllHandlersSet,
		handler.NewPaymentHandler,
	)
	return nil, nil
}
