//go:build wireinject
// +build wireinject

package account

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/account/delivery/http"
	"github.com/schoolkit/edupay/kafka"
)

// InitializeHandler initializes account handler with all dependencies
func InitializeHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.AccountHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewAccountHandler,
	)
	return nil, nil
}
