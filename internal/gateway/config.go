// Package gateway loads payment provider configuration from the settings
// store. Configuration is re-read on every call and never cached: admins edit
// gateway credentials at runtime and a payment must never proceed against
// stale credentials.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/schoolkit/edupay/internal/gateway/bkash"
	"github.com/schoolkit/edupay/internal/gateway/sslcommerz"
)

// Settings store keys, one active row per provider
const (
	BkashConfigKey      = "bkash_config"
	SSLCommerzConfigKey = "sslcommerz_config"
)

// ErrConfigNotFound means no active configuration row exists for the
// provider. This is a hard failure for the request: the admin must configure
// the gateway before payments can run.
var ErrConfigNotFound = errors.New("payment gateway configuration not found")

// SettingStore reads a raw setting value by key
type SettingStore interface {
	Value(ctx context.Context, key string) (string, error)
}

// ConfigProvider resolves provider credentials at request time
type ConfigProvider interface {
	BkashConfig(ctx context.Context) (bkash.Config, error)
	SSLCommerzConfig(ctx context.Context) (sslcommerz.Config, error)
}

// StoreConfigProvider reads provider configs from a SettingStore on every
// call
type StoreConfigProvider struct {
	store SettingStore
}

var _ ConfigProvider = (*StoreConfigProvider)(nil)

// NewStoreConfigProvider creates a settings-backed config provider
func NewStoreConfigProvider(store SettingStore) *StoreConfigProvider {
	return &StoreConfigProvider{store: store}
}

// BkashConfig loads the bKash merchant credentials
func (p *StoreConfigProvider) BkashConfig(ctx context.Context) (bkash.Config, error) {
	var cfg bkash.Config
	if err := p.load(ctx, BkashConfigKey, &cfg); err != nil {
		return bkash.Config{}, err
	}
	return cfg, nil
}

// SSLCommerzConfig loads the SSLCommerz store credentials
func (p *StoreConfigProvider) SSLCommerzConfig(ctx context.Context) (sslcommerz.Config, error) {
	var cfg sslcommerz.Config
	if err := p.load(ctx, SSLCommerzConfigKey, &cfg); err != nil {
		return sslcommerz.Config{}, err
	}
	return cfg, nil
}

func (p *StoreConfigProvider) load(ctx context.Context, key string, out interface{}) error {
	value, err := p.store.Value(ctx, key)
	if err != nil {
		return ErrConfigNotFound
	}
	if value == "" {
		return ErrConfigNotFound
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("invalid %s setting: %w", key, err)
	}

	return nil
}
