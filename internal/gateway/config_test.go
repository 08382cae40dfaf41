package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	values map[string]string
	err    error
}

func (s *stubStore) Value(ctx context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.values[key], nil
}

func TestBkashConfig(t *testing.T) {
	provider := NewStoreConfigProvider(&stubStore{values: map[string]string{
		BkashConfigKey: `{"app_key":"k","app_secret":"s","username":"u","password":"p","sandbox":true}`,
	}})

	cfg, err := provider.BkashConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.AppKey)
	assert.Equal(t, "s", cfg.AppSecret)
	assert.True(t, cfg.Sandbox)
}

func TestSSLCommerzConfig(t *testing.T) {
	provider := NewStoreConfigProvider(&stubStore{values: map[string]string{
		SSLCommerzConfigKey: `{"store_id":"store1","store_password":"pass","sandbox":false}`,
	}})

	cfg, err := provider.SSLCommerzConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "store1", cfg.StoreID)
	assert.False(t, cfg.Sandbox)
}

func TestConfigMissing(t *testing.T) {
	provider := NewStoreConfigProvider(&stubStore{values: map[string]string{}})

	_, err := provider.BkashConfig(context.Background())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigStoreError(t *testing.T) {
	provider := NewStoreConfigProvider(&stubStore{err: errors.New("db down")})

	_, err := provider.SSLCommerzConfig(context.Background())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigMalformed(t *testing.T) {
	provider := NewStoreConfigProvider(&stubStore{values: map[string]string{
		BkashConfigKey: `{not json`,
	}})

	_, err := provider.BkashConfig(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}
