package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFromPath(t *testing.T) {
	tests := []struct {
		path    string
		service string
	}{
		{path: "/api/payments/bkash/create", service: "payment"},
		{path: "/api/payments", service: "payment"},
		{path: "/api/accounts", service: "account"},
		{path: "/api/accounts/limit", service: "account"},
		{path: "/api/admin/setup", service: "account"},
		{path: "/auth/login", service: "account"},
		{path: "/users/me", service: "account"},
		{path: "/admin/users", service: "account"},
		{path: "/health", service: ""},
		{path: "/", service: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.service, ServiceFromPath(tt.path), "path %s", tt.path)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	boom := errors.New("backend down")

	for i := 0; i < 3; i++ {
		assert.Equal(t, StateClosed, cb.State())
		err := cb.Call(func() error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, StateOpen, cb.State())

	// open circuit fails fast without invoking the call
	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	boom := errors.New("backend down")

	_ = cb.Call(func() error { return boom })
	_ = cb.Call(func() error { return boom })
	require.NoError(t, cb.Call(func() error { return nil }))
	_ = cb.Call(func() error { return boom })
	_ = cb.Call(func() error { return boom })

	assert.Equal(t, StateClosed, cb.State(), "failure count must reset on success")
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	_ = cb.Call(func() error { return errors.New("down") })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// three consecutive successes in half-open close the circuit
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)

	_ = cb.Call(func() error { return errors.New("down") })
	time.Sleep(20 * time.Millisecond)

	_ = cb.Call(func() error { return errors.New("still down") })

	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreakerManagerReusesBreakers(t *testing.T) {
	m := NewCircuitBreakerManager()

	a := m.GetOrCreate("payment")
	b := m.GetOrCreate("payment")
	c := m.GetOrCreate("account")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	stats := m.AllStats()
	assert.Contains(t, stats, "payment")
	assert.Contains(t, stats, "account")
}
