package supplierapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"supplier-portal/internal/common/config"
)

func TestOptionsFromConfig(t *testing.T) {
	c := New("http://localhost", nil, OptionsFromConfig(config.APIConfig{
		Timeout:        1500,
		RetryReads:     true,
		MaxRetries:     4,
		RetryBaseDelay: 100,
	})...)

	assert.Equal(t, 1500*time.Millisecond, c.timeout)
	assert.True(t, c.retryReads)
	assert.Equal(t, 4, c.backoff.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, c.backoff.InitialDelay)
	assert.Equal(t, 800*time.Millisecond, c.backoff.MaxDelay)

	plain := New("http://localhost", nil, OptionsFromConfig(config.APIConfig{})...)
	assert.Zero(t, plain.timeout)
	assert.False(t, plain.retryReads)
}
