package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-portal/internal/common/config"
	httpclient "supplier-portal/internal/common/http"
)

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		RequestTimeout: 2500,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectionTimeout)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("rpc error: code = Unavailable desc = connection refused"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("dial tcp: lookup zeebe: no such host"), true},
		{errors.New("NOT_FOUND: job 42 does not exist"), false},
		{errors.New("invalid argument"), false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}

func TestConnect_RetriesTransientFailures(t *testing.T) {
	backoff := httpclient.Backoff{MaxAttempts: 5, InitialDelay: time.Millisecond}
	want := &Client{}

	dials := 0
	var retried []int
	got, err := connect(context.Background(), backoff, func(context.Context) (*Client, error) {
		dials++
		if dials < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return want, nil
	}, func(attempt int, _ time.Duration, _ error) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 3, dials)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestConnect_StopsOnPermanentFailure(t *testing.T) {
	backoff := httpclient.Backoff{MaxAttempts: 5, InitialDelay: time.Millisecond}

	dials := 0
	_, err := connect(context.Background(), backoff, func(context.Context) (*Client, error) {
		dials++
		return nil, errors.New("invalid argument: gateway address")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, dials)
}

func TestConnect_GivesUpAfterMaxAttempts(t *testing.T) {
	backoff := httpclient.Backoff{MaxAttempts: 3, InitialDelay: time.Millisecond}

	dials := 0
	_, err := connect(context.Background(), backoff, func(context.Context) (*Client, error) {
		dials++
		return nil, errors.New("context deadline exceeded")
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.Equal(t, 3, dials)
}
