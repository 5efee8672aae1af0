// Package camunda connects to the Zeebe gateway and opens job workers.
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"supplier-portal/internal/common/config"
	httpclient "supplier-portal/internal/common/http"
)

// Client wraps the Zeebe gRPC client with a connection check.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// ClientConfig holds configuration for the Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
}

// ConfigFromApp builds a ClientConfig from the application config.
func ConfigFromApp(cfg config.CamundaConfig) *ClientConfig {
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.RequestTimeout),
	}
}

// NewClientWithConfig creates the client and checks the gateway topology.
func NewClientWithConfig(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, requestTimeout: cfg.ConnectionTimeout}
	if err := c.HealthCheck(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.GatewayAddress, err)
	}
	if cfg.RequestTimeout > 0 {
		c.requestTimeout = cfg.RequestTimeout
	}
	return c, nil
}

// Connect dials the gateway, retrying transient failures on b's schedule.
// Errors IsRetryableError rejects end the loop at once.
func Connect(ctx context.Context, cfg *ClientConfig, b httpclient.Backoff, onRetry func(attempt int, delay time.Duration, err error)) (*Client, error) {
	return connect(ctx, b, func(ctx context.Context) (*Client, error) {
		return NewClientWithConfig(ctx, cfg)
	}, onRetry)
}

func connect(ctx context.Context, b httpclient.Backoff, dial func(context.Context) (*Client, error), onRetry func(int, time.Duration, error)) (*Client, error) {
	var c *Client
	err := httpclient.Retry(ctx, b, func(int) error {
		var err error
		c, err = dial(ctx)
		return err
	}, IsRetryableError, onRetry)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetClient returns the raw Zeebe client.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// IsRetryableError reports whether a gateway error is transient.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"no such host",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
