package supplierapi

import (
	"supplier-portal/internal/common/config"
	httpclient "supplier-portal/internal/common/http"
)

// OptionsFromConfig maps the api config section onto client options.
func OptionsFromConfig(cfg config.APIConfig) []Option {
	var opts []Option
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(config.GetDuration(cfg.Timeout)))
	}
	if cfg.RetryReads {
		opts = append(opts, WithReadRetry(httpclient.Backoff{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: config.GetDuration(cfg.RetryBaseDelay),
			MaxDelay:     config.GetDuration(cfg.RetryBaseDelay) * 8,
		}))
	}
	return opts
}
