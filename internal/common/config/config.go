package config

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	API       APIConfig               `mapstructure:"api"`
	Session   SessionConfig           `mapstructure:"session"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Analytics AnalyticsConfig         `mapstructure:"analytics"`
	Metrics   MetricsConfig           `mapstructure:"metrics"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points the client at the directory backend.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds, 0 = none
	RetryReads     bool   `mapstructure:"retry_reads"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBaseDelay int    `mapstructure:"retry_base_delay"` // milliseconds
}

// SessionConfig selects where auth tokens and drafts live.
type SessionConfig struct {
	Driver    string `mapstructure:"driver"` // "memory" or "redis"
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AnalyticsConfig tunes the business-profile view tracker.
type AnalyticsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MinDwell    int  `mapstructure:"min_dwell"` // milliseconds
	TrackSearch bool `mapstructure:"track_search"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
