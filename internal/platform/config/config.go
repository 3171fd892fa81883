package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is used to hold all runtime configuration.
type Config struct {
	Vault struct {
		OwnerAccount  string        `envconfig:"OWNER_ACCOUNT"`
		OperatorName  string        `envconfig:"OPERATOR_NAME"`
		Version       string        `default:"0.1" envconfig:"VERSION"`
		FlushInterval time.Duration `default:"10s" envconfig:"FLUSH_INTERVAL"`
		IsTest        bool          `default:"false" envconfig:"IS_TEST"`
	}
	Yield struct {
		HarvestInterval time.Duration `default:"1m" envconfig:"HARVEST_INTERVAL"`
		// Sources is a comma separated list of name:amount pairs for fixed
		// yield sources. Empty disables harvesting.
		Sources string `envconfig:"YIELD_SOURCES"`
	}
	Metrics struct {
		ListenAddress string `default:":2112" envconfig:"METRICS_ADDRESS"`
	}
	AWS struct {
		Region          string `default:"ap-southeast-2" envconfig:"AWS_REGION" json:"AWS_REGION"`
		AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" json:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" json:"AWS_SECRET_ACCESS_KEY"`
		MaxRetries      int    `default:"4" envconfig:"AWS_MAX_RETRIES"`
		RetryDelay      int    `default:"2000" envconfig:"AWS_RETRY_DELAY"`
	}
	Storage struct {
		Bucket string `default:"standalone" envconfig:"VAULT_STORAGE_BUCKET"`
		Root   string `default:"./tmp" envconfig:"VAULT_STORAGE_ROOT"`
	}
}

// SafeConfig masks sensitive config values
func SafeConfig(cfg Config) *Config {
	cfgSafe := cfg

	if len(cfgSafe.AWS.AccessKeyID) > 0 {
		cfgSafe.AWS.AccessKeyID = "*** Masked ***"
	}
	if len(cfgSafe.AWS.SecretAccessKey) > 0 {
		cfgSafe.AWS.SecretAccessKey = "*** Masked ***"
	}

	return &cfgSafe
}

// Environment returns configuration sourced from environment variables
func Environment() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VAULT", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
