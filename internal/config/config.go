package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ProjectID         string
	FirestoreDatabase string
	Region            string
	LogLevel          string
	Port              string
	LocalStorePath    string
	VertexModel       string
	MetricsTTL        time.Duration
	MetricsRetries    int
	MetricsRetryDelay time.Duration
}

// New reads configuration from the environment, optionally layered over a
// file named by CONFIGFILE. An empty ProjectID leaves the remote table and the
// model unconfigured.
func New() (*Config, error) {
	v := viper.New()

	v.SetDefault("projectid", "")
	v.SetDefault("firestoredatabase", "")
	v.SetDefault("region", "us-central1")
	v.SetDefault("loglevel", "info")
	v.SetDefault("port", "8080")
	v.SetDefault("localstorepath", filepath.Join(os.TempDir(), "copilot-dashboard", "local.db"))
	v.SetDefault("vertexmodel", "gemini-2.0-flash")
	v.SetDefault("metricsttl", 5*time.Minute)
	v.SetDefault("metricsretries", 3)
	v.SetDefault("metricsretrydelay", time.Second)

	v.AutomaticEnv()

	if path := os.Getenv("CONFIGFILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return &Config{
		ProjectID:         v.GetString("projectid"),
		FirestoreDatabase: v.GetString("firestoredatabase"),
		Region:            v.GetString("region"),
		LogLevel:          v.GetString("loglevel"),
		Port:              v.GetString("port"),
		LocalStorePath:    v.GetString("localstorepath"),
		VertexModel:       v.GetString("vertexmodel"),
		MetricsTTL:        v.GetDuration("metricsttl"),
		MetricsRetries:    v.GetInt("metricsretries"),
		MetricsRetryDelay: v.GetDuration("metricsretrydelay"),
	}, nil
}

// RemoteEnabled reports whether a Google Cloud project is configured.
func (c *Config) RemoteEnabled() bool {
	return c.ProjectID != ""
}
