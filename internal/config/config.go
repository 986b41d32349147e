package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig selects the input files and the log format.
type PipelineConfig struct {
	Format      string `yaml:"format"`
	FlowLogPath string `yaml:"flow_log_path"`
	LookupPath  string `yaml:"lookup_path"`
}

// TextConfig holds the configuration for the plain-text report writer.
type TextConfig struct {
	OutputPath string `yaml:"output_path"`
}

// JSONConfig holds the configuration for the JSON report writer.
type JSONConfig struct {
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection details for the NATS publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines a single report writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Text       TextConfig       `yaml:"text"`
	JSON       JSONConfig       `yaml:"json"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// APIConfig holds the listen addresses of the query API.
type APIConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	GRPCListenAddr string `yaml:"grpc_listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Writers  []WriterDef    `yaml:"writers"`
	API      APIConfig      `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied and a single
// text writer enabled.
func Default() *Config {
	cfg := &Config{
		Writers: []WriterDef{{Type: "text", Enabled: true}},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in unset values.
func (c *Config) ApplyDefaults() {
	if c.Pipeline.Format == "" {
		c.Pipeline.Format = "default"
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.API.GRPCListenAddr == "" {
		c.API.GRPCListenAddr = ":9090"
	}
	for i := range c.Writers {
		w := &c.Writers[i]
		switch w.Type {
		case "text":
			if w.Text.OutputPath == "" {
				w.Text.OutputPath = "output.txt"
			}
		case "json":
			if w.JSON.RootPath == "" {
				w.JSON.RootPath = "reports"
			}
		case "clickhouse":
			if w.ClickHouse.Port == 0 {
				w.ClickHouse.Port = 9000
			}
			if w.ClickHouse.Database == "" {
				w.ClickHouse.Database = "default"
			}
		case "nats":
			if w.NATS.Subject == "" {
				w.NATS.Subject = "flowtag.reports"
			}
		}
	}
}

// ClickHouse returns the first enabled ClickHouse writer config, if any.
func (c *Config) ClickHouse() (*ClickHouseConfig, bool) {
	for i := range c.Writers {
		if c.Writers[i].Enabled && c.Writers[i].Type == "clickhouse" {
			return &c.Writers[i].ClickHouse, true
		}
	}
	return nil, false
}
