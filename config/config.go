// Package config provides configuration loading and management for ontosync.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Graph backends.
const (
	BackendNeo4j  = "neo4j"
	BackendMemory = "memory"
)

// Relay transports.
const (
	TransportHTTP = "http"
	TransportNATS = "nats"
	TransportNone = "none"
)

// Config represents the complete ontosync configuration
type Config struct {
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Relay    RelayConfig    `yaml:"relay"`
	Ontology OntologyConfig `yaml:"ontology"`
	Health   HealthConfig   `yaml:"health"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Neo4jConfig configures the graph store connection
type Neo4jConfig struct {
	// Backend selects the graph store: "neo4j" or "memory" (dry run)
	Backend  string `yaml:"backend"`
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RelayConfig configures the remote edit relay
type RelayConfig struct {
	// Transport is "http", "nats" or "none"
	Transport string `yaml:"transport"`
	// URL is the HTTP message relay base URL
	URL string `yaml:"url"`
	// Session is the mailbox identifier (empty = random per run)
	Session      string        `yaml:"session"`
	PollInterval time.Duration `yaml:"poll_interval"`
	// QueueSize bounds the outbound event buffer
	QueueSize int        `yaml:"queue_size"`
	NATS      NATSConfig `yaml:"nats"`
}

// NATSConfig configures the JetStream mailbox
type NATSConfig struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

// OntologyConfig configures the local ontology
type OntologyConfig struct {
	// IRI identifies the ontology and is the base of every entity IRI
	IRI string `yaml:"iri"`
	// ImportOnStart loads the graph contents before syncing begins
	ImportOnStart bool `yaml:"import_on_start"`
}

// HealthConfig configures the sync target availability tracker
type HealthConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

// MetricsConfig configures the metrics endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics and /health (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			Backend:  BackendNeo4j,
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Relay: RelayConfig{
			Transport:    TransportHTTP,
			URL:          "http://localhost:8080",
			PollInterval: 3 * time.Second,
			QueueSize:    256,
			NATS: NATSConfig{
				URL:    "nats://localhost:4222",
				Stream: "ONTOSYNC_MAILBOX",
			},
		},
		Ontology: OntologyConfig{
			IRI:           "http://www.semanticweb.org/ontosync/ontology",
			ImportOnStart: true,
		},
		Health: HealthConfig{
			FailureThreshold: 3,
			RecoveryTimeout:  30 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Neo4j.Backend {
	case BackendNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j.uri is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("neo4j.backend must be %q or %q, got %q", BackendNeo4j, BackendMemory, c.Neo4j.Backend)
	}

	switch c.Relay.Transport {
	case TransportHTTP:
		if _, err := url.ParseRequestURI(c.Relay.URL); err != nil {
			return fmt.Errorf("relay.url is invalid: %w", err)
		}
	case TransportNATS:
		if c.Relay.NATS.URL == "" {
			return fmt.Errorf("relay.nats.url is required")
		}
	case TransportNone:
	default:
		return fmt.Errorf("relay.transport must be %q, %q or %q, got %q",
			TransportHTTP, TransportNATS, TransportNone, c.Relay.Transport)
	}
	if c.Relay.Transport != TransportNone {
		if c.Relay.PollInterval <= 0 {
			return fmt.Errorf("relay.poll_interval must be positive")
		}
		if c.Relay.QueueSize <= 0 {
			return fmt.Errorf("relay.queue_size must be positive")
		}
	}

	if c.Ontology.IRI == "" {
		return fmt.Errorf("ontology.iri is required")
	}
	if c.Health.FailureThreshold < 1 {
		return fmt.Errorf("health.failure_threshold must be at least 1")
	}
	if c.Health.RecoveryTimeout < 0 {
		return fmt.Errorf("health.recovery_timeout must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Environment references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.decodeFile(path); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeFile overlays the keys present in the file onto c.
func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := ExpandEnvWithDefaults(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). Booleans cannot be cleared by Merge.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Neo4j
	mergeString(&c.Neo4j.Backend, other.Neo4j.Backend)
	mergeString(&c.Neo4j.URI, other.Neo4j.URI)
	mergeString(&c.Neo4j.Username, other.Neo4j.Username)
	mergeString(&c.Neo4j.Password, other.Neo4j.Password)
	mergeString(&c.Neo4j.Database, other.Neo4j.Database)

	// Relay
	mergeString(&c.Relay.Transport, other.Relay.Transport)
	mergeString(&c.Relay.URL, other.Relay.URL)
	mergeString(&c.Relay.Session, other.Relay.Session)
	if other.Relay.PollInterval != 0 {
		c.Relay.PollInterval = other.Relay.PollInterval
	}
	if other.Relay.QueueSize != 0 {
		c.Relay.QueueSize = other.Relay.QueueSize
	}
	mergeString(&c.Relay.NATS.URL, other.Relay.NATS.URL)
	mergeString(&c.Relay.NATS.Stream, other.Relay.NATS.Stream)

	// Ontology
	mergeString(&c.Ontology.IRI, other.Ontology.IRI)
	if other.Ontology.ImportOnStart {
		c.Ontology.ImportOnStart = true
	}

	// Health
	if other.Health.FailureThreshold != 0 {
		c.Health.FailureThreshold = other.Health.FailureThreshold
	}
	if other.Health.RecoveryTimeout != 0 {
		c.Health.RecoveryTimeout = other.Health.RecoveryTimeout
	}

	// Metrics
	mergeString(&c.Metrics.Addr, other.Metrics.Addr)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
