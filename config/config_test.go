package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Neo4j.URI != "neo4j://localhost:7687" {
		t.Errorf("expected default URI neo4j://localhost:7687, got %s", cfg.Neo4j.URI)
	}
	if cfg.Relay.PollInterval != 3*time.Second {
		t.Errorf("expected default poll interval 3s, got %v", cfg.Relay.PollInterval)
	}
	if cfg.Relay.URL != "http://localhost:8080" {
		t.Errorf("expected default relay URL http://localhost:8080, got %s", cfg.Relay.URL)
	}
	if !cfg.Ontology.ImportOnStart {
		t.Error("expected import on start by default")
	}
	if cfg.Metrics.Addr != "" {
		t.Error("expected metrics disabled by default")
	}
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Neo4j.Backend = "postgres" },
			wantErr: true,
		},
		{
			name:    "missing neo4j uri",
			modify:  func(c *Config) { c.Neo4j.URI = "" },
			wantErr: true,
		},
		{
			name:    "memory backend needs no uri",
			modify:  func(c *Config) { c.Neo4j.Backend = BackendMemory; c.Neo4j.URI = "" },
			wantErr: false,
		},
		{
			name:    "unknown transport",
			modify:  func(c *Config) { c.Relay.Transport = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:    "invalid relay url",
			modify:  func(c *Config) { c.Relay.URL = "not a url" },
			wantErr: true,
		},
		{
			name:    "nats without url",
			modify:  func(c *Config) { c.Relay.Transport = TransportNATS; c.Relay.NATS.URL = "" },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			modify:  func(c *Config) { c.Relay.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "relay disabled ignores relay settings",
			modify:  func(c *Config) { c.Relay.Transport = TransportNone; c.Relay.URL = ""; c.Relay.PollInterval = 0 },
			wantErr: false,
		},
		{
			name:    "missing ontology iri",
			modify:  func(c *Config) { c.Ontology.IRI = "" },
			wantErr: true,
		},
		{
			name:    "zero failure threshold",
			modify:  func(c *Config) { c.Health.FailureThreshold = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("ONTOSYNC_TEST_PASSWORD", "s3cret")

	content := `
neo4j:
  uri: "bolt://graph:7687"
  password: "${ONTOSYNC_TEST_PASSWORD}"
  database: "${ONTOSYNC_TEST_DATABASE:-ontologies}"
relay:
  transport: nats
  poll_interval: 500ms
  nats:
    url: "nats://broker:4222"
ontology:
  iri: "http://example.org/pizza"
  import_on_start: false
metrics:
  addr: ":9090"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username, "unset keys keep their defaults")
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
	assert.Equal(t, "ontologies", cfg.Neo4j.Database)
	assert.Equal(t, TransportNATS, cfg.Relay.Transport)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.PollInterval)
	assert.Equal(t, "nats://broker:4222", cfg.Relay.NATS.URL)
	assert.Equal(t, "ONTOSYNC_MAILBOX", cfg.Relay.NATS.Stream)
	assert.Equal(t, "http://example.org/pizza", cfg.Ontology.IRI)
	assert.False(t, cfg.Ontology.ImportOnStart)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("neo4j: [unterminated"), 0644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Neo4j: Neo4jConfig{URI: "bolt://other:7687"},
		Relay: RelayConfig{QueueSize: 8},
	}

	base.Merge(override)
	base.Merge(nil)

	assert.Equal(t, "bolt://other:7687", base.Neo4j.URI)
	assert.Equal(t, "neo4j", base.Neo4j.Database, "unset fields keep their value")
	assert.Equal(t, 8, base.Relay.QueueSize)
	assert.Equal(t, 3*time.Second, base.Relay.PollInterval)
}

func TestConfigSaveToFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Ontology.IRI = "http://example.org/saved"
	require.NoError(t, cfg.SaveToFile(configPath))

	loaded, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExpandEnvWithDefaults(t *testing.T) {
	t.Setenv("ONTOSYNC_HOST", "graph.prod")
	t.Setenv("ONTOSYNC_EMPTY", "")

	tests := []struct {
		input    string
		expected string
	}{
		{`neo4j://${ONTOSYNC_HOST:-localhost}:7687`, `neo4j://graph.prod:7687`},
		{`neo4j://${ONTOSYNC_UNSET_HOST:-localhost}:${ONTOSYNC_UNSET_PORT:-7687}`, `neo4j://localhost:7687`},
		{`${ONTOSYNC_EMPTY:-fallback}`, `fallback`},
		{`prefix${ONTOSYNC_UNSET:-}suffix`, `prefixsuffix`},
		{`${ONTOSYNC_HOST}`, `graph.prod`},
		{`${ONTOSYNC_UNSET}`, ``},
		{`$ONTOSYNC_HOST stays`, `$ONTOSYNC_HOST stays`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExpandEnvWithDefaults(tt.input), "input %s", tt.input)
	}
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte("neo4j:\n  username: alice\n  password: user-pw\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile),
		[]byte("neo4j:\n  password: project-pw\nrelay:\n  transport: none\n"), 0644))

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("ontology:\n  iri: http://example.org/explicit\n"), 0644))

	l := NewLoader(nil)
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return nested, nil }

	cfg, err := l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Neo4j.Username, "user layer")
	assert.Equal(t, "project-pw", cfg.Neo4j.Password, "project layer overrides user layer")
	assert.Equal(t, TransportNone, cfg.Relay.Transport)
	assert.Equal(t, "http://example.org/explicit", cfg.Ontology.IRI, "explicit file is applied last")
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI, "defaults fill the rest")
}

func TestLoader_InvalidResult(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte("neo4j:\n  backend: sqlite\n"), 0644))

	l := NewLoader(nil)
	l.homeDir = func() (string, error) { return t.TempDir(), nil }
	l.workDir = func() (string, error) { return dir, nil }

	_, err := l.Load("")
	assert.Error(t, err)
}

func TestLoader_EnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := NewLoader(nil)
	l.homeDir = func() (string, error) { return home, nil }

	path, err := l.EnsureUserConfig()
	require.NoError(t, err)
	assert.FileExists(t, path)

	again, err := l.EnsureUserConfig()
	require.NoError(t, err)
	assert.Equal(t, path, again)
}
