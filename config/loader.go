package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "ontosync.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/ontosync"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir func() (string, error)
	workDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, homeDir: os.UserHomeDir, workDir: os.Getwd}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/ontosync/config.yaml)
// 3. Project config (ontosync.yaml in current or parent directories)
// 4. Explicit file, when path is not empty
//
// Each layer only overrides the keys it sets.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if err := config.decodeFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if err := config.decodeFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if path != "" {
		if err := config.decodeFile(path); err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config file", slog.String("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", errors.New("cannot determine home directory")
	}

	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for ontosync.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.workDir()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
