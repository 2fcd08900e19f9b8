package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment.
// Every key can be overridden with XFETCH_<SECTION>_<KEY>, e.g. XFETCH_VIDEO_TIMEOUT=15m.
func LoadConfig(configPath string) (*domain.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.x-fetch")
		v.AddConfigPath("/etc/x-fetch")
	}

	v.SetEnvPrefix("XFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about
	for key, value := range flattenConfig(domain.DefaultConfig()) {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// flattenConfig renders config as dotted viper keys
func flattenConfig(config *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":              config.Server.Host,
		"server.port":              config.Server.Port,
		"server.allowed_origins":   config.Server.AllowedOrigins,
		"workspace.dir":            config.Workspace.Dir,
		"workspace.logs_dir":       config.Workspace.LogsDir,
		"workspace.artifact_ttl":   config.Workspace.ArtifactTTL.String(),
		"workspace.sweep_interval": config.Workspace.SweepInterval.String(),
		"video.binary":             config.Video.Binary,
		"video.format":             config.Video.Format,
		"video.merge_format":       config.Video.MergeFormat,
		"video.timeout":            config.Video.Timeout.String(),
		"images.binary":            config.Images.Binary,
		"images.filename_template": config.Images.FilenameTemplate,
		"images.timeout":           config.Images.Timeout.String(),
		"registry.database_path":   config.Registry.DatabasePath,
		"notification.enabled":     config.Notification.Enabled,
		"notification.method":      config.Notification.Method,
		"logging.level":            config.Logging.Level,
		"logging.format":           config.Logging.Format,
		"logging.output_path":      config.Logging.OutputPath,
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Workspace.Dir = expandPath(config.Workspace.Dir)
	config.Workspace.LogsDir = expandPath(config.Workspace.LogsDir)

	// SQLite DSNs such as file::memory: are not paths
	if !strings.HasPrefix(config.Registry.DatabasePath, "file:") {
		config.Registry.DatabasePath = expandPath(config.Registry.DatabasePath)
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// $HOME first so it resolves even where the variable is unset
	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Workspace.Dir == "" {
		return fmt.Errorf("workspace directory not configured")
	}

	if config.Workspace.ArtifactTTL <= 0 {
		return fmt.Errorf("artifact ttl must be positive")
	}

	if config.Workspace.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}

	if config.Video.Binary == "" {
		return fmt.Errorf("video binary not configured")
	}

	if config.Images.Binary == "" {
		return fmt.Errorf("images binary not configured")
	}

	if config.Video.Timeout < 0 || config.Images.Timeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if config.Registry.DatabasePath == "" {
		return fmt.Errorf("registry database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range flattenConfig(config) {
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
