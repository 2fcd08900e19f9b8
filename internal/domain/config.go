package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Workspace    WorkspaceConfig    `mapstructure:"workspace"`
	Video        VideoConfig        `mapstructure:"video"`
	Images       ImagesConfig       `mapstructure:"images"`
	Registry     RegistryConfig     `mapstructure:"registry"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// AllowedOrigins are the cross-origin callers, e.g. a browser extension.
	// The bundled page is same-origin and needs no entry.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// WorkspaceConfig describes where transient artifacts live and how long they may linger
type WorkspaceConfig struct {
	Dir           string        `mapstructure:"dir"`
	LogsDir       string        `mapstructure:"logs_dir"`
	ArtifactTTL   time.Duration `mapstructure:"artifact_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// VideoConfig contains yt-dlp configuration
type VideoConfig struct {
	Binary      string        `mapstructure:"binary"`
	Format      string        `mapstructure:"format"`
	MergeFormat string        `mapstructure:"merge_format"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ImagesConfig contains gallery-dl configuration
type ImagesConfig struct {
	Binary           string        `mapstructure:"binary"`
	FilenameTemplate string        `mapstructure:"filename_template"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// RegistryConfig contains artifact registry configuration
type RegistryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains desktop notification configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// Video format selector, strongest preference first.
const DefaultVideoFormat = "bestvideo[ext=mp4][vcodec^=avc1]+bestaudio[ext=m4a]/" +
	"bestvideo[ext=mp4]+bestaudio[ext=m4a]/" +
	"bestvideo+bestaudio/" +
	"best"

// DefaultImageFilenameTemplate names gallery-dl output by category, post id and sequence.
const DefaultImageFilenameTemplate = "{category}_{tweet_id}_{num}.{extension}"

// DefaultImageTimeout bounds a single gallery-dl invocation.
const DefaultImageTimeout = 120 * time.Second

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			AllowedOrigins: []string{},
		},
		Workspace: WorkspaceConfig{
			Dir:           "$HOME/Downloads/x-fetch/work",
			LogsDir:       "$HOME/Downloads/x-fetch/logs",
			ArtifactTTL:   15 * time.Minute,
			SweepInterval: time.Minute,
		},
		Video: VideoConfig{
			Binary:      "yt-dlp",
			Format:      DefaultVideoFormat,
			MergeFormat: "mp4",
			Timeout:     10 * time.Minute,
		},
		Images: ImagesConfig{
			Binary:           "gallery-dl",
			FilenameTemplate: DefaultImageFilenameTemplate,
			Timeout:          DefaultImageTimeout,
		},
		Registry: RegistryConfig{
			DatabasePath: "file::memory:?cache=shared",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
