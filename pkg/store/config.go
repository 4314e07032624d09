package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultPath    = "~/.timebox"
	DefaultServer  = "https://second-thought.krishnarajthadesar.in/api/"
	DefaultTimeout = 30 * time.Second
)

// Config locates the local store and the remote service.
type Config interface {
	BasePath() string
	ExportPath() string
	Server() string
	Timeout() time.Duration
	LogLevel() string
}

// LoadConfig reads .timebox.yaml from $TIMEBOX_CONFIG_PATH or the working
// directory, with TIMEBOX_* environment overrides.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", DefaultPath)
	viper.SetDefault("export", "")
	viper.SetDefault("server", DefaultServer)
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("log-level", "info")
	viper.SetConfigName(".timebox") // .yaml is implicit
	viper.SetEnvPrefix("TIMEBOX")
	viper.AutomaticEnv()

	if override := os.Getenv("TIMEBOX_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	base, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	export, err := homedir.Expand(viper.GetString("export"))
	if err != nil {
		return nil, fmt.Errorf("store: expand export path: %w", err)
	}
	if export == "" {
		export = filepath.Join(base, "export")
	}
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &FileConfig{
		Path:      base,
		Export:    export,
		ServerURL: viper.GetString("server"),
		Wait:      timeout,
		Level:     viper.GetString("log-level"),
	}, nil
}

// FileConfig is a Config with fixed values.
type FileConfig struct {
	Path      string        `json:"path"`
	Export    string        `json:"export"`
	ServerURL string        `json:"server"`
	Wait      time.Duration `json:"timeout"`
	Level     string        `json:"logLevel"`
}

func (f *FileConfig) BasePath() string {
	return f.Path
}

func (f *FileConfig) ExportPath() string {
	if f.Export == "" && f.Path != "" {
		return filepath.Join(f.Path, "export")
	}
	return f.Export
}

func (f *FileConfig) Server() string {
	if f.ServerURL == "" {
		return DefaultServer
	}
	return f.ServerURL
}

func (f *FileConfig) Timeout() time.Duration {
	if f.Wait <= 0 {
		return DefaultTimeout
	}
	return f.Wait
}

func (f *FileConfig) LogLevel() string {
	if f.Level == "" {
		return "info"
	}
	return f.Level
}
