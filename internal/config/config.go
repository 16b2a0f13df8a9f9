// Package config reads the global and per-workspace TOML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. CONVERSA_SELF_ID.
const EnvPrefix = "conversa"

// Global represents ~/.conversa/config.toml.
type Global struct {
	DefaultWorkspace string `toml:"default_workspace"`
}

// Duration is a time.Duration written as a string ("2s") in TOML and in the
// environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Workspace represents <workspace>/config.toml.
type Workspace struct {
	SelfID   string `toml:"self_id" envconfig:"self_id"`
	SelfName string `toml:"self_name" envconfig:"self_name"`

	Backend  Backend  `toml:"backend"`
	Storage  Storage  `toml:"storage"`
	Sync     Sync     `toml:"sync"`
	Presence Presence `toml:"presence"`
	Composer Composer `toml:"composer"`
	Overlay  Overlay  `toml:"overlay"`
	Display  Display  `toml:"display"`

	MetricsAddr string `toml:"metrics_addr" envconfig:"metrics_addr"`
}

type Backend struct {
	// DBPath defaults to chat.db inside the workspace directory.
	DBPath string `toml:"db_path" envconfig:"db_path"`
}

type Storage struct {
	// Driver is local or s3.
	Driver  string `toml:"driver" envconfig:"driver"`
	BaseURL string `toml:"base_url" envconfig:"base_url"`

	S3 S3 `toml:"s3"`
}

type S3 struct {
	Bucket          string `toml:"bucket" envconfig:"bucket"`
	Region          string `toml:"region" envconfig:"region"`
	Endpoint        string `toml:"endpoint" envconfig:"endpoint"`
	AccessKeyID     string `toml:"access_key_id" envconfig:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key" envconfig:"secret_access_key"`
	PathStyle       bool   `toml:"path_style" envconfig:"path_style"`
	PublicBaseURL   string `toml:"public_base_url" envconfig:"public_base_url"`
}

type Sync struct {
	// Mode is poll, realtime or both.
	Mode     string   `toml:"mode" envconfig:"mode"`
	Interval Duration `toml:"interval" envconfig:"interval"`
	Unscoped bool     `toml:"unscoped" envconfig:"unscoped"`
}

type Presence struct {
	IdleTimeout Duration `toml:"idle_timeout" envconfig:"idle_timeout"`
	Rewrite     Duration `toml:"rewrite" envconfig:"rewrite"`
	Refresh     Duration `toml:"refresh" envconfig:"refresh"`
}

type Composer struct {
	MaxUploadBytes int64  `toml:"max_upload_bytes" envconfig:"max_upload_bytes"`
	RecorderMIME   string `toml:"recorder_mime" envconfig:"recorder_mime"`
}

type Overlay struct {
	LongPress  Duration `toml:"long_press" envconfig:"long_press"`
	CloseDelay Duration `toml:"close_delay" envconfig:"close_delay"`
	Highlight  Duration `toml:"highlight" envconfig:"highlight"`
}

type Display struct {
	Locale   string `toml:"locale" envconfig:"locale"`
	Timezone string `toml:"timezone" envconfig:"timezone"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Workspace {
	return Workspace{
		SelfID:   "me",
		SelfName: "Eu",
		Storage:  Storage{Driver: "local"},
		Sync:     Sync{Mode: "both", Interval: Duration{2 * time.Second}},
		Presence: Presence{
			IdleTimeout: Duration{2 * time.Second},
			Rewrite:     Duration{time.Second},
		},
		Composer: Composer{MaxUploadBytes: 50 << 20, RecorderMIME: "audio/webm"},
		Overlay: Overlay{
			LongPress:  Duration{500 * time.Millisecond},
			CloseDelay: Duration{200 * time.Millisecond},
			Highlight:  Duration{1500 * time.Millisecond},
		},
		Display: Display{Locale: "pt-BR"},
	}
}

// Location resolves Display.Timezone. Empty means the local zone.
func (w *Workspace) Location() (*time.Location, error) {
	if w.Display.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(w.Display.Timezone)
}

// Validate checks values the daemon cannot start with.
func (w *Workspace) Validate() error {
	if w.SelfID == "" {
		return errors.New("self_id is required")
	}
	switch w.Storage.Driver {
	case "local":
	case "s3":
		if w.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", w.Storage.Driver)
	}
	switch w.Sync.Mode {
	case "poll", "realtime", "both":
	default:
		return fmt.Errorf("unknown sync mode %q", w.Sync.Mode)
	}
	if w.Composer.MaxUploadBytes <= 0 {
		return errors.New("composer.max_upload_bytes must be positive")
	}
	if _, err := w.Location(); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	return nil
}

// Load reads the global config from the given path. Returns error if the file is missing.
func Load(path string) (*Global, error) {
	var cfg Global
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the global config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Global) error {
	return writeTOML(path, cfg)
}

// LoadWorkspace layers the file at path, when present, and then CONVERSA_
// environment variables over Defaults.
func LoadWorkspace(path string) (*Workspace, error) {
	cfg := Defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWorkspace writes a workspace config.
func SaveWorkspace(path string, cfg *Workspace) error {
	return writeTOML(path, cfg)
}

func writeTOML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(v)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
