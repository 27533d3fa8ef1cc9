// Package config loads runtime settings from flags, the environment and an
// optional .env file. The work/rest timings are fixed and not part of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BREAKTIME_LOG_LEVEL.
const EnvPrefix = "BREAKTIME"

const (
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeyAppName       = "app-name"
	KeyIconDir       = "icon-dir"
	KeySoundDir      = "sound-dir"
	KeySoundCommand  = "sound-command"
	KeyMute          = "mute"
	KeyNotifyRetries = "notify-retries"
	KeyNotifyTimeout = "notify-timeout"
	KeySoundTimeout  = "sound-timeout"
)

const (
	DefaultAppName  = "breaktime"
	DefaultSoundDir = "/usr/share/sounds/freedesktop/stereo"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds runtime settings.
type Config struct {
	LogLevel      string
	LogFormat     string
	AppName       string
	IconDir       string // empty means the user cache directory
	SoundDir      string
	SoundCommand  string
	Mute          bool
	NotifyRetries int
	NotifyTimeout time.Duration
	SoundTimeout  time.Duration
}

// BindFlags registers every setting on flags and binds it into v.
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.String(KeyLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(KeyLogFormat, "text", "log format (text, json)")
	flags.String(KeyAppName, DefaultAppName, "application name shown by the notification server")
	flags.String(KeyIconDir, "", "directory for the notification icon (default: user cache dir)")
	flags.String(KeySoundDir, DefaultSoundDir, "directory holding freedesktop theme sounds")
	flags.String(KeySoundCommand, "", "custom sound command, {file} is replaced with the sound file")
	flags.Bool(KeyMute, false, "never play sounds")
	flags.Int(KeyNotifyRetries, 5, "attempts to reach the notification server at startup")
	flags.Duration(KeyNotifyTimeout, 5*time.Second, "timeout for a single notification call")
	flags.Duration(KeySoundTimeout, 5*time.Second, "timeout for a single sound attempt")

	return v.BindPFlags(flags)
}

// Load reads settings from v after applying environment overrides and an
// optional .env file from the working directory.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		LogLevel:      strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:     strings.ToLower(v.GetString(KeyLogFormat)),
		AppName:       v.GetString(KeyAppName),
		IconDir:       v.GetString(KeyIconDir),
		SoundDir:      v.GetString(KeySoundDir),
		SoundCommand:  v.GetString(KeySoundCommand),
		Mute:          v.GetBool(KeyMute),
		NotifyRetries: v.GetInt(KeyNotifyRetries),
		NotifyTimeout: v.GetDuration(KeyNotifyTimeout),
		SoundTimeout:  v.GetDuration(KeySoundTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}

	if c.AppName == "" {
		return fmt.Errorf("%w: app name must not be empty", ErrInvalid)
	}
	if c.NotifyRetries < 1 {
		return fmt.Errorf("%w: notify retries must be at least 1, got %d", ErrInvalid, c.NotifyRetries)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("%w: notify timeout must be positive, got %s", ErrInvalid, c.NotifyTimeout)
	}
	if c.SoundTimeout <= 0 {
		return fmt.Errorf("%w: sound timeout must be positive, got %s", ErrInvalid, c.SoundTimeout)
	}
	return nil
}
