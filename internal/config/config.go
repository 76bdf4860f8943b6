package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/bridge"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "eghact"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "EGHACT"

	// DefaultModulePath is the accelerated module looked up when the bridge
	// is enabled without a path.
	DefaultModulePath = "eghact_core.wasm"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// configExts are the supported file extensions, in lookup order.
var configExts = []string{".yaml", ".yml", ".json"}

// Config is the engine configuration.
type Config struct {
	// Debug enables hook order checks and debug logging.
	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// Bridge selects the accelerated backend.
	Bridge bridge.Config `mapstructure:"bridge" json:"bridge" yaml:"bridge"`

	// Devtools configures the inspector server.
	Devtools DevtoolsConfig `mapstructure:"devtools" json:"devtools" yaml:"devtools"`

	// Log configures logging.
	Log LogConfig `mapstructure:"log" json:"log" yaml:"log"`

	// configPath is the file the config was loaded from.
	configPath string
}

// DevtoolsConfig configures the devtools server.
type DevtoolsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" json:"addr" yaml:"addr"`
}

// LogConfig configures the logger built by Config.Logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// New returns a configuration with defaults.
func New() *Config {
	return &Config{
		Bridge: bridge.Config{
			ModulePath: DefaultModulePath,
		},
		Devtools: DevtoolsConfig{
			Addr: DefaultDevtoolsAddr,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// newViper returns a viper instance with defaults and environment
// overrides. Every key has a default so AutomaticEnv applies to Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	d := New()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("bridge.enabled", d.Bridge.Enabled)
	v.SetDefault("bridge.module_path", d.Bridge.ModulePath)
	v.SetDefault("devtools.enabled", d.Devtools.Enabled)
	v.SetDefault("devtools.addr", d.Devtools.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file in dir. A missing file is not an error:
// defaults and environment overrides are returned.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return decode(newViper(), "")
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path. The format follows the
// extension.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithSubject(path).
				WithDetail("The configuration file does not exist.").
				Wrap(err)
		}
		return nil, errors.New(errors.CodeConfigInvalid).WithSubject(path).Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithSubject(path).
			WithSuggestion("Check that the file is valid " + strings.TrimPrefix(filepath.Ext(path), ".")).
			Wrap(err)
	}
	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).WithSubject(path).Wrap(err)
	}
	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// find returns the first configuration file in dir.
func find(dir string) (string, bool) {
	for _, ext := range configExts {
		path := filepath.Join(dir, ConfigName+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether dir holds a configuration file.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigInvalid).
				WithSubject(startDir).
				WithDetail("No eghact.yaml or eghact.json found in this directory or any parent.")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the configuration of the enclosing project, or
// defaults when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return Load(wd)
	}
	return Load(root)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("log.level").
			WithSuggestion("Use debug, info, warn or error").
			Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("log.format").
			WithDetail("Unknown log format " + c.Log.Format + ".").
			WithSuggestion("Use text or json")
	}
	if c.Bridge.Enabled && c.Bridge.ModulePath == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithSubject("bridge.module_path").
			WithDetail("The bridge is enabled but no module path is set.")
	}
	if c.Devtools.Enabled {
		if _, _, err := net.SplitHostPort(c.Devtools.Addr); err != nil {
			return errors.New(errors.CodeConfigInvalid).
				WithSubject("devtools.addr").
				Wrap(err)
		}
	}
	return nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory of the configuration file, or ".".
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// BridgeConfig returns the bridge settings with the module path resolved
// against Dir.
func (c *Config) BridgeConfig() bridge.Config {
	b := c.Bridge
	if b.ModulePath != "" && !filepath.IsAbs(b.ModulePath) {
		b.ModulePath = filepath.Join(c.Dir(), b.ModulePath)
	}
	return b
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}

// LogLevel returns the configured level. Debug forces slog.LevelDebug.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	l, err := c.level()
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logger builds a logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Save writes the configuration back to Path.
func (c *Config) Save() error {
	if c.configPath == "" {
		return stderrors.New("config: no file to save to")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path as YAML, or as JSON when path
// ends in .json.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}
