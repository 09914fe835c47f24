package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Model    ModelConfig  `mapstructure:"model"`
	Paths    PathsConfig  `mapstructure:"paths"`
	Engine   EngineConfig `mapstructure:"engine"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type ModelConfig struct {
	Size string `mapstructure:"size"`
	Lang string `mapstructure:"lang"`
}

type PathsConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type EngineConfig struct {
	Backend   string `mapstructure:"backend"`
	CLIPath   string `mapstructure:"cli_path"`
	Threads   int    `mapstructure:"threads"`
	Language  string `mapstructure:"language"`
	Translate bool   `mapstructure:"translate"`
}

type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	Workers        int    `mapstructure:"workers"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Model: ModelConfig{
			Size: "tiny",
			Lang: "en",
		},
		Paths: PathsConfig{
			DataDir: defaultDataDir(),
		},
		Engine: EngineConfig{
			Backend:   BackendAuto,
			CLIPath:   "whisper-cli",
			Threads:   0,
			Language:  "auto",
			Translate: false,
		},
		Server: ServerConfig{
			ListenAddr:     ":8090",
			RequestTimeout: 300,
			MaxUploadBytes: 64 << 20,
			Workers:        1,
		},
		LogLevel: "info",
	}
}

// defaultDataDir resolves ~/.whisperctl, falling back to a relative directory
// when the home directory cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".whisperctl"
	}
	return filepath.Join(home, ".whisperctl")
}

// ModelsDir returns the directory where model artifacts are stored.
func (c Config) ModelsDir() string {
	return filepath.Join(c.Paths.DataDir, "models")
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("model-size", defaults.Model.Size, "Whisper model size (tiny|base|small|medium|large-v3)")
	fs.String("model-lang", defaults.Model.Lang, "Model language tag (en for English-only, empty for multilingual)")
	fs.String("paths-data-dir", defaults.Paths.DataDir, "Application data directory")
	fs.String("engine-backend", defaults.Engine.Backend, "Transcription backend (auto|native|cli|stub)")
	fs.String("engine-cli-path", defaults.Engine.CLIPath, "Path to whisper.cpp CLI executable")
	fs.Int("engine-threads", defaults.Engine.Threads, "Decoder thread count (0 = all CPUs)")
	fs.String("engine-language", defaults.Engine.Language, "Spoken language hint passed to the decoder")
	fs.Bool("engine-translate", defaults.Engine.Translate, "Translate non-English speech to English")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address for serve")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request transcription deadline in seconds")
	fs.Int64("server-max-upload-bytes", defaults.Server.MaxUploadBytes, "Maximum accepted audio upload size")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent transcriptions served")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("WHISPERCTL")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("whisperctl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("model.size", c.Model.Size)
	v.SetDefault("model.lang", c.Model.Lang)
	v.SetDefault("paths.data_dir", c.Paths.DataDir)
	v.SetDefault("engine.backend", c.Engine.Backend)
	v.SetDefault("engine.cli_path", c.Engine.CLIPath)
	v.SetDefault("engine.threads", c.Engine.Threads)
	v.SetDefault("engine.language", c.Engine.Language)
	v.SetDefault("engine.translate", c.Engine.Translate)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.max_upload_bytes", c.Server.MaxUploadBytes)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("model.size", "model-size")
	v.RegisterAlias("model.lang", "model-lang")
	v.RegisterAlias("paths.data_dir", "paths-data-dir")
	v.RegisterAlias("engine.backend", "engine-backend")
	v.RegisterAlias("engine.cli_path", "engine-cli-path")
	v.RegisterAlias("engine.threads", "engine-threads")
	v.RegisterAlias("engine.language", "engine-language")
	v.RegisterAlias("engine.translate", "engine-translate")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.max_upload_bytes", "server-max-upload-bytes")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("log_level", "log-level")
}
