package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override values from the config file
	ENV_LOG_LEVEL = "COLCALC_LOG_LEVEL"
	ENV_SEQ_URL   = "COLCALC_SEQ_URL"
	ENV_WORKERS   = "COLCALC_WORKERS"
)

type LoggingConfig struct {
	LogLevel        string `json:"log_level" yaml:"log_level"`
	IncludeSrc      bool   `json:"include_src" yaml:"include_src"`
	LogToFile       bool   `json:"log_to_file" yaml:"log_to_file"`
	Filename        string `json:"filename" yaml:"filename"`
	MaxSize         int    `json:"max_size" yaml:"max_size"`
	MaxAge          int    `json:"max_age" yaml:"max_age"`
	MaxBackups      int    `json:"max_backups" yaml:"max_backups"`
	CompressOldLogs bool   `json:"compress_old_logs" yaml:"compress_old_logs"`
	SeqURL          string `json:"seq_url" yaml:"seq_url"` // empty disables the Seq sink
}

type EngineConfig struct {
	ResultKey     string `json:"result_key" yaml:"result_key"`
	FailureMarker string `json:"failure_marker" yaml:"failure_marker"`
	Workers       int    `json:"workers" yaml:"workers"` // 1 = sequential, 0 = one per CPU
}

type StorageConfig struct {
	Charset string `json:"charset" yaml:"charset"`
}

type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

type Config struct {
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			LogLevel:   "info",
			Filename:   "colcalc.log",
			MaxSize:    10,
			MaxAge:     28,
			MaxBackups: 3,
		},
		Engine: EngineConfig{
			ResultKey:     "result",
			FailureMarker: "Error",
			Workers:       0,
		},
		Storage: StorageConfig{
			Charset: "utf-8",
		},
		Server: ServerConfig{
			Port: 4444,
		},
	}
}

// Load reads the YAML file at path on top of Default(). An empty path falls
// back to $CONFIG_FILE_PATH; if that is empty too, defaults are used.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	conf := Default()

	if path == "" {
		path = os.Getenv(ENV_CONFIG_FILE_PATH)
	}
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return conf, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(yamlFile, &conf); err != nil {
			return conf, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&conf); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

func applyEnv(conf *Config) error {
	if v := os.Getenv(ENV_LOG_LEVEL); v != "" {
		conf.Logging.LogLevel = v
	}
	if v := os.Getenv(ENV_SEQ_URL); v != "" {
		conf.Logging.SeqURL = v
	}
	if v := os.Getenv(ENV_WORKERS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", ENV_WORKERS, err)
		}
		conf.Engine.Workers = n
	}
	return nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must be >= 0, got %d", c.Engine.Workers)
	}
	if c.Engine.ResultKey == "" {
		return fmt.Errorf("engine.result_key must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Logging.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.log_level %q", c.Logging.LogLevel)
	}
	return nil
}
