package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CPI"

// ConfigFileEnv names the variable that points at an explicit config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Tree      TreeConfig      `yaml:"tree" envconfig:"TREE"`
	Splice    SpliceConfig    `yaml:"splice" envconfig:"SPLICE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/cpikit.log" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs" validate:"required"`
}

// TreeConfig describes the classification hierarchy of the base workbooks.
type TreeConfig struct {
	// Characters are the code prefix lengths of each depth, item level last.
	Characters []int  `yaml:"characters" envconfig:"CHARACTERS" default:"3,4,5,6,8" validate:"min=2,ascending,dive,gt=0"`
	RootCode   string `yaml:"root_code" envconfig:"ROOT_CODE" default:"_0" validate:"required"`
	RootName   string `yaml:"root_name" envconfig:"ROOT_NAME" default:"All items" validate:"required"`
	// Workers bounds the goroutines computing child indices.
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"4" validate:"gte=1,lte=64"`
}

// SpliceConfig holds defaults for splice evaluations.
type SpliceConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE" default:"mom" validate:"oneof=mom index yoy"`
}

// TelemetryConfig controls the OpenTelemetry providers.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"cpikit" validate:"required"`
	// MetricsFile receives the Prometheus text dump at exit when set.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceStdout bool   `yaml:"trace_stdout" envconfig:"TRACE_STDOUT" default:"false"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Values from the file apply where no variable was set
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	override(&envConfig.Logging.Level, fileConfig.Logging.Level, "LOGGING_LEVEL")
	override(&envConfig.Logging.Format, fileConfig.Logging.Format, "LOGGING_FORMAT")
	override(&envConfig.Logging.Output, fileConfig.Logging.Output, "LOGGING_OUTPUT")
	override(&envConfig.Logging.FilePath, fileConfig.Logging.FilePath, "LOGGING_FILE_PATH")

	override(&envConfig.Paths.DataDir, fileConfig.Paths.DataDir, "PATHS_DATA_DIR")
	override(&envConfig.Paths.ReportsDir, fileConfig.Paths.ReportsDir, "PATHS_REPORTS_DIR")
	override(&envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir, "PATHS_LOGS_DIR")

	if len(fileConfig.Tree.Characters) > 0 && !envSet("TREE_CHARACTERS") {
		envConfig.Tree.Characters = fileConfig.Tree.Characters
	}
	override(&envConfig.Tree.RootCode, fileConfig.Tree.RootCode, "TREE_ROOT_CODE")
	override(&envConfig.Tree.RootName, fileConfig.Tree.RootName, "TREE_ROOT_NAME")
	override(&envConfig.Tree.Workers, fileConfig.Tree.Workers, "TREE_WORKERS")

	override(&envConfig.Splice.Mode, fileConfig.Splice.Mode, "SPLICE_MODE")

	override(&envConfig.Telemetry.ServiceName, fileConfig.Telemetry.ServiceName, "TELEMETRY_SERVICE_NAME")
	override(&envConfig.Telemetry.MetricsFile, fileConfig.Telemetry.MetricsFile, "TELEMETRY_METRICS_FILE")
	override(&envConfig.Telemetry.TraceStdout, fileConfig.Telemetry.TraceStdout, "TELEMETRY_TRACE_STDOUT")

	return envConfig
}

// override copies a non-zero file value unless the variable key is set.
func override[T comparable](dst *T, file T, key string) {
	var zero T
	if file == zero || envSet(key) {
		return
	}
	*dst = file
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("ascending", isAscending); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// isAscending accepts int slices whose values strictly increase.
func isAscending(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().([]int)
	if !ok {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return false
		}
	}
	return true
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	// Check for config file in common locations
	locations := []string{
		"cpikit.yaml",
		"configs/cpikit.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/cpikit.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
		Tree: TreeConfig{
			Characters: []int{3, 4, 5, 6, 8},
			RootCode:   "_0",
			RootName:   "All items",
			Workers:    4,
		},
		Splice: SpliceConfig{
			Mode: "mom",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "cpikit",
		},
	}
}
