package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up next to the library.
const FileName = "advboats.cfg.json"

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
}

// FleetConfig holds fleet stepping settings.
type FleetConfig struct {
	Workers           int `json:"workers" mapstructure:"workers"`
	ParallelThreshold int `json:"parallelThreshold" mapstructure:"parallelThreshold"`
}

// TraceConfig holds step trace settings.
type TraceConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// LoadDefaults sets default values only, for hosts that ship no config file.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./advboatslogs")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "advboats")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("fleet.workers", 0)
	viper.SetDefault("fleet.parallelThreshold", 64)

	viper.SetDefault("trace.enabled", false)
	viper.SetDefault("trace.outputDir", "./advboatstraces")
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}

// GetFleetConfig returns the fleet stepping settings.
func GetFleetConfig() FleetConfig {
	return FleetConfig{
		Workers:           viper.GetInt("fleet.workers"),
		ParallelThreshold: viper.GetInt("fleet.parallelThreshold"),
	}
}

// GetTraceConfig returns the step trace settings.
func GetTraceConfig() TraceConfig {
	return TraceConfig{
		Enabled:   viper.GetBool("trace.enabled"),
		OutputDir: viper.GetString("trace.outputDir"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
