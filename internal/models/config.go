package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider" validate:"omitempty,oneof=s3 gcs"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
	Prefix     string `mapstructure:"prefix"`
}

type ParquetExportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Folder  string `mapstructure:"folder"`
}

type NotificationConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Provider         string `mapstructure:"provider" validate:"omitempty,oneof=kafka pubsub"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
	Topic            string `mapstructure:"topic"`
	ProjectID        string `mapstructure:"project_id"`
}

type DatabaseConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"min=1,max=65535"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	MaxUploadMB        int64    `mapstructure:"max_upload_mb" validate:"min=1"`
}

type Config struct {
	LogLevel  string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=console json"`

	CoercionPolicy         string   `mapstructure:"coercion_policy" validate:"oneof=zero-fill strict"`
	VarianceAlertThreshold float64  `mapstructure:"variance_alert_threshold"`
	ExcludeCourses         []string `mapstructure:"exclude_courses"`
	OutlierQuantile        float64  `mapstructure:"outlier_quantile" validate:"gt=0,lte=1"`

	Organization string  `mapstructure:"organization"`
	Audience     string  `mapstructure:"audience"`
	WeekLabel    string  `mapstructure:"week_label"`
	Venues       []Venue `mapstructure:"venues" validate:"min=1,dive"`

	OutputDir         string `mapstructure:"output_dir"`
	MonthlyFileName   string `mapstructure:"monthly_file_name" validate:"required"`
	WeeklyFileName    string `mapstructure:"weekly_file_name" validate:"required"`
	OutputDestination string `mapstructure:"output_destination" validate:"oneof=local cloud none"`

	CloudStorage  CloudStorageConfig  `mapstructure:"cloud_storage"`
	ParquetExport ParquetExportConfig `mapstructure:"parquet_export"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Server        ServerConfig        `mapstructure:"server"`
}

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("coercion_policy", CoercionZeroFill)
	v.SetDefault("variance_alert_threshold", -0.10)
	v.SetDefault("exclude_courses", []string{})
	v.SetDefault("outlier_quantile", 0.99)
	v.SetDefault("organization", "USC Hospitality")
	v.SetDefault("audience", "Residential (All units)")
	v.SetDefault("week_label", "Week 1")
	v.SetDefault("venues", defaultVenueMaps())
	v.SetDefault("output_dir", ".")
	v.SetDefault("monthly_file_name", "Over_Production_Summary.xlsx")
	v.SetDefault("weekly_file_name", "Weekly_Summary.xlsx")
	v.SetDefault("output_destination", "local")
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("cloud_storage.region", "us-west-2")
	v.SetDefault("cloud_storage.prefix", "reports")
	v.SetDefault("parquet_export.enabled", false)
	v.SetDefault("parquet_export.folder", "exports")
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.provider", "kafka")
	v.SetDefault("notifications.kafka_broker_list", "localhost:9092")
	v.SetDefault("notifications.topic", "report_generated_events")
	v.SetDefault("database.table", "venue_transactions")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 25)
}

func defaultVenueMaps() []map[string]interface{} {
	venues := DefaultVenues()
	out := make([]map[string]interface{}, len(venues))
	for i, v := range venues {
		out[i] = map[string]interface{}{
			"code":         v.Code,
			"sheet":        v.Sheet,
			"title":        v.Title,
			"band_color":   v.BandColor,
			"header_color": v.HeaderColor,
			"data_color":   v.DataColor,
		}
	}
	return out
}

// LoadConfig reads .env, the optional config file and FOODWASTE_* environment
// variables on top of the defaults, then validates the result.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix("FOODWASTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("foodwaste")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the struct tags and the venue list.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Venues))
	for _, v := range cfg.Venues {
		if seen[v.Code] {
			return fmt.Errorf("invalid configuration: venue %q listed twice", v.Code)
		}
		seen[v.Code] = true
	}
	if cfg.OutputDestination == "cloud" && cfg.CloudStorage.BucketName == "" {
		return fmt.Errorf("invalid configuration: cloud_storage.bucket_name is required for cloud output")
	}
	return nil
}

// Venue returns the configured venue with the given code.
func (cfg *Config) Venue(code string) (Venue, bool) {
	for _, v := range cfg.Venues {
		if strings.EqualFold(v.Code, code) {
			return v, true
		}
	}
	return Venue{}, false
}

// DefaultConfig returns the configuration produced by the defaults alone.
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}
