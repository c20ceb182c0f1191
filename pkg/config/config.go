package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting for the server.
type Config struct {
	Port        string `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	PostgresURL string `mapstructure:"postgres_url"`
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDB     string `mapstructure:"mongo_db"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		AWSRegion string `mapstructure:"aws_region"`
		From      string `mapstructure:"from"`
	} `mapstructure:"email"`

	FirebaseCredentialsPath string `mapstructure:"firebase_credentials_path"`
}

// Load reads configuration from config.yaml (when present), .env and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is fine; env vars may already be set.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("port", "8080")
	viper.SetDefault("env", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("mongo_db", "platewise")
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.aws_region", "us-east-1")
	viper.SetDefault("email.from", "noreply@platewise.app")
}
