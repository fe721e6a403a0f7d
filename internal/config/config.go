package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is everything the daemon needs at startup. Values come from an
// optional config.yaml plus QUIZVAULT_* environment overrides; defaults
// are tuned for the single-user local case.
type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	DBDriver string `mapstructure:"db_driver"` // sqlite|postgres
	DBDSN    string `mapstructure:"db_dsn"`

	BlobBasePath string `mapstructure:"blob_base_path"`

	LogPath  string `mapstructure:"log_path"`
	LogDebug bool   `mapstructure:"log_debug"`

	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Load reads config from path (a directory holding config.yaml; optional)
// and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUIZVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("blob_base_path", "./data")
	v.SetDefault("log_path", "logs/quizvaultd.log")
	v.SetDefault("log_debug", false)
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		// No file is fine; defaults plus env carry a local run.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
