package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	}
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	Admin AdminConfig `mapstructure:"admin"`
}

// JWTConfig holds the token signing parameters. It is passed explicitly into
// the token issuer at construction time; core logic never reads the
// environment on its own.
type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	Issuer    string        `mapstructure:"issuer"`
}

// AdminConfig holds the default admin credentials reconciled at startup.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides lets the environment take precedence over file/embedded
// values. A missing variable keeps the fixed default, which is permissive on
// purpose for local development.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.JWT.SecretKey = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		config.Admin.Email = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		config.Admin.Password = v
	}
	if v := os.Getenv("ADMIN_NAME"); v != "" {
		config.Admin.Name = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.HTTPPort = v
	}
}
