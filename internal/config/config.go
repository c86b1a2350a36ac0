package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr  = ":3000"
	DefaultEnvironment = "development"
)

type AuditConfig struct {
	// Secret keys the HMAC of every chain digest. It is process-wide
	// configuration and never derived from entry content.
	Secret string `mapstructure:"secret"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type Config struct {
	Debug        bool        `mapstructure:"debug"`
	Environment  string      `mapstructure:"environment"`
	ListenAddr   string      `mapstructure:"listenAddr"`
	AllowOrigins []string    `mapstructure:"allowOrigins"`
	Audit        AuditConfig `mapstructure:"audit"`
	JWT          JWTConfig   `mapstructure:"jwt"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.Audit.Secret == "" {
		return errors.New("missing audit hash secret")
	}
	if c.JWT.Secret == "" {
		return errors.New("missing jwt secret")
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
