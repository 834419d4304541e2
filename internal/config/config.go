package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type EvalConfig struct {
	MinBidders        int     // opened-bid count below which the sheet carries a warning
	QuantityTolerance float64 // relative quantity drift still matched, 0 = exact
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Eval        EvalConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Eval: EvalConfig{
			MinBidders:        v.GetInt("EVAL_MIN_BIDDERS"),
			QuantityTolerance: v.GetFloat64("EVAL_QTY_TOLERANCE"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7112
	}
	if cfg.Eval.MinBidders == 0 {
		cfg.Eval.MinBidders = 3
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Eval.MinBidders < 1 {
		return fmt.Errorf("EVAL_MIN_BIDDERS must be at least 1")
	}
	if cfg.Eval.QuantityTolerance < 0 {
		return fmt.Errorf("EVAL_QTY_TOLERANCE must not be negative")
	}
	return nil
}
