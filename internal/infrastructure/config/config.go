package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	RuntimeHTTP   = "http"
	RuntimeLambda = "lambda"

	defaultPort            = "8080"
	defaultAuditBufferSize = 1024
)

type Config struct {
	Port            string `yaml:"port"`
	TableName       string `yaml:"table_name"`
	Region          string `yaml:"aws_region"`
	AuthMode        string `yaml:"auth_mode"`
	JWTSigningKey   string `yaml:"jwt_signing_key"`
	UserPoolID      string `yaml:"cognito_user_pool_id"`
	LogLevel        string `yaml:"log_level"`
	AuditBufferSize int    `yaml:"audit_buffer_size"`
	Runtime         string `yaml:"runtime"`
}

// Load reads the optional YAML file named by CONFIG_FILE, then applies
// environment overrides and defaults, then validates.
func Load(getenv func(string) string) (Config, error) {
	var cfg Config
	if path := getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	override(&cfg.Port, getenv("PORT"))
	override(&cfg.TableName, getenv("TABLE_NAME"))
	override(&cfg.Region, getenv("AWS_REGION"))
	override(&cfg.AuthMode, getenv("AUTH_MODE"))
	override(&cfg.JWTSigningKey, getenv("JWT_SIGNING_KEY"))
	override(&cfg.UserPoolID, getenv("COGNITO_USER_POOL_ID"))
	override(&cfg.LogLevel, getenv("LOG_LEVEL"))
	override(&cfg.Runtime, getenv("RUNTIME"))
	if raw := getenv("AUDIT_BUFFER_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("AUDIT_BUFFER_SIZE: %w", err)
		}
		cfg.AuditBufferSize = n
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = "none"
	}
	if cfg.Runtime == "" {
		cfg.Runtime = RuntimeHTTP
	}
	if cfg.AuditBufferSize == 0 {
		cfg.AuditBufferSize = defaultAuditBufferSize
	}
	cfg.AuthMode = strings.ToLower(cfg.AuthMode)
	cfg.Runtime = strings.ToLower(cfg.Runtime)

	return cfg, cfg.Validate()
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.TableName == "" {
		errs = append(errs, errors.New("TABLE_NAME is required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("AWS_REGION is required"))
	}
	switch c.AuthMode {
	case "none":
	case "jwt":
		if c.JWTSigningKey == "" {
			errs = append(errs, errors.New("JWT_SIGNING_KEY is required for jwt auth mode"))
		}
	case "cognito":
		if c.UserPoolID == "" {
			errs = append(errs, errors.New("COGNITO_USER_POOL_ID is required for cognito auth mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid AUTH_MODE %q", c.AuthMode))
	}
	if c.Runtime != RuntimeHTTP && c.Runtime != RuntimeLambda {
		errs = append(errs, fmt.Errorf("invalid RUNTIME %q", c.Runtime))
	}
	if c.AuditBufferSize < 0 {
		errs = append(errs, errors.New("AUDIT_BUFFER_SIZE must not be negative"))
	}
	return errors.Join(errs...)
}
