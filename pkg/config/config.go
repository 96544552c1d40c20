package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig
	GigaChat GigaChatConfig
	Claims   ClaimsConfig
	Policy   PolicyConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string `validate:"oneof=debug info warn error dpanic panic fatal"`
}

type ServerConfig struct {
	Port         string        `validate:"required,numeric"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string `validate:"required"`
	Model              string `validate:"required"`
	InsecureSkipVerify bool
}

// ClaimsConfig bounds the per-request document fan-out.
type ClaimsConfig struct {
	MaxConcurrency int           `validate:"gte=1,lte=64"`
	RequestTimeout time.Duration `validate:"gt=0"`
	MaxFileSize    int64         `validate:"gt=0"`
	MaxFiles       int           `validate:"gte=1"`
}

// PolicyConfig is the validation policy. It can be overridden by the YAML file
// named in CLAIM_POLICY_FILE.
type PolicyConfig struct {
	RequiredTypes    []string `yaml:"required_types" validate:"dive,oneof=bill discharge_summary id_card"`
	DateGraceDays    int      `yaml:"date_grace_days" validate:"gte=0,lte=30"`
	CheckIdentifiers bool     `yaml:"check_identifiers"`
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "120"))
	maxConcurrency, _ := strconv.Atoi(getEnv("CLAIM_MAX_CONCURRENCY", "4"))
	requestTimeout, _ := strconv.Atoi(getEnv("CLAIM_REQUEST_TIMEOUT", "90"))
	maxFileSizeMB, _ := strconv.Atoi(getEnv("CLAIM_MAX_FILE_SIZE_MB", "25"))
	maxFiles, _ := strconv.Atoi(getEnv("CLAIM_MAX_FILES", "10"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Claims: ClaimsConfig{
			MaxConcurrency: maxConcurrency,
			RequestTimeout: time.Duration(requestTimeout) * time.Second,
			MaxFileSize:    int64(maxFileSizeMB) * 1024 * 1024,
			MaxFiles:       maxFiles,
		},
		Policy: DefaultPolicy(),
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if path := getEnv("CLAIM_POLICY_FILE", ""); path != "" {
		policy, err := LoadPolicyFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPolicy requires every document type with one day of date grace.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		RequiredTypes: []string{"bill", "discharge_summary", "id_card"},
		DateGraceDays: 1,
	}
}

// LoadPolicyFile reads a YAML policy file. Keys absent from the file keep
// their default values.
func LoadPolicyFile(path string) (PolicyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	policy := DefaultPolicy()
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return PolicyConfig{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	for i, t := range policy.RequiredTypes {
		policy.RequiredTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
	if err := validate.Struct(policy); err != nil {
		return PolicyConfig{}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return policy, nil
}

var validate = validator.New()

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
