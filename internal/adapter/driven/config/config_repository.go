package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// Variáveis de ambiente lidas quando nem a flag nem o arquivo definem o valor.
const (
	EnvAPIURL   = "FINOPS_API_URL"
	EnvAPIToken = "FINOPS_API_TOKEN"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	// Verifica se o arquivo existe
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	// Lê o arquivo
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	if err := normalize(&config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}

	return &config, nil
}

// normalize padroniza códigos de moeda e valida as taxas de câmbio.
func normalize(config *types.Config) error {
	config.Source = strings.ToLower(strings.TrimSpace(config.Source))
	config.BaseCurrency = strings.ToUpper(strings.TrimSpace(config.BaseCurrency))
	config.Currency = strings.ToUpper(strings.TrimSpace(config.Currency))

	if len(config.Rates) > 0 {
		rates := make(map[string]float64, len(config.Rates))
		for code, rate := range config.Rates {
			if rate <= 0 {
				return fmt.Errorf("rate for %s must be positive, got %v", code, rate)
			}
			rates[strings.ToUpper(strings.TrimSpace(code))] = rate
		}
		config.Rates = rates
	}
	if config.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must not be negative")
	}
	return nil
}

// ApplyEnv preenche URL e token da API a partir do ambiente quando ainda vazios.
func ApplyEnv(args *types.CLIArgs) {
	if args.APIURL == "" {
		args.APIURL = os.Getenv(EnvAPIURL)
	}
	if args.APIToken == "" {
		args.APIToken = os.Getenv(EnvAPIToken)
	}
}
