package aws

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/repository"
)

// ProviderType identifica os providers atendidos por este adaptador.
const ProviderType = "aws"

// Cost Explorer e Budgets são serviços globais atendidos em us-east-1.
const globalRegion = "us-east-1"

// CostExplorerAPI é o subconjunto do cliente do Cost Explorer usado aqui.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	GetCostForecast(ctx context.Context, params *costexplorer.GetCostForecastInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostForecastOutput, error)
	GetSavingsPlansUtilization(ctx context.Context, params *costexplorer.GetSavingsPlansUtilizationInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetSavingsPlansUtilizationOutput, error)
}

// BudgetsAPI é o subconjunto do cliente do Budgets usado aqui.
type BudgetsAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
}

// STSAPI é o subconjunto do cliente do STS usado aqui.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// clients agrupa os clientes de um profile.
type clients struct {
	costExplorer CostExplorerAPI
	budgets      BudgetsAPI
	sts          STSAPI
}

// CostRepositoryImpl implementa o CostRepository sobre o Cost Explorer, um provider por
// profile AWS, com cache de configs e clientes.
type CostRepositoryImpl struct {
	cfgCache    map[string]aws.Config
	clientCache map[string]*clients
	mu          sync.Mutex

	loadClients func(ctx context.Context, profile string) (*clients, error)
	profiles    func() []string
	now         func() time.Time
}

// NewAWSRepository cria uma nova implementação do CostRepository para AWS.
func NewAWSRepository() repository.CostRepository {
	return newAWSRepository()
}

func newAWSRepository() *CostRepositoryImpl {
	r := &CostRepositoryImpl{
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]*clients),
		profiles:    GetAWSProfiles,
		now:         time.Now,
	}
	r.loadClients = r.loadSDKClients
	return r
}

func (r *CostRepositoryImpl) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[profile]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	r.cfgCache[profile] = cfg
	return cfg, nil
}

func (r *CostRepositoryImpl) loadSDKClients(ctx context.Context, profile string) (*clients, error) {
	cfg, err := r.getAWSConfig(ctx, profile)
	if err != nil {
		return nil, err
	}

	globalCfg := cfg.Copy()
	globalCfg.Region = globalRegion

	return &clients{
		costExplorer: costexplorer.NewFromConfig(globalCfg),
		budgets:      budgets.NewFromConfig(globalCfg),
		sts:          sts.NewFromConfig(globalCfg),
	}, nil
}

func (r *CostRepositoryImpl) clientsFor(ctx context.Context, profile string) (*clients, error) {
	r.mu.Lock()
	if c, ok := r.clientCache[profile]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	c, err := r.loadClients(ctx, profile)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.clientCache[profile] = c
	r.mu.Unlock()

	return c, nil
}

// GetAWSProfiles lista os profiles de ~/.aws/credentials e ~/.aws/config.
func GetAWSProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}
	return profilesFromFiles(
		filepath.Join(homeDir, ".aws", "credentials"),
		filepath.Join(homeDir, ".aws", "config"),
	)
}

var profileRegex = regexp.MustCompile(`\[([^]]+)\]`)

func profilesFromFiles(credentialsPath, configPath string) []string {
	profiles := make(map[string]bool)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		matches := profileRegex.FindAllStringSubmatch(string(content), -1)
		for _, match := range matches {
			profileName := strings.TrimSpace(match[1])
			if isConfig {
				if strings.HasPrefix(profileName, "sso-session ") {
					continue
				}
				profileName = strings.TrimPrefix(profileName, "profile ")
			}
			profiles[profileName] = true
		}
	}

	parseFile(credentialsPath, false)
	parseFile(configPath, true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}

// ListProviders retorna um provider por profile AWS.
func (r *CostRepositoryImpl) ListProviders(_ context.Context) ([]entity.Provider, error) {
	profiles := r.profiles()
	providers := make([]entity.Provider, 0, len(profiles))
	for _, profile := range profiles {
		providers = append(providers, entity.Provider{ID: profile, Name: profile, Type: ProviderType})
	}
	return providers, nil
}

// GetDailyCosts retorna o custo diário (unblended) do profile entre start e end, ambos
// inclusos.
func (r *CostRepositoryImpl) GetDailyCosts(ctx context.Context, providerID string, start, end time.Time) (entity.CostSeries, error) {
	c, err := r.clientsFor(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return getDailyCosts(ctx, c.costExplorer, entity.Day(start), entity.Day(end))
}

// TriggerSync descarta configs e clientes em cache para que a próxima leitura recarregue as
// credenciais. Cost Explorer não tem um sync do lado do servidor.
func (r *CostRepositoryImpl) TriggerSync(_ context.Context, providerID string) (entity.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if providerID == "" {
		r.cfgCache = make(map[string]aws.Config)
		r.clientCache = make(map[string]*clients)
		return entity.SyncResult{Success: true, Message: "AWS credentials reloaded for all profiles"}, nil
	}

	delete(r.cfgCache, providerID)
	delete(r.clientCache, providerID)
	return entity.SyncResult{Success: true, Message: fmt.Sprintf("AWS credentials reloaded for %s", providerID)}, nil
}

// getAccountID retorna a conta por trás do profile.
func getAccountID(ctx context.Context, client STSAPI) (string, error) {
	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}
