package aws

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
)

const costMetric = "UnblendedCost"

// interval monta o intervalo do Cost Explorer. O fim é exclusivo na API.
func interval(start, endExclusive time.Time) *ceTypes.DateInterval {
	return &ceTypes.DateInterval{
		Start: aws.String(start.Format(entity.DateLayout)),
		End:   aws.String(endExclusive.Format(entity.DateLayout)),
	}
}

func parseAmount(v *string) float64 {
	if v == nil {
		return 0
	}
	amount, _ := strconv.ParseFloat(*v, 64)
	return amount
}

// getDailyCosts retorna um ponto por dia entre start e end (inclusos), seguindo o
// NextPageToken até o fim do intervalo.
func getDailyCosts(ctx context.Context, client CostExplorerAPI, start, end time.Time) (entity.CostSeries, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  interval(start, end.AddDate(0, 0, 1)),
		Granularity: ceTypes.GranularityDaily,
		Metrics:     []string{costMetric},
	}

	points := []entity.CostDataPoint{}
	for {
		result, err := client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get daily costs (%s to %s): %w",
				start.Format(entity.DateLayout), end.Format(entity.DateLayout), err)
		}
		for _, period := range result.ResultsByTime {
			if period.TimePeriod == nil {
				continue
			}
			day, err := time.Parse(entity.DateLayout, aws.ToString(period.TimePeriod.Start))
			if err != nil {
				continue
			}
			cost := 0.0
			if val, ok := period.Total[costMetric]; ok {
				cost = parseAmount(val.Amount)
			}
			points = append(points, entity.CostDataPoint{Date: day, Cost: cost})
		}
		if aws.ToString(result.NextPageToken) == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return entity.NormalizeSeries(points), nil
}

// getCostForPeriod soma o custo do período [start, endExclusive).
func getCostForPeriod(ctx context.Context, client CostExplorerAPI, start, endExclusive time.Time, filter *ceTypes.Expression) (float64, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  interval(start, endExclusive),
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{costMetric},
		Filter:      filter,
	}

	result, err := client.GetCostAndUsage(ctx, input)
	if err != nil {
		return 0, err
	}

	var totalCost float64
	for _, period := range result.ResultsByTime {
		if val, ok := period.Total[costMetric]; ok {
			totalCost += parseAmount(val.Amount)
		}
	}
	return totalCost, nil
}

// getCostByService retorna o custo de cada serviço em [start, endExclusive).
func getCostByService(ctx context.Context, client CostExplorerAPI, start, endExclusive time.Time) (map[string]float64, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  interval(start, endExclusive),
		Granularity: ceTypes.GranularityMonthly,
		Metrics:     []string{costMetric},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	}

	costs := make(map[string]float64)
	for {
		result, err := client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, period := range result.ResultsByTime {
			for _, group := range period.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				costs[group.Keys[0]] += parseAmount(group.Metrics[costMetric].Amount)
			}
		}
		if aws.ToString(result.NextPageToken) == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}
	return costs, nil
}

// serviceCosts junta o mês atual com o anterior e calcula a variação por serviço.
func serviceCosts(current, previous map[string]float64) []entity.ServiceCost {
	services := make([]entity.ServiceCost, 0, len(current))
	for name, cost := range current {
		if cost <= 0.001 {
			continue
		}
		sc := entity.ServiceCost{Name: name, Cost: cost}
		if prev := previous[name]; prev > 0.01 {
			change := (cost - prev) / prev * 100.0
			sc.ChangePercentVsPriorPeriod = &change
		}
		services = append(services, sc)
	}

	sort.Slice(services, func(i, j int) bool {
		if services[i].Cost == services[j].Cost {
			return services[i].Name < services[j].Name
		}
		return services[i].Cost > services[j].Cost
	})
	return services
}

// creditsFilter limita o custo aos créditos aplicados.
var creditsFilter = &ceTypes.Expression{
	Dimensions: &ceTypes.DimensionValues{
		Key:    ceTypes.DimensionRecordType,
		Values: []string{"Credit"},
	},
}

// getForecast retorna a previsão de custo para [start, endExclusive).
func getForecast(ctx context.Context, client CostExplorerAPI, start, endExclusive time.Time) (float64, error) {
	result, err := client.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod:  interval(start, endExclusive),
		Granularity: ceTypes.GranularityMonthly,
		Metric:      ceTypes.MetricUnblendedCost,
	})
	if err != nil {
		return 0, err
	}
	if result.Total == nil {
		return 0, nil
	}
	return parseAmount(result.Total.Amount), nil
}

// getSavings retorna a economia líquida dos Savings Plans em [start, endExclusive).
func getSavings(ctx context.Context, client CostExplorerAPI, start, endExclusive time.Time) (float64, error) {
	result, err := client.GetSavingsPlansUtilization(ctx, &costexplorer.GetSavingsPlansUtilizationInput{
		TimePeriod: interval(start, endExclusive),
	})
	if err != nil {
		return 0, err
	}
	if result.Total == nil || result.Total.Savings == nil {
		return 0, nil
	}
	return parseAmount(result.Total.Savings.NetSavings), nil
}

// getBudgets lista os orçamentos da conta.
func getBudgets(ctx context.Context, client BudgetsAPI, accountID string) ([]entity.BudgetInfo, error) {
	result, err := client.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, err
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
		if budget.BudgetLimit != nil {
			b.Limit = parseAmount(budget.BudgetLimit.Amount)
		}
		if spend := budget.CalculatedSpend; spend != nil {
			if spend.ActualSpend != nil {
				b.Actual = parseAmount(spend.ActualSpend.Amount)
			}
			if spend.ForecastedSpend != nil {
				b.Forecast = parseAmount(spend.ForecastedSpend.Amount)
			}
		}
		budgetsData = append(budgetsData, b)
	}

	return budgetsData, nil
}
