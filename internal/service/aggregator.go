package service

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
)

// PeriodKeyFunc buckets a close date into a chart period
type PeriodKeyFunc func(t time.Time) string

// MonthPeriod buckets by abbreviated month name ("Jan", "Feb", ...)
func MonthPeriod(t time.Time) string {
	return t.Format("Jan")
}

// placeholderPeriods is what the revenue chart shows before any deal has closed
var placeholderPeriods = []string{"Jan", "Feb", "Mar", "Apr"}

// ComputeSummaryStats reduces deals to the headline numbers. Values that are
// missing or not numeric count as zero.
func ComputeSummaryStats(deals []domain.Deal) dto.SummaryStats {
	stats := dto.SummaryStats{
		TotalValue:  decimal.Zero,
		AvgDealSize: decimal.Zero,
		DealCount:   len(deals),
	}

	for _, deal := range deals {
		stats.TotalValue = stats.TotalValue.Add(deal.Value.Decimal())
		switch deal.Stage {
		case domain.StageClosedWon:
			stats.WonCount++
		case domain.StageClosedLost:
			stats.LostCount++
		default:
			stats.ActiveCount++
		}
	}

	if closed := stats.WonCount + stats.LostCount; closed > 0 {
		stats.WinRate = int(math.Round(float64(stats.WonCount) / float64(closed) * 100))
	}
	if len(deals) > 0 {
		stats.AvgDealSize = stats.TotalValue.Div(decimal.NewFromInt(int64(len(deals))))
	}
	return stats
}

// GroupByStage partitions deals into the columns described by defs. Input order
// is kept within each column; deals matching no definition are left out.
func GroupByStage(deals []domain.Deal, defs []domain.StageDefinition) map[domain.Stage]*dto.StageGroup {
	groups := make(map[domain.Stage]*dto.StageGroup, len(defs))
	for _, def := range defs {
		groups[def.Stage] = &dto.StageGroup{
			Definition: def,
			Deals:      []domain.Deal{},
			TotalValue: decimal.Zero,
		}
	}

	for _, deal := range deals {
		def, ok := findDefinition(defs, deal.Stage)
		if !ok {
			continue
		}
		group := groups[def.Stage]
		group.Deals = append(group.Deals, deal)
		group.TotalValue = group.TotalValue.Add(deal.Value.Decimal())
	}
	return groups
}

// BoardColumns returns GroupByStage ordered by display order, one entry per definition
func BoardColumns(deals []domain.Deal, defs []domain.StageDefinition) []dto.StageGroup {
	groups := GroupByStage(deals, defs)
	ordered := sortedDefinitions(defs)

	columns := make([]dto.StageGroup, 0, len(ordered))
	for _, def := range ordered {
		columns = append(columns, *groups[def.Stage])
	}
	return columns
}

// BucketRevenueByPeriod sums won and lost value per period for closed deals.
// Periods appear in first-seen order. A deal without a usable close date is
// bucketed at now. With no closed deals the four placeholder periods are returned.
func BucketRevenueByPeriod(deals []domain.Deal, key PeriodKeyFunc, now time.Time) []dto.RevenuePeriod {
	if key == nil {
		key = MonthPeriod
	}

	index := make(map[string]int)
	periods := make([]dto.RevenuePeriod, 0)

	for _, deal := range deals {
		if !deal.Stage.IsClosed() {
			continue
		}

		closeDate, ok := deal.CloseDate()
		if !ok {
			closeDate = now
		}
		period := key(closeDate)

		i, seen := index[period]
		if !seen {
			i = len(periods)
			index[period] = i
			periods = append(periods, dto.RevenuePeriod{Period: period, Won: decimal.Zero, Lost: decimal.Zero})
		}

		value := deal.Value.Decimal()
		if deal.Stage == domain.StageClosedWon {
			periods[i].Won = periods[i].Won.Add(value)
		} else {
			periods[i].Lost = periods[i].Lost.Add(value)
		}
	}

	if len(periods) == 0 {
		return placeholderRevenue()
	}
	return periods
}

func placeholderRevenue() []dto.RevenuePeriod {
	periods := make([]dto.RevenuePeriod, len(placeholderPeriods))
	for i, name := range placeholderPeriods {
		periods[i] = dto.RevenuePeriod{Period: name, Won: decimal.Zero, Lost: decimal.Zero}
	}
	return periods
}

// StageDistribution counts deals per canonical stage for the pipeline chart.
// Legacy stage names are folded into their canonical stage; unknown stages are skipped.
func StageDistribution(deals []domain.Deal) []dto.StageCount {
	stages := domain.CanonicalStages()
	index := make(map[domain.Stage]int, len(stages))
	counts := make([]dto.StageCount, len(stages))
	for i, stage := range stages {
		index[stage] = i
		counts[i] = dto.StageCount{Stage: stage, Value: decimal.Zero}
	}

	for _, deal := range deals {
		i, ok := index[deal.Stage.Canonical()]
		if !ok {
			continue
		}
		counts[i].Count++
		counts[i].Value = counts[i].Value.Add(deal.Value.Decimal())
	}
	return counts
}

// PriorityBreakdown counts deals per display priority; an absent priority is MEDIUM
func PriorityBreakdown(deals []domain.Deal) []dto.PriorityCount {
	order := []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow}
	counts := make(map[domain.Priority]int, len(order))
	for _, deal := range deals {
		counts[deal.DisplayPriority()]++
	}

	result := make([]dto.PriorityCount, 0, len(order))
	for _, p := range order {
		result = append(result, dto.PriorityCount{Priority: p, Count: counts[p]})
	}
	return result
}

func findDefinition(defs []domain.StageDefinition, stage domain.Stage) (domain.StageDefinition, bool) {
	for _, def := range defs {
		if def.Matches(stage) {
			return def, true
		}
	}
	return domain.StageDefinition{}, false
}

func sortedDefinitions(defs []domain.StageDefinition) []domain.StageDefinition {
	ordered := make([]domain.StageDefinition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	return ordered
}
