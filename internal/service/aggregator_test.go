package service

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-board/internal/domain"
)

func deal(id, value string, stage domain.Stage) domain.Deal {
	return domain.Deal{ID: id, Title: "Deal " + id, Value: domain.Amount(value), Stage: stage}
}

func TestComputeSummaryStats(t *testing.T) {
	t.Run("mixed pipeline", func(t *testing.T) {
		deals := []domain.Deal{
			deal("1", "1000", domain.StageNew),
			deal("2", "2000", domain.StageClosedWon),
			deal("3", "500", domain.StageClosedLost),
		}

		stats := ComputeSummaryStats(deals)

		assert.True(t, stats.TotalValue.Equal(decimal.NewFromInt(3500)))
		assert.Equal(t, 1, stats.ActiveCount)
		assert.Equal(t, 50, stats.WinRate)
		assert.Equal(t, "1166.67", stats.AvgDealSize.StringFixed(2))
		assert.Equal(t, 1, stats.WonCount)
		assert.Equal(t, 1, stats.LostCount)
		assert.Equal(t, 3, stats.DealCount)
	})

	t.Run("empty list", func(t *testing.T) {
		stats := ComputeSummaryStats(nil)

		assert.True(t, stats.TotalValue.IsZero())
		assert.True(t, stats.AvgDealSize.IsZero())
		assert.Equal(t, 0, stats.ActiveCount)
		assert.Equal(t, 0, stats.WinRate)
	})

	t.Run("no closed deals gives zero win rate", func(t *testing.T) {
		stats := ComputeSummaryStats([]domain.Deal{
			deal("1", "10", domain.StageProposal),
			deal("2", "20", domain.StageNegotiation),
		})
		assert.Equal(t, 0, stats.WinRate)
		assert.Equal(t, 2, stats.ActiveCount)
	})

	t.Run("missing and malformed values count as zero", func(t *testing.T) {
		stats := ComputeSummaryStats([]domain.Deal{
			deal("1", "", domain.StageNew),
			deal("2", "n/a", domain.StageNew),
			deal("3", "250.50", domain.StageNew),
		})
		assert.Equal(t, "250.5", stats.TotalValue.String())
		assert.Equal(t, "83.5", stats.AvgDealSize.String())
	})

	t.Run("win rate rounds", func(t *testing.T) {
		stats := ComputeSummaryStats([]domain.Deal{
			deal("1", "1", domain.StageClosedWon),
			deal("2", "1", domain.StageClosedWon),
			deal("3", "1", domain.StageClosedLost),
		})
		assert.Equal(t, 67, stats.WinRate)
	})

	t.Run("negative values are summed as-is", func(t *testing.T) {
		stats := ComputeSummaryStats([]domain.Deal{
			deal("1", "-100", domain.StageNew),
			deal("2", "300", domain.StageNew),
		})
		assert.Equal(t, "200", stats.TotalValue.String())
	})
}

func TestGroupByStage(t *testing.T) {
	defs := domain.DefaultStageDefinitions()
	deals := []domain.Deal{
		deal("a", "100", domain.StageNew),
		deal("b", "50", domain.StageProspecting),
		deal("c", "10", domain.StageNew),
		deal("d", "999", domain.Stage("ARCHIVED")),
		deal("e", "75", domain.StageQualification),
	}

	groups := GroupByStage(deals, defs)

	require.Len(t, groups, len(defs))
	newColumn := groups[domain.StageNew]
	require.Len(t, newColumn.Deals, 3)
	assert.Equal(t, []string{"a", "b", "c"}, dealIDs(newColumn.Deals))
	assert.Equal(t, "160", newColumn.TotalValue.String())

	assert.Equal(t, []string{"e"}, dealIDs(groups[domain.StageQualified].Deals))
	assert.Empty(t, groups[domain.StageProposal].Deals)
	assert.True(t, groups[domain.StageProposal].TotalValue.IsZero())

	for _, group := range groups {
		for _, d := range group.Deals {
			assert.NotEqual(t, "d", d.ID, "unknown stage must not be grouped")
		}
	}
}

func TestBoardColumns_OrderedByDisplayOrder(t *testing.T) {
	defs := []domain.StageDefinition{
		{Stage: domain.StageClosedWon, Label: "Won", DisplayOrder: 2},
		{Stage: domain.StageNew, Label: "New", DisplayOrder: 0},
		{Stage: domain.StageProposal, Label: "Proposal", DisplayOrder: 1},
	}

	columns := BoardColumns([]domain.Deal{deal("1", "5", domain.StageProposal)}, defs)

	require.Len(t, columns, 3)
	assert.Equal(t, domain.StageNew, columns[0].Definition.Stage)
	assert.Equal(t, domain.StageProposal, columns[1].Definition.Stage)
	assert.Equal(t, domain.StageClosedWon, columns[2].Definition.Stage)
	assert.Len(t, columns[1].Deals, 1)
}

func TestBucketRevenueByPeriod(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	t.Run("placeholders without closed deals", func(t *testing.T) {
		periods := BucketRevenueByPeriod([]domain.Deal{deal("1", "100", domain.StageNew)}, MonthPeriod, now)

		require.Len(t, periods, 4)
		names := make([]string, 0, len(periods))
		for _, p := range periods {
			names = append(names, p.Period)
			assert.True(t, p.Won.IsZero())
			assert.True(t, p.Lost.IsZero())
		}
		assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr"}, names)
	})

	t.Run("buckets in first-seen order", func(t *testing.T) {
		march := deal("1", "100", domain.StageClosedWon)
		march.ExpectedCloseDate = "2024-03-10"
		jan := deal("2", "40", domain.StageClosedLost)
		jan.ExpectedCloseDate = "2024-01-20T10:00:00Z"
		marchLost := deal("3", "60", domain.StageClosedLost)
		marchLost.ExpectedCloseDate = "2024-03-30T09:00:00"
		open := deal("4", "1000", domain.StageNegotiation)
		open.ExpectedCloseDate = "2024-02-01"

		periods := BucketRevenueByPeriod([]domain.Deal{march, jan, marchLost, open}, MonthPeriod, now)

		require.Len(t, periods, 2)
		assert.Equal(t, "Mar", periods[0].Period)
		assert.Equal(t, "100", periods[0].Won.String())
		assert.Equal(t, "60", periods[0].Lost.String())
		assert.Equal(t, "Jan", periods[1].Period)
		assert.True(t, periods[1].Won.IsZero())
		assert.Equal(t, "40", periods[1].Lost.String())
	})

	t.Run("missing or malformed date buckets at now", func(t *testing.T) {
		noDate := deal("1", "10", domain.StageClosedWon)
		badDate := deal("2", "5", domain.StageClosedWon)
		badDate.ExpectedCloseDate = "next quarter"

		periods := BucketRevenueByPeriod([]domain.Deal{noDate, badDate}, MonthPeriod, now)

		require.Len(t, periods, 1)
		assert.Equal(t, "Jun", periods[0].Period)
		assert.Equal(t, "15", periods[0].Won.String())
	})

	t.Run("custom period key", func(t *testing.T) {
		won := deal("1", "10", domain.StageClosedWon)
		won.ExpectedCloseDate = "2023-11-02"
		quarter := func(t time.Time) string { return t.Format("2006") }

		periods := BucketRevenueByPeriod([]domain.Deal{won}, quarter, now)

		require.Len(t, periods, 1)
		assert.Equal(t, "2023", periods[0].Period)
	})
}

func TestStageDistribution_FoldsLegacyStages(t *testing.T) {
	counts := StageDistribution([]domain.Deal{
		deal("1", "10", domain.StageProspecting),
		deal("2", "20", domain.StageNew),
		deal("3", "30", domain.StageQualification),
		deal("4", "40", domain.Stage("UNKNOWN")),
	})

	require.Len(t, counts, len(domain.CanonicalStages()))
	assert.Equal(t, domain.StageNew, counts[0].Stage)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "30", counts[0].Value.String())
	assert.Equal(t, domain.StageQualified, counts[1].Stage)
	assert.Equal(t, 1, counts[1].Count)

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(t, 3, total)
}

func TestPriorityBreakdown_DefaultsToMedium(t *testing.T) {
	high := deal("1", "1", domain.StageNew)
	high.Priority = domain.PriorityHigh
	none := deal("2", "1", domain.StageNew)

	counts := PriorityBreakdown([]domain.Deal{high, none})

	require.Len(t, counts, 3)
	assert.Equal(t, domain.PriorityHigh, counts[0].Priority)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, domain.PriorityMedium, counts[1].Priority)
	assert.Equal(t, 1, counts[1].Count)
	assert.Equal(t, 0, counts[2].Count)
}

var generatedStages = []domain.Stage{
	domain.StageNew, domain.StageQualified, domain.StageProposal, domain.StageNegotiation,
	domain.StageClosedWon, domain.StageClosedLost, domain.StageProspecting, domain.StageQualification,
}

// genDeals builds deals from parallel value and stage-index slices
func genDeals(values []int64, stageIdx []int) []domain.Deal {
	n := len(values)
	if len(stageIdx) < n {
		n = len(stageIdx)
	}
	deals := make([]domain.Deal, n)
	for i := 0; i < n; i++ {
		deals[i] = domain.Deal{
			ID:    string(rune('a' + i%26)),
			Value: domain.NewAmount(decimal.NewFromInt(values[i])),
			Stage: generatedStages[stageIdx[i]],
		}
	}
	return deals
}

func TestProperty_AggregatorPartitionsAndSums(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	values := gen.SliceOf(gen.Int64Range(0, 1_000_000))
	stages := gen.SliceOf(gen.IntRange(0, len(generatedStages)-1))

	properties.Property("active, won and lost partition the deals", prop.ForAll(
		func(v []int64, s []int) bool {
			deals := genDeals(v, s)
			stats := ComputeSummaryStats(deals)
			return stats.ActiveCount+stats.WonCount+stats.LostCount == len(deals)
		},
		values, stages,
	))

	properties.Property("win rate stays within 0..100", prop.ForAll(
		func(v []int64, s []int) bool {
			stats := ComputeSummaryStats(genDeals(v, s))
			return stats.WinRate >= 0 && stats.WinRate <= 100
		},
		values, stages,
	))

	properties.Property("grouped columns cover every known deal once and sum to the total", prop.ForAll(
		func(v []int64, s []int) bool {
			deals := genDeals(v, s)
			groups := GroupByStage(deals, domain.DefaultStageDefinitions())

			count := 0
			sum := decimal.Zero
			for _, g := range groups {
				count += len(g.Deals)
				sum = sum.Add(g.TotalValue)
			}
			return count == len(deals) && sum.Equal(ComputeSummaryStats(deals).TotalValue)
		},
		values, stages,
	))

	properties.Property("revenue buckets hold exactly the closed value", prop.ForAll(
		func(v []int64, s []int) bool {
			deals := genDeals(v, s)
			now := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

			won, lost := decimal.Zero, decimal.Zero
			for _, d := range deals {
				switch d.Stage {
				case domain.StageClosedWon:
					won = won.Add(d.Value.Decimal())
				case domain.StageClosedLost:
					lost = lost.Add(d.Value.Decimal())
				}
			}

			bucketWon, bucketLost := decimal.Zero, decimal.Zero
			for _, p := range BucketRevenueByPeriod(deals, MonthPeriod, now) {
				bucketWon = bucketWon.Add(p.Won)
				bucketLost = bucketLost.Add(p.Lost)
			}
			return bucketWon.Equal(won) && bucketLost.Equal(lost)
		},
		values, stages,
	))

	properties.TestingRun(t)
}

func dealIDs(deals []domain.Deal) []string {
	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	return ids
}
