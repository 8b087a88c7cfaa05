package metrics

import (
	"deal-board/internal/dto"
)

// SetPipelineStats publishes the summary statistics of the last fetch
func (m *Metrics) SetPipelineStats(stats dto.SummaryStats) {
	if m == nil {
		return
	}
	m.safeExecute("SetPipelineStats", func() {
		m.PipelineValue.Set(stats.TotalValue.InexactFloat64())
		m.ActiveDeals.Set(float64(stats.ActiveCount))
		m.WinRate.Set(float64(stats.WinRate))
		m.AverageDealSize.Set(stats.AvgDealSize.InexactFloat64())
		m.DealsTotal.Set(float64(stats.DealCount))
	})
}

// RecordDealMutation counts a create, update or delete request
func (m *Metrics) RecordDealMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.safeExecute("RecordDealMutation", func() {
		m.DealMutationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	})
}

// RecordBoardLoad counts a full deals+customers load
func (m *Metrics) RecordBoardLoad(err error) {
	if m == nil {
		return
	}
	m.safeExecute("RecordBoardLoad", func() {
		m.BoardLoadsTotal.WithLabelValues(resultLabel(err)).Inc()
	})
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
