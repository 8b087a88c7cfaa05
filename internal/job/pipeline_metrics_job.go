package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/service"
)

// DealLister is the part of the CRM client the job needs
type DealLister interface {
	ListDeals(ctx context.Context) ([]domain.Deal, error)
}

// StatsRecorder publishes pipeline statistics
type StatsRecorder interface {
	SetPipelineStats(stats dto.SummaryStats)
}

// PipelineMetricsJob refreshes the pipeline gauges from a fresh deal fetch.
// It never touches the board controller's lists.
type PipelineMetricsJob struct {
	deals    DealLister
	recorder StatsRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPipelineMetricsJob creates a new PipelineMetricsJob instance
func NewPipelineMetricsJob(
	deals DealLister,
	recorder StatsRecorder,
	timeout time.Duration,
	logger *zap.Logger,
) *PipelineMetricsJob {
	return &PipelineMetricsJob{
		deals:    deals,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run executes the job; it satisfies cron.Job
func (j *PipelineMetricsJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	deals, err := j.deals.ListDeals(ctx)
	if err != nil {
		j.logger.Error("Failed to fetch deals for pipeline metrics",
			zap.Error(err),
		)
		return
	}

	stats := service.ComputeSummaryStats(deals)
	j.recorder.SetPipelineStats(stats)

	j.logger.Debug("Pipeline metrics refreshed",
		zap.Int("deals", stats.DealCount),
		zap.Int("active", stats.ActiveCount),
		zap.Int("win_rate", stats.WinRate),
		zap.String("total_value", stats.TotalValue.String()),
	)
}

// Schedule registers the job on a new cron scheduler. The caller starts and stops it.
func Schedule(spec string, j cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger}),
		cron.SkipIfStillRunning(cronLogger{logger}),
	))
	if _, err := c.AddJob(spec, j); err != nil {
		return nil, err
	}
	logger.Info("Job scheduled", zap.String("schedule", spec))
	return c, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
