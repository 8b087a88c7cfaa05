package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"deal-board/internal/client"
	"deal-board/internal/config"
	"deal-board/internal/dto"
	"deal-board/internal/metrics"
	"deal-board/internal/service"
)

// app carries the state shared by every subcommand once the root
// PersistentPreRunE has run.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	tokens *client.TokenStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "dealboard",
		Short: "Deal pipeline board for the CRM API",
		Long: `dealboard loads deals and customers from the CRM REST API and renders
the sales pipeline as a board or a list, with headline statistics and
won/lost revenue per month.

Run "dealboard serve" to expose the same board over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "configs/config.yaml", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newBoardCmd(a),
		newListCmd(a),
		newStatsCmd(a),
		newRevenueCmd(a),
		newCustomersCmd(a),
		newDealCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newForgotPasswordCmd(a),
		newResetPasswordCmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level := cfg.Logger.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := initLogger(level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.tokens = client.NewTokenStore(cfg.CRMAPI.Token)
	return nil
}

// newClient builds a CRM client that records into m
func (a *app) newClient(m *metrics.Metrics) client.Client {
	return client.NewCRMClient(a.cfg.CRMAPI.BaseURL, a.cfg.CRMAPI.Timeout, a.tokens, a.logger, m)
}

// newController wires a controller for a one-shot command. One-shot commands
// record into a private registry that is discarded on exit.
func (a *app) newController(confirm service.Confirmer) *service.BoardController {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), a.logger)
	return service.NewBoardController(a.newClient(m), a.controllerOptions(confirm), m, a.logger)
}

func (a *app) controllerOptions(confirm service.Confirmer) service.ControllerOptions {
	return service.ControllerOptions{
		Stages:      a.cfg.Board.Stages,
		DefaultView: dto.ViewMode(a.cfg.Board.DefaultView),
		Confirmer:   confirm,
		LoadTimeout: a.cfg.CRMAPI.LoadTimeout,
	}
}

// initLogger initializes the zap logger with the specified level.
// Logs go to stderr so command output on stdout stays pipeable.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
