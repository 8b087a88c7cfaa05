package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deal-board/internal/client"
	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/service"
)

func newBoardCmd(a *app) *cobra.Command {
	var view, query string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Load the pipeline and print the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := a.newController(nil)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			if view != "" {
				if err := controller.SetViewMode(dto.ViewMode(strings.ToUpper(view))); err != nil {
					return err
				}
			}
			controller.SetSearchQuery(query)

			renderBoard(cmd.OutOrStdout(), controller.View())
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "View mode: board or list (defaults to board.default_view)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show deals whose title or description contains this text")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals, optionally filtered by a search query",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := a.newController(nil)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			controller.SetSearchQuery(query)
			renderDealList(cmd.OutOrStdout(), controller.FilteredDeals(), controller.Customers())
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show deals whose title or description contains this text")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the headline pipeline statistics",
		Long: `Prints total value, active deals, win rate and average deal size,
followed by the stage and priority breakdowns.

With --file the deals are read from a JSON export (a bare array or a
{"data": [...]} envelope) instead of the CRM API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deals, err := a.loadDeals(cmd, file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderStats(out, service.ComputeSummaryStats(deals))
			fmt.Fprintln(out)
			renderDistribution(out, service.StageDistribution(deals), service.PriorityBreakdown(deals))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read deals from a JSON file instead of the API")
	return cmd
}

func newRevenueCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Print won and lost value per month of expected close",
		RunE: func(cmd *cobra.Command, args []string) error {
			deals, err := a.loadDeals(cmd, file)
			if err != nil {
				return err
			}
			renderRevenue(cmd.OutOrStdout(), service.BucketRevenueByPeriod(deals, service.MonthPeriod, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read deals from a JSON file instead of the API")
	return cmd
}

func newCustomersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List the customers deals can be linked to",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := a.newController(nil)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			renderCustomers(cmd.OutOrStdout(), controller.Customers())
			return nil
		},
	}
}

// loadDeals reads deals from file when set, otherwise from the API
func (a *app) loadDeals(cmd *cobra.Command, file string) ([]domain.Deal, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return client.DecodeDeals(raw)
	}

	controller := a.newController(nil)
	if err := controller.LoadAll(cmd.Context()); err != nil {
		return nil, err
	}
	return controller.Deals(), nil
}
