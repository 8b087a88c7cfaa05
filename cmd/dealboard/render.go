package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

func stageStyle(def domain.StageDefinition) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if def.Color != "" {
		style = style.Foreground(lipgloss.Color(def.Color))
	}
	return style
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func customerIndex(customers []domain.Customer) map[string]domain.Customer {
	index := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		index[c.ID] = c
	}
	return index
}

func customerName(deal domain.Deal, index map[string]domain.Customer) string {
	if c, ok := index[deal.CustomerRef()]; ok {
		return c.DisplayName()
	}
	if deal.Customer != nil {
		return deal.Customer.DisplayName()
	}
	return "-"
}

func renderStats(w io.Writer, stats dto.SummaryStats) {
	fmt.Fprintln(w, titleStyle.Render("Pipeline"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total value\t%s\n", money(stats.TotalValue))
	fmt.Fprintf(tw, "Active deals\t%d\n", stats.ActiveCount)
	fmt.Fprintf(tw, "Win rate\t%d%%\n", stats.WinRate)
	fmt.Fprintf(tw, "Avg deal size\t%s\n", money(stats.AvgDealSize))
	fmt.Fprintf(tw, "Won / lost\t%d / %d\n", stats.WonCount, stats.LostCount)
	_ = tw.Flush()
}

func renderDistribution(w io.Writer, stages []dto.StageCount, priorities []dto.PriorityCount) {
	fmt.Fprintln(w, titleStyle.Render("By stage"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range stages {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Stage, s.Count, money(s.Value))
	}
	_ = tw.Flush()

	fmt.Fprintln(w, titleStyle.Render("By priority"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range priorities {
		fmt.Fprintf(tw, "%s\t%d\n", p.Priority, p.Count)
	}
	_ = tw.Flush()
}

func renderRevenue(w io.Writer, periods []dto.RevenuePeriod) {
	fmt.Fprintln(w, titleStyle.Render("Revenue"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tWON\tLOST")
	for _, p := range periods {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Period, money(p.Won), money(p.Lost))
	}
	_ = tw.Flush()
}

// renderColumns prints one block per stage column, empty columns included
func renderColumns(w io.Writer, columns []dto.StageGroup, customers []domain.Customer) {
	index := customerIndex(customers)
	for _, col := range columns {
		header := fmt.Sprintf("%s (%d)  %s", col.Definition.Label, len(col.Deals), money(col.TotalValue))
		fmt.Fprintln(w, stageStyle(col.Definition).Render(header))
		if len(col.Deals) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  no deals"))
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range col.Deals {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				d.ID, d.Title, money(d.Value.Decimal()), d.DisplayPriority(), customerName(d, index))
		}
		_ = tw.Flush()
	}
}

func renderDealList(w io.Writer, deals []domain.Deal, customers []domain.Customer) {
	if len(deals) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no deals"))
		return
	}
	index := customerIndex(customers)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVALUE\tSTAGE\tPRIORITY\tCLOSE\tCUSTOMER")
	for _, d := range deals {
		closeDate := d.ExpectedCloseDate
		if closeDate == "" {
			closeDate = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, money(d.Value.Decimal()), d.Stage, d.DisplayPriority(), closeDate, customerName(d, index))
	}
	_ = tw.Flush()
}

func renderCustomers(w io.Writer, customers []domain.Customer) {
	if len(customers) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no customers"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCOMPANY")
	for _, c := range customers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.Email, c.Company)
	}
	_ = tw.Flush()
}

// renderBoard prints the full board snapshot in the current view mode
func renderBoard(w io.Writer, view dto.BoardView) {
	renderStats(w, view.Stats)
	fmt.Fprintln(w)

	if view.SearchQuery != "" {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("filter: %q", view.SearchQuery)))
	}
	if view.Mode == dto.ViewModeBoard {
		renderColumns(w, view.Columns, view.Customers)
	} else {
		renderDealList(w, view.Deals, view.Customers)
	}
	fmt.Fprintln(w)

	renderRevenue(w, view.Revenue)
}

func renderDeal(w io.Writer, deal domain.Deal) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", deal.ID)
	fmt.Fprintf(tw, "Title\t%s\n", deal.Title)
	fmt.Fprintf(tw, "Value\t%s\n", money(deal.Value.Decimal()))
	fmt.Fprintf(tw, "Stage\t%s\n", deal.Stage)
	fmt.Fprintf(tw, "Priority\t%s\n", deal.DisplayPriority())
	if deal.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", strings.TrimSpace(deal.Description))
	}
	_ = tw.Flush()
}
