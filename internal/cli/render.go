package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/dashboard"
)

const barWidth = 30

// DashboardView is the JSON form of one rendered frame.
type DashboardView struct {
	State  dashboard.State `json:"state"`
	Charts []ChartView     `json:"charts"`
}

// ChartView is one chart with its aggregated series.
type ChartView struct {
	dashboard.ChartConfig
	Series []dashboard.CategoryTotal `json:"series"`
}

// BuildView aggregates every chart on board over the state's items.
func BuildView(state dashboard.State, board *dashboard.ChartBoard) DashboardView {
	view := DashboardView{State: state, Charts: []ChartView{}}
	for _, cfg := range board.Charts() {
		view.Charts = append(view.Charts, ChartView{ChartConfig: cfg, Series: dashboard.Series(cfg, state.Items)})
	}
	return view
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// RenderItems writes items as an aligned table.
func RenderItems(w io.Writer, items []item.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tCATEGORY")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, formatQuantity(it.Quantity), it.Category)
	}
	return tw.Flush()
}

// RenderDashboard writes the status line, any mutation error, the item table
// and one bar chart per chart config.
func RenderDashboard(w io.Writer, view DashboardView, color bool) error {
	state := view.State

	status := string(state.Status)
	switch state.Status {
	case dashboard.StatusSucceeded:
		status = Colorize(status, ColorGreen, color)
	case dashboard.StatusFailed:
		status = Colorize(status, ColorRed, color)
	case dashboard.StatusLoading:
		status = Colorize(status, ColorYellow, color)
	}

	line := fmt.Sprintf("%s  status: %s  items: %d", Colorize("Inventory", ColorBold, color), status, len(state.Items))
	if state.Query != "" {
		line += fmt.Sprintf("  query: %q", state.Query)
	}
	fmt.Fprintln(w, line)
	if state.Status == dashboard.StatusFailed && state.Error != "" {
		fmt.Fprintln(w, Colorize("load failed: "+state.Error, ColorRed, color))
	}
	if m := state.MutationError; m != nil {
		target := string(m.Op)
		if m.ID != "" {
			target += " " + m.ID
		}
		fmt.Fprintln(w, Colorize(fmt.Sprintf("%s failed: %s", target, m.Message), ColorRed, color))
	}
	fmt.Fprintln(w)

	if err := RenderItems(w, state.Items); err != nil {
		return err
	}

	for _, chart := range view.Charts {
		fmt.Fprintln(w)
		if err := renderChart(w, chart, color); err != nil {
			return err
		}
	}
	return nil
}

func renderChart(w io.Writer, chart ChartView, color bool) error {
	fmt.Fprintf(w, "%s [%s]\n", Colorize(chart.Title, ColorBold, color), chart.Type)
	if len(chart.Series) == 0 {
		_, err := fmt.Fprintln(w, "  (no data)")
		return err
	}

	var max float64
	for _, p := range chart.Series {
		if p.Quantity > max {
			max = p.Quantity
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, p := range chart.Series {
		filled := 0
		if max > 0 && p.Quantity > 0 {
			filled = int(float64(barWidth) * p.Quantity / max)
			if filled == 0 {
				filled = 1
			}
		}
		bar := Colorize(strings.Repeat("█", filled), ColorCyan, color) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Category, bar, formatQuantity(p.Quantity))
	}
	return tw.Flush()
}
