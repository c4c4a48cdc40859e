package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/stockboard/internal/dashboard"
	"github.com/R3E-Network/stockboard/internal/logging"
)

const clearScreen = "\033[H\033[2J"

type watchOptions struct {
	query      string
	chartType  string
	categories []string
	once       bool
}

// NewWatchCommand creates the watch command. It loads the inventory, follows
// the change feed and redraws on every state change. Lines typed on stdin
// replace the search query.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	wo := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render the live inventory dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, wo)
		},
	}

	cmd.Flags().StringVarP(&wo.query, "query", "q", "", "initial search query")
	cmd.Flags().StringVar(&wo.chartType, "chart-type", string(dashboard.ChartBar), "type of the default chart (bar|line|pie|doughnut)")
	cmd.Flags().StringSliceVar(&wo.categories, "categories", nil, "add a chart limited to these categories")
	cmd.Flags().BoolVar(&wo.once, "once", false, "render one frame after the initial load and exit")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *RootOptions, wo *watchOptions) error {
	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}
	log := logging.New("stockboard-watch", cfg.LogLevel, cfg.LogFormat)

	board := dashboard.NewChartBoard(dashboard.ChartType(wo.chartType))
	if len(wo.categories) > 0 {
		if _, err := board.Add(dashboard.ChartConfig{
			Title:      "Selected",
			Type:       dashboard.ChartType(wo.chartType),
			Mode:       dashboard.ModeSelectedCategories,
			Categories: wo.categories,
		}); err != nil {
			return WrapExitError(ExitCommandError, "configure chart", err)
		}
	}

	store := dashboard.NewStore()
	session := dashboard.NewSession(client, store)
	out := cmd.OutOrStdout()
	f := formatter(cmd, opts)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if wo.once {
		store.Dispatch(dashboard.SetQuery{Q: wo.query})
		if err := session.Load(ctx, wo.query); err != nil {
			return apiFailure("load items", err)
		}
		return drawFrame(out, f, BuildView(store.State(), board), false)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	color := !f.JSON() && isTerminal(out)
	var drawMu sync.Mutex
	unsubscribe := store.Subscribe(func(s dashboard.State) {
		drawMu.Lock()
		defer drawMu.Unlock()
		if color {
			fmt.Fprint(out, clearScreen)
		}
		if err := drawFrame(out, f, BuildView(s, board), color); err != nil {
			log.WithError(err).Warn("Render failed")
		}
	})
	defer unsubscribe()

	feed := dashboard.NewRealtime(client.BaseURL(), store, log)
	if err := feed.Connect(ctx); err != nil {
		return WrapExitError(ExitCommandError, "connect change feed", err)
	}
	defer feed.Disconnect()

	store.Dispatch(dashboard.SetQuery{Q: wo.query})
	if err := session.Load(ctx, wo.query); err != nil {
		log.WithError(err).Warn("Initial load failed")
	}

	debouncer := dashboard.NewDebouncer(ctx, session, dashboard.SearchDelay, func(err error) {
		log.WithError(err).Warn("Search failed")
	})
	defer debouncer.Stop()
	go readQueries(cmd.InOrStdin(), debouncer)

	select {
	case <-ctx.Done():
		return nil
	case <-feed.Done():
		return WrapExitError(ExitCommandError, "change feed closed", nil)
	}
}

func readQueries(in io.Reader, d *dashboard.Debouncer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		d.Input(strings.TrimSpace(scanner.Text()))
	}
}

func drawFrame(w io.Writer, f *OutputFormatter, view DashboardView, color bool) error {
	if f.JSON() {
		return json.NewEncoder(w).Encode(CLIResponse{Status: "ok", Data: view})
	}
	return RenderDashboard(w, view, color)
}
