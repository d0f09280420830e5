// trendlens serves a ticker trend prediction dashboard and API.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"TrendLens/internal/dashboard"
	"TrendLens/internal/di"
	"TrendLens/pkg/config"
	xhttp "TrendLens/pkg/http"
	applogger "TrendLens/pkg/logger"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

var (
	version    = "0.1.0"
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "trendlens",
		Short:         "Ticker trend prediction dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trendlens version %s\n", version)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard, prediction API and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

func predictCmd() *cobra.Command {
	var (
		endpoint string
		out      string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "predict <ticker>",
		Short: "Request one prediction and save the chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			if endpoint == "" {
				endpoint = cfg.Dashboard.PredictionURL
			}
			if endpoint == "" {
				endpoint = fmt.Sprintf("http://localhost:%d/predict", cfg.Server.Port)
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger := applogger.NewWriter(cmd.ErrOrStderr(), level)

			view := dashboard.NewConsoleView(args[0], cmd.OutOrStdout())
			presenter := dashboard.NewPresenter(view, dashboard.ImageChartFactory{
				Width:  cfg.Dashboard.ChartWidth,
				Height: cfg.Dashboard.ChartHeight,
			})
			defer presenter.Close()

			predictAPI := dashboard.NewHTTPPredictionAPI(endpoint, xhttp.NewClient(xhttp.WithTimeout(0)))
			flow := dashboard.NewFlow(view, presenter, predictAPI,
				dashboard.WithLogger(logger),
				dashboard.WithRequestTimeout(cfg.Dashboard.RequestTimeout),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := flow.Submit(ctx); err != nil {
				return errReported
			}
			if out == "" {
				return nil
			}
			return saveChart(presenter, out)
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "prediction endpoint (defaults to dashboard.prediction_url, then the local server)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the chart to this .png or .svg file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the raw response")
	return cmd
}

func saveChart(p *dashboard.Presenter, path string) error {
	current, _ := p.Current()
	chart, ok := current.(*dashboard.ImageChart)
	if !ok {
		return fmt.Errorf("no chart to save")
	}

	format := dashboard.ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := chart.Render(f, format); err != nil {
		return err
	}
	return nil
}
