package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/deepbluedave/csv-visualiser-sub000/app"
	"github.com/deepbluedave/csv-visualiser-sub000/app/fileloader"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

var (
	configPath   string
	settingsPath string
	logLevel     string
	sheetName    string
	jsonPath     string
	noHeaderRow  bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "csv-visualiser",
	Short:         "Tabbed dashboards over CSV, XLSX and JSON data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger = newLogger(effectiveSettings())
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "dashboard configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "application settings file (default: next to the executable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "XLSX sheet to read (default: the first sheet)")
	rootCmd.PersistentFlags().StringVar(&jsonPath, "jpath", "", "JSONPath selecting the records of a JSON source")
	rootCmd.PersistentFlags().BoolVar(&noHeaderRow, "no-header", false, "the first row is data, not column names")

	rootCmd.AddCommand(tabsCmd, viewCmd, exportCmd, mergeCmd, configCmd, settingsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// effectiveSettings reads --settings, or the default settings file
func effectiveSettings() settings.Settings {
	s := settings.GetEffectiveSettings()
	if settingsPath != "" {
		s = settings.LoadSettingsFile(settingsPath)
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	return s
}

// newLogger builds the process logger on stderr, keeping stdout for output
func newLogger(s settings.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: interfaces.ParseLevel(s.LogLevel)}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func engineLogger() interfaces.Logger {
	return interfaces.NewSlogLogger(logger)
}

func loadConfig() (*settings.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, warnings, err := settings.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("config", "warning", w)
	}
	return cfg, nil
}

func fileOptions() fileloader.FileOptions {
	return fileloader.FileOptions{Sheet: sheetName, JPath: jsonPath, NoHeaderRow: noHeaderRow}
}

// openSession loads the configuration and the data source (first argument,
// else the configured csvUrl)
func openSession(ctx context.Context, args []string) (*app.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	source := ""
	if len(args) > 0 {
		source = args[0]
	}
	a := app.NewApp(effectiveSettings(), engineLogger())
	return a.Open(ctx, cfg, source, fileOptions())
}
