package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/deepbluedave/csv-visualiser-sub000/app"
	"github.com/deepbluedave/csv-visualiser-sub000/app/export"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/render"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

var (
	tabID       string
	where       string
	limit       int
	format      string
	outPath     string
	toClipboard bool

	mergeDir     string
	mergePattern string
	mergeSource  bool
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List the enabled tabs of a configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.New(cmd.OutOrStdout()).TabList(cfg.EnabledTabs()))
		return nil
	},
}

var viewCmd = &cobra.Command{
	Use:   "view [source]",
	Short: "Show a tab in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args)
		if err != nil {
			return err
		}
		v, err := s.View(cmd.Context(), tabID, app.Query{Where: where, Limit: limit})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.New(cmd.OutOrStdout()).View(v))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [source]",
	Short: "Export a tab as CSV or XLSX",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args)
		if err != nil {
			return err
		}
		tab, err := s.Tab(tabID)
		if err != nil {
			return err
		}
		rows, err := s.Export(cmd.Context(), tab.ID, app.Query{Where: where})
		if err != nil {
			return err
		}
		if toClipboard {
			if err := export.CopyToClipboard(export.JoinCSV(rows)); err != nil {
				return err
			}
			logger.Info("copied to clipboard", "tab", tab.ID, "rows", len(rows)-1)
			return nil
		}
		return writeRows(cmd, rows, tab.Title)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge every matching file of a directory into one table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := app.NewApp(effectiveSettings(), engineLogger())
		table, err := a.Merge(cmd.Context(), mergeDir, mergePattern, mergeSource)
		if err != nil {
			return err
		}
		for _, w := range table.Warnings {
			logger.Warn("merge", "warning", w)
		}
		rows := make([][]string, 0, table.Len()+1)
		rows = append(rows, table.Headers)
		for _, rec := range table.Records {
			row := make([]string, len(table.Headers))
			for i, h := range table.Headers {
				row[i] = rec.Text(h)
			}
			rows = append(rows, row)
		}
		return writeRows(cmd, rows, "Merged")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect a dashboard configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [source]",
	Short: "Report configuration problems, against the data when a source is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, warnings, err := settings.LoadConfig(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range warnings {
			fmt.Fprintln(out, "config:", w)
		}
		if len(args) == 0 && cfg.General.CSVUrl == "" {
			fmt.Fprintf(out, "%d warnings\n", len(warnings))
			return nil
		}

		// Run every tab once and report what the engine had to skip
		rec := &interfaces.RecordingLogger{}
		a := app.NewApp(effectiveSettings(), rec)
		source := cfg.General.CSVUrl
		if len(args) > 0 {
			source = args[0]
		}
		s, err := a.Open(cmd.Context(), cfg, source, fileOptions())
		if err != nil {
			return err
		}
		for _, tab := range s.Tabs() {
			if _, err := s.View(cmd.Context(), tab.ID, app.Query{}); err != nil {
				fmt.Fprintf(out, "tab %s: %v\n", tab.ID, err)
				warnings = append(warnings, err.Error())
			}
		}
		seen := map[string]bool{}
		for _, l := range rec.Lines {
			if l.Level != "warn" && l.Level != "error" {
				continue
			}
			if seen[l.Message] {
				continue
			}
			seen[l.Message] = true
			fmt.Fprintln(out, l.Level+":", l.Message)
			warnings = append(warnings, l.Message)
		}
		fmt.Fprintf(out, "%d warnings\n", len(warnings))
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change application settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := yaml.Marshal(effectiveSettings())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the settings file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath
		if path == "" {
			var err error
			if path, err = settings.SettingsFilePath(); err != nil {
				return err
			}
		}
		s, err := settings.WithOverride(settings.LoadSettingsFile(path), args[0], args[1])
		if err != nil {
			return err
		}
		if err := settings.SaveSettings(path, s); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logger.Info("settings saved", "path", path, "key", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{viewCmd, exportCmd} {
		c.Flags().StringVarP(&tabID, "tab", "t", "", "tab ID (default: the first enabled tab)")
		c.Flags().StringVarP(&where, "where", "w", "", `extra filter, e.g. 'Status = "Open" AND NOT Owner is empty'`)
	}
	viewCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum table rows to show (0 = all)")

	for _, c := range []*cobra.Command{exportCmd, mergeCmd} {
		c.Flags().StringVarP(&format, "format", "f", "", "csv or xlsx (default: from --out, else csv)")
		c.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	}
	exportCmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy CSV text to the clipboard instead of writing it")

	mergeCmd.Flags().StringVarP(&mergeDir, "dir", "d", ".", "directory to merge")
	mergeCmd.Flags().StringVarP(&mergePattern, "pattern", "p", "**/*.csv", "file pattern, e.g. '*.xlsx' or '**/*.csv'")
	mergeCmd.Flags().BoolVar(&mergeSource, "source-column", false, "add a column holding each row's source file")

	configCmd.AddCommand(configCheckCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

// writeRows writes rows in the requested format to --out, or to stdout
func writeRows(cmd *cobra.Command, rows [][]string, sheet string) error {
	f := strings.ToLower(format)
	if f == "" {
		f = "csv"
		if strings.EqualFold(filepath.Ext(outPath), ".xlsx") {
			f = "xlsx"
		}
	}

	var buf bytes.Buffer
	switch f {
	case "csv":
		if err := export.WriteCSV(&buf, rows); err != nil {
			return err
		}
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("xlsx output needs --out")
		}
		if err := export.WriteXLSX(&buf, sheet, rows); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (use csv or xlsx)", format)
	}

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.Info("exported", "path", outPath, "rows", len(rows)-1)
	return nil
}
