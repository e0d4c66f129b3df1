package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/winjanitor/winjanitor/internal/cleaner"
	"github.com/winjanitor/winjanitor/internal/config"
	"github.com/winjanitor/winjanitor/internal/jobs"
	"github.com/winjanitor/winjanitor/internal/policy"
	"github.com/winjanitor/winjanitor/internal/privilege"
	"github.com/winjanitor/winjanitor/internal/reporter"
	"github.com/winjanitor/winjanitor/internal/scanner"
	"github.com/winjanitor/winjanitor/internal/ui"
	"github.com/winjanitor/winjanitor/internal/winpath"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool
	plain      bool
	categories []string
	assumeYes  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "winjanitor",
	Short: "Windows junk file cleaner",
	Long: `winjanitor scans the well-known junk locations of a Windows system
(temporary files, the Windows Update download cache, the Recycle Bin,
browser caches, the Explorer thumbnail cache and user-chosen folders)
and deletes what a strict path allowlist permits.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable output")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable the interactive progress view")

	scanCmd.Flags().StringSliceVar(&categories, "category", nil, "limit to specific categories (repeatable)")
	cleanCmd.Flags().StringSliceVar(&categories, "category", nil, "limit to specific categories (repeatable)")
	cleanCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without confirmation")

	rootCmd.AddCommand(scanCmd, cleanCmd, categoriesCmd, configCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type app struct {
	cfg        *config.AppConfig
	scanCfg    scanner.ScanConfig
	controller *jobs.Controller
	log        *slog.Logger
}

func newApp() (*app, error) {
	log := newLogger()

	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	scanCfg, err := cfg.ScanConfig()
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		enabled := make(map[scanner.JunkCategory]bool, len(categories))
		for _, name := range categories {
			cat, err := scanner.CategoryFromName(name)
			if err != nil {
				return nil, err
			}
			enabled[cat] = true
		}
		scanCfg.Enabled = enabled
	}

	roots := winpath.Discover()
	pol := policy.New(roots, policy.WithLogger(log))
	scanEng := scanner.NewEngine(roots, pol, privilege.Current(), scanner.WithLogger(log))
	cleanEng := cleaner.New(pol, cleaner.WithLogger(log))

	return &app{
		cfg:        cfg,
		scanCfg:    scanCfg,
		controller: jobs.NewController(scanEng, cleanEng, jobs.WithLogger(log)),
		log:        log,
	}, nil
}

// followJob drains a handle either through the interactive view or by
// printing progress lines.
func followJob(title string, h *jobs.Handle) (ui.Outcome, error) {
	if !plain {
		return ui.Run(title, h)
	}

	var out ui.Outcome
	for ev := range h.Events {
		switch ev.Type {
		case jobs.EventProgress:
			// Progress goes to stderr so json output stays parseable.
			if ev.Label != "" {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percent, ev.Label)
			}
		case jobs.EventCompleted:
			out.Scan = ev.Scan
			out.Clean = ev.Clean
		case jobs.EventCancelled:
			out.Cancelled = true
		case jobs.EventFailed:
			out.Err = ev.Err
		}
	}
	return out, nil
}

func outputFormat() reporter.Format {
	if jsonOutput {
		return reporter.FormatJSON
	}
	return reporter.FormatText
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for junk files without deleting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out, err := followJob("Scanning for junk files", a.controller.StartScan(a.scanCfg))
		if err != nil {
			return err
		}
		if out.Err != nil {
			return fmt.Errorf("scan failed: %w", out.Err)
		}
		if out.Cancelled {
			fmt.Println("scan cancelled")
			return nil
		}

		return reporter.New(os.Stdout, outputFormat()).ScanReport(out.Scan)
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Scan and delete the junk files the policy allows",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out, err := followJob("Scanning for junk files", a.controller.StartScan(a.scanCfg))
		if err != nil {
			return err
		}
		if out.Err != nil {
			return fmt.Errorf("scan failed: %w", out.Err)
		}
		if out.Cancelled {
			fmt.Println("cancelled")
			return nil
		}

		var selection []scanner.FileRecord
		for _, cat := range scanner.AllCategories() {
			for _, f := range out.Scan.Categories[cat] {
				if f.Deletable {
					selection = append(selection, f)
				}
			}
		}
		if len(selection) == 0 {
			fmt.Println("Nothing to clean.")
			return nil
		}

		if !assumeYes {
			var size int64
			for _, f := range selection {
				size += f.Size
			}
			fmt.Printf("About to delete %d files (%s). Continue? [y/N] ",
				len(selection), reporter.FormatBytes(size))
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("aborted")
				return nil
			}
		}

		cleanOut, err := followJob("Deleting junk files", a.controller.StartClean(selection))
		if err != nil {
			return err
		}
		if cleanOut.Err != nil {
			return fmt.Errorf("clean failed: %w", cleanOut.Err)
		}
		if cleanOut.Cancelled {
			fmt.Println("clean cancelled")
			return nil
		}

		return reporter.New(os.Stdout, outputFormat()).CleanReport(cleanOut.Clean)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the junk categories and their privilege requirements",
	RunE: func(cmd *cobra.Command, args []string) error {
		elevated := privilege.Current().IsElevated()
		for _, cat := range scanner.AllCategories() {
			if cat == scanner.CategoryCustom {
				continue
			}
			note := ""
			if cat.RequiresElevation() {
				note = "  (administrator required"
				if !elevated {
					note += ", not available now"
				}
				note += ")"
			}
			fmt.Printf("%-16s %s%s\n", cat.String(), cat.Label(), note)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureExists()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
