package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/mj1618/visual-runner/internal/capture"
	"github.com/mj1618/visual-runner/internal/config"
	"github.com/mj1618/visual-runner/internal/datasource"
	"github.com/mj1618/visual-runner/internal/executor"
	"github.com/mj1618/visual-runner/internal/metrics"
	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/mj1618/visual-runner/internal/runner"
	"github.com/mj1618/visual-runner/internal/script"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the action script for every data record",
	Long: `Run the automation: for every row of the data table, open the configured URL,
wait for it to settle, then perform every scripted action against a fresh
screen capture.

Steps whose element cannot be found are reported and skipped; the run always
continues to the next step and record. Configuration, script and data errors
stop the run before any input is sent.

Examples:
  visual-runner run
  visual-runner run --base-dir ~/automation --data Data/accounts.xlsx
  visual-runner run --dry-run --confidence 0.9 --format json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("script", "", "Action script (JSON or YAML); default from configuration")
	runCmd.Flags().String("data", "", "Data table (.xlsx or .csv); default from configuration")
	runCmd.Flags().String("url", "", "Override the configured application URL")
	runCmd.Flags().Float64("confidence", 0.8, "Override the configured match threshold (0-1)")
	runCmd.Flags().Bool("coarse-match", false, "Search large references at half resolution first")
	runCmd.Flags().Bool("dry-run", false, "Locate elements without sending any input")
	runCmd.Flags().Bool("keep-screenshots", false, "Keep every step's capture under RunTime/<run-id>/")
	runCmd.Flags().String("metrics-file", "", "Write prometheus metrics in textfile format to this path")
	runCmd.Flags().Bool("report", true, "Print the step report after the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	scriptFlag, _ := cmd.Flags().GetString("script")
	dataFlag, _ := cmd.Flags().GetString("data")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	keep, _ := cmd.Flags().GetBool("keep-screenshots")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	printReport, _ := cmd.Flags().GetBool("report")

	// --data replaces excel_file_input, so it is only required without it.
	rc, err := loadRunContext(cmd, dataFlag != "")
	if err != nil {
		return err
	}
	if rc.URL == "" {
		return fmt.Errorf("%w: default.url", config.ErrMissingKey)
	}
	if scriptFlag != "" {
		rc.ScriptFile = absPath(scriptFlag)
	}
	if dataFlag != "" {
		rc.ExcelFile = absPath(dataFlag)
	}
	logger.Info("Configuration loaded", rc.LogFields()...)

	steps, err := script.Load(rc.ScriptFile)
	if err != nil {
		return err
	}
	logger.Info("Script loaded", zap.String("path", rc.ScriptFile), zap.Int("steps", len(steps)))

	records, err := datasource.Load(rc.ExcelFile)
	if err != nil {
		return err
	}
	logger.Info("Excel file loaded", zap.String("path", rc.ExcelFile), zap.Int("records", len(records)))

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil || provider.Inputter == nil || provider.Launcher == nil {
		return fmt.Errorf("desktop backend incomplete: %w", platform.ErrUnsupported)
	}

	rec := metrics.New()
	exec := executor.New(executor.Config{
		Threshold:         rc.Confidence,
		ClickSettle:       rc.ClickSettle,
		KeystrokeInterval: rc.KeystrokeInterval,
		DryRun:            dryRun,
		Secret:            map[string]bool{config.FieldPassword: true},
	}, reference.NewLibrary(rc.ObjectsDir, 0), newLocator(rc), provider.Inputter,
		executor.WithLogger(logger.Named("executor")))

	runID := uuid.NewString()
	capOpts := []capture.Option{capture.WithLogger(logger.Named("capture"))}
	if keep || rc.KeepScreenshots {
		capOpts = append(capOpts, capture.WithHistory(runID))
	}
	capturer := capture.New(provider.Screenshotter, rc.RuntimeDir, capOpts...)

	r := runner.New(runner.Config{
		URL:         rc.URL,
		LaunchDelay: rc.LaunchDelay,
		Credentials: rc.Credentials(),
	}, provider.Launcher, capturer, exec,
		runner.WithLogger(logger.Named("runner")),
		runner.WithMetrics(rec),
		runner.WithRunID(runID))

	rep, runErr := r.Run(cmd.Context(), records, steps)
	if rep != nil {
		logger.Info("automation process completed", zap.String("run_id", rep.RunID), zap.String("summary", rep.Summary()))
		if printReport {
			if err := output.Print(rep); err != nil {
				return err
			}
		}
	}
	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			logger.Warn("Could not write metrics", zap.Error(err))
		}
	}
	return runErr
}

// absPath resolves flag paths against the working directory.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
