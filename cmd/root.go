package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/visual-runner/internal/config"
	"github.com/mj1618/visual-runner/internal/logging"
	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// logger is replaced in PersistentPreRunE once the log flags are parsed.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "visual-runner",
	Short: "Drive applications through their on-screen appearance",
	Long: `visual-runner automates an application by matching reference images against
live screen captures and clicking or typing at the matched locations. A run
replays an action script once for every row of a data table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger.Core().Enabled(zapcore.ErrorLevel) {
			logger.Error("Command failed", zap.Error(err))
		} else {
			// flags were rejected before the logger existed
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	logging.Sync(logger)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.PersistentFlags().String("base-dir", "", "Directory holding Config/, Data/, Objects/ and RunTime/ (default: auto-detect)")
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "INI configuration file, relative to the base directory")
	rootCmd.PersistentFlags().String("env-file", "", "Environment file loaded before configuration (default: <base-dir>/.env when present)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		logCfg := logging.DefaultConfig()
		logCfg.Level, _ = rootCmd.PersistentFlags().GetString("log-level")
		logCfg.LogFile, _ = rootCmd.PersistentFlags().GetString("log-file")
		logCfg.Color = term.IsTerminal(int(os.Stderr.Fd()))
		l, err := logging.New(logCfg, zapcore.Lock(os.Stderr))
		if err != nil {
			return err
		}
		logger = l
		return nil
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(map[string]string{
			"version": version.Version,
			"commit":  version.Commit,
			"built":   version.BuildDate,
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
