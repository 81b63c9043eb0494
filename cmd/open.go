package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var openCmd = &cobra.Command{
	Use:   "open [url]",
	Short: "Open the target application URL",
	Long: `Open a URL in the default browser. Without an argument the configured url is
opened, the same way a run opens it before every record.

With --wait-for, poll fresh captures until the given reference image shows
up instead of sleeping for a fixed launch delay.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().String("wait-for", "", "Reference image id to wait for after opening")
	openCmd.Flags().Int("timeout", 0, "Max seconds to wait (default: configured timeout)")
}

func runOpen(cmd *cobra.Command, args []string) error {
	waitFor, _ := cmd.Flags().GetString("wait-for")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")

	rc, err := loadRunContext(cmd, true)
	if err != nil {
		return err
	}
	target := rc.URL
	if len(args) > 0 {
		target = strings.TrimSpace(args[0])
	}
	if target == "" {
		return fmt.Errorf("specify a URL or set url in %s", rc.ConfigFile)
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Launcher == nil {
		return fmt.Errorf("open not supported on this platform")
	}
	if err := provider.Launcher.Open(target); err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	logger.Info("Launched application", zap.String("url", target))

	result := output.ActionResult{OK: true, Action: "open", URL: target}
	if waitFor == "" {
		return output.Print(result)
	}

	if provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}
	timeout := rc.Timeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	res, elapsed, err := waitForImage(cmd.Context(), provider.Screenshotter.CaptureScreen,
		reference.NewLibrary(rc.ObjectsDir, 0), newLocator(rc), waitFor, rc.Confidence, timeout, 500*time.Millisecond)
	if err != nil {
		return err
	}
	result.Object = waitFor
	if !res.Found {
		result.OK = false
		result.Message = fmt.Sprintf("%s not found after %s (best score %.3f)", waitFor, formatElapsed(elapsed), res.Score)
		_ = output.Print(result)
		return fmt.Errorf("timed out waiting for %s", waitFor)
	}
	result.X, result.Y = res.Location.X, res.Location.Y
	result.Message = "ready after " + formatElapsed(elapsed)
	return output.Print(result)
}
