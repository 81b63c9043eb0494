package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var locateCmd = &cobra.Command{
	Use:   "locate <object-id>",
	Short: "Find a reference image on the screen",
	Long: `Match one reference image from the objects directory against a fresh screen
capture, or against a saved screenshot with --screen, and print the best
score and the center of the match.

Useful for tuning the confidence threshold before a run.

Examples:
  visual-runner locate login_button.png
  visual-runner locate name_field.png --screen RunTime/process_screen.png
  visual-runner locate spinner.png --wait --timeout 20`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().String("screen", "", "Match against this image file instead of a live capture")
	locateCmd.Flags().Float64("confidence", 0.8, "Override the configured match threshold (0-1)")
	locateCmd.Flags().Bool("coarse-match", false, "Search large references at half resolution first")
	locateCmd.Flags().Bool("wait", false, "Poll fresh captures until the image is found")
	locateCmd.Flags().Int("timeout", 0, "Max seconds to wait (default: configured timeout)")
	locateCmd.Flags().Int("interval", 500, "Polling interval in milliseconds")
}

func runLocate(cmd *cobra.Command, args []string) error {
	id := args[0]
	screenFile, _ := cmd.Flags().GetString("screen")
	wait, _ := cmd.Flags().GetBool("wait")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	rc, err := loadRunContext(cmd, true)
	if err != nil {
		return err
	}
	lib := reference.NewLibrary(rc.ObjectsDir, 0)
	loc := newLocator(rc)

	if screenFile != "" {
		if wait {
			return fmt.Errorf("--wait needs a live capture and cannot be combined with --screen")
		}
		screen, err := reference.Load(screenFile)
		if err != nil {
			return err
		}
		res, err := locateOnce(cmd.Context(), lib, loc, screen, id, rc.Confidence)
		if err != nil {
			return err
		}
		return output.Print(output.NewLocateResult(id, res, rc.Confidence))
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}

	timeout := time.Duration(0)
	if wait {
		timeout = rc.Timeout
		if timeoutSec > 0 {
			timeout = time.Duration(timeoutSec) * time.Second
		}
	}

	res, elapsed, err := waitForImage(cmd.Context(), provider.Screenshotter.CaptureScreen, lib, loc, id,
		rc.Confidence, timeout, time.Duration(intervalMs)*time.Millisecond)
	if err != nil {
		return err
	}
	result := output.NewLocateResult(id, res, rc.Confidence)
	if wait {
		result.Waited = formatElapsed(elapsed)
	}
	logger.Debug("Located", zap.String("object_id", id), zap.Bool("found", res.Found), zap.Float64("score", res.Score))
	if err := output.Print(result); err != nil {
		return err
	}
	if wait && !res.Found {
		return fmt.Errorf("timed out after %s waiting for %s", timeout, id)
	}
	return nil
}
