package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/spf13/cobra"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool    `yaml:"ok"                  json:"ok"`
	Action   string  `yaml:"action"              json:"action"`
	Elapsed  string  `yaml:"elapsed"             json:"elapsed"`
	Match    string  `yaml:"match,omitempty"     json:"match,omitempty"`
	Score    float64 `yaml:"score"               json:"score"`
	TimedOut bool    `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a reference image to appear or disappear",
	Long:  "Poll fresh screen captures until a reference image is found (or gone with --gone) or the timeout is reached.",
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("for-image", "", "Reference image id to wait for")
	waitCmd.Flags().Bool("gone", false, "Invert: wait until the image is NO LONGER on screen")
	waitCmd.Flags().Float64("confidence", 0.8, "Override the configured match threshold (0-1)")
	waitCmd.Flags().Bool("coarse-match", false, "Search large references at half resolution first")
	waitCmd.Flags().Int("timeout", 0, "Max seconds to wait (default: configured timeout)")
	waitCmd.Flags().Int("interval", 500, "Polling interval in milliseconds (default: 500)")
}

func runWait(cmd *cobra.Command, args []string) error {
	forImage, _ := cmd.Flags().GetString("for-image")
	gone, _ := cmd.Flags().GetBool("gone")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	if forImage == "" {
		return fmt.Errorf("specify the image to wait for with --for-image")
	}

	rc, err := loadRunContext(cmd, true)
	if err != nil {
		return err
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}
	lib := reference.NewLibrary(rc.ObjectsDir, 0)
	if _, err := lib.Get(forImage); err != nil {
		return err
	}
	loc := newLocator(rc)

	timeout := rc.Timeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	interval := time.Duration(intervalMs) * time.Millisecond
	matchDesc := describeCondition(forImage, gone)

	res, elapsed, met, err := pollImage(cmd.Context(), provider.Screenshotter.CaptureScreen, lib, loc, forImage,
		rc.Confidence, timeout, interval, gone)
	if err != nil {
		return err
	}
	result := WaitResult{
		OK:       met,
		Action:   "wait",
		Elapsed:  formatElapsed(elapsed),
		Match:    matchDesc,
		Score:    res.Score,
		TimedOut: !met,
	}
	if !met {
		// Print the result, then return an error for non-zero exit code
		_ = output.Print(result)
		return fmt.Errorf("timed out waiting for condition: %s", matchDesc)
	}
	return output.Print(result)
}

// describeCondition returns a human-readable description of what was waited for.
func describeCondition(image string, gone bool) string {
	desc := fmt.Sprintf("image=%q", image)
	if gone {
		desc += " (gone)"
	}
	return desc
}
