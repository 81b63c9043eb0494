package cmd

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/mj1618/visual-runner/internal/config"
	"github.com/mj1618/visual-runner/internal/model"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/mj1618/visual-runner/internal/vision"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadRunContext resolves the base directory and reads configuration using
// the root persistent flags. lenient skips the keys only `run` needs.
func loadRunContext(cmd *cobra.Command, lenient bool) (config.RunContext, error) {
	baseFlag, _ := rootCmd.PersistentFlags().GetString("base-dir")
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")

	base, err := config.ResolveBaseDir(baseFlag)
	if err != nil {
		return config.RunContext{}, err
	}

	overrides := map[string]string{}
	if f := cmd.Flags().Lookup("confidence"); f != nil && f.Changed {
		overrides["settings.confidence"] = f.Value.String()
	}
	if f := cmd.Flags().Lookup("url"); f != nil && f.Changed {
		overrides["default.url"] = f.Value.String()
	}
	if f := cmd.Flags().Lookup("coarse-match"); f != nil && f.Changed {
		overrides["settings.coarse_match"] = f.Value.String()
	}

	rc, err := config.Load(config.LoadOptions{
		BaseDir:    base,
		ConfigFile: cfgFile,
		EnvFile:    envFile,
		Overrides:  overrides,
		Lenient:    lenient,
	})
	if err != nil {
		return config.RunContext{}, err
	}
	logger.Debug("Loaded configuration", rc.LogFields()...)
	return rc, nil
}

// newLocator returns the locator configured by rc.
func newLocator(rc config.RunContext) *vision.Locator {
	return &vision.Locator{CoarseToFine: rc.CoarseMatch}
}

// locateOnce grabs the reference for id and matches it against screen.
func locateOnce(ctx context.Context, lib *reference.Library, loc *vision.Locator, screen image.Image, id string, threshold float64) (model.MatchResult, error) {
	ref, err := lib.Get(id)
	if err != nil {
		return model.MatchResult{}, err
	}
	return loc.Locate(ctx, screen, ref, threshold)
}

// waitForImage polls fresh captures until id is found or timeout elapses.
// The last result is returned either way; err is only set for capture and
// load failures or cancellation.
func waitForImage(ctx context.Context, capture func() (image.Image, error), lib *reference.Library, loc *vision.Locator,
	id string, threshold float64, timeout, interval time.Duration) (model.MatchResult, time.Duration, error) {
	res, elapsed, _, err := pollImage(ctx, capture, lib, loc, id, threshold, timeout, interval, false)
	return res, elapsed, err
}

// pollImage polls fresh captures until id is on screen, or off screen when
// gone is set, reporting whether that happened before timeout. Capture
// errors are retried until the deadline.
func pollImage(ctx context.Context, capture func() (image.Image, error), lib *reference.Library, loc *vision.Locator,
	id string, threshold float64, timeout, interval time.Duration, gone bool) (model.MatchResult, time.Duration, bool, error) {
	start := time.Now()
	deadline := start.Add(timeout)
	var res model.MatchResult
	for {
		screen, err := capture()
		if err != nil {
			if !time.Now().Before(deadline) {
				return res, time.Since(start), false, fmt.Errorf("capture screen: %w", err)
			}
			logger.Debug("Capture failed, retrying", zap.Error(err))
		} else {
			res, err = locateOnce(ctx, lib, loc, screen, id, threshold)
			if err != nil {
				return res, time.Since(start), false, err
			}
			if res.Found != gone {
				return res, time.Since(start), true, nil
			}
			if !time.Now().Before(deadline) {
				return res, time.Since(start), false, nil
			}
			logger.Debug("Waiting for image", zap.String("object_id", id), zap.Bool("gone", gone), zap.Float64("score", res.Score))
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return res, time.Since(start), false, ctx.Err()
		case <-t.C:
		}
	}
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Parameter extraction helpers for MCP tool arguments

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that clients may send unquoted
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i
			}
		}
	}
	return defaultVal
}

func floatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
