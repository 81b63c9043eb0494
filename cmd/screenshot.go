package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/mj1618/visual-runner/internal/capture"
	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long: `Capture the screen the way a run does. Crop a region with --region to cut a
new reference image for the objects directory.

Examples:
  visual-runner screenshot --output RunTime/screen.png
  visual-runner screenshot --region 410,220,160,32 --output Objects/login_button.png`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: RunTime/process_screen.png; - for stdout as base64)")
	screenshotCmd.Flags().String("image-format", "png", "Output format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 1, "Scale factor 0.1-1.0")
	screenshotCmd.Flags().String("region", "", "Crop to x,y,width,height in capture pixels")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("image-format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	region, _ := cmd.Flags().GetString("region")

	if scale < 0.1 || scale > 1 {
		return fmt.Errorf("--scale must be between 0.1 and 1.0, got %g", scale)
	}
	if format != "png" && format != "jpg" {
		return fmt.Errorf("unsupported image format: %s (use png or jpg)", format)
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}
	img, err := provider.Screenshotter.CaptureScreen()
	if err != nil {
		return err
	}

	if region != "" {
		b, err := platform.ParseBBox(region)
		if err != nil {
			return err
		}
		img, err = crop(img, b.Rect())
		if err != nil {
			return err
		}
	}
	img = scaleImage(img, scale)

	data, err := encodeImage(img, format, quality)
	if err != nil {
		return err
	}

	if out == "-" {
		// write to stdout as base64 for easy agent consumption
		encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
		if _, err := encoder.Write(data); err != nil {
			return err
		}
		if err := encoder.Close(); err != nil {
			return err
		}
		fmt.Println() // newline after base64
		return nil
	}

	if out == "" {
		rc, err := loadRunContext(cmd, true)
		if err != nil {
			return err
		}
		out = filepath.Join(rc.RuntimeDir, capture.LatestFile)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	b := img.Bounds()
	return output.Print(output.ScreenshotResult{Path: out, Width: b.Dx(), Height: b.Dy()})
}

// crop returns the part of img inside r, re-based to the origin.
func crop(img image.Image, r image.Rectangle) (image.Image, error) {
	r = r.Add(img.Bounds().Min)
	if !r.In(img.Bounds()) {
		return nil, fmt.Errorf("region %v outside screen %v", r, img.Bounds())
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

func scaleImage(img image.Image, scale float64) image.Image {
	if scale >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpg":
		if quality < 1 || quality > 100 {
			quality = 80
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}
