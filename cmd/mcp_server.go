package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/visual-runner/internal/config"
	"github.com/mj1618/visual-runner/internal/executor"
	"github.com/mj1618/visual-runner/internal/model"
	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"github.com/mj1618/visual-runner/internal/version"
	"github.com/mj1618/visual-runner/internal/vision"
	"go.uber.org/zap"
)

// mcpServer wraps the MCP server with the platform provider and reference cache.
type mcpServer struct {
	provider *platform.Provider
	refs     *reference.Library
	locator  *vision.Locator
	rc       config.RunContext

	// providerMu serializes everything that touches the screen or input.
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// newMCPServer creates and configures an MCP server with all tools.
func newMCPServer(cfg MCPConfig, rc config.RunContext) (*mcpServer, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	return newMCPServerWith(provider, rc, cfg.CacheTTL), nil
}

func newMCPServerWith(provider *platform.Provider, rc config.RunContext, cacheTTL time.Duration) *mcpServer {
	s := &mcpServer{
		provider: provider,
		refs:     reference.NewLibrary(rc.ObjectsDir, cacheTTL),
		locator:  newLocator(rc),
		rc:       rc,
	}
	s.mcp = mcpserver.NewMCPServer(
		"visual-runner",
		version.Version,
	)
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// locate
	s.mcp.AddTool(
		mcp.NewTool("locate",
			mcp.WithDescription("Find a reference image on a fresh screen capture. Returns found, score, and the center of the best match."),
			mcp.WithString("object", mcp.Description("Reference image file name in the objects directory"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Match threshold 0-1 (default: configured confidence)")),
		),
		s.handleLocate,
	)

	// click_image
	s.mcp.AddTool(
		mcp.NewTool("click_image",
			mcp.WithDescription("Locate a reference image and click its center"),
			mcp.WithString("object", mcp.Description("Reference image file name"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Match threshold 0-1")),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle (default: left)")),
		),
		s.handleClickImage,
	)

	// type_at_image
	s.mcp.AddTool(
		mcp.NewTool("type_at_image",
			mcp.WithDescription("Locate a reference image, click it to focus, then type text"),
			mcp.WithString("object", mcp.Description("Reference image file name"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithNumber("confidence", mcp.Description("Match threshold 0-1")),
			mcp.WithNumber("delay", mcp.Description("Delay between keystrokes in ms")),
		),
		s.handleTypeAtImage,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the screen as a PNG image"),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default: 0.5)")),
		),
		s.handleScreenshot,
	)

	// open
	s.mcp.AddTool(
		mcp.NewTool("open",
			mcp.WithDescription("Open a URL in the default browser (default: the configured url)"),
			mcp.WithString("url", mcp.Description("URL to open")),
		),
		s.handleOpen,
	)

	// reload_references
	s.mcp.AddTool(
		mcp.NewTool("reload_references",
			mcp.WithDescription("Drop cached reference images so edited files on disk are read again"),
			mcp.WithString("object", mcp.Description("Reference image to reload (default: all)")),
		),
		s.handleReloadReferences,
	)
}

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) string {
	var buf bytes.Buffer
	if err := output.Fprint(&buf, output.FormatYAML, v); err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return buf.String()
}

func (s *mcpServer) threshold(params map[string]interface{}) float64 {
	t := floatParam(params, "confidence", s.rc.Confidence)
	if t < 0 || t > 1 {
		return s.rc.Confidence
	}
	return t
}

func (s *mcpServer) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	object := stringParam(params, "object", "")
	if object == "" {
		return mcp.NewToolResultError("object is required"), nil
	}
	threshold := s.threshold(params)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Screenshotter == nil {
		return mcp.NewToolResultError("screenshot not supported on this platform"), nil
	}
	screen, err := s.provider.Screenshotter.CaptureScreen()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := locateOnce(ctx, s.refs, s.locator, screen, object, threshold)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(output.NewLocateResult(object, res, threshold))), nil
}

func (s *mcpServer) handleClickImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	button, err := platform.ParseMouseButton(stringParam(params, "button", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.perform(ctx, params, model.ActionDescriptor{
		Action:   model.ActionClick,
		ObjectID: stringParam(params, "object", ""),
	}, nil, button)
}

func (s *mcpServer) handleTypeAtImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.perform(ctx, params, model.ActionDescriptor{
		Action:   model.ActionSetText,
		ObjectID: stringParam(params, "object", ""),
	}, stringParam(params, "text", ""), platform.MouseLeft)
}

// perform runs one scripted step through the same executor a run uses.
func (s *mcpServer) perform(ctx context.Context, params map[string]interface{}, desc model.ActionDescriptor, value any, button platform.MouseButton) (*mcp.CallToolResult, error) {
	if desc.ObjectID == "" {
		return mcp.NewToolResultError("object is required"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Screenshotter == nil || s.provider.Inputter == nil {
		return mcp.NewToolResultError("input not supported on this platform"), nil
	}
	screen, err := s.provider.Screenshotter.CaptureScreen()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := executor.Config{
		Threshold:         s.threshold(params),
		ClickSettle:       s.rc.ClickSettle,
		KeystrokeInterval: time.Duration(intParam(params, "delay", int(s.rc.KeystrokeInterval/time.Millisecond))) * time.Millisecond,
		Button:            button,
	}
	exec := executor.New(cfg, s.refs, s.locator, s.provider.Inputter, executor.WithLogger(logger.Named("mcp")))
	res := exec.Execute(ctx, desc, value, screen)

	text := resultToText(res)
	if !res.OK() {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *mcpServer) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	scale := floatParam(params, "scale", 0.5)
	if scale < 0.1 || scale > 1 {
		return mcp.NewToolResultError(fmt.Sprintf("scale must be between 0.1 and 1.0, got %g", scale)), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Screenshotter == nil {
		return mcp.NewToolResultError("screenshot not supported on this platform"), nil
	}
	img, err := s.provider.Screenshotter.CaptureScreen()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaleImage(img, scale)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b := img.Bounds()
	return mcp.NewToolResultImage(
		fmt.Sprintf("screen %dx%d at scale %g", b.Dx(), b.Dy(), scale),
		base64.StdEncoding.EncodeToString(buf.Bytes()),
		"image/png",
	), nil
}

func (s *mcpServer) handleOpen(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := stringParam(request.GetArguments(), "url", s.rc.URL)
	if target == "" {
		return mcp.NewToolResultError("url is required (none configured)"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if s.provider.Launcher == nil {
		return mcp.NewToolResultError("open not supported on this platform"), nil
	}
	if err := s.provider.Launcher.Open(target); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("Launched application", zap.String("url", target))
	return mcp.NewToolResultText(resultToText(output.ActionResult{OK: true, Action: "open", URL: target})), nil
}

func (s *mcpServer) handleReloadReferences(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	object := stringParam(request.GetArguments(), "object", "")
	if object == "" {
		s.refs.InvalidateAll()
	} else {
		s.refs.Invalidate(object)
	}
	logger.Debug("Reference cache cleared", zap.String("object", object))
	return mcp.NewToolResultText(resultToText(output.ActionResult{OK: true, Action: "reload_references", Object: object})), nil
}
