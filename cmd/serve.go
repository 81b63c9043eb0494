package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing image-based tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes locate, click and
type operations on reference images as tools, so agents can drive an
application the same way a run does, one step at a time.

Supported transports:
  stdio             Standard I/O (default, for local MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  visual-runner serve
  visual-runner serve --transport streamable-http --port 8080
  visual-runner serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 5000, "Reference image cache TTL in milliseconds (0 keeps images until restart)")
	serveCmd.Flags().Float64("confidence", 0.8, "Override the configured match threshold (0-1)")
	serveCmd.Flags().Bool("coarse-match", false, "Search large references at half resolution first")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	rc, err := loadRunContext(cmd, true)
	if err != nil {
		return err
	}

	cfg := MCPConfig{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}

	srv, err := newMCPServer(cfg, rc)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return srv.serve(cfg)
}
